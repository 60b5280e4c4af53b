package profile

import "testing"

func TestIsValidAge(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"7", true},
		{"25", true},
		{"99", true},
		{"00", true},
		{"100", false},
		{"7a", false},
		{"a7", false},
		{"", false},
		{" 7", false},
		{"-5", false},
	}
	for _, tc := range cases {
		if got := IsValidAge(tc.in); got != tc.want {
			t.Errorf("IsValidAge(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestIsValidLevel(t *testing.T) {
	for _, l := range Levels {
		if !IsValidLevel(l) {
			t.Errorf("IsValidLevel(%q) = false, want true", l)
		}
	}
	rejected := []string{"Эксперт", "начинающий", "НОСИТЕЛЬ", "Носитель ", ""}
	for _, in := range rejected {
		if IsValidLevel(in) {
			t.Errorf("IsValidLevel(%q) = true, want false", in)
		}
	}
}
