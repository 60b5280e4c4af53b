package upload

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestObjectName(t *testing.T) {
	name := ObjectName(Fields{
		TextID:  42,
		Age:     "25",
		Gender:  "Мужской",
		Tatar:   "Высокий",
		Russian: "Носитель",
	})

	const prefix = "42_25_Мужской_Высокий_Носитель_"
	if !strings.HasPrefix(name, prefix) {
		t.Fatalf("name = %q, want prefix %q", name, prefix)
	}
	if !strings.HasSuffix(name, ".mp3") {
		t.Fatalf("name = %q, want .mp3 suffix", name)
	}

	token := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".mp3")
	if _, err := uuid.Parse(token); err != nil {
		t.Fatalf("token %q is not a UUID: %v", token, err)
	}
}

func TestObjectNameDefaults(t *testing.T) {
	name := ObjectName(Fields{TextID: 7})
	if !strings.HasPrefix(name, "7_0_not_not_not_") {
		t.Fatalf("name = %q, want prefix 7_0_not_not_not_", name)
	}
}

func TestObjectNameUnique(t *testing.T) {
	f := Fields{TextID: 1, Age: "30", Gender: "Женский", Tatar: "Носитель", Russian: "Носитель"}
	if ObjectName(f) == ObjectName(f) {
		t.Fatal("two derived names collided")
	}
}
