package profile

// Levels are the proficiency labels offered on the level keyboard, in
// keyboard order. Matching is exact and case-sensitive: answers normally
// arrive from the reply keyboard verbatim, and a typed answer must
// reproduce one of the labels to be accepted.
var Levels = []string{"Начинающий", "Продолжающий", "Высокий", "Носитель"}

// IsValidAge reports whether text is an acceptable age answer: decimal
// digits only, at most two of them. No range bound is applied, so both
// "00" and "99" pass.
func IsValidAge(text string) bool {
	if len(text) == 0 || len(text) > 2 {
		return false
	}
	for i := 0; i < len(text); i++ {
		if text[i] < '0' || text[i] > '9' {
			return false
		}
	}
	return true
}

// IsValidLevel reports whether text is exactly one of the proficiency labels.
func IsValidLevel(text string) bool {
	for _, l := range Levels {
		if text == l {
			return true
		}
	}
	return false
}
