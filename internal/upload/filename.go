package upload

import (
	"fmt"

	"github.com/google/uuid"
)

// Sentinels substituted for profile fields that were never collected.
const (
	defaultAge   = "0"
	defaultLabel = "not"
)

// Fields carries the session attributes encoded into an object name.
type Fields struct {
	TextID  int
	Age     string
	Gender  string
	Tatar   string
	Russian string
}

// ObjectName derives the object name for one uploaded recording:
//
//	{text}_{age}_{gender}_{tatar}_{russian}_{uuid}.mp3
//
// Missing profile fields fall back to fixed sentinels before concatenation,
// so the name is always well-formed. The random UUID component makes every
// call's result unique even for identical profile data.
func ObjectName(f Fields) string {
	age := f.Age
	if age == "" {
		age = defaultAge
	}
	gender := f.Gender
	if gender == "" {
		gender = defaultLabel
	}
	tatar := f.Tatar
	if tatar == "" {
		tatar = defaultLabel
	}
	russian := f.Russian
	if russian == "" {
		russian = defaultLabel
	}
	return fmt.Sprintf("%d_%s_%s_%s_%s_%s.mp3", f.TextID, age, gender, tatar, russian, uuid.New())
}
