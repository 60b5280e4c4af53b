// Package conv defines transport-agnostic conversation events and replies.
// State machines consume Events and produce Replies without touching the
// Telegram API, so they can be exercised in tests without a live bot.
package conv

import "context"

// Kind tags the payload type of an inbound event.
type Kind string

const (
	KindCommand  Kind = "command"
	KindText     Kind = "text"
	KindVoice    Kind = "voice"
	KindAudio    Kind = "audio"
	KindDocument Kind = "document"
)

// FetchFunc downloads the event's media payload to the given local path.
type FetchFunc func(ctx context.Context, dest string) error

// Event is one inbound user turn as seen by a conversation machine.
type Event struct {
	UserID int64
	Kind   Kind
	Text   string

	// Fetch is set only for voice/audio events.
	Fetch FetchFunc
}

// IsRecording reports whether the event carries a downloadable recording.
func (e Event) IsRecording() bool {
	return (e.Kind == KindVoice || e.Kind == KindAudio) && e.Fetch != nil
}

// Button describes one inline keyboard button.
type Button struct {
	Text   string
	Unique string
	Data   string
}

// Reply is the outbound message a machine asks the transport to deliver.
type Reply struct {
	Text string

	// Keyboard holds reply keyboard rows; empty means no keyboard change
	// unless RemoveKeyboard is set.
	Keyboard       [][]string
	RemoveKeyboard bool

	// Inline holds inline button rows attached to the message.
	Inline [][]Button
}

// Session field keys shared by the profile and reading machines.
const (
	FieldGender  = "gender"
	FieldAge     = "age"
	FieldTatar   = "tatar"
	FieldRussian = "russian"
	FieldTextID  = "text"
)
