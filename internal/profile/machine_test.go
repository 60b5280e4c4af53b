package profile

import (
	"context"
	"testing"

	"github.com/tatlingua/speechbot/core/telegram/state"
	"github.com/tatlingua/speechbot/internal/conv"
)

func textEvent(userID int64, text string) conv.Event {
	return conv.Event{UserID: userID, Kind: conv.KindText, Text: text}
}

func TestProfileHappyPath(t *testing.T) {
	sessions := state.NewMemoryManager()
	m := New(sessions)
	ctx := context.Background()
	const user int64 = 1

	m.Begin(ctx, user)
	if got := sessions.GetState(user); got != StateGender {
		t.Fatalf("after Begin state = %s, want %s", got, StateGender)
	}

	steps := []struct {
		answer string
		next   state.State
	}{
		{"Мужской", StateAge},
		{"25", StateTatarLevel},
		{"Высокий", StateRussianLevel},
	}
	for _, step := range steps {
		m.Step(ctx, textEvent(user, step.answer))
		if got := sessions.GetState(user); got != step.next {
			t.Fatalf("after %q state = %s, want %s", step.answer, got, step.next)
		}
	}

	reply := m.Step(ctx, textEvent(user, "Носитель"))
	if sessions.InProgress(user) {
		t.Fatalf("conversation still in progress after final answer, state = %s", sessions.GetState(user))
	}
	if reply.Text == "" {
		t.Fatal("expected a concluding message")
	}

	want := map[string]string{
		conv.FieldGender:  "Мужской",
		conv.FieldAge:     "25",
		conv.FieldTatar:   "Высокий",
		conv.FieldRussian: "Носитель",
	}
	for field, expected := range want {
		got, ok := sessions.GetTempString(user, field)
		if !ok || got != expected {
			t.Errorf("field %s = %q (ok=%v), want %q", field, got, ok, expected)
		}
	}
}

func TestProfileInvalidAnswersReprompt(t *testing.T) {
	sessions := state.NewMemoryManager()
	m := New(sessions)
	ctx := context.Background()
	const user int64 = 2

	m.Begin(ctx, user)
	m.Step(ctx, textEvent(user, "Женский"))

	for _, bad := range []string{"100", "abc", ""} {
		reply := m.Step(ctx, textEvent(user, bad))
		if got := sessions.GetState(user); got != StateAge {
			t.Fatalf("age %q moved state to %s, want %s", bad, got, StateAge)
		}
		if reply.Text != msgBadAge {
			t.Fatalf("age %q reply = %q, want %q", bad, reply.Text, msgBadAge)
		}
		// The keyboard was already removed when entering the age state;
		// retries are plain re-prompts.
		if reply.RemoveKeyboard {
			t.Fatalf("age %q re-prompt removes the keyboard again", bad)
		}
		if _, ok := sessions.GetTempString(user, conv.FieldAge); ok {
			t.Fatalf("invalid age %q was stored", bad)
		}
	}

	m.Step(ctx, textEvent(user, "42"))
	reply := m.Step(ctx, textEvent(user, "Эксперт"))
	if got := sessions.GetState(user); got != StateTatarLevel {
		t.Fatalf("unknown level moved state to %s, want %s", got, StateTatarLevel)
	}
	if reply.Text != msgBadTatar {
		t.Fatalf("unknown level reply = %q, want %q", reply.Text, msgBadTatar)
	}
}

func TestProfileRejectsNonTextInput(t *testing.T) {
	sessions := state.NewMemoryManager()
	m := New(sessions)
	ctx := context.Background()
	const user int64 = 3

	m.Begin(ctx, user)
	reply := m.Step(ctx, conv.Event{UserID: user, Kind: conv.KindVoice})
	if got := sessions.GetState(user); got != StateGender {
		t.Fatalf("voice input moved state to %s, want %s", got, StateGender)
	}
	if reply.Text != msgTextOnly {
		t.Fatalf("reply = %q, want %q", reply.Text, msgTextOnly)
	}
	if _, ok := sessions.GetTempString(user, conv.FieldGender); ok {
		t.Fatal("voice input was stored as gender")
	}
}

func TestProfileExitFromEveryState(t *testing.T) {
	states := []state.State{StateGender, StateAge, StateTatarLevel, StateRussianLevel}
	for _, st := range states {
		sessions := state.NewMemoryManager()
		m := New(sessions)
		ctx := context.Background()
		const user int64 = 4

		sessions.SetState(user, st)
		reply := m.Exit(ctx, user)
		if sessions.InProgress(user) {
			t.Errorf("exit from %s left conversation in progress", st)
		}
		if reply.Text != msgConclude {
			t.Errorf("exit from %s reply = %q, want %q", st, reply.Text, msgConclude)
		}
	}
}

func TestProfileExitKeepsEarlierAnswers(t *testing.T) {
	sessions := state.NewMemoryManager()
	m := New(sessions)
	ctx := context.Background()
	const user int64 = 5

	m.Begin(ctx, user)
	m.Step(ctx, textEvent(user, "Мужской"))
	m.Exit(ctx, user)

	got, ok := sessions.GetTempString(user, conv.FieldGender)
	if !ok || got != "Мужской" {
		t.Fatalf("gender after exit = %q (ok=%v), want %q", got, ok, "Мужской")
	}
}

func TestProfileOwns(t *testing.T) {
	m := New(state.NewMemoryManager())
	for _, st := range []state.State{StateGender, StateAge, StateTatarLevel, StateRussianLevel} {
		if !m.Owns(st) {
			t.Errorf("Owns(%s) = false, want true", st)
		}
	}
	if m.Owns(state.StateIdle) || m.Owns("reading_await_audio") {
		t.Error("Owns accepted a foreign state")
	}
}
