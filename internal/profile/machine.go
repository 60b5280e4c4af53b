// Package profile implements the conversation that collects a speaker's
// demographic profile: gender, age, and self-reported Tatar and Russian
// proficiency. The flow is linear; invalid answers re-prompt the same state
// and never abort the conversation.
package profile

import (
	"context"

	"log/slog"

	"github.com/tatlingua/speechbot/core/logger"
	"github.com/tatlingua/speechbot/core/telegram/state"
	"github.com/tatlingua/speechbot/internal/conv"
)

// Conversation states, in flow order.
const (
	StateGender       state.State = "profile_gender"
	StateAge          state.State = "profile_age"
	StateTatarLevel   state.State = "profile_tatar_level"
	StateRussianLevel state.State = "profile_russian_level"
)

const (
	msgBegin      = "Отлично! Для начала разберемся с полом."
	msgAskAge     = "Отлично, с полом определились. Давайте узнаем Ваш возраст."
	msgBadAge     = "Возраст введен неверно. Вводите свой настоящий возраст числом."
	msgAskTatar   = "Отлично! Теперь давай узнаем твой уровень татарского языка."
	msgBadTatar   = "Мы не распознали ваше владение татарским, введите его еще раз, пожалуйста."
	msgAskRussian = "Отлично! Теперь давай узнаем твой уровень русского языка."
	msgBadRussian = "Мы не распознали твой уровень русского языка, введи его еще раз."
	msgConclude   = "Спасибо за обратную связь! Мы будем очень благодарны, если вы прочтете что-то из наших текстов. Для этого введите команду: /read"
	msgTextOnly   = "Пожалуйста, ответьте текстовым сообщением."
)

var (
	genderKeyboard = [][]string{{"Мужской", "Женский"}}
	levelKeyboard  = [][]string{{Levels[0], Levels[1]}, {Levels[2], Levels[3]}}
	readKeyboard   = [][]string{{"/read"}}
)

// Machine drives the profile conversation for all users. Per-user position
// and collected answers live in the injected session manager.
type Machine struct {
	sessions state.Manager
}

// New constructs a profile conversation machine.
func New(sessions state.Manager) *Machine {
	return &Machine{sessions: sessions}
}

// Owns reports whether st belongs to the profile conversation.
func (m *Machine) Owns(st state.State) bool {
	switch st {
	case StateGender, StateAge, StateTatarLevel, StateRussianLevel:
		return true
	}
	return false
}

// Begin enters the conversation, prompting for gender.
func (m *Machine) Begin(ctx context.Context, userID int64) conv.Reply {
	m.sessions.SetState(userID, StateGender)
	logger.Debug(ctx, "service.profile", "fsm.begin",
		slog.Int64("user_id", userID),
	)
	return conv.Reply{Text: msgBegin, Keyboard: genderKeyboard}
}

// Exit terminates the conversation immediately from any state. Pending
// input for the interrupted state is discarded; answers stored by earlier
// states are kept.
func (m *Machine) Exit(ctx context.Context, userID int64) conv.Reply {
	logger.Debug(ctx, "service.profile", "fsm.exit",
		slog.Int64("user_id", userID),
		slog.String("state", string(m.sessions.GetState(userID))),
	)
	m.sessions.ClearState(userID)
	return conv.Reply{Text: msgConclude, Keyboard: readKeyboard}
}

// Step advances the conversation by one turn. Validation failures re-prompt
// the current state; no input ever moves the conversation backwards.
func (m *Machine) Step(ctx context.Context, ev conv.Event) conv.Reply {
	current := m.sessions.GetState(ev.UserID)

	if ev.Kind != conv.KindText {
		return conv.Reply{Text: msgTextOnly}
	}

	var reply conv.Reply
	switch current {
	case StateGender:
		m.sessions.SetTemp(ev.UserID, conv.FieldGender, ev.Text)
		m.sessions.SetState(ev.UserID, StateAge)
		reply = conv.Reply{Text: msgAskAge, RemoveKeyboard: true}

	case StateAge:
		if !IsValidAge(ev.Text) {
			return conv.Reply{Text: msgBadAge}
		}
		m.sessions.SetTemp(ev.UserID, conv.FieldAge, ev.Text)
		m.sessions.SetState(ev.UserID, StateTatarLevel)
		reply = conv.Reply{Text: msgAskTatar, Keyboard: levelKeyboard}

	case StateTatarLevel:
		if !IsValidLevel(ev.Text) {
			return conv.Reply{Text: msgBadTatar, Keyboard: levelKeyboard}
		}
		m.sessions.SetTemp(ev.UserID, conv.FieldTatar, ev.Text)
		m.sessions.SetState(ev.UserID, StateRussianLevel)
		reply = conv.Reply{Text: msgAskRussian, Keyboard: levelKeyboard}

	case StateRussianLevel:
		if !IsValidLevel(ev.Text) {
			return conv.Reply{Text: msgBadRussian, Keyboard: levelKeyboard}
		}
		m.sessions.SetTemp(ev.UserID, conv.FieldRussian, ev.Text)
		m.sessions.ClearState(ev.UserID)
		reply = conv.Reply{Text: msgConclude, Keyboard: readKeyboard}

	default:
		return conv.Reply{}
	}

	logger.Debug(ctx, "service.profile", "fsm.step",
		slog.Int64("user_id", ev.UserID),
		slog.String("state", string(current)),
		slog.String("next", string(m.sessions.GetState(ev.UserID))),
	)
	return reply
}
