package app

import (
	"context"

	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/tatlingua/speechbot/core/telegram/helpers"
	"github.com/tatlingua/speechbot/core/telegram/keyboard"
	"github.com/tatlingua/speechbot/internal/conv"
)

// eventFrom maps an inbound telebot update to a transport-agnostic event.
// Voice and audio payloads get a fetch hook that downloads the file through
// the bot API when (and only when) a machine decides to accept them.
func eventFrom(c tele.Context) conv.Event {
	ev := conv.Event{
		UserID: c.Sender().ID,
		Kind:   conv.KindText,
		Text:   c.Text(),
	}

	msg := c.Message()
	if msg == nil {
		return ev
	}
	switch {
	case msg.Voice != nil:
		ev.Kind = conv.KindVoice
		file := msg.Voice.File
		ev.Fetch = func(_ context.Context, dest string) error {
			return c.Bot().Download(&file, dest)
		}
	case msg.Audio != nil:
		ev.Kind = conv.KindAudio
		file := msg.Audio.File
		ev.Fetch = func(_ context.Context, dest string) error {
			return c.Bot().Download(&file, dest)
		}
	case msg.Document != nil:
		ev.Kind = conv.KindDocument
	}
	return ev
}

// send delivers a machine reply. A zero-value reply means the turn produced
// nothing to say (e.g. a stale callback) and is dropped silently.
func send(c tele.Context, r conv.Reply) error {
	if r.Text == "" {
		return nil
	}
	if markup := replyMarkup(r); markup != nil {
		return tghelpers.SendText(c, r.Text, &tele.SendOptions{ReplyMarkup: markup})
	}
	return tghelpers.SendText(c, r.Text)
}

func replyMarkup(r conv.Reply) *tele.ReplyMarkup {
	switch {
	case len(r.Inline) > 0:
		rows := make([][]keyboard.InlineBtn, 0, len(r.Inline))
		for _, row := range r.Inline {
			btns := make([]keyboard.InlineBtn, 0, len(row))
			for _, b := range row {
				btns = append(btns, keyboard.InlineBtn{Text: b.Text, Unique: b.Unique, Data: b.Data})
			}
			rows = append(rows, btns)
		}
		return keyboard.InlineButtonsRows(rows...)
	case len(r.Keyboard) > 0:
		return keyboard.ReplyButtons(r.Keyboard...)
	case r.RemoveKeyboard:
		return keyboard.RemoveKeyboard()
	}
	return nil
}
