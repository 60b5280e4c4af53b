// Package reading implements the conversation that shows a user a randomly
// selected passage and collects a voice recording of them reading it. A
// successful recording is uploaded to object storage under a derived name;
// anything that is not a recording re-prompts without losing the turn.
package reading

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	"log/slog"

	"github.com/tatlingua/speechbot/core/logger"
	"github.com/tatlingua/speechbot/core/telegram/state"
	"github.com/tatlingua/speechbot/internal/conv"
	"github.com/tatlingua/speechbot/internal/upload"
)

// StateAwaitAudio is the single waiting state of the reading conversation:
// a passage has been shown and a recording is expected.
const StateAwaitAudio state.State = "reading_await_audio"

// RerollUnique is the callback key of the "different passage" inline button.
const RerollUnique = "read_reroll"

const (
	msgThanks      = "Спасибо за Ваш вклад в наше исследование. Можете прочитать еще раз: /read"
	msgBadAudio    = "Мы не смогли распознать аудио. Отправьте, пожалуйста, еще раз."
	msgStop        = "Вы можете повторить попытку в любое время. Только введите: /read"
	msgUploadFail  = "Не получилось сохранить запись. Отправьте, пожалуйста, еще раз."
	msgEmptyCorpus = "Тексты еще загружаются. Попробуйте, пожалуйста, чуть позже."
	rerollLabel    = "🔁 Другой текст"
)

var readKeyboard = [][]string{{"/read"}}

// Corpus provides read-only access to the passage texts.
type Corpus interface {
	Total() int
	Text(ctx context.Context, id int) (string, error)
}

// Uploader stores a local recording under the given object name.
type Uploader interface {
	Upload(ctx context.Context, localPath, objectName string, binary bool) error
}

// Machine drives the reading conversation for all users. Collaborators and
// configuration are injected at construction; nothing is shared through
// package state.
type Machine struct {
	sessions state.Manager
	corpus   Corpus
	uploader Uploader
	tempDir  string

	// intn is the random source for passage selection; replaced in tests.
	intn func(n int) int
}

// New constructs a reading conversation machine. Downloaded recordings are
// staged in tempDir before upload and removed afterwards.
func New(sessions state.Manager, corpus Corpus, uploader Uploader, tempDir string) *Machine {
	return &Machine{
		sessions: sessions,
		corpus:   corpus,
		uploader: uploader,
		tempDir:  tempDir,
		intn:     rand.Intn,
	}
}

// Owns reports whether st belongs to the reading conversation.
func (m *Machine) Owns(st state.State) bool {
	return st == StateAwaitAudio
}

func rerollRows(textID int) [][]conv.Button {
	return [][]conv.Button{{{
		Text:   rerollLabel,
		Unique: RerollUnique,
		Data:   strconv.Itoa(textID),
	}}}
}

// Begin enters the conversation: picks a passage uniformly at random from
// [1, totalTexts], stores its id in the session, and shows the text.
func (m *Machine) Begin(ctx context.Context, userID int64) (conv.Reply, error) {
	total := m.corpus.Total()
	if total <= 0 {
		return conv.Reply{Text: msgEmptyCorpus, RemoveKeyboard: true}, nil
	}

	id := m.intn(total) + 1
	body, err := m.corpus.Text(ctx, id)
	if err != nil {
		return conv.Reply{Text: msgEmptyCorpus, RemoveKeyboard: true},
			fmt.Errorf("reading: passage %d: %w", id, err)
	}

	m.sessions.SetTemp(userID, conv.FieldTextID, id)
	m.sessions.SetState(userID, StateAwaitAudio)
	logger.Debug(ctx, "service.reading", "fsm.begin",
		slog.Int64("user_id", userID),
		slog.Int("text_id", id),
		slog.Int("total_texts", total),
	)
	return conv.Reply{Text: body, Inline: rerollRows(id)}, nil
}

// Reroll replaces the current passage with a different one while the user
// is still waiting to record. Outside the waiting state it is a no-op: the
// button belongs to an already finished turn.
func (m *Machine) Reroll(ctx context.Context, userID int64, prev int) (conv.Reply, error) {
	if m.sessions.GetState(userID) != StateAwaitAudio {
		return conv.Reply{}, nil
	}
	total := m.corpus.Total()
	if total <= 0 {
		return conv.Reply{Text: msgEmptyCorpus, RemoveKeyboard: true}, nil
	}

	id := m.intn(total) + 1
	if total > 1 {
		for id == prev {
			id = m.intn(total) + 1
		}
	}
	body, err := m.corpus.Text(ctx, id)
	if err != nil {
		return conv.Reply{Text: msgEmptyCorpus, RemoveKeyboard: true},
			fmt.Errorf("reading: passage %d: %w", id, err)
	}

	m.sessions.SetTemp(userID, conv.FieldTextID, id)
	logger.Debug(ctx, "service.reading", "fsm.reroll",
		slog.Int64("user_id", userID),
		slog.Int("text_id", id),
	)
	return conv.Reply{Text: body, Inline: rerollRows(id)}, nil
}

// Stop abandons the in-progress turn, discarding the selected passage.
func (m *Machine) Stop(ctx context.Context, userID int64) conv.Reply {
	logger.Debug(ctx, "service.reading", "fsm.stop",
		slog.Int64("user_id", userID),
	)
	m.sessions.ClearState(userID)
	m.sessions.ClearTemp(userID, conv.FieldTextID)
	return conv.Reply{Text: msgStop, Keyboard: readKeyboard}
}

// Step handles one turn in the waiting state. Only voice/audio payloads are
// accepted: the recording is fetched to a temp file, uploaded under a
// derived object name, and the session returns to idle. Any failure keeps
// the user in the waiting state with a corrective prompt.
func (m *Machine) Step(ctx context.Context, ev conv.Event) (conv.Reply, error) {
	if !ev.IsRecording() {
		return conv.Reply{Text: msgBadAudio, RemoveKeyboard: true}, nil
	}

	textID, ok := m.sessions.GetTempInt(ev.UserID, conv.FieldTextID)
	if !ok {
		// Begin always stores the id before entering this state; a missing
		// value means the session was tampered with. Restart the turn.
		m.sessions.ClearState(ev.UserID)
		return conv.Reply{Text: msgStop, Keyboard: readKeyboard},
			fmt.Errorf("reading: no passage id for user %d", ev.UserID)
	}

	dest := filepath.Join(m.tempDir, fmt.Sprintf("recording_%d.mp3", ev.UserID))
	defer os.Remove(dest)

	if err := ev.Fetch(ctx, dest); err != nil {
		return conv.Reply{Text: msgUploadFail},
			fmt.Errorf("reading: fetch recording: %w", err)
	}

	name := upload.ObjectName(m.profileFields(ev.UserID, textID))
	if err := m.uploader.Upload(ctx, dest, name, true); err != nil {
		return conv.Reply{Text: msgUploadFail},
			fmt.Errorf("reading: upload recording: %w", err)
	}

	m.sessions.ClearState(ev.UserID)
	m.sessions.ClearTemp(ev.UserID, conv.FieldTextID)
	logger.Info(ctx, "service.reading", "recording.saved",
		slog.String("status", "ok"),
		slog.Int64("user_id", ev.UserID),
		slog.Int("text_id", textID),
		slog.String("object_key", name),
	)
	return conv.Reply{Text: msgThanks, Keyboard: readKeyboard}, nil
}

func (m *Machine) profileFields(userID int64, textID int) upload.Fields {
	f := upload.Fields{TextID: textID}
	f.Gender, _ = m.sessions.GetTempString(userID, conv.FieldGender)
	f.Age, _ = m.sessions.GetTempString(userID, conv.FieldAge)
	f.Tatar, _ = m.sessions.GetTempString(userID, conv.FieldTatar)
	f.Russian, _ = m.sessions.GetTempString(userID, conv.FieldRussian)
	return f
}
