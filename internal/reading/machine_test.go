package reading

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/tatlingua/speechbot/core/telegram/state"
	"github.com/tatlingua/speechbot/internal/conv"
)

type fakeCorpus struct {
	total int
	texts map[int]string
	err   error
}

func (f *fakeCorpus) Total() int { return f.total }

func (f *fakeCorpus) Text(_ context.Context, id int) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if body, ok := f.texts[id]; ok {
		return body, nil
	}
	return fmt.Sprintf("passage %d", id), nil
}

type fakeUploader struct {
	names []string
	paths []string
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, localPath, objectName string, _ bool) error {
	if f.err != nil {
		return f.err
	}
	f.paths = append(f.paths, localPath)
	f.names = append(f.names, objectName)
	return nil
}

func newTestMachine(t *testing.T, corpus *fakeCorpus, uploader *fakeUploader) (*Machine, state.Manager) {
	t.Helper()
	sessions := state.NewMemoryManager()
	return New(sessions, corpus, uploader, t.TempDir()), sessions
}

func recordingEvent(userID int64, content string) conv.Event {
	return conv.Event{
		UserID: userID,
		Kind:   conv.KindVoice,
		Fetch: func(_ context.Context, dest string) error {
			return os.WriteFile(dest, []byte(content), 0o644)
		},
	}
}

func TestBeginSelectsWithinRange(t *testing.T) {
	const total = 1000
	m, sessions := newTestMachine(t, &fakeCorpus{total: total}, &fakeUploader{})
	ctx := context.Background()
	const user int64 = 1

	seen := make(map[int]bool)
	for i := 0; i < 10000; i++ {
		if _, err := m.Begin(ctx, user); err != nil {
			t.Fatalf("Begin: %v", err)
		}
		id, ok := sessions.GetTempInt(user, conv.FieldTextID)
		if !ok {
			t.Fatal("no passage id stored after Begin")
		}
		if id < 1 || id > total {
			t.Fatalf("passage id %d out of [1, %d]", id, total)
		}
		seen[id] = true
	}
	// With uniform draws, 10000 samples over 1000 ids leave no id unseen
	// (miss probability per id is (999/1000)^10000, about 4.5e-5).
	if len(seen) != total {
		t.Fatalf("10000 draws covered %d of %d ids", len(seen), total)
	}
	if got := sessions.GetState(user); got != StateAwaitAudio {
		t.Fatalf("state after Begin = %s, want %s", got, StateAwaitAudio)
	}
}

func TestBeginShowsPassageWithRerollButton(t *testing.T) {
	m, _ := newTestMachine(t, &fakeCorpus{total: 3, texts: map[int]string{2: "второй текст"}}, &fakeUploader{})
	m.intn = func(int) int { return 1 }

	reply, err := m.Begin(context.Background(), 1)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if reply.Text != "второй текст" {
		t.Fatalf("reply text = %q, want passage body", reply.Text)
	}
	if len(reply.Inline) != 1 || len(reply.Inline[0]) != 1 {
		t.Fatalf("expected one inline button, got %+v", reply.Inline)
	}
	btn := reply.Inline[0][0]
	if btn.Unique != RerollUnique || btn.Data != "2" {
		t.Fatalf("button = %+v, want unique %q data %q", btn, RerollUnique, "2")
	}
}

func TestBeginEmptyCorpus(t *testing.T) {
	m, sessions := newTestMachine(t, &fakeCorpus{total: 0}, &fakeUploader{})

	reply, err := m.Begin(context.Background(), 1)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if reply.Text != msgEmptyCorpus {
		t.Fatalf("reply = %q, want %q", reply.Text, msgEmptyCorpus)
	}
	if sessions.InProgress(1) {
		t.Fatal("empty corpus started a conversation")
	}
}

func TestStepNonRecordingKeepsState(t *testing.T) {
	uploader := &fakeUploader{}
	m, sessions := newTestMachine(t, &fakeCorpus{total: 5}, uploader)
	m.intn = func(int) int { return 2 }
	ctx := context.Background()
	const user int64 = 1

	if _, err := m.Begin(ctx, user); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	for _, ev := range []conv.Event{
		{UserID: user, Kind: conv.KindText, Text: "вот текст"},
		{UserID: user, Kind: conv.KindDocument},
	} {
		reply, err := m.Step(ctx, ev)
		if err != nil {
			t.Fatalf("Step(%s): %v", ev.Kind, err)
		}
		if reply.Text != msgBadAudio {
			t.Fatalf("Step(%s) reply = %q, want %q", ev.Kind, reply.Text, msgBadAudio)
		}
		if got := sessions.GetState(user); got != StateAwaitAudio {
			t.Fatalf("Step(%s) moved state to %s", ev.Kind, got)
		}
		if id, _ := sessions.GetTempInt(user, conv.FieldTextID); id != 3 {
			t.Fatalf("Step(%s) changed passage id to %d", ev.Kind, id)
		}
	}
	if len(uploader.names) != 0 {
		t.Fatalf("unexpected uploads: %v", uploader.names)
	}
}

func TestStepUploadsAndIdles(t *testing.T) {
	uploader := &fakeUploader{}
	m, sessions := newTestMachine(t, &fakeCorpus{total: 10}, uploader)
	m.intn = func(int) int { return 6 }
	ctx := context.Background()
	const user int64 = 1

	sessions.SetTemp(user, conv.FieldGender, "Мужской")
	sessions.SetTemp(user, conv.FieldAge, "25")
	sessions.SetTemp(user, conv.FieldTatar, "Высокий")
	sessions.SetTemp(user, conv.FieldRussian, "Носитель")

	if _, err := m.Begin(ctx, user); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	reply, err := m.Step(ctx, recordingEvent(user, "voice bytes"))
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if reply.Text != msgThanks {
		t.Fatalf("reply = %q, want %q", reply.Text, msgThanks)
	}

	if len(uploader.names) != 1 {
		t.Fatalf("uploads = %d, want 1", len(uploader.names))
	}
	name := uploader.names[0]
	if !strings.HasPrefix(name, "7_25_Мужской_Высокий_Носитель_") {
		t.Fatalf("object name %q does not encode the profile", name)
	}
	if !strings.HasSuffix(name, ".mp3") {
		t.Fatalf("object name %q missing .mp3 suffix", name)
	}

	if sessions.InProgress(user) {
		t.Fatal("conversation still in progress after upload")
	}
	if _, ok := sessions.GetTempInt(user, conv.FieldTextID); ok {
		t.Fatal("passage id not cleared after upload")
	}
	if _, statErr := os.Stat(uploader.paths[0]); !os.IsNotExist(statErr) {
		t.Fatalf("temp recording %s not removed", uploader.paths[0])
	}
}

func TestStepUsesDefaultsWithoutProfile(t *testing.T) {
	uploader := &fakeUploader{}
	m, _ := newTestMachine(t, &fakeCorpus{total: 10}, uploader)
	m.intn = func(int) int { return 3 }
	ctx := context.Background()

	if _, err := m.Begin(ctx, 1); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if _, err := m.Step(ctx, recordingEvent(1, "voice bytes")); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if len(uploader.names) != 1 || !strings.HasPrefix(uploader.names[0], "4_0_not_not_not_") {
		t.Fatalf("object name %v, want prefix 4_0_not_not_not_", uploader.names)
	}
}

func TestStepUploadFailureKeepsState(t *testing.T) {
	uploader := &fakeUploader{err: errors.New("bucket unavailable")}
	m, sessions := newTestMachine(t, &fakeCorpus{total: 5}, uploader)
	m.intn = func(int) int { return 0 }
	ctx := context.Background()
	const user int64 = 1

	if _, err := m.Begin(ctx, user); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	reply, err := m.Step(ctx, recordingEvent(user, "voice bytes"))
	if err == nil {
		t.Fatal("expected upload error")
	}
	if reply.Text != msgUploadFail {
		t.Fatalf("reply = %q, want %q", reply.Text, msgUploadFail)
	}
	if got := sessions.GetState(user); got != StateAwaitAudio {
		t.Fatalf("upload failure moved state to %s", got)
	}
	if id, _ := sessions.GetTempInt(user, conv.FieldTextID); id != 1 {
		t.Fatalf("upload failure changed passage id to %d", id)
	}
}

func TestStepFetchFailureKeepsState(t *testing.T) {
	m, sessions := newTestMachine(t, &fakeCorpus{total: 5}, &fakeUploader{})
	m.intn = func(int) int { return 0 }
	ctx := context.Background()
	const user int64 = 1

	if _, err := m.Begin(ctx, user); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	ev := conv.Event{
		UserID: user,
		Kind:   conv.KindAudio,
		Fetch: func(context.Context, string) error {
			return errors.New("download interrupted")
		},
	}
	reply, err := m.Step(ctx, ev)
	if err == nil {
		t.Fatal("expected fetch error")
	}
	if reply.Text != msgUploadFail {
		t.Fatalf("reply = %q, want %q", reply.Text, msgUploadFail)
	}
	if got := sessions.GetState(user); got != StateAwaitAudio {
		t.Fatalf("fetch failure moved state to %s", got)
	}
}

func TestStop(t *testing.T) {
	m, sessions := newTestMachine(t, &fakeCorpus{total: 5}, &fakeUploader{})
	ctx := context.Background()
	const user int64 = 1

	if _, err := m.Begin(ctx, user); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	reply := m.Stop(ctx, user)
	if reply.Text != msgStop {
		t.Fatalf("reply = %q, want %q", reply.Text, msgStop)
	}
	if sessions.InProgress(user) {
		t.Fatal("conversation still in progress after Stop")
	}
	if _, ok := sessions.GetTempInt(user, conv.FieldTextID); ok {
		t.Fatal("passage id not cleared by Stop")
	}
}

func TestRerollPicksDifferentPassage(t *testing.T) {
	m, sessions := newTestMachine(t, &fakeCorpus{total: 5}, &fakeUploader{})
	draws := []int{2, 2, 4}
	m.intn = func(int) int {
		d := draws[0]
		draws = draws[1:]
		return d
	}
	ctx := context.Background()
	const user int64 = 1

	if _, err := m.Begin(ctx, user); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	// First reroll draw repeats the current passage and must be redrawn.
	reply, err := m.Reroll(ctx, user, 3)
	if err != nil {
		t.Fatalf("Reroll: %v", err)
	}
	id, _ := sessions.GetTempInt(user, conv.FieldTextID)
	if id != 5 {
		t.Fatalf("rerolled id = %d, want 5", id)
	}
	if len(reply.Inline) != 1 || reply.Inline[0][0].Data != "5" {
		t.Fatalf("reroll button data = %+v, want 5", reply.Inline)
	}
	if got := sessions.GetState(user); got != StateAwaitAudio {
		t.Fatalf("reroll moved state to %s", got)
	}
}

func TestRerollIgnoredOutsideConversation(t *testing.T) {
	m, sessions := newTestMachine(t, &fakeCorpus{total: 5}, &fakeUploader{})

	reply, err := m.Reroll(context.Background(), 1, 3)
	if err != nil {
		t.Fatalf("Reroll: %v", err)
	}
	if reply.Text != "" || len(reply.Inline) != 0 {
		t.Fatalf("stale reroll produced a reply: %+v", reply)
	}
	if sessions.InProgress(1) {
		t.Fatal("stale reroll started a conversation")
	}
}
