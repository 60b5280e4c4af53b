package corpus

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "corpus.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if _, err := s.db.Exec(`CREATE TABLE texts (id INTEGER PRIMARY KEY, body TEXT NOT NULL)`); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return s
}

func TestStoreInsertAndRead(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	passages := []string{"первый", "второй", "третий"}
	if err := s.InsertAll(ctx, passages); err != nil {
		t.Fatalf("InsertAll: %v", err)
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != len(passages) {
		t.Fatalf("count = %d, want %d", n, len(passages))
	}

	if err := s.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got := s.Total(); got != len(passages) {
		t.Fatalf("Total = %d, want %d", got, len(passages))
	}

	for i, want := range passages {
		body, err := s.Text(ctx, i+1)
		if err != nil {
			t.Fatalf("Text(%d): %v", i+1, err)
		}
		if body != want {
			t.Errorf("Text(%d) = %q, want %q", i+1, body, want)
		}
	}
}

func TestStoreTextNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Text(context.Background(), 99)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestStoreTotalBeforeReload(t *testing.T) {
	s := newTestStore(t)
	if got := s.Total(); got != 0 {
		t.Fatalf("Total before Reload = %d, want 0", got)
	}
}
