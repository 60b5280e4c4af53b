package corpus

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"log/slog"

	"github.com/tatlingua/speechbot/core/logger"
)

func TestMain(m *testing.M) {
	// The legacy component loggers are wired only by logger.InitLogger,
	// which tests do not run.
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	logger.CORPUS = discard
	logger.SEED = discard
	logger.MIG = discard
	os.Exit(m.Run())
}

const pageHTML = `<html><body><table>
<tr><td class="num">1</td><td class="text">Первый текст для чтения.</td></tr>
<tr><td class="num">2</td><td class="text">
	Второй текст, с отступами.
</td></tr>
<tr><td class="num">3</td><td class="text">   </td></tr>
<tr><td class="num">4</td><td class="other">не текст</td></tr>
</table></body></html>`

func TestExtractPassages(t *testing.T) {
	texts, err := extractPassages(strings.NewReader(pageHTML))
	if err != nil {
		t.Fatalf("extractPassages: %v", err)
	}
	want := []string{"Первый текст для чтения.", "Второй текст, с отступами."}
	if len(texts) != len(want) {
		t.Fatalf("got %d passages, want %d: %v", len(texts), len(want), texts)
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Errorf("passage %d = %q, want %q", i, texts[i], want[i])
		}
	}
}

func TestPassagesFetchesAllPagesInOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a":
			io.WriteString(w, `<table><tr><td class="text">из первой страницы</td></tr></table>`)
		case "/b":
			io.WriteString(w, `<table><tr><td class="text">из второй страницы</td></tr></table>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	s := NewScraper(srv.Client(), []string{srv.URL + "/a", srv.URL + "/b"})
	texts, err := s.Passages(context.Background())
	if err != nil {
		t.Fatalf("Passages: %v", err)
	}
	want := []string{"из первой страницы", "из второй страницы"}
	if len(texts) != len(want) || texts[0] != want[0] || texts[1] != want[1] {
		t.Fatalf("texts = %v, want %v", texts, want)
	}
}

func TestPassagesAbortsOnPageFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok" {
			io.WriteString(w, `<table><tr><td class="text">текст</td></tr></table>`)
			return
		}
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewScraper(srv.Client(), []string{srv.URL + "/ok", srv.URL + "/broken"})
	texts, err := s.Passages(context.Background())
	if err == nil {
		t.Fatal("expected an error for the failing page")
	}
	if texts != nil {
		t.Fatalf("partial result returned: %v", texts)
	}
}
