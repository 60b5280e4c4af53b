package corpus

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSeedScrapesEmptyStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `<table>
			<tr><td class="text">первый текст</td></tr>
			<tr><td class="text">второй текст</td></tr>
		</table>`)
	}))
	defer srv.Close()

	s := newTestStore(t)
	ctx := context.Background()

	if err := Seed(ctx, s, NewScraper(srv.Client(), []string{srv.URL})); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if got := s.Total(); got != 2 {
		t.Fatalf("Total = %d, want 2", got)
	}
	body, err := s.Text(ctx, 1)
	if err != nil {
		t.Fatalf("Text(1): %v", err)
	}
	if body != "первый текст" {
		t.Fatalf("Text(1) = %q, want first scraped passage", body)
	}
}

func TestSeedReusesPopulatedStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.InsertAll(ctx, []string{"закэшированный текст"}); err != nil {
		t.Fatalf("InsertAll: %v", err)
	}

	// The scraper must never be consulted when the store is populated;
	// this server fails any request to prove it.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "must not be called", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if err := Seed(ctx, s, NewScraper(srv.Client(), []string{srv.URL})); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if got := s.Total(); got != 1 {
		t.Fatalf("Total = %d, want 1", got)
	}
}

func TestSeedFailsOnEmptyScrape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `<table><tr><td class="other">ничего</td></tr></table>`)
	}))
	defer srv.Close()

	s := newTestStore(t)
	if err := Seed(context.Background(), s, NewScraper(srv.Client(), []string{srv.URL})); err == nil {
		t.Fatal("expected an error for an empty scrape")
	}
}
