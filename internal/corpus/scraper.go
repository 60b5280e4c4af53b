package corpus

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/PuerkitoBio/goquery"

	"github.com/tatlingua/speechbot/core/logger"
)

// textCellSelector matches the table cells holding passage texts on the
// vocabulary pages the corpus is scraped from.
const textCellSelector = "td.text"

// Scraper extracts passage texts from remote vocabulary pages.
type Scraper struct {
	client *http.Client
	urls   []string
}

// NewScraper builds a scraper over the given page URLs.
// A nil client gets a default with a conservative timeout.
func NewScraper(client *http.Client, urls []string) *Scraper {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Scraper{client: client, urls: urls}
}

// Passages fetches every configured page and returns all extracted texts in
// page order. Any page failure aborts the whole run: a partially scraped
// corpus would silently shrink the id range.
func (s *Scraper) Passages(ctx context.Context) ([]string, error) {
	var out []string
	for _, url := range s.urls {
		texts, err := s.fetchPage(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("corpus scrape %s: %w", url, err)
		}
		logger.SEED.Debug("page scraped",
			slog.String("event", "scrape"),
			slog.String("source_url", url),
			slog.Int("count", len(texts)),
		)
		out = append(out, texts...)
	}
	return out, nil
}

func (s *Scraper) fetchPage(ctx context.Context, url string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}
	return extractPassages(resp.Body)
}

// extractPassages pulls the text of every passage cell out of an HTML page.
func extractPassages(body io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, err
	}
	var texts []string
	doc.Find(textCellSelector).Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text != "" {
			texts = append(texts, text)
		}
	})
	return texts, nil
}
