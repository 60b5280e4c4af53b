package corpus

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/tatlingua/speechbot/core/logger"
)

// Seed populates an empty store from the scraper and refreshes the cached
// passage count. A non-empty store is reused as-is, so the expensive scrape
// happens only on the first run against a fresh corpus file.
func Seed(ctx context.Context, store *Store, scraper *Scraper) error {
	existing, err := store.Count(ctx)
	if err != nil {
		return err
	}
	if existing > 0 {
		logger.SEED.Info("corpus reused",
			slog.String("event", "summary"),
			slog.String("cache", "hit"),
			slog.Int("total_texts", existing),
		)
		return store.Reload(ctx)
	}

	start := time.Now()
	passages, err := scraper.Passages(ctx)
	if err != nil {
		return err
	}
	if len(passages) == 0 {
		return fmt.Errorf("corpus seed: no passages extracted")
	}
	if err := store.InsertAll(ctx, passages); err != nil {
		return err
	}
	if err := store.Reload(ctx); err != nil {
		return err
	}

	logger.SEED.Info("corpus seeded",
		slog.String("event", "summary"),
		slog.String("cache", "miss"),
		slog.Int("total_texts", store.Total()),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return nil
}
