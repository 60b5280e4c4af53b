package bootstrap

import (
	"context"
	"fmt"
	"io"

	coreconfig "github.com/tatlingua/speechbot/core/config"
	"github.com/tatlingua/speechbot/core/logger"
)

// Options control the generic bootstrap pipeline shared between bots.
type Options struct {
	Config *coreconfig.Config

	LoggerInit func(*coreconfig.Config) error

	// OpenStore opens whatever local storage the bot needs (for this bot,
	// the passage corpus). The returned value is handed to each Seeder.
	OpenStore func() (io.Closer, error)
	Seeders   []Seeder
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	Store io.Closer
}

// Run initializes the logger, opens local storage, and runs registered seeders.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	var store io.Closer
	if opts.OpenStore != nil {
		s, err := opts.OpenStore()
		if err != nil {
			return nil, fmt.Errorf("bootstrap: storage initialization failed: %w", err)
		}
		store = s
	}

	for _, seeder := range opts.Seeders {
		if seeder == nil {
			continue
		}
		if err := seeder.Seed(ctx, store); err != nil {
			if store != nil {
				_ = store.Close()
			}
			return nil, fmt.Errorf("bootstrap: seeding failed: %w", err)
		}
	}

	return &Result{Store: store}, nil
}
