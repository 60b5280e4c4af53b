package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/tatlingua/speechbot/core/bootstrap"
	corecmd "github.com/tatlingua/speechbot/core/cmd"
	"github.com/tatlingua/speechbot/internal/app"
	"github.com/tatlingua/speechbot/internal/corpus"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return app.Load(path)
		},
		Bootstrap: bootstrapApp,
	})
	if err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func bootstrapApp(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*app.Config)
	if !ok {
		return nil, fmt.Errorf("unexpected config type %T", carrier)
	}

	ctx := context.Background()
	result, err := bootstrap.Run(ctx, bootstrap.Options{
		Config: cfg.CoreConfig(),
		OpenStore: func() (io.Closer, error) {
			store, err := corpus.Open(cfg.Corpus.Path)
			if err != nil {
				return nil, err
			}
			if err := store.Migrate(cfg.Corpus.MigrationsDir); err != nil {
				_ = store.Close()
				return nil, err
			}
			return store, nil
		},
		Seeders: []bootstrap.Seeder{
			bootstrap.SeederFunc(func(ctx context.Context, storage bootstrap.Storage) error {
				store, ok := storage.(*corpus.Store)
				if !ok {
					return fmt.Errorf("unexpected storage type %T", storage)
				}
				scraper := corpus.NewScraper(nil, cfg.Corpus.SourceURLs)
				return corpus.Seed(ctx, store, scraper)
			}),
		},
	})
	if err != nil {
		return nil, err
	}

	store := result.Store.(*corpus.Store)
	return app.New(ctx, cfg, store)
}
