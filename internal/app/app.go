// Package app wires the speech-collection bot together: configuration,
// conversation machines, the passage corpus, object storage, and the
// Telegram runtime.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	tele "gopkg.in/telebot.v4"

	tg "github.com/tatlingua/speechbot/core/telegram"
	"github.com/tatlingua/speechbot/core/telegram/callbacks"
	"github.com/tatlingua/speechbot/core/telegram/commands"
	tghelpers "github.com/tatlingua/speechbot/core/telegram/helpers"
	"github.com/tatlingua/speechbot/core/telegram/router"
	"github.com/tatlingua/speechbot/core/telegram/state"
	"github.com/tatlingua/speechbot/internal/conv"
	"github.com/tatlingua/speechbot/internal/corpus"
	"github.com/tatlingua/speechbot/internal/profile"
	"github.com/tatlingua/speechbot/internal/reading"
	"github.com/tatlingua/speechbot/internal/upload"
)

const (
	msgGreeting = "Привет! Этот бот помогает лингвистам изучать речевые особенности носителей татарского и русского языков. Для начала давай немного познакомимся. Эти данные нужны будут нам только для подтверждения некоторых наших гипотез😃"
	msgIdleHint = "Я понимаю команды /configure и /read."
	msgNoExit   = "Сейчас нечего завершать. Начните с /configure или /read."
	msgNoStop   = "Сейчас нет активного чтения. Начните: /read"
	msgNoMedia  = "Сначала запросите текст командой /read, затем отправьте запись."
)

// App is the composed bot: all collaborators are injected at construction,
// nothing is shared through package-level state.
type App struct {
	cfg      *Config
	sessions state.Manager
	registry *tg.Registry
	profile  *profile.Machine
	reading  *reading.Machine
	corpus   *corpus.Store
}

// New builds the application from loaded configuration and a seeded corpus.
func New(ctx context.Context, cfg *Config, store *corpus.Store) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config provided")
	}
	if store == nil {
		return nil, fmt.Errorf("app: nil corpus store provided")
	}

	client, err := buildS3Client(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("app: s3 client: %w", err)
	}
	uploader := upload.NewS3(client, cfg.Storage.Bucket, cfg.Storage.KeyPrefix)

	sessions := state.NewMemoryManager()
	a := &App{
		cfg:      cfg,
		sessions: sessions,
		registry: tg.NewRegistry(),
		profile:  profile.New(sessions),
		reading:  reading.New(sessions, store, uploader, os.TempDir()),
		corpus:   store,
	}

	a.registerCommands()
	a.registerStates()
	if err := a.registerCallbacks(); err != nil {
		return nil, err
	}
	a.registry.SetTextFallback(func(c tele.Context) error {
		return send(c, conv.Reply{Text: msgIdleHint})
	})
	return a, nil
}

func buildS3Client(ctx context.Context, sc StorageConfig) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if sc.Region != "" {
		opts = append(opts, awsconfig.WithRegion(sc.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if sc.Endpoint != "" {
			o.BaseEndpoint = aws.String(sc.Endpoint)
		}
		o.UsePathStyle = sc.UsePathStyle
	}), nil
}

func (a *App) registerCommands() {
	a.registry.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Приветствие и краткая инструкция",
	})
	a.registry.RegisterCommand("/configure", commands.Command{
		Handler:     a.handleConfigure,
		Description: "Рассказать о себе (пол, возраст, уровни языков)",
	})
	a.registry.RegisterCommand("/read", commands.Command{
		Handler:     a.handleRead,
		Description: "Получить текст и записать его чтение",
	})
	a.registry.RegisterCommand("/exit", commands.Command{
		Handler:     a.handleExit,
		Description: "Прервать настройку профиля",
		Hidden:      true,
	})
	a.registry.RegisterCommand("/stop", commands.Command{
		Handler:     a.handleStop,
		Description: "Прервать текущее чтение",
		Hidden:      true,
	})
}

func (a *App) registerStates() {
	for _, st := range []state.State{
		profile.StateGender,
		profile.StateAge,
		profile.StateTatarLevel,
		profile.StateRussianLevel,
	} {
		a.sessions.RegisterHandler(st, a.profileStep)
	}
	a.sessions.RegisterHandler(reading.StateAwaitAudio, a.readingStep)
}

func (a *App) registerCallbacks() error {
	return a.registry.RegisterCallback(reading.RerollUnique, a.handleReroll)
}

func (a *App) handleStart(c tele.Context) error {
	return send(c, conv.Reply{Text: msgGreeting, Keyboard: [][]string{{"/configure"}}})
}

func (a *App) handleConfigure(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	return send(c, a.profile.Begin(ctx, c.Sender().ID))
}

func (a *App) handleRead(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	reply, err := a.reading.Begin(ctx, c.Sender().ID)
	if sendErr := send(c, reply); sendErr != nil {
		return sendErr
	}
	return err
}

func (a *App) handleExit(c tele.Context) error {
	userID := c.Sender().ID
	if !a.profile.Owns(a.sessions.GetState(userID)) {
		return send(c, conv.Reply{Text: msgNoExit})
	}
	ctx := tghelpers.BuildContext(c)
	return send(c, a.profile.Exit(ctx, userID))
}

func (a *App) handleStop(c tele.Context) error {
	userID := c.Sender().ID
	if !a.reading.Owns(a.sessions.GetState(userID)) {
		return send(c, conv.Reply{Text: msgNoStop})
	}
	ctx := tghelpers.BuildContext(c)
	return send(c, a.reading.Stop(ctx, userID))
}

func (a *App) profileStep(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	return send(c, a.profile.Step(ctx, eventFrom(c)))
}

func (a *App) readingStep(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	reply, err := a.reading.Step(ctx, eventFrom(c))
	if sendErr := send(c, reply); sendErr != nil {
		return sendErr
	}
	return err
}

func (a *App) handleReroll(c tele.Context) error {
	prev, err := callbacks.PayloadInt(c)
	if err != nil {
		prev = 0
	}
	ctx := tghelpers.BuildContext(c)
	reply, err := a.reading.Reroll(ctx, c.Sender().ID, prev)
	if sendErr := send(c, reply); sendErr != nil {
		return sendErr
	}
	return err
}

// TelegramRunOptions assembles the runtime options for the core runner.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	coreCfg := a.cfg.CoreConfig()

	unknownMedia := func(c tele.Context) error {
		return send(c, conv.Reply{Text: msgNoMedia})
	}

	routes := router.CommandRoutes(a.registry, router.CommandRouteOptions{
		AdminID: coreCfg.Telegram.AdminID,
	})
	routes = append(routes, router.MessageRoutes(a.sessions, a.registry, router.MessageOptions{
		UnknownMedia: unknownMedia,
	})...)
	routes = append(routes, router.CallbackRoute(a.registry, router.CallbackOptions{}))

	return tg.RunOptions{
		Config:      coreCfg,
		Registry:    a.registry,
		Middlewares: tg.DefaultMiddlewares(coreCfg, nil),
		Routes:      routes,
	}, nil
}
