package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/iamwavecut/warden/internal/bot"
	"github.com/iamwavecut/warden/internal/config"
	"github.com/iamwavecut/warden/internal/db/cached"
	"github.com/iamwavecut/warden/internal/db/sqlite"
	chat "github.com/iamwavecut/warden/internal/handlers/chat"
	moderation "github.com/iamwavecut/warden/internal/handlers/moderation"
	"github.com/iamwavecut/warden/internal/infra"
	"github.com/iamwavecut/warden/internal/infrastructure/telegram"
	"github.com/iamwavecut/warden/internal/lifecycle"
	"github.com/iamwavecut/warden/internal/observability"
	"github.com/iamwavecut/warden/internal/policy"
	"github.com/iamwavecut/warden/internal/ratelimit"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithField("error", err.Error()).Fatalln("cant load config")
	}
	log.SetFormatter(&config.NbFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.Level(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go infra.GoRecoverable(3, "monitor_executable", func() {
		if _, changed := <-infra.MonitorExecutable(ctx); changed {
			log.Warnln("executable file was modified, shutting down")
			cancel()
		}
	})

	if err := run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithField("error", err.Error()).Fatalln("bot stopped")
	}
	log.Infoln("bye")
}

func run(ctx context.Context, cfg config.Config) error {
	dotPath, err := infra.GetWorkDir(cfg.DotPath)
	if err != nil {
		return err
	}

	botAPI, err := api.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		return errors.Wrap(err, "cant initialize bot api")
	}
	if log.Level(cfg.LogLevel) == log.TraceLevel {
		botAPI.Debug = true
	}

	store, err := sqlite.NewSQLiteClient(ctx, dotPath, cfg.DBName)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.WithField("error", err.Error()).Error("cant close db")
		}
	}()
	db := cached.NewClient(store)

	audit, err := observability.NewAuditLogger(filepath.Join(dotPath, cfg.Telemetry.AuditLog))
	if err != nil {
		return err
	}
	defer func() { _ = audit.Sync() }()

	limiter := ratelimit.NewLimiter(ratelimit.Config{
		MaxMessages:   cfg.AntiSpam.MaxMessages,
		Window:        cfg.AntiSpam.Window,
		SweepInterval: cfg.AntiSpam.SweepInterval,
	})
	if err := observability.RegisterTrackedKeys(limiter.Len); err != nil {
		return err
	}

	ops := telegram.NewOperations(botAPI, cfg.AntiSpam.AdminCacheTTL)
	engine := policy.NewEngine(db, limiter)
	executor := moderation.NewExecutor(ops, audit)
	history := chat.NewHistory(cfg.Clear.HistorySize)
	service := bot.NewService(botAPI, db, cfg.OwnerID, cfg.DefaultLanguage)

	bot.RegisterUpdateHandler("tracker", chat.NewTracker(history, ops))
	bot.RegisterUpdateHandler("moderator", chat.NewModerator(service, ops, engine, executor, history, chat.Config{
		BotUserName:      botAPI.Self.UserName,
		DefaultSpamLimit: cfg.AntiSpam.MaxMessages,
		SpamWindow:       cfg.AntiSpam.Window,
		Clear:            cfg.Clear,
	}))

	runtime := lifecycle.NewRuntime(
		limiter,
		observability.NewTracing(),
		observability.NewMetricsServer(cfg.Telemetry.MetricsAddr),
	)
	if err := runtime.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := runtime.Stop(stopCtx); err != nil {
			log.WithField("error", err.Error()).Error("cant stop runtime")
		}
	}()

	updateConfig := api.NewUpdate(0)
	updateConfig.Timeout = 60
	updateConfig.AllowedUpdates = []string{"message", "chat_member", "my_chat_member"}
	updateProcessor := bot.NewUpdateProcessor(service, cfg.EnabledHandlers)
	updateChan, errorChan := bot.GetUpdatesChans(ctx, botAPI, updateConfig)

	log.WithField("bot", botAPI.Self.UserName).Infoln("processing updates")

	workers := &errgroup.Group{}
	workers.SetLimit(cfg.Workers)
	defer func() { _ = workers.Wait() }()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-errorChan:
			if !ok {
				errorChan = nil
				continue
			}
			if err != nil && !errors.Is(err, context.Canceled) {
				return errors.Wrap(err, "bot api get updates error")
			}
		case update, ok := <-updateChan:
			if !ok {
				return ctx.Err()
			}
			workers.Go(func() (err error) {
				defer infra.Recover("process_update", &err)
				if err := updateProcessor.Process(ctx, &update); err != nil {
					log.WithFields(log.Fields{
						"update_id": update.UpdateID,
						"error":     err.Error(),
					}).Errorln("cant process update")
				}
				return nil
			})
		}
	}
}
