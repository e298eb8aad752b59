package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"
	giveawaybot "github.com/disgoorg/giveaway-bot/giveawaybot"
	"github.com/disgoorg/giveaway-bot/giveawaybot/commands"
	"github.com/disgoorg/giveaway-bot/giveawaybot/components"
	"github.com/disgoorg/giveaway-bot/giveawaybot/database"
	"github.com/disgoorg/giveaway-bot/giveawaybot/database/repositories"
	"github.com/disgoorg/giveaway-bot/giveawaybot/giveaway"
	"github.com/disgoorg/giveaway-bot/giveawaybot/handlers"
	"github.com/disgoorg/giveaway-bot/giveawaybot/logger"
	"github.com/disgoorg/giveaway-bot/giveawaybot/migration"
	"github.com/disgoorg/giveaway-bot/giveawaybot/services"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	slog.SetDefault(slog.New(logger.NewHandler()))

	slog.Info("Starting giveaway bot",
		slog.String("version", version),
		slog.String("commit", commit))

	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	shouldMigrate := flag.Bool("migrate", false, "Import legacy giveaway data from MongoDB, then continue startup")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := giveawaybot.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dbStartTime := time.Now()
	db, err := database.New(ctx, database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	})
	if err != nil {
		slog.Error("Database connection failed",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	defer db.Close()

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Database connected",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	if *shouldMigrate {
		migrator, err := migration.NewMigrator(ctx, db.BunDB(), cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			slog.Error("Failed to set up legacy migration", slog.Any("error", err))
			os.Exit(-1)
		}
		if err := migrator.MigrateAll(ctx); err != nil {
			slog.Error("Legacy migration failed", slog.Any("error", err))
			os.Exit(-1)
		}
		_ = migrator.Close(ctx)
	}

	b := giveawaybot.New(*cfg, version, commit)
	b.DB = db
	b.GiveawayRepo = repositories.NewGiveawayRepository(db.BunDB())
	b.UserRepo = repositories.NewUserRepository(db.BunDB())
	b.SettingsRepo = repositories.NewSettingsRepository(db.BunDB())
	b.Uploader = services.NewUploadService(
		cfg.Spaces.Key,
		cfg.Spaces.Secret,
		cfg.Spaces.Region,
		cfg.Spaces.Bucket,
		cfg.Spaces.SummaryRoot,
	)

	h := handler.New()
	h.Command("/gstart", handlers.WrapWithLogging("gstart", commands.GStartHandler(b)))
	h.Command("/gend", handlers.WrapWithLogging("gend", commands.GEndHandler(b)))
	h.Command("/glist", handlers.WrapWithLogging("glist", commands.GListHandler(b)))
	h.Command("/gsettings", handlers.WrapWithLogging("gsettings", commands.GSettingsHandler(b)))
	h.Component(giveaway.EnterButtonID, handlers.WrapComponentWithLogging("enter-giveaway", components.EnterHandler(b)))

	if err = b.SetupBot(h, bot.NewListenerFunc(b.OnReady)); err != nil {
		slog.Error("Failed to setup bot", slog.Any("error", err))
		os.Exit(-1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Client.Close(ctx)
	}()

	b.GiveawayManager = giveaway.NewManager(
		b.GiveawayRepo,
		b.UserRepo,
		b.SettingsRepo,
		giveaway.NewRestMessageClient(b.Client.Rest()),
		b.Uploader,
		cfg.Giveaway.SummaryURL,
	)
	b.Sweeper = giveaway.NewSweeper(
		b.GiveawayRepo,
		b.GiveawayManager,
		cfg.Giveaway.SweepInterval(),
		cfg.Giveaway.MaxWorkers,
	)

	if *shouldSyncCommands {
		slog.Info("Syncing commands", slog.Any("guild_ids", cfg.Bot.DevGuilds))
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			slog.Error("Failed to sync commands", slog.Any("error", err))
		}
	}

	gatewayCtx, gatewayCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer gatewayCancel()
	if err = b.Client.OpenGateway(gatewayCtx); err != nil {
		slog.Error("Failed to open gateway", slog.Any("error", err))
		os.Exit(-1)
	}

	b.Sweeper.Start()

	logger.LogSystem("Giveaway bot is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s

	slog.Info("Shutting down bot...")
	drainCtx, drainCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer drainCancel()
	if err := b.Sweeper.Shutdown(drainCtx); err != nil {
		logger.LogError("Sweeper did not drain cleanly", err)
	}
}
