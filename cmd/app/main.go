package main

import (
	"context"
	"database/sql"
	"embed"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"fantamorto/internal/application"
	"fantamorto/internal/delivery/discord"
	"fantamorto/internal/delivery/telegram"
	"fantamorto/internal/repository"
	"fantamorto/internal/wikidata"
	"fantamorto/internal/worker"
	"fantamorto/pkg/config"
	"fantamorto/pkg/logger"
	service "fantamorto/pkg/services"
	"fantamorto/pkg/sheets"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

func main() {
	_ = godotenv.Load()

	cfg := config.Config{}
	if err := config.ReadEnvConfig(&cfg); err != nil {
		panic(err)
	}

	log := logger.NewLogger(&logger.Config{Level: cfg.LogLevel})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repos, db, err := openRepository(&cfg.Repo, log)
	if err != nil {
		log.Error("failed to init repository: %s", err.Error())
		return
	}
	if db != nil {
		defer db.Close()
	}

	banList, err := repository.LoadBanList(cfg.BanListFile)
	if err != nil {
		log.Error("failed to load ban list: %s", err.Error())
		return
	}
	log.Info("ban list has %d entries", len(banList.IDs()))

	clock := clockwork.NewRealClock()
	wiki := wikidata.NewClient(&cfg.Wikidata, clock)

	// A nil *GoogleSheetsClient must not end up inside the interface.
	var sheetsClient sheets.Client
	if cfg.GoogleCredentialsFile != "" {
		c, err := sheets.NewGoogleSheetsClient(ctx, cfg.GoogleCredentialsFile)
		if err != nil {
			log.Error("failed to init google sheets: %s", err.Error())
			return
		}
		sheetsClient = c
	}

	settings := application.Settings{
		TeamSize:       cfg.TeamSize,
		AllowDeadPicks: cfg.AllowDeadPicks,
		AdminUserIDs:   cfg.AdminUserIDs,
		OwnerEmail:     cfg.GoogleOwnerEmail,
	}
	services := application.NewService(repos, wiki, wiki, banList, sheetsClient, settings, clock, log)

	router := worker.NewRouter(log)
	manager := service.NewManager(log)

	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, services, router, cfg.TeamSize, log.With("platform", "telegram"))
		if err != nil {
			log.Error("failed to init telegram bot: %s", err.Error())
			return
		}
		router.Register(bot)
		manager.AddService(bot)
	}
	if cfg.DiscordToken != "" {
		bot, err := discord.NewBot(&cfg, services, router, log.With("platform", "discord"))
		if err != nil {
			log.Error("failed to init discord bot: %s", err.Error())
			return
		}
		router.Register(bot)
		manager.AddService(bot)
	}
	if cfg.TelegramToken == "" && cfg.DiscordToken == "" {
		log.Warn("no chat platform configured, only the mortality sweep will run")
	}

	manager.AddService(worker.NewMortalitySweeper(services.Mortality, router, cfg.SweepInterval, clock, log.With("worker", "mortality")))

	if err := manager.Run(ctx); err != nil {
		log.Error("failed to run services: %s", err.Error())
		return
	}
	log.Info("stopped")
}

func openRepository(cfg *repository.Config, log *logger.Logger) (*repository.Repository, *sql.DB, error) {
	if cfg.Driver == repository.DriverMemory {
		log.Warn("using the in-memory repository, games are lost on restart")
		return repository.NewMemoryRepository(), nil, nil
	}

	db, err := repository.NewPostgresDB(cfg)
	if err != nil {
		return nil, nil, err
	}

	log.Info("running migrations")
	version, err := repository.RunMigrations(db, migrationFS, "migrations")
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	log.Info("schema at version %d", version)

	return repository.NewRepository(db), db, nil
}
