package main

import (
	"context"

	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/signals"

	"github.com/hearthbooks/hearth/pkg/config"
	"github.com/hearthbooks/hearth/pkg/database"
	"github.com/hearthbooks/hearth/pkg/itemstore"
	"github.com/hearthbooks/hearth/pkg/jobs"
	"github.com/hearthbooks/hearth/pkg/library"
	"github.com/hearthbooks/hearth/pkg/scanner"
	"github.com/hearthbooks/hearth/pkg/settings"
	"github.com/hearthbooks/hearth/pkg/version"
	"github.com/hearthbooks/hearth/pkg/worker"
)

func main() {
	ctx := context.Background()
	log := logger.New()

	log.Info("starting hearth", logger.Data{"version": version.Version})

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}

	store := itemstore.New(db)
	if err := store.Init(ctx); err != nil {
		log.Err(err).Fatal("item store init error")
	}

	jobService := jobs.NewService(db)
	if err := jobService.Init(ctx); err != nil {
		log.Err(err).Fatal("jobs init error")
	}

	settingsService, err := settings.Load(cfg.SettingsFilePath)
	if err != nil {
		log.Err(err).Fatal("settings error")
	}

	libraryService := library.New(store, scanner.New(), settingsService, nil)
	wrkr := worker.New(cfg, db, store, libraryService)

	graceful := signals.Setup()

	wrkr.Start()
	log.Info("worker started")

	<-graceful
	log.Info("starting graceful shutdown")

	wrkr.Shutdown()
	log.Info("worker shutdown")

	err = db.Close()
	if err != nil {
		log.Err(err).Error("database close error")
	}
	log.Info("database closed")
}
