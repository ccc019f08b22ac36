package app

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-commons/internal/commons/sqldebug"
	"github.com/yungbote/neurobridge-commons/internal/data/db"
	"github.com/yungbote/neurobridge-commons/internal/modules/orders"
	"github.com/yungbote/neurobridge-commons/internal/observability"
	"github.com/yungbote/neurobridge-commons/internal/platform/config"
	"github.com/yungbote/neurobridge-commons/internal/platform/logger"
)

type App struct {
	Log        *logger.Logger
	DB         *gorm.DB
	Cfg        *config.Config
	Repos      Repos
	Registries Registries
	Orders     *orders.Module
	Recorder   sqldebug.Recorder
	Metrics    *observability.Metrics

	dbService *db.Service
	shutdown  observability.ShutdownFunc
}

// New loads config from path (empty for defaults and env only) and wires the
// database, tracing, modules and sealed registries.
func New(ctx context.Context, path string) (*App, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	shutdown, err := observability.InitOTel(ctx, log, cfg.OTel)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init otel: %w", err)
	}

	log.Info("Opening database...", "driver", cfg.DB.Driver)
	svc, err := db.Open(cfg.DB, log)
	if err != nil {
		_ = shutdown(ctx)
		log.Sync()
		return nil, fmt.Errorf("init db: %w", err)
	}

	a := &App{
		Log:       log,
		DB:        svc.DB(),
		Cfg:       cfg,
		Repos:     wireRepos(svc.DB(), log),
		Recorder:  sqldebug.Recorder{Root: cfg.Debug.ABRoot},
		Metrics:   observability.NewMetrics(log),
		dbService: svc,
		shutdown:  shutdown,
	}

	a.Orders, err = orders.New(orders.Deps{DB: a.DB, Log: log, Orders: a.Repos.Orders})
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := svc.Migrate(a.Orders.Models()...); err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("automigrate: %w", err)
		}
	}

	a.Registries, err = wireRegistries(log, a.Orders)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	return a, nil
}

// Close flushes traces, closes the database and syncs the logger.
func (a *App) Close(ctx context.Context) error {
	if a == nil {
		return nil
	}
	var errs []error
	if a.shutdown != nil {
		errs = append(errs, a.shutdown(ctx))
		a.shutdown = nil
	}
	if a.dbService != nil {
		errs = append(errs, a.dbService.Close())
		a.dbService = nil
	}
	if a.Log != nil {
		a.Log.Sync()
	}
	return errors.Join(errs...)
}
