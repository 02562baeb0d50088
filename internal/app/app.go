package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/clanhub-backend/internal/data/db"
	"github.com/yungbote/clanhub-backend/internal/data/repos"
	"github.com/yungbote/clanhub-backend/internal/http"
	"github.com/yungbote/clanhub-backend/internal/jobs/scheduler"
	"github.com/yungbote/clanhub-backend/internal/observability"
	"github.com/yungbote/clanhub-backend/internal/platform/logger"
)

const weeklyContextJob = "weekly_context_ensure"

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    repos.Set
	Services Services
	Clients  Clients
	Metrics  *observability.Metrics

	jobCtx       context.Context
	cancel       context.CancelFunc
	otelShutdown func(context.Context) error
}

func New(configPath string) (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading configuration...")
	cfg, err := LoadConfig(configPath, log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "clanhub",
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})

	theDB, err := db.Open(cfg.DB, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init db: %w", err)
	}

	clients, err := wireClients(cfg, log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	jobCtx, cancel := context.WithCancel(context.Background())
	metrics := observability.NewMetrics()
	reposet := wireRepos(theDB, log)
	serviceset := wireServices(jobCtx, theDB, log, cfg, reposet, clients, metrics)
	handlerset := wireHandlers(theDB, log, cfg, serviceset)
	router := wireRouter(log, cfg, metrics, handlerset)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clients,
		Metrics:      metrics,
		jobCtx:       jobCtx,
		cancel:       cancel,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP and runs the scheduler until ctx is cancelled or one of
// them fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}

	sched := scheduler.New(a.Log, a.Cfg.JobTimeout)
	if err := sched.Register(weeklyContextJob, a.Cfg.WeeklyCron, a.ensureWeek); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	a.Metrics.StartDBCollector(gctx, a.Log, a.DB, 15*time.Second)
	if a.Clients.Redis != nil {
		a.Metrics.StartRedisCollector(gctx, a.Log, a.Clients.Redis, 15*time.Second)
	}

	server := http.NewServer(":"+a.Cfg.Port, a.Router, a.Log)
	g.Go(func() error { return server.Run(gctx) })
	g.Go(func() error { return sched.Run(gctx) })
	return g.Wait()
}

func (a *App) ensureWeek(ctx context.Context) error {
	err := a.Services.Weekly.EnsureWeek(ctx, time.Now().UTC())
	status := "ok"
	if err != nil {
		status = "error"
	}
	a.Metrics.IncSchedulerRun(weeklyContextJob, status)
	return err
}

// Close stops background ingestion, waits for it to settle and releases
// clients.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Services.History != nil {
		a.Services.History.Wait()
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
