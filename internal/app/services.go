package app

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/clanhub-backend/internal/data/repos"
	"github.com/yungbote/clanhub-backend/internal/jobs/tasks"
	"github.com/yungbote/clanhub-backend/internal/observability"
	"github.com/yungbote/clanhub-backend/internal/platform/logger"
	"github.com/yungbote/clanhub-backend/internal/services"
)

type Services struct {
	Tracker tasks.Tracker
	Audit   services.AuditService
	Writer  services.LedgerWriter
	History services.HistoryService
	Weekly  services.WeeklyStatsService
}

func wireServices(
	jobCtx context.Context,
	db *gorm.DB,
	log *logger.Logger,
	cfg Config,
	rs repos.Set,
	clients Clients,
	metrics *observability.Metrics,
) Services {
	log.Info("Wiring services...")

	var tracker tasks.Tracker
	if clients.Redis != nil {
		tracker = tasks.NewRedisTracker(clients.Redis, log, cfg.TaskTTL)
	} else {
		tracker = tasks.NewMemoryTracker(log)
	}

	audit := services.NewAuditService(log, rs.Audit)
	writer := services.NewLedgerWriter(db, log, rs, metrics)
	return Services{
		Tracker: tracker,
		Audit:   audit,
		Writer:  writer,
		History: services.NewHistoryService(jobCtx, db, log, rs, writer, tracker, audit, metrics),
		Weekly:  services.NewWeeklyStatsService(db, log, rs, audit, metrics),
	}
}
