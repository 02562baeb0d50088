package app

import (
	"gorm.io/gorm"

	httpH "github.com/yungbote/clanhub-backend/internal/http/handlers"
	"github.com/yungbote/clanhub-backend/internal/platform/logger"
)

type Handlers struct {
	Health  *httpH.HealthHandler
	History *httpH.HistoryHandler
	Weekly  *httpH.WeeklyHandler
	Audit   *httpH.AuditHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, cfg Config, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:  httpH.NewHealthHandler(db),
		History: httpH.NewHistoryHandler(services.History, cfg.MaxUploadBytes),
		Weekly:  httpH.NewWeeklyHandler(services.Weekly),
		Audit:   httpH.NewAuditHandler(services.Audit),
	}
}
