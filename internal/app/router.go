package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/clanhub-backend/internal/http"
	"github.com/yungbote/clanhub-backend/internal/observability"
	"github.com/yungbote/clanhub-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		CORSOrigins:    cfg.CORSOrigins,
		HealthHandler:  handlers.Health,
		HistoryHandler: handlers.History,
		WeeklyHandler:  handlers.Weekly,
		AuditHandler:   handlers.Audit,
	})
}
