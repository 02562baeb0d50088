package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/clanhub-backend/internal/http/handlers"
	httpMW "github.com/yungbote/clanhub-backend/internal/http/middleware"
	"github.com/yungbote/clanhub-backend/internal/observability"
	"github.com/yungbote/clanhub-backend/internal/platform/logger"
)

const serviceName = "clanhub"

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	CORSOrigins []string

	HealthHandler  *httpH.HealthHandler
	HistoryHandler *httpH.HistoryHandler
	WeeklyHandler  *httpH.WeeklyHandler
	AuditHandler   *httpH.AuditHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.AttachActor())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	clans := r.Group("/api/clans/:id")
	{
		// Faction history
		if cfg.HistoryHandler != nil {
			clans.POST("/history/upload", cfg.HistoryHandler.Upload)
			clans.GET("/history/tasks/:taskId", cfg.HistoryHandler.GetTask)
			clans.GET("/history", cfg.HistoryHandler.List)
		}

		// Weekly stats
		if cfg.WeeklyHandler != nil {
			clans.GET("/weekly", cfg.WeeklyHandler.Get)
			clans.PUT("/weekly", cfg.WeeklyHandler.Update)
		}

		// Audit
		if cfg.AuditHandler != nil {
			clans.GET("/audit", cfg.AuditHandler.List)
		}
	}

	return r
}
