package app

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/clanhub-backend/internal/platform/redis"
	"github.com/yungbote/clanhub-backend/internal/platform/logger"
)

type Clients struct {
	// Redis is nil when no REDIS_ADDR is configured.
	Redis goredis.UniversalClient
}

func wireClients(cfg Config, log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")
	rdb, err := redis.NewClient(cfg.Redis, log)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}
	if rdb == nil {
		log.Warn("REDIS_ADDR not set; task status is kept in memory")
	}
	return Clients{Redis: rdb}, nil
}

func (c Clients) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
