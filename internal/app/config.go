package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/yungbote/clanhub-backend/internal/platform/redis"
	"github.com/yungbote/clanhub-backend/internal/data/db"
	"github.com/yungbote/clanhub-backend/internal/platform/logger"
)

type Config struct {
	Port           string
	Environment    string
	Version        string
	DB             db.Config
	Redis          redis.Config
	TaskTTL        time.Duration
	MaxUploadBytes int64
	CORSOrigins    []string
	WeeklyCron     string
	JobTimeout     time.Duration
}

// LoadConfig reads defaults, then an optional config.yaml (or configPath),
// then the environment. Env keys are the upper-cased key with dots replaced
// by underscores, e.g. postgres.host -> POSTGRES_HOST.
func LoadConfig(configPath string, log *logger.Logger) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		log.Debug("no config file found, using defaults and environment")
	} else {
		log.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	cfg := Config{
		Port:        v.GetString("port"),
		Environment: v.GetString("environment"),
		Version:     v.GetString("version"),
		DB: db.Config{
			Driver:     v.GetString("db.driver"),
			SQLitePath: v.GetString("sqlite.path"),
			Postgres: db.PostgresConfig{
				Host:     v.GetString("postgres.host"),
				Port:     v.GetString("postgres.port"),
				User:     v.GetString("postgres.user"),
				Password: v.GetString("postgres.password"),
				Name:     v.GetString("postgres.name"),
				SSLMode:  v.GetString("postgres.sslmode"),
			},
		},
		Redis: redis.Config{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		TaskTTL:        v.GetDuration("task.ttl"),
		MaxUploadBytes: v.GetInt64("upload.max_bytes"),
		CORSOrigins:    splitList(v.GetString("cors.origins")),
		WeeklyCron:     v.GetString("weekly.cron"),
		JobTimeout:     v.GetDuration("job.timeout"),
	}
	if cfg.MaxUploadBytes <= 0 {
		return Config{}, fmt.Errorf("upload.max_bytes must be positive, got %d", cfg.MaxUploadBytes)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("environment", "development")
	v.SetDefault("version", "dev")

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("sqlite.path", "./data/clanhub.db")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.name", "clanhub")
	v.SetDefault("postgres.sslmode", "disable")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("task.ttl", "24h")
	v.SetDefault("upload.max_bytes", 32<<20)
	v.SetDefault("cors.origins", "")
	v.SetDefault("weekly.cron", "0 * * * * *")
	v.SetDefault("job.timeout", "50s")
}

// splitList accepts a comma separated env value.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
