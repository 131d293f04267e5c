package config

import (
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию сервисов.
type AppConfig struct {
	AppEnv      string `envconfig:"APP_ENV" default:"dev"`
	Port        int    `envconfig:"PORT" default:"8080"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`

	Telegram struct {
		Token       string `envconfig:"TG_BOT_TOKEN"`
		APIID       int    `envconfig:"TG_API_ID"`
		APIHash     string `envconfig:"TG_API_HASH"`
		SessionFile string `envconfig:"MTPROTO_SESSION_FILE" default:"./data/mtproto.session"`
	} `envconfig:""`

	// Channel — username публичного канала с графиками отключений.
	Channel string `envconfig:"CHANNEL_USERNAME"`

	PGDSN string `envconfig:"PG_DSN"`

	RedisAddr string `envconfig:"REDIS_ADDR"`

	Watch struct {
		PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"300s"`
		FirstDelay   time.Duration `envconfig:"POLL_FIRST_DELAY" default:"5s"`
		FetchLimit   int           `envconfig:"FETCH_LIMIT" default:"10"`
		FetchTimeout time.Duration `envconfig:"FETCH_TIMEOUT" default:"10s"`
		Workers      int           `envconfig:"WATCH_WORKERS" default:"4"`
		CacheTTL     time.Duration `envconfig:"POSTS_CACHE_TTL" default:"60s"`
	} `envconfig:""`

	Notify struct {
		DefaultLead int    `envconfig:"DEFAULT_LEAD_MINUTES" default:"30"`
		QueueKey    string `envconfig:"ALERT_QUEUE_KEY" default:"alert_jobs"`
	} `envconfig:""`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}
