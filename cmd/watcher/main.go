package main

import (
	"context"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"svitlo-bot/internal/adapters/bot"
	"svitlo-bot/internal/adapters/mtproto"
	"svitlo-bot/internal/adapters/repo"
	"svitlo-bot/internal/adapters/tgweb"
	"svitlo-bot/internal/domain"
	"svitlo-bot/internal/infra/cache"
	"svitlo-bot/internal/infra/config"
	"svitlo-bot/internal/infra/db"
	"svitlo-bot/internal/infra/log"
	"svitlo-bot/internal/infra/metrics"
	"svitlo-bot/internal/infra/queue"
	"svitlo-bot/internal/usecase/notify"
	"svitlo-bot/internal/usecase/timetable"
)

func main() {
	cfg := config.Load()
	logger := log.NewLogger(cfg.AppEnv)

	if cfg.Channel == "" {
		logger.Fatal().Msg("не указан канал с графиками (CHANNEL_USERNAME)")
	}
	if cfg.RedisAddr == "" {
		logger.Fatal().Msg("не указан адрес Redis (REDIS_ADDR)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	metrics.MustRegister(prometheus.DefaultRegisterer)
	metrics.StartServer(ctx, logger.With().Str("component", "metrics").Logger(), cfg.MetricsAddr)

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось подключиться к БД")
	}
	defer pool.Close()
	repoAdapter := repo.NewPostgres(pool)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	postCache := cache.NewRedisPosts(redisClient)
	alertQueue := queue.NewRedisAlertQueue(redisClient, cfg.Notify.QueueKey)

	timetableService := timetable.NewService(newFetcher(cfg, logger), postCache, cfg.Watch.FetchLimit, cfg.Watch.CacheTTL)

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось создать бота")
	}
	worker := notify.NewWorker(logger.With().Str("component", "worker").Logger(), alertQueue, bot.NewSender(botAPI, logger))
	go worker.Run(ctx)

	store := notify.NewStore()
	watcher := notify.NewWatcher(
		logger.With().Str("component", "watcher").Logger(),
		repoAdapter,
		repoAdapter,
		timetableService,
		notify.NewScheduler(store),
		store,
		alertQueue,
		notify.Options{
			Interval:     cfg.Watch.PollInterval,
			FirstDelay:   cfg.Watch.FirstDelay,
			FetchTimeout: cfg.Watch.FetchTimeout,
			Workers:      cfg.Watch.Workers,
			DefaultLead:  cfg.Notify.DefaultLead,
		},
	)

	logger.Info().Dur("interval", cfg.Watch.PollInterval).Msg("наблюдатель запущен")
	watcher.Run(ctx)
	logger.Info().Msg("наблюдатель остановлен")
}

// newFetcher выбирает источник постов: MTProto при наличии ключей API,
// иначе веб-превью t.me/s.
func newFetcher(cfg config.AppConfig, logger zerolog.Logger) domain.PostFetcher {
	if cfg.Telegram.APIID != 0 && cfg.Telegram.APIHash != "" {
		return mtproto.NewFetcher(cfg.Telegram.APIID, cfg.Telegram.APIHash, cfg.Channel, cfg.Telegram.SessionFile, logger)
	}
	return tgweb.NewFetcher(cfg.Channel, cfg.Watch.FetchTimeout, logger)
}
