package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	chi "github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
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
	"svitlo-bot/internal/usecase/subscriptions"
	"svitlo-bot/internal/usecase/timetable"
)

func main() {
	cfg := config.Load()
	logger := log.NewLogger(cfg.AppEnv)

	if cfg.Channel == "" {
		logger.Fatal().Msg("не указан канал с графиками (CHANNEL_USERNAME)")
	}

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось подключиться к БД")
	}
	defer pool.Close()

	repoAdapter := repo.NewPostgres(pool)
	subsService := subscriptions.NewService(repoAdapter, repoAdapter, cfg.Notify.DefaultLead)

	var postCache domain.PostCache
	if cfg.RedisAddr != "" {
		postCache = cache.NewRedisPosts(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	}
	timetableService := timetable.NewService(newFetcher(cfg, logger), postCache, cfg.Watch.FetchLimit, cfg.Watch.CacheTTL)

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось создать бота")
	}

	h := bot.NewHandler(botAPI, logger, subsService, timetableService)

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/bot/webhook", func(w http.ResponseWriter, r *http.Request) {
		var update tgbotapi.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.HandleUpdate(r.Context(), update)
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: r}
	go func() {
		logger.Info().Int("port", cfg.Port).Msg("бот запущен")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("HTTP сервер остановлен")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop
	logger.Info().Msg("остановка бота")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}

// newFetcher выбирает источник постов: MTProto при наличии ключей API,
// иначе веб-превью t.me/s.
func newFetcher(cfg config.AppConfig, logger zerolog.Logger) domain.PostFetcher {
	if cfg.Telegram.APIID != 0 && cfg.Telegram.APIHash != "" {
		return mtproto.NewFetcher(cfg.Telegram.APIID, cfg.Telegram.APIHash, cfg.Channel, cfg.Telegram.SessionFile, logger)
	}
	return tgweb.NewFetcher(cfg.Channel, cfg.Watch.FetchTimeout, logger)
}
