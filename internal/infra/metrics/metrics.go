package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	FetchErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "channel_fetch_errors_total",
		Help: "Ошибки получения постов канала",
	})
	FetchPosts = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "channel_fetch_posts",
		Help:    "Количество постов в одной выборке",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
	})
	ParseMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_parse_misses_total",
		Help: "Циклы, в которых очередь не найдена в постах",
	})
	OverlapWarnings = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_overlap_warnings_total",
		Help: "Расписания с перекрывающимися интервалами в исходном тексте",
	})
	AlertsEnqueued = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "alerts_enqueued_total",
		Help: "Поставленные в очередь уведомления по видам",
	}, []string{"kind"})
	AlertSendErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "alert_send_errors_total",
		Help: "Ошибки отправки уведомлений ботом",
	})
	CycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "watch_cycle_seconds",
		Help:    "Длительность одного цикла опроса",
		Buckets: prometheus.DefBuckets,
	})
	CyclesSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "watch_cycles_skipped_total",
		Help: "Циклы, пропущенные из-за пустой выборки постов",
	})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: prometheus.DefBuckets,
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		FetchErrors,
		FetchPosts,
		ParseMisses,
		OverlapWarnings,
		AlertsEnqueued,
		AlertSendErrors,
		CycleDuration,
		CyclesSkipped,
		NetworkRequestDuration,
		NetworkRequestTotal,
	)
}

// StartServer запускает HTTP сервер с эндпоинтом /metrics.
func StartServer(ctx context.Context, logger zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownTimeout); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: graceful shutdown failed")
		}
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics: server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: server stopped")
		}
	}()
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// IncAlertEnqueued увеличивает счётчик поставленных в очередь уведомлений.
func IncAlertEnqueued(kind string) {
	AlertsEnqueued.WithLabelValues(kind).Inc()
}
