package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"svitlo-bot/internal/domain"
	"svitlo-bot/internal/infra/metrics"
	"svitlo-bot/internal/usecase/timetable"
)

// Options — параметры цикла опроса.
type Options struct {
	Interval     time.Duration
	FirstDelay   time.Duration
	FetchTimeout time.Duration
	Workers      int
	DefaultLead  int
}

// Watcher периодически опрашивает канал и раскладывает уведомления по
// подписчикам. Циклы строго последовательны: следующий таймер взводится
// только после завершения предыдущего цикла, поэтому при медленной выборке
// циклы не накладываются.
type Watcher struct {
	log       zerolog.Logger
	subs      domain.SubscriptionRepo
	prefs     domain.PrefsRepo
	timetable *timetable.Service
	scheduler *Scheduler
	store     *Store
	queue     domain.AlertQueue
	opts      Options
	now       func() time.Time
}

func NewWatcher(
	log zerolog.Logger,
	subs domain.SubscriptionRepo,
	prefs domain.PrefsRepo,
	tt *timetable.Service,
	scheduler *Scheduler,
	store *Store,
	queue domain.AlertQueue,
	opts Options,
) *Watcher {
	if opts.Interval <= 0 {
		opts.Interval = 300 * time.Second
	}
	if opts.FirstDelay <= 0 {
		opts.FirstDelay = 5 * time.Second
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 10 * time.Second
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.DefaultLead <= 0 {
		opts.DefaultLead = 30
	}
	return &Watcher{
		log:       log,
		subs:      subs,
		prefs:     prefs,
		timetable: tt,
		scheduler: scheduler,
		store:     store,
		queue:     queue,
		opts:      opts,
		now:       time.Now,
	}
}

// Run крутит цикл опроса до отмены контекста.
func (w *Watcher) Run(ctx context.Context) {
	timer := time.NewTimer(w.opts.FirstDelay)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("watcher: остановка цикла опроса")
			return
		case <-timer.C:
		}
		w.Cycle(ctx)
		timer.Reset(w.opts.Interval)
	}
}

// Cycle выполняет один проход: одна выборка постов на все пары, затем разбор
// и планирование по каждой подписке через пул воркеров. Ошибка любой пары не
// трогает остальные.
func (w *Watcher) Cycle(ctx context.Context) {
	started := time.Now()
	defer func() {
		metrics.CycleDuration.Observe(time.Since(started).Seconds())
	}()

	fetchCtx, cancel := context.WithTimeout(ctx, w.opts.FetchTimeout)
	posts, err := w.timetable.RecentPosts(fetchCtx)
	cancel()
	if err != nil {
		metrics.FetchErrors.Inc()
		w.log.Error().Err(err).Msg("watcher: не удалось получить посты, цикл пропущен")
		return
	}
	metrics.FetchPosts.Observe(float64(len(posts)))
	if len(posts) == 0 {
		metrics.CyclesSkipped.Inc()
		w.log.Warn().Msg("watcher: пустая выборка постов, цикл пропущен")
		return
	}

	subs, err := w.subs.ListAll(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("watcher: не удалось прочитать подписки, цикл пропущен")
		return
	}
	if len(subs) == 0 {
		return
	}

	leads := w.loadLeads(ctx, subs)
	now := w.now()

	jobs := make(chan domain.Subscription)
	var wg sync.WaitGroup
	for i := 0; i < w.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sub := range jobs {
				w.processPair(ctx, sub, leads[sub.TGUserID], posts, now)
			}
		}()
	}
	for _, sub := range subs {
		jobs <- sub
	}
	close(jobs)
	wg.Wait()

	w.store.Prune(now.Add(-24 * time.Hour))
}

// loadLeads один раз за цикл читает время предупреждения каждого пользователя.
func (w *Watcher) loadLeads(ctx context.Context, subs []domain.Subscription) map[int64]int {
	leads := make(map[int64]int)
	for _, sub := range subs {
		if _, ok := leads[sub.TGUserID]; ok {
			continue
		}
		minutes, err := w.prefs.LeadMinutes(ctx, sub.TGUserID)
		if err != nil {
			w.log.Warn().Err(err).Int64("tg_user_id", sub.TGUserID).
				Msg("watcher: не удалось прочитать время предупреждения, берём дефолт")
		}
		if minutes <= 0 {
			minutes = w.opts.DefaultLead
		}
		leads[sub.TGUserID] = minutes
	}
	return leads
}

func (w *Watcher) processPair(ctx context.Context, sub domain.Subscription, lead int, posts []string, now time.Time) {
	snap, ok := w.timetable.SnapshotFromPosts(posts, sub.Queue, now)
	if !ok {
		metrics.ParseMisses.Inc()
		return
	}
	if _, overlapped := timetable.Merge(snap.Intervals); overlapped {
		metrics.OverlapWarnings.Inc()
		w.log.Warn().Str("queue", sub.Queue).Msg("watcher: интервалы графика пересекаются")
	}
	for _, alert := range w.scheduler.Evaluate(sub, lead, snap, now) {
		job := domain.AlertJob{
			ID:        uuid.NewString(),
			TGUserID:  alert.TGUserID,
			Queue:     alert.Queue,
			Kind:      alert.Kind,
			Text:      alert.Text,
			CreatedAt: time.Now().UTC(),
		}
		if err := w.queue.Enqueue(ctx, job); err != nil {
			w.log.Error().Err(err).Str("job_id", job.ID).Int64("tg_user_id", job.TGUserID).
				Msg("watcher: не удалось поставить уведомление в очередь")
			continue
		}
		metrics.IncAlertEnqueued(alert.Kind)
	}
}
