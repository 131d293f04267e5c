package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"svitlo-bot/internal/domain"
	"svitlo-bot/internal/usecase/timetable"
)

type stubFetcher struct {
	posts []string
	err   error
}

func (s *stubFetcher) FetchRecent(_ context.Context, _ int) ([]string, error) {
	return s.posts, s.err
}

type stubSubs struct {
	subs []domain.Subscription
}

func (s *stubSubs) Add(context.Context, int64, string, string) (domain.Subscription, bool, error) {
	return domain.Subscription{}, false, errors.New("not implemented")
}

func (s *stubSubs) Remove(context.Context, int64, string) (bool, error) {
	return false, errors.New("not implemented")
}

func (s *stubSubs) ListByUser(context.Context, int64) ([]domain.Subscription, error) {
	return nil, errors.New("not implemented")
}

func (s *stubSubs) ListAll(context.Context) ([]domain.Subscription, error) {
	return s.subs, nil
}

type stubPrefs struct {
	leads map[int64]int
}

func (s *stubPrefs) LeadMinutes(_ context.Context, tgUserID int64) (int, error) {
	return s.leads[tgUserID], nil
}

func (s *stubPrefs) SetLeadMinutes(context.Context, int64, int) error {
	return nil
}

type memQueue struct {
	mu   sync.Mutex
	jobs []domain.AlertJob
	err  error
}

func (q *memQueue) Enqueue(_ context.Context, job domain.AlertJob) error {
	if q.err != nil {
		return q.err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *memQueue) Pop(context.Context) (domain.AlertJob, error) {
	return domain.AlertJob{}, errors.New("not implemented")
}

func (q *memQueue) kinds() map[string]int {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make(map[string]int)
	for _, job := range q.jobs {
		out[job.Kind]++
	}
	return out
}

func newTestWatcher(fetcher domain.PostFetcher, subs []domain.Subscription, queue domain.AlertQueue, now time.Time) *Watcher {
	store := NewStore()
	w := NewWatcher(
		zerolog.Nop(),
		&stubSubs{subs: subs},
		&stubPrefs{leads: map[int64]int{}},
		timetable.NewService(fetcher, nil, 10, 0),
		NewScheduler(store),
		store,
		queue,
		Options{DefaultLead: 30},
	)
	w.now = func() time.Time { return now }
	return w
}

func TestCycleEnqueuesAlertsOnce(t *testing.T) {
	posts := []string{"Графік на 18.11\n4.1: 10:00-12:00"}
	queue := &memQueue{}
	now := time.Date(2026, time.November, 18, 9, 45, 0, 0, kyiv)
	w := newTestWatcher(&stubFetcher{posts: posts}, []domain.Subscription{
		{TGUserID: 7, Queue: "4.1"},
	}, queue, now)

	w.Cycle(context.Background())
	kinds := queue.kinds()
	if kinds[domain.AlertKindScheduleChanged] != 1 {
		t.Fatalf("первый цикл должен поставить уведомление об изменении: %v", kinds)
	}
	if kinds[string(domain.EdgePowerOff)] != 1 {
		t.Fatalf("в окне предупреждения должно уйти одно предупреждение: %v", kinds)
	}

	w.Cycle(context.Background())
	kinds = queue.kinds()
	if kinds[domain.AlertKindScheduleChanged] != 1 || kinds[string(domain.EdgePowerOff)] != 1 {
		t.Fatalf("повторный цикл без изменений не должен дублировать уведомления: %v", kinds)
	}
}

func TestCycleSkipsOnFetchError(t *testing.T) {
	queue := &memQueue{}
	now := time.Date(2026, time.November, 18, 9, 45, 0, 0, kyiv)
	w := newTestWatcher(&stubFetcher{err: errors.New("сеть недоступна")}, []domain.Subscription{
		{TGUserID: 7, Queue: "4.1"},
	}, queue, now)

	w.Cycle(context.Background())
	if len(queue.kinds()) != 0 {
		t.Fatalf("при ошибке выборки цикл должен пропускаться")
	}
}

func TestCycleIsolatesPairs(t *testing.T) {
	posts := []string{"Графік на 18.11\n4.1: 10:00-12:00"}
	queue := &memQueue{}
	now := time.Date(2026, time.November, 18, 9, 45, 0, 0, kyiv)
	w := newTestWatcher(&stubFetcher{posts: posts}, []domain.Subscription{
		{TGUserID: 7, Queue: "9.9"},
		{TGUserID: 8, Queue: "4.1"},
	}, queue, now)

	w.Cycle(context.Background())
	kinds := queue.kinds()
	if kinds[string(domain.EdgePowerOff)] != 1 {
		t.Fatalf("очередь без графика не должна мешать остальным: %v", kinds)
	}
}

func TestCycleSurvivesEnqueueFailure(t *testing.T) {
	posts := []string{"Графік на 18.11\n4.1: 10:00-12:00"}
	queue := &memQueue{err: errors.New("очередь недоступна")}
	now := time.Date(2026, time.November, 18, 9, 45, 0, 0, kyiv)
	w := newTestWatcher(&stubFetcher{posts: posts}, []domain.Subscription{
		{TGUserID: 7, Queue: "4.1"},
	}, queue, now)

	w.Cycle(context.Background())

	queue.err = nil
	w.Cycle(context.Background())
	if len(queue.kinds()) != 0 {
		t.Fatalf("неудачная постановка считается использованной попыткой: %v", queue.kinds())
	}
}

type stubDeliverer struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (s *stubDeliverer) Deliver(_ int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
	return s.err
}

type onceQueue struct {
	job    domain.AlertJob
	popped bool
}

func (q *onceQueue) Enqueue(context.Context, domain.AlertJob) error { return nil }

func (q *onceQueue) Pop(ctx context.Context) (domain.AlertJob, error) {
	if q.popped {
		<-ctx.Done()
		return domain.AlertJob{}, ctx.Err()
	}
	q.popped = true
	return q.job, nil
}

func TestWorkerDeliversAndStops(t *testing.T) {
	deliverer := &stubDeliverer{}
	queue := &onceQueue{job: domain.AlertJob{TGUserID: 7, Kind: "schedule_changed", Text: "тест"}}
	w := NewWorker(zerolog.Nop(), queue, deliverer)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		deliverer.mu.Lock()
		n := len(deliverer.texts)
		deliverer.mu.Unlock()
		if n == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("воркер не доставил задачу")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("воркер не остановился по отмене контекста")
	}
}
