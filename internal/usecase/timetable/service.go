package timetable

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"svitlo-bot/internal/domain"
)

// ErrNoData возвращается, когда в свежих постах нет графика для очереди.
var ErrNoData = errors.New("график для очереди не найден в свежих постах")

// Service отвечает на запросы о расписании очереди: достаёт свежие посты,
// извлекает интервалы и строит снимок графика. Кэш постов позволяет боту и
// циклу опроса делить одну выборку внутри периода опроса.
type Service struct {
	fetcher  domain.PostFetcher
	cache    domain.PostCache
	limit    int
	cacheTTL time.Duration
}

func NewService(fetcher domain.PostFetcher, cache domain.PostCache, limit int, cacheTTL time.Duration) *Service {
	if limit <= 0 {
		limit = 10
	}
	return &Service{fetcher: fetcher, cache: cache, limit: limit, cacheTTL: cacheTTL}
}

// RecentPosts возвращает последние посты канала, от старых к новым,
// переиспользуя кэш, пока тот не протух.
func (s *Service) RecentPosts(ctx context.Context) ([]string, error) {
	if s.cache != nil {
		if posts, err := s.cache.LoadPosts(ctx); err == nil && len(posts) > 0 {
			return posts, nil
		}
	}
	posts, err := s.fetcher.FetchRecent(ctx, s.limit)
	if err != nil {
		return nil, fmt.Errorf("получение постов канала: %w", err)
	}
	if s.cache != nil && len(posts) > 0 {
		_ = s.cache.StorePosts(ctx, posts, s.cacheTTL)
	}
	return posts, nil
}

// SnapshotFromPosts строит снимок графика очереди из готовой выборки постов.
func (s *Service) SnapshotFromPosts(posts []string, queue string, now time.Time) (domain.Snapshot, bool) {
	raw, postText, ok := FindSchedule(posts, queue)
	if !ok {
		return domain.Snapshot{}, false
	}
	intervals := Canonicalize(raw, now)
	if len(intervals) == 0 {
		return domain.Snapshot{}, false
	}
	return domain.Snapshot{
		Queue:       queue,
		Raw:         raw,
		Intervals:   intervals,
		Fingerprint: Fingerprint(queue, intervals),
		DateLabel:   DateLabel(postText, now),
	}, true
}

// Snapshot достаёт свежие посты и строит снимок графика очереди.
func (s *Service) Snapshot(ctx context.Context, queue string, now time.Time) (domain.Snapshot, error) {
	posts, err := s.RecentPosts(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	snap, ok := s.SnapshotFromPosts(posts, queue, now)
	if !ok {
		return domain.Snapshot{}, ErrNoData
	}
	return snap, nil
}

// State возвращает текущее состояние питания очереди вместе со снимком.
func (s *Service) State(ctx context.Context, queue string, now time.Time) (domain.PowerState, domain.Snapshot, error) {
	snap, err := s.Snapshot(ctx, queue, now)
	if err != nil {
		return domain.PowerState{}, domain.Snapshot{}, err
	}
	return StateAt(snap.Intervals, now), snap, nil
}

// Fingerprint — отпечаток графика для детекции изменений. Считается по
// нормализованному списку интервалов, а не по тексту поста: косметические
// правки текста не должны будить подписчиков повторно.
func Fingerprint(queue string, intervals []domain.Interval) string {
	h := sha256.New()
	io.WriteString(h, queue)
	for _, iv := range intervals {
		fmt.Fprintf(h, "|%s-%s", iv.RawStart, iv.RawEnd)
	}
	return hex.EncodeToString(h.Sum(nil))
}
