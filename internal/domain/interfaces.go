package domain

import (
	"context"
	"time"
)

// PostFetcher возвращает последние сырые тексты постов канала, от старых к
// новым. При любой сетевой ошибке реализация возвращает ошибку, а не панику;
// ретраи и бэкофф — забота самой реализации.
type PostFetcher interface {
	FetchRecent(ctx context.Context, limit int) ([]string, error)
}

// SubscriptionRepo управляет подписками пользователей на очереди.
type SubscriptionRepo interface {
	// Add сохраняет подписку. created == false, если пара (user, queue) уже есть.
	Add(ctx context.Context, tgUserID int64, queue, name string) (sub Subscription, created bool, err error)
	// Remove удаляет подписку. removed == false, если её не было.
	Remove(ctx context.Context, tgUserID int64, queue string) (removed bool, err error)
	ListByUser(ctx context.Context, tgUserID int64) ([]Subscription, error)
	ListAll(ctx context.Context) ([]Subscription, error)
}

// PrefsRepo хранит время предупреждения пользователя в минутах.
type PrefsRepo interface {
	// LeadMinutes возвращает (0, nil), если пользователь ничего не настраивал.
	LeadMinutes(ctx context.Context, tgUserID int64) (int, error)
	SetLeadMinutes(ctx context.Context, tgUserID int64, minutes int) error
}

// Deliverer отправляет текстовое сообщение пользователю. Ошибка доставки
// логируется вызывающей стороной и никогда не приводит к повтору.
type Deliverer interface {
	Deliver(tgUserID int64, text string) error
}

// AlertQueue — очередь задач доставки между наблюдателем и воркером.
type AlertQueue interface {
	Enqueue(ctx context.Context, job AlertJob) error
	Pop(ctx context.Context) (AlertJob, error)
}

// PostCache кэширует последнюю выборку постов, чтобы запросы бота в пределах
// одного периода опроса не ходили в сеть повторно.
type PostCache interface {
	StorePosts(ctx context.Context, posts []string, ttl time.Duration) error
	// LoadPosts возвращает (nil, nil) при промахе кэша.
	LoadPosts(ctx context.Context) ([]string, error)
}
