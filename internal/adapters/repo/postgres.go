package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"svitlo-bot/internal/domain"
	"svitlo-bot/internal/infra/metrics"
)

// Postgres реализует репозитории подписок и настроек на основе pgxpool.
type Postgres struct {
	pool *pgxpool.Pool
}

var (
	_ domain.SubscriptionRepo = (*Postgres)(nil)
	_ domain.PrefsRepo        = (*Postgres)(nil)
)

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) connCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

func (p *Postgres) connCtxWithParent(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return p.connCtx()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

// Add сохраняет подписку. created == false при уже существующей паре.
func (p *Postgres) Add(ctx context.Context, tgUserID int64, queue, name string) (domain.Subscription, bool, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	var sub domain.Subscription
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
		INSERT INTO subscriptions (tg_user_id, queue, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (tg_user_id, queue) DO NOTHING
		RETURNING id, tg_user_id, queue, name, added_at`,
		tgUserID, queue, name).
		Scan(&sub.ID, &sub.TGUserID, &sub.Queue, &sub.Name, &sub.AddedAt)
	metrics.ObserveNetworkRequest("postgres", "subscriptions_insert", "subscriptions", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Subscription{}, false, nil
	}
	if err != nil {
		return domain.Subscription{}, false, fmt.Errorf("вставка подписки: %w", err)
	}
	return sub, true, nil
}

// Remove удаляет подписку. removed == false, если её не было.
func (p *Postgres) Remove(ctx context.Context, tgUserID int64, queue string) (bool, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `
		DELETE FROM subscriptions WHERE tg_user_id = $1 AND queue = $2`,
		tgUserID, queue)
	metrics.ObserveNetworkRequest("postgres", "subscriptions_delete", "subscriptions", start, err)
	if err != nil {
		return false, fmt.Errorf("удаление подписки: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListByUser возвращает подписки пользователя в порядке добавления.
func (p *Postgres) ListByUser(ctx context.Context, tgUserID int64) ([]domain.Subscription, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
		SELECT id, tg_user_id, queue, name, added_at
		FROM subscriptions
		WHERE tg_user_id = $1
		ORDER BY added_at, id`,
		tgUserID)
	metrics.ObserveNetworkRequest("postgres", "subscriptions_by_user", "subscriptions", start, err)
	if err != nil {
		return nil, fmt.Errorf("чтение подписок пользователя: %w", err)
	}
	defer rows.Close()
	return scanSubscriptions(rows)
}

// ListAll возвращает все подписки для цикла опроса.
func (p *Postgres) ListAll(ctx context.Context) ([]domain.Subscription, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
		SELECT id, tg_user_id, queue, name, added_at
		FROM subscriptions
		ORDER BY tg_user_id, added_at, id`)
	metrics.ObserveNetworkRequest("postgres", "subscriptions_all", "subscriptions", start, err)
	if err != nil {
		return nil, fmt.Errorf("чтение всех подписок: %w", err)
	}
	defer rows.Close()
	return scanSubscriptions(rows)
}

func scanSubscriptions(rows pgx.Rows) ([]domain.Subscription, error) {
	var subs []domain.Subscription
	for rows.Next() {
		var sub domain.Subscription
		if err := rows.Scan(&sub.ID, &sub.TGUserID, &sub.Queue, &sub.Name, &sub.AddedAt); err != nil {
			return nil, fmt.Errorf("скан подписки: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("обход подписок: %w", err)
	}
	return subs, nil
}

// LeadMinutes возвращает (0, nil), если пользователь ничего не настраивал.
func (p *Postgres) LeadMinutes(ctx context.Context, tgUserID int64) (int, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	var minutes int
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
		SELECT lead_minutes FROM notify_prefs WHERE tg_user_id = $1`,
		tgUserID).Scan(&minutes)
	metrics.ObserveNetworkRequest("postgres", "notify_prefs_get", "notify_prefs", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("чтение времени предупреждения: %w", err)
	}
	return minutes, nil
}

// SetLeadMinutes сохраняет время предупреждения пользователя.
func (p *Postgres) SetLeadMinutes(ctx context.Context, tgUserID int64, minutes int) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
		INSERT INTO notify_prefs (tg_user_id, lead_minutes)
		VALUES ($1, $2)
		ON CONFLICT (tg_user_id) DO UPDATE
		SET lead_minutes = EXCLUDED.lead_minutes, updated_at = now()`,
		tgUserID, minutes)
	metrics.ObserveNetworkRequest("postgres", "notify_prefs_upsert", "notify_prefs", start, err)
	if err != nil {
		return fmt.Errorf("сохранение времени предупреждения: %w", err)
	}
	return nil
}
