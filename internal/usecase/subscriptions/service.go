package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"svitlo-bot/internal/domain"
)

var (
	// ErrInvalidQueue — номер очереди не похож на "4" или "4.1".
	ErrInvalidQueue = errors.New("некорректный номер очереди")
	// ErrAlreadySubscribed — очередь уже есть в списке пользователя.
	ErrAlreadySubscribed = errors.New("очередь уже есть в списке")
	// ErrNotSubscribed — очереди нет в списке пользователя.
	ErrNotSubscribed = errors.New("очереди нет в списке")
	// ErrLeadOutOfRange — время предупреждения вне диапазона 1..180 минут.
	ErrLeadOutOfRange = errors.New("время предупреждения вне диапазона 1..180 минут")
)

const (
	minLeadMinutes = 1
	maxLeadMinutes = 180
)

var queueRe = regexp.MustCompile(`^\d+(\.\d+)?$`)

// Service управляет подписками на очереди и настройкой времени предупреждения.
type Service struct {
	repo        domain.SubscriptionRepo
	prefs       domain.PrefsRepo
	defaultLead int
}

func NewService(repo domain.SubscriptionRepo, prefs domain.PrefsRepo, defaultLead int) *Service {
	if defaultLead <= 0 {
		defaultLead = 30
	}
	return &Service{repo: repo, prefs: prefs, defaultLead: defaultLead}
}

// ParseQueueInput разбирает пользовательский ввод "4.1 Дім" на номер очереди
// и необязательное название.
func ParseQueueInput(input string) (queue, name string, err error) {
	fields := strings.Fields(strings.TrimSpace(input))
	if len(fields) == 0 {
		return "", "", ErrInvalidQueue
	}
	queue = fields[0]
	if !queueRe.MatchString(queue) {
		return "", "", ErrInvalidQueue
	}
	return queue, strings.Join(fields[1:], " "), nil
}

// Subscribe добавляет очередь в список пользователя.
func (s *Service) Subscribe(ctx context.Context, tgUserID int64, input string) (domain.Subscription, error) {
	queue, name, err := ParseQueueInput(input)
	if err != nil {
		return domain.Subscription{}, err
	}
	sub, created, err := s.repo.Add(ctx, tgUserID, queue, name)
	if err != nil {
		return domain.Subscription{}, fmt.Errorf("сохранение подписки: %w", err)
	}
	if !created {
		return domain.Subscription{}, ErrAlreadySubscribed
	}
	return sub, nil
}

// Unsubscribe убирает очередь из списка пользователя.
func (s *Service) Unsubscribe(ctx context.Context, tgUserID int64, queue string) error {
	removed, err := s.repo.Remove(ctx, tgUserID, queue)
	if err != nil {
		return fmt.Errorf("удаление подписки: %w", err)
	}
	if !removed {
		return ErrNotSubscribed
	}
	return nil
}

// List возвращает подписки пользователя в порядке добавления.
func (s *Service) List(ctx context.Context, tgUserID int64) ([]domain.Subscription, error) {
	subs, err := s.repo.ListByUser(ctx, tgUserID)
	if err != nil {
		return nil, fmt.Errorf("чтение подписок: %w", err)
	}
	return subs, nil
}

// SetLead сохраняет время предупреждения пользователя в минутах.
func (s *Service) SetLead(ctx context.Context, tgUserID int64, minutes int) error {
	if minutes < minLeadMinutes || minutes > maxLeadMinutes {
		return ErrLeadOutOfRange
	}
	if err := s.prefs.SetLeadMinutes(ctx, tgUserID, minutes); err != nil {
		return fmt.Errorf("сохранение времени предупреждения: %w", err)
	}
	return nil
}

// Lead возвращает время предупреждения пользователя, с дефолтом, когда
// настройка не задана или недоступна.
func (s *Service) Lead(ctx context.Context, tgUserID int64) int {
	minutes, err := s.prefs.LeadMinutes(ctx, tgUserID)
	if err != nil || minutes <= 0 {
		return s.defaultLead
	}
	return minutes
}
