package mtproto

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"
	"github.com/rs/zerolog"

	"svitlo-bot/internal/infra/metrics"
)

// Fetcher получает историю канала через MTProto (gotd). Используется, когда
// заданы TG_API_ID и TG_API_HASH; в отличие от веб-превью отдаёт полную
// историю и не зависит от вёрстки страницы t.me.
type Fetcher struct {
	client  *telegram.Client
	channel string
	log     zerolog.Logger
}

// NewFetcher создаёт MTProto клиента с файловым хранилищем сессии.
func NewFetcher(apiID int, apiHash, channel, sessionFile string, log zerolog.Logger) *Fetcher {
	client := telegram.NewClient(apiID, apiHash, telegram.Options{
		SessionStorage: &session.FileStorage{Path: sessionFile},
	})
	return &Fetcher{
		client:  client,
		channel: strings.TrimPrefix(channel, "@"),
		log:     log,
	}
}

// FetchRecent возвращает тексты последних постов, от старых к новым.
func (f *Fetcher) FetchRecent(ctx context.Context, limit int) ([]string, error) {
	var posts []string
	start := time.Now()
	err := f.client.Run(ctx, func(ctx context.Context) error {
		api := f.client.API()
		resolved, err := api.ContactsResolveUsername(ctx, f.channel)
		if err != nil {
			return fmt.Errorf("резолв канала %s: %w", f.channel, err)
		}
		var channel *tg.Channel
		for _, chat := range resolved.Chats {
			if ch, ok := chat.(*tg.Channel); ok {
				channel = ch
				break
			}
		}
		if channel == nil {
			return fmt.Errorf("канал %s не найден среди чатов", f.channel)
		}
		history, err := api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
			Peer:  &tg.InputPeerChannel{ChannelID: channel.ID, AccessHash: channel.AccessHash},
			Limit: limit,
		})
		if err != nil {
			return fmt.Errorf("история канала %s: %w", f.channel, err)
		}
		messages, ok := history.(*tg.MessagesChannelMessages)
		if !ok {
			return fmt.Errorf("неожиданный ответ истории: %T", history)
		}
		// История приходит от новых к старым, разворачиваем.
		for i := len(messages.Messages) - 1; i >= 0; i-- {
			if msg, ok := messages.Messages[i].(*tg.Message); ok && msg.Message != "" {
				posts = append(posts, msg.Message)
			}
		}
		return nil
	})
	metrics.ObserveNetworkRequest("mtproto", "messages_get_history", f.channel, start, err)
	if err != nil {
		return nil, err
	}
	f.log.Debug().Int("posts", len(posts)).Str("channel", f.channel).Msg("mtproto: посты получены")
	return posts, nil
}
