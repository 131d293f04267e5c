package tgweb

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"svitlo-bot/internal/infra/metrics"
)

const maxBodyBytes = 4 << 20

// brRe — переводы строк внутри поста приходят как <br>, а извлечение текста
// их схлопывает, поэтому теги заменяются на "\n" до разбора.
var brRe = regexp.MustCompile(`(?i)<br\s*/?>`)

// Fetcher получает последние посты публичного канала через веб-превью
// t.me/s/<channel>. Не требует MTProto-авторизации, поэтому используется по
// умолчанию.
type Fetcher struct {
	client  *http.Client
	channel string
	log     zerolog.Logger
}

func NewFetcher(channel string, timeout time.Duration, log zerolog.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		channel: strings.TrimPrefix(channel, "@"),
		log:     log,
	}
}

// FetchRecent возвращает тексты последних постов, от старых к новым.
func (f *Fetcher) FetchRecent(ctx context.Context, limit int) ([]string, error) {
	// Метка времени в запросе обходит кэш превью на стороне Telegram.
	endpoint := fmt.Sprintf("https://t.me/s/%s?t=%d", f.channel, time.Now().Unix())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("создание запроса: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	start := time.Now()
	resp, err := f.client.Do(req)
	metrics.ObserveNetworkRequest("tgweb", "fetch_posts", f.channel, start, err)
	if err != nil {
		return nil, fmt.Errorf("запрос превью канала: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("превью канала %s: статус %d", f.channel, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("чтение ответа: %w", err)
	}
	posts, err := ExtractPosts(body, limit)
	if err != nil {
		return nil, err
	}
	f.log.Debug().Int("posts", len(posts)).Str("channel", f.channel).Msg("tgweb: посты получены")
	return posts, nil
}

// ExtractPosts извлекает тексты постов из HTML страницы превью. Посты на
// странице идут от старых к новым; при limit > 0 остаются последние limit.
func ExtractPosts(html []byte, limit int) ([]string, error) {
	html = brRe.ReplaceAll(html, []byte("\n"))
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("разбор HTML: %w", err)
	}
	var posts []string
	doc.Find("div.tgme_widget_message_text").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			posts = append(posts, text)
		}
	})
	if limit > 0 && len(posts) > limit {
		posts = posts[len(posts)-limit:]
	}
	return posts, nil
}
