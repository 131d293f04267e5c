package tgweb

import (
	"strings"
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html><body>
<div class="tgme_widget_message_wrap">
  <div class="tgme_widget_message_text js-message_text" dir="auto">Новини міста</div>
</div>
<div class="tgme_widget_message_wrap">
  <div class="tgme_widget_message_text js-message_text" dir="auto">Графік на 18.11<br/>4.1: 08:00-12:00<br>4.2: 12:00-16:00</div>
</div>
<div class="tgme_widget_message_wrap">
  <div class="tgme_widget_message_text js-message_text" dir="auto">  </div>
</div>
</body></html>`

func TestExtractPosts(t *testing.T) {
	posts, err := ExtractPosts([]byte(samplePage), 0)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("пустые посты должны отбрасываться, получено %d", len(posts))
	}
	lines := strings.Split(posts[1], "\n")
	if len(lines) != 3 {
		t.Fatalf("<br> должен превращаться в перевод строки, получено %q", posts[1])
	}
	if lines[1] != "4.1: 08:00-12:00" {
		t.Fatalf("получено %q", lines[1])
	}
}

func TestExtractPostsKeepsNewest(t *testing.T) {
	posts, err := ExtractPosts([]byte(samplePage), 1)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if len(posts) != 1 || !strings.HasPrefix(posts[0], "Графік") {
		t.Fatalf("при ограничении должны оставаться самые свежие посты: %v", posts)
	}
}
