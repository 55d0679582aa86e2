package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dropwatch/config"
)

// Telegram delivers alerts through the Bot API's sendMessage method.
type Telegram struct {
	cfg     config.TelegramConfig
	client  *http.Client
	baseURL string
}

// NewTelegram builds a Telegram channel from configuration.
func NewTelegram(cfg config.TelegramConfig) *Telegram {
	return &Telegram{
		cfg:     cfg,
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: "https://api.telegram.org",
	}
}

// Send posts the rendered alert as a plain-text message.
func (t *Telegram) Send(ctx context.Context, alert Alert) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.cfg.BotToken)

	form := url.Values{}
	form.Set("chat_id", t.cfg.ChatID)
	form.Set("text", Message(alert))
	form.Set("disable_web_page_preview", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram api returned %s: %s", resp.Status, string(body))
	}
	return nil
}
