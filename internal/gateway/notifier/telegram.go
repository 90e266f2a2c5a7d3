package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	defaultTelegramBaseURL = "https://api.telegram.org"
	telegramAttempts       = 3
)

// Telegram pushes messages to one chat through the Bot API.
type Telegram struct {
	BotToken   string
	ChatID     string
	BaseURL    string
	Client     *http.Client
	RetryDelay time.Duration
}

func NewTelegram(botToken, chatID string) *Telegram {
	return &Telegram{
		BotToken:   botToken,
		ChatID:     chatID,
		BaseURL:    defaultTelegramBaseURL,
		Client:     &http.Client{Timeout: 10 * time.Second},
		RetryDelay: time.Second,
	}
}

// SendText posts text as Markdown, retrying up to three times.
func (t *Telegram) SendText(ctx context.Context, text string) error {
	if t.BotToken == "" || t.ChatID == "" {
		return fmt.Errorf("telegram bot_token and chat_id are required")
	}
	base := strings.TrimRight(t.BaseURL, "/")
	if base == "" {
		base = defaultTelegramBaseURL
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", base, t.BotToken)
	body, err := json.Marshal(map[string]any{
		"chat_id":                  t.ChatID,
		"text":                     text,
		"parse_mode":               "Markdown",
		"disable_web_page_preview": true,
	})
	if err != nil {
		return err
	}
	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}

	var lastErr error
	for i := 0; i < telegramAttempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(i) * t.RetryDelay):
			}
		}
		lastErr = t.post(ctx, client, url, body)
		if lastErr == nil {
			return nil
		}
	}
	return lastErr
}

func (t *Telegram) post(ctx context.Context, client *http.Client, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	reply, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	result := gjson.ParseBytes(reply)
	if resp.StatusCode/100 == 2 && (!result.Get("ok").Exists() || result.Get("ok").Bool()) {
		return nil
	}
	if desc := result.Get("description").String(); desc != "" {
		return fmt.Errorf("telegram status=%d: %s", resp.StatusCode, desc)
	}
	return fmt.Errorf("telegram status=%d", resp.StatusCode)
}
