package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// TelegramGateway sends messages through the Bot API. It holds a plain
// http.Client and must only be driven from the bridge's owning goroutine.
type TelegramGateway struct {
	token   string
	baseURL string
	client  *http.Client
}

func NewTelegramGateway(token, baseURL string) *TelegramGateway {
	return &TelegramGateway{
		token:   token,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type sendMessageRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

func (g *TelegramGateway) Send(ctx context.Context, chatID int64, text string) error {
	body, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return fmt.Errorf("marshal sendMessage: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", g.baseURL, g.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	var parsed sendMessageResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&parsed); err != nil {
		return fmt.Errorf("decode sendMessage response (status %d): %w", resp.StatusCode, err)
	}

	if !parsed.OK {
		return fmt.Errorf("telegram rejected message (status %d): %s", resp.StatusCode, parsed.Description)
	}

	return nil
}

// LogGateway is the dev fallback when no bot token is configured: it writes
// the notification to the process log and reports success.
type LogGateway struct{}

func (LogGateway) Send(_ context.Context, chatID int64, text string) error {
	log.Printf("notification (dry run) chat_id=%d text=%q", chatID, text)
	return nil
}
