package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/osa911/waitlist/internal/models"
)

// Notifier is told about every stored inquiry. Delivery is best effort.
type Notifier interface {
	NotifyInquiry(ctx context.Context, id string, inquiry *models.Inquiry) error
}

// TelegramService posts new inquiries to a Telegram chat
type TelegramService struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
}

// NewTelegramService creates a new Telegram service
func NewTelegramService(botToken, chatID string) *TelegramService {
	return &TelegramService{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  "https://api.telegram.org",
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// telegramMessage represents a Telegram API message
type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

// NotifyInquiry sends a summary of inquiry to the configured chat
func (s *TelegramService) NotifyInquiry(ctx context.Context, id string, inquiry *models.Inquiry) error {
	if s.botToken == "" || s.chatID == "" {
		return fmt.Errorf("telegram bot token or chat ID: %w", ErrNotConfigured)
	}

	var b strings.Builder
	b.WriteString("🆕 <b>New Inquiry</b>\n\n")
	fmt.Fprintf(&b, "<b>Name:</b> %s %s\n", escapeHTML(inquiry.FirstName), escapeHTML(inquiry.LastName))
	fmt.Fprintf(&b, "<b>Email:</b> %s\n", escapeHTML(inquiry.Email))
	fmt.Fprintf(&b, "<b>Organization:</b> %s\n", escapeHTML(inquiry.Org))
	if inquiry.Title != "" {
		fmt.Fprintf(&b, "<b>Title:</b> %s\n", escapeHTML(inquiry.Title))
	}
	fmt.Fprintf(&b, "<b>Country:</b> %s\n", escapeHTML(inquiry.Country))
	if inquiry.Notes != "" {
		fmt.Fprintf(&b, "<b>Notes:</b>\n%s\n", escapeHTML(inquiry.Notes))
	}
	fmt.Fprintf(&b, "\n<code>%s</code>", escapeHTML(id))

	jsonData, err := json.Marshal(telegramMessage{
		ChatID:    s.chatID,
		Text:      b.String(),
		ParseMode: "HTML",
	})
	if err != nil {
		return fmt.Errorf("failed to marshal telegram message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}
	return nil
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// escapeHTML escapes HTML special characters for Telegram
func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
