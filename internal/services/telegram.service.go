package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"resmon/internal/models"

	"go.uber.org/zap"
)

const (
	DefaultTelegramAPIURL = "https://api.telegram.org"
	telegramTimeout       = 30 * time.Second
	maxTelegramResponse   = 1 << 20
)

// TelegramError is a non-success reply from the Bot API
type TelegramError struct {
	Method      string
	StatusCode  int
	Description string
}

func (e *TelegramError) Error() string {
	return fmt.Sprintf("telegram %s failed (status %d): %s", e.Method, e.StatusCode, e.Description)
}

type telegramResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type deleteMessageRequest struct {
	ChatID    string `json:"chat_id"`
	MessageID int64  `json:"message_id"`
}

// TelegramClient talks to the Telegram Bot API
type TelegramClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewTelegramClient returns a client for the bot identified by token. An
// empty baseURL uses the public API; a nil httpClient gets a 30s timeout.
func NewTelegramClient(baseURL, token string, httpClient *http.Client) *TelegramClient {
	if baseURL == "" {
		baseURL = DefaultTelegramAPIURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: telegramTimeout}
	}
	return &TelegramClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

// SendMessage posts a Markdown message and returns its message id
func (c *TelegramClient) SendMessage(ctx context.Context, chatID, text string) (int64, error) {
	var result struct {
		MessageID int64 `json:"message_id"`
	}

	err := c.call(ctx, "sendMessage", sendMessageRequest{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "Markdown",
	}, &result)
	if err != nil {
		return 0, err
	}

	return result.MessageID, nil
}

// DeleteMessage removes a previously sent message
func (c *TelegramClient) DeleteMessage(ctx context.Context, chatID string, messageID int64) error {
	return c.call(ctx, "deleteMessage", deleteMessageRequest{
		ChatID:    chatID,
		MessageID: messageID,
	}, nil)
}

func (c *TelegramClient) call(ctx context.Context, method string, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", method, err)
	}

	endpoint := c.baseURL + "/bot" + c.token + "/" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, redactToken(err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, redactToken(err))
	}
	defer resp.Body.Close()

	var reply telegramResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxTelegramResponse)).Decode(&reply); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &TelegramError{Method: method, StatusCode: resp.StatusCode, Description: resp.Status}
		}
		return fmt.Errorf("decode %s response: %w", method, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || !reply.OK {
		return &TelegramError{Method: method, StatusCode: resp.StatusCode, Description: reply.Description}
	}

	if result != nil && len(reply.Result) > 0 {
		if err := json.Unmarshal(reply.Result, result); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}

	return nil
}

// redactToken strips the request URL, which embeds the bot token
func redactToken(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

// MessageClient sends and retracts chat messages
type MessageClient interface {
	SendMessage(ctx context.Context, chatID, text string) (int64, error)
	DeleteMessage(ctx context.Context, chatID string, messageID int64) error
}

// Notifier delivers snapshots to a chat, replacing the previous report
type Notifier struct {
	client      MessageClient
	chatID      string
	logger      *zap.Logger
	previousID  int64
	hasPrevious bool
}

// NewNotifier returns a sink posting to chatID through client
func NewNotifier(client MessageClient, chatID string, logger *zap.Logger) *Notifier {
	return &Notifier{
		client: client,
		chatID: chatID,
		logger: logger,
	}
}

// Deliver retracts the last report (best effort) and sends a new one. The
// tracked id is cleared after every retraction attempt, whatever the outcome.
func (n *Notifier) Deliver(ctx context.Context, snapshot models.MetricsSnapshot) error {
	if n.hasPrevious {
		if err := n.client.DeleteMessage(ctx, n.chatID, n.previousID); err != nil && ctx.Err() == nil {
			n.logger.Warn("failed to retract previous report",
				zap.Int64("message_id", n.previousID),
				zap.Error(err),
			)
		}
		n.previousID = 0
		n.hasPrevious = false
	}

	id, err := n.client.SendMessage(ctx, n.chatID, FormatTelegramMessage(snapshot))
	if err != nil {
		return fmt.Errorf("send report: %w", err)
	}

	n.previousID = id
	n.hasPrevious = true
	n.logger.Debug("report sent", zap.Int64("message_id", id))
	return nil
}

// previousMessage returns the id of the report that will be retracted next
func (n *Notifier) previousMessage() (int64, bool) {
	return n.previousID, n.hasPrevious
}

// FormatTelegramMessage renders a snapshot as a Markdown chat message
func FormatTelegramMessage(snapshot models.MetricsSnapshot) string {
	var b strings.Builder

	b.WriteString("*Resource Monitor*\n")
	fmt.Fprintf(&b, "_Timestamp:_ %s\n\n", snapshot.Timestamp.Format(time.RFC3339))
	writeTelegramBar(&b, "CPU", snapshot.CPUUsage)
	writeTelegramBar(&b, "Memory", snapshot.MemoryUsage)

	b.WriteString("\n*Disk Usage:*\n")
	if len(snapshot.Disks) == 0 {
		b.WriteString("_no fixed volumes_\n")
	}
	for _, d := range snapshot.Disks {
		level := LevelFor(d.UsagePercentage)
		fmt.Fprintf(&b, "%s `%s` `%s` %s used\n    Free: %s / Total: %s\n",
			level.Indicator(),
			strings.ReplaceAll(d.Name, "`", "'"),
			ProgressBar(d.UsagePercentage),
			FormatPercent(d.UsagePercentage),
			FormatBytes(d.FreeSpace),
			FormatBytes(d.TotalSize),
		)
	}

	return b.String()
}

func writeTelegramBar(b *strings.Builder, label string, percent float64) {
	fmt.Fprintf(b, "%s *%s:* `%s` %s\n",
		LevelFor(percent).Indicator(),
		label,
		ProgressBar(percent),
		FormatPercent(percent),
	)
}
