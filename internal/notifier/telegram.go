// Package notifier отправляет уведомления о новых заказах оператору в Telegram.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// TelegramAPIBase — адрес Telegram Bot API по умолчанию.
const TelegramAPIBase = "https://api.telegram.org"

// Client инкапсулирует отправку сообщений через Telegram Bot API.
// Отправка всегда ограничена по времени и никогда не обязана завершиться
// успехом: ошибка уведомления не должна ломать оформление заказа.
type Client struct {
	baseURL    string
	token      string
	chatID     string
	httpClient *retryablehttp.Client
	logger     *zap.Logger
}

// NewClient создаёт клиент Telegram. При пустом токене или идентификаторе
// чата клиент работает в диагностическом режиме: пишет сообщение в лог
// вместо сетевого вызова.
func NewClient(baseURL, token, chatID string, logger *zap.Logger) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = time.Second
	rc.HTTPClient.Timeout = 5 * time.Second
	rc.Logger = nil

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		chatID:     chatID,
		httpClient: rc,
		logger:     logger,
	}
}

// Configured сообщает, задана ли конфигурация внешнего канала.
func (c *Client) Configured() bool {
	return c.token != "" && c.chatID != ""
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
	Result      struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
}

func orderMessage(orderID int64, productName string, price int64, customerName string) string {
	return fmt.Sprintf(
		"🛒 Новый заказ!\n\nID: #%d\nТовар: %s\nЦена: %d руб.\nКлиент: %s\n\nПодтвердить: /approve_%d\nОтклонить: /reject_%d",
		orderID, productName, price, customerName, orderID, orderID,
	)
}

// Notify отправляет оператору сообщение о новом заказе и возвращает
// идентификатор сообщения для корреляции ответа. В диагностическом режиме
// возвращает (0, nil).
func (c *Client) Notify(ctx context.Context, orderID int64, productName string, price int64, customerName string) (int64, error) {
	text := orderMessage(orderID, productName, price, customerName)

	if !c.Configured() {
		c.logger.Info("telegram is not configured, notification skipped",
			zap.Int64("orderID", orderID),
			zap.String("message", text),
		)
		return 0, nil
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID: c.chatID,
		Text:   text,
	})
	if err != nil {
		return 0, fmt.Errorf("marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}

	if !result.OK {
		return 0, fmt.Errorf("telegram api error: %s", result.Description)
	}

	return result.Result.MessageID, nil
}
