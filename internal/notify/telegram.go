package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBotAPIURL is the public Telegram Bot API endpoint.
const DefaultBotAPIURL = "https://api.telegram.org"

// ErrDeliveryFailed means the Bot API refused or could not take the message.
var ErrDeliveryFailed = errors.New("telegram delivery failed")

// Sender delivers a text message to a Telegram chat.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// BotClient sends messages through the Telegram Bot API.
type BotClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewBotClient creates a client for the bot identified by token.
// An empty baseURL selects DefaultBotAPIURL.
func NewBotClient(baseURL, token string) *BotClient {
	if baseURL == "" {
		baseURL = DefaultBotAPIURL
	}
	return &BotClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
	}
}

// sendMessageRequest is the wire format for POST /bot<token>/sendMessage.
type sendMessageRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

// botResponse is the envelope every Bot API method replies with.
type botResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
}

// Send posts text to the chat. Telegram reports failures both through the
// HTTP status and the "ok" field; either one fails the call.
func (c *BotClient) Send(ctx context.Context, chatID int64, text string) error {
	body, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return fmt.Errorf("encoding sendMessage: %w", err)
	}

	endpoint := c.baseURL + "/bot" + c.token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The URL carries the bot token; keep it out of the error.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()

	var decoded botResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("%w: status %d, undecodable response: %v", ErrDeliveryFailed, resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !decoded.OK {
		return fmt.Errorf("%w: status %d: %s", ErrDeliveryFailed, resp.StatusCode, decoded.Description)
	}
	return nil
}
