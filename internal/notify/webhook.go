package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/outlet-ops/internal/config"
)

// WebhookNotifier posts notification requests as JSON to a configured
// endpoint (the messaging bridge owns actual channel delivery). A
// blank URL disables delivery; every Send then reports failure so
// callers record notification_sent=false.
type WebhookNotifier struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewWebhookNotifier builds the notifier from config.
func NewWebhookNotifier(cfg config.NotificationConfig, logger *zap.Logger) *WebhookNotifier {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WebhookNotifier{
		url:    cfg.WebhookURL,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Send delivers one notification.
func (n *WebhookNotifier) Send(ctx context.Context, req Request) error {
	if n.url == "" {
		return fmt.Errorf("notify: webhook url not configured")
	}
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("notify: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("notify: deliver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notify: webhook returned status %d", resp.StatusCode)
	}
	n.logger.Debug("notification delivered",
		zap.String("recipient", req.Recipient),
		zap.String("kind", string(req.Kind)),
		zap.String("ticket_key", req.TicketKey))
	return nil
}
