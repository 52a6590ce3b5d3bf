// Package notifier holds the delivery backends notifications go out through.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/gofrs/uuid"
	"go.uber.org/zap"

	"github.com/taskforce-ops/sentinel/internal/domain"
)

// webhookPayload is the wire shape delivered to the configured endpoint. The
// receiving side (a chat bridge, usually) routes on channel and kind.
type webhookPayload struct {
	DeliveryID string   `json:"delivery_id"`
	Channel    string   `json:"channel"`
	Kind       string   `json:"kind"`
	Title      string   `json:"title"`
	Body       string   `json:"body"`
	URL        string   `json:"url,omitempty"`
	Recipients []string `json:"recipients,omitempty"`
}

type Webhook struct {
	logger *zap.Logger
	statsd statsd.ClientInterface
	client *http.Client
	url    string
}

func NewWebhook(logger *zap.Logger, statsdClient statsd.ClientInterface, url string) *Webhook {
	return NewWebhookWithHTTPClient(logger, statsdClient, url, &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        4,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     60 * time.Second,
		},
	})
}

func NewWebhookWithHTTPClient(logger *zap.Logger, statsdClient statsd.ClientInterface, url string, client *http.Client) *Webhook {
	if statsdClient == nil {
		statsdClient = &statsd.NoOpClient{}
	}

	return &Webhook{
		logger: logger,
		statsd: statsdClient,
		client: client,
		url:    url,
	}
}

func (w *Webhook) Notify(ctx context.Context, n domain.Notification) error {
	id, err := uuid.NewV4()
	if err != nil {
		return err
	}

	payload := webhookPayload{
		DeliveryID: id.String(),
		Channel:    string(n.Channel),
		Kind:       n.Kind.String(),
		Title:      n.Title,
		Body:       n.Body,
		URL:        n.URL,
		Recipients: n.Recipients,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	res, err := w.client.Do(req)
	_ = w.statsd.Histogram("sentinel.webhook.latency", float64(time.Since(start).Milliseconds()), []string{}, 0.1)

	if err != nil {
		_ = w.statsd.Incr("sentinel.webhook.errors", []string{}, 1.0)
		return err
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_ = w.statsd.Incr("sentinel.webhook.errors", []string{}, 1.0)
		return fmt.Errorf("webhook returned status %d", res.StatusCode)
	}

	_ = w.statsd.Incr("sentinel.webhook.delivered", []string{fmt.Sprintf("kind:%s", n.Kind)}, 1.0)
	w.logger.Debug("delivered notification",
		zap.String("delivery#id", payload.DeliveryID),
		zap.String("channel", payload.Channel),
		zap.String("kind", payload.Kind))

	return nil
}
