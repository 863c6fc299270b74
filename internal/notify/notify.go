// Package notify sends best-effort run summaries to operators.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"github.com/content-optimizer/pkg/logger"
)

// DefaultTimeout bounds a whole notification, retries included
const DefaultTimeout = 5 * time.Second

// Notifier delivers a text message. Implementations never fail the caller.
type Notifier interface {
	Notify(ctx context.Context, text string)
}

// Nop discards every message
type Nop struct{}

func (Nop) Notify(context.Context, string) {}

// SlackConfig configures the Slack incoming-webhook notifier
type SlackConfig struct {
	WebhookURL string
	Timeout    time.Duration
	MaxRetries int
}

// Slack posts messages to an incoming webhook
type Slack struct {
	url      string
	timeout  time.Duration
	client   *http.Client
	executor failsafe.Executor[*http.Response]
	log      *logger.Logger
}

// NewSlack creates a Slack notifier. An empty webhook URL yields a notifier
// that does nothing.
func NewSlack(cfg SlackConfig, log *logger.Logger) *Slack {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	retry := retrypolicy.NewBuilder[*http.Response]().
		WithBackoff(200*time.Millisecond, time.Second).
		WithMaxRetries(cfg.MaxRetries).
		HandleIf(shouldRetry).
		ReturnLastFailure().
		Build()

	return &Slack{
		url:      cfg.WebhookURL,
		timeout:  cfg.Timeout,
		client:   &http.Client{},
		executor: failsafe.With[*http.Response](retry),
		log:      log.WithComponent("slack"),
	}
}

// Enabled reports whether a webhook URL is configured
func (s *Slack) Enabled() bool {
	return s.url != ""
}

// Notify posts text as {"text": ...}. Failures are logged and dropped.
func (s *Slack) Notify(ctx context.Context, text string) {
	if !s.Enabled() {
		return
	}

	if err := s.send(ctx, text); err != nil {
		s.log.Warn().Err(err).Msg("Slack notification failed")
		return
	}
	s.log.Debug().Msg("Slack notification sent")
}

func (s *Slack) send(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.executor.WithContext(ctx).Get(func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, err
		}
		// Only the status is needed; release the connection for the next attempt
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		return resp, nil
	})
	if err != nil {
		return err
	}

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func shouldRetry(resp *http.Response, err error) bool {
	if err != nil {
		return true
	}
	if resp == nil {
		return true
	}
	return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
}
