package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/arenaguard/arenaguard/internal/suspicion"
)

const (
	deliverTimeout = 30 * time.Second
	backoffInitial = 500 * time.Millisecond
	maxRetries     = 3
)

// deliver sends webhook notifications for f to all configured targets.
// Errors are logged but do not affect the caller.
func (n *Notifier) deliver(f *Flag) {
	n.mu.Lock()
	webhooks := n.cfg.Webhooks
	n.mu.Unlock()

	for _, wh := range webhooks {
		url := wh.URL()
		if url == "" {
			continue
		}

		var err error
		switch wh.Type {
		case "slack":
			err = n.sendSlack(url, f)
		case "teams":
			err = n.sendTeams(url, f)
		case "http":
			err = n.sendHTTP(url, f)
		default:
			slog.Warn("notify: unknown webhook type — skipping", "type", wh.Type)
			continue
		}

		if err != nil {
			slog.Error("notify: webhook delivery failed",
				"type", wh.Type,
				"judge", f.JudgeID,
				"err", err,
			)
		} else {
			slog.Debug("notify: webhook delivered",
				"type", wh.Type,
				"judge", f.JudgeID,
				"state", f.State,
			)
		}
	}
}

func (n *Notifier) sendSlack(url string, f *Flag) error {
	body, _ := json.Marshal(map[string]string{
		"text": fmt.Sprintf("*[%s]* %s", f.State, f.Message),
	})
	return n.post(url, body)
}

func (n *Notifier) sendTeams(url string, f *Flag) error {
	payload := map[string]interface{}{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"themeColor": statusColor(f.Status),
		"summary":    f.JudgeID,
		"title":      fmt.Sprintf("Arenaguard: judge %s %s", f.JudgeID, f.State),
		"text":       f.Message,
	}
	body, _ := json.Marshal(payload)
	return n.post(url, body)
}

func (n *Notifier) sendHTTP(url string, f *Flag) error {
	body, _ := json.Marshal(map[string]interface{}{"flag": f})
	return n.post(url, body)
}

// post delivers body to url, retrying transient failures with
// exponential backoff. Connection errors and 5xx responses are
// retried; 4xx responses are not.
func (n *Notifier) post(url string, body []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()

	bo := retry.WithMaxRetries(maxRetries, retry.NewExponential(backoffInitial))
	return retry.Do(ctx, bo, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.client.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("http post: %w", err))
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return retry.RetryableError(fmt.Errorf("webhook returned HTTP %d", resp.StatusCode))
		}
		if resp.StatusCode >= 400 {
			return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
		}
		return nil
	})
}

func statusColor(s suspicion.Status) string {
	switch s {
	case suspicion.StatusFlagged:
		return "FF4F6A"
	case suspicion.StatusSuspicious:
		return "FFAB40"
	default:
		return "00D4FF"
	}
}
