package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kevwatch/kevwatch/model"
)

// payload is the Slack/Teams-compatible webhook body.
type payload struct {
	Text string `json:"text"`
}

// Notifier dispatches alert messages to webhook sinks.
type Notifier struct {
	client *http.Client
	logger *zap.Logger
}

// NewNotifier creates a Notifier. A non-positive timeout falls back to 10
// seconds.
func NewNotifier(timeout time.Duration, logger *zap.Logger) *Notifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Notifier{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Send renders one aggregate message covering all records and posts it to
// every sink. It is a no-op when records or sinks are empty. A failing sink
// is logged and the remaining sinks are still attempted; partial delivery
// is an accepted outcome.
func (n *Notifier) Send(ctx context.Context, records []model.Vulnerability, sinks map[string]string) {
	if len(records) == 0 || len(sinks) == 0 {
		return
	}

	body, err := json.Marshal(payload{Text: FormatMessage(records)})
	if err != nil {
		n.logger.Error("Failed to build notification payload", zap.Error(err))
		return
	}

	for name, url := range sinks {
		if err := n.post(ctx, url, body); err != nil {
			n.logger.Warn("Failed to send notification",
				zap.String("sink", name), zap.Error(err))
			continue
		}
		n.logger.Info("Notification sent", zap.String("sink", name))
	}
}

func (n *Notifier) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sink returned status %d", resp.StatusCode)
	}
	return nil
}

// FormatMessage renders the aggregate alert text for a set of new records.
func FormatMessage(records []model.Vulnerability) string {
	var b strings.Builder
	b.WriteString("*New CISA KEVs Added!*")

	for _, r := range records {
		b.WriteString("\n\n")
		fmt.Fprintf(&b, "*%s*: %s %s - %s\n", r.CveID, r.VendorProject, r.Product, r.VulnerabilityName)
		fmt.Fprintf(&b, "*Description:* %s\n", r.ShortDescription)
		fmt.Fprintf(&b, "*Added:* %s\n", r.DateAdded)
		fmt.Fprintf(&b, "*More Info:* %s", r.Notes)
	}

	return b.String()
}
