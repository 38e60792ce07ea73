// Package status posts free-text run progress to an optional webhook.
// Delivery is best-effort: a failed post is logged and never affects the
// pipeline.
package status

import (
	"context"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
)

const postTimeout = 10 * time.Second

// Event is the webhook payload. Terminal marks the run's final message.
type Event struct {
	RunID    string    `json:"run_id,omitempty"`
	Message  string    `json:"message"`
	Terminal bool      `json:"terminal"`
	SentAt   time.Time `json:"sent_at"`
}

// Notifier posts progress events to a webhook. A nil *Notifier is valid and
// does nothing, so callers never need to guard their calls.
type Notifier struct {
	client *resty.Client
	url    string
}

// NewNotifier returns a notifier for the webhook URL, or nil when the URL is
// empty.
func NewNotifier(webhookURL string) *Notifier {
	if webhookURL == "" {
		return nil
	}
	client := resty.New()
	client.SetTimeout(postTimeout)
	return &Notifier{client: client, url: webhookURL}
}

// Progress reports an intermediate message.
func (n *Notifier) Progress(ctx context.Context, message string) {
	n.Post(ctx, Event{Message: message})
}

// Done reports the run's final message.
func (n *Notifier) Done(ctx context.Context, message string) {
	n.Post(ctx, Event{Message: message, Terminal: true})
}

// Post sends a fully populated event. SentAt is stamped here.
func (n *Notifier) Post(ctx context.Context, ev Event) {
	if n == nil {
		return
	}
	ev.SentAt = time.Now().UTC()
	res, err := n.client.R().
		SetContext(ctx).
		SetHeader("content-type", "application/json").
		SetBody(ev).
		Post(n.url)
	if err != nil {
		log.Printf("[STATUS] Warning: failed to post status: %v", err)
		return
	}
	if res.StatusCode() >= 300 {
		log.Printf("[STATUS] Warning: status webhook returned %d", res.StatusCode())
	}
}
