package hooks

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/curionet/curio/internal/model"
)

// Webhook posts lifecycle events to an external curation module as JSON.
// Deliveries are best-effort: failures are logged and dropped, never
// surfaced to the engine.
type Webhook struct {
	client *resty.Client
	log    zerolog.Logger
}

// NewWebhook builds a notifier posting to baseURL.
func NewWebhook(baseURL string, log zerolog.Logger) *Webhook {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second)
	return &Webhook{client: c, log: log}
}

type event struct {
	DeliveryID string      `json:"deliveryId"`
	Event      string      `json:"event"`
	SentAt     time.Time   `json:"sentAt"`
	Payload    interface{} `json:"payload"`
}

func (w *Webhook) post(ctx context.Context, name string, payload interface{}) {
	ev := event{
		DeliveryID: uuid.New().String(),
		Event:      name,
		SentAt:     time.Now().UTC(),
		Payload:    payload,
	}
	resp, err := w.client.R().SetContext(ctx).SetBody(&ev).Post("/events")
	if err != nil {
		w.log.Warn().Err(err).Str("event", name).Msg("webhook delivery failed")
		return
	}
	if resp.StatusCode() >= http.StatusMultipleChoices {
		w.log.Warn().Int("status", resp.StatusCode()).Str("event", name).Msg("webhook delivery rejected")
	}
}

func (w *Webhook) OnSessionCreated(ctx context.Context, s *model.Session) {
	w.post(ctx, "session.created", s)
}

func (w *Webhook) OnReaction(ctx context.Context, s *model.Session, reactor string) {
	w.post(ctx, "session.reaction", struct {
		Session *model.Session `json:"session"`
		Reactor string         `json:"reactor"`
	}{s, reactor})
}

func (w *Webhook) OnMessage(ctx context.Context, m *model.Message) {
	w.post(ctx, "session.message", m)
}

func (w *Webhook) OnSessionSelected(ctx context.Context, res *model.SelectionResult) {
	w.post(ctx, "period.selected", res)
}
