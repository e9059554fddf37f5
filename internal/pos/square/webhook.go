package square

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"log/slog"

	"github.com/platewise/pos-sync-backend/internal/pos"
)

// NormalizeWebhook validates a push notification's HMAC signature and maps
// it into a generic event. Unrecognized payloads return nil rather than an
// error: Square sends many event types this service does not consume.
func (p *Provider) NormalizeWebhook(payload []byte, signature string) *pos.NotificationEvent {
	if p.cfg.WebhookSignatureKey != "" {
		if !p.verifySignature(payload, signature) {
			p.logger.Warn("webhook signature mismatch")
			return nil
		}
	}

	var event struct {
		Type string         `json:"type"`
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		p.logger.Warn("webhook payload not JSON", slog.String("error", err.Error()))
		return nil
	}

	switch event.Type {
	case "inventory.count.updated":
		return &pos.NotificationEvent{Type: pos.EventInventoryUpdate, Payload: event.Data}
	case "order.created", "order.updated":
		return &pos.NotificationEvent{Type: pos.EventTransactionCreated, Payload: event.Data}
	default:
		return nil
	}
}

func (p *Provider) verifySignature(payload []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(p.cfg.WebhookSignatureKey))
	mac.Write(payload)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
