package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/platewise/pos-sync-backend/internal/api/dto"
	"github.com/platewise/pos-sync-backend/internal/pos"
)

// maxWebhookBody caps inbound webhook payload size.
const maxWebhookBody = 1 << 20

// WebhookHandler receives vendor push notifications.
type WebhookHandler struct {
	BaseHandler
	registry *pos.Registry
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(registry *pos.Registry, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		BaseHandler: BaseHandler{Logger: logger},
		registry:    registry,
	}
}

// Receive normalizes an inbound webhook. Unrecognized payloads are
// acknowledged without an event so the vendor does not retry forever.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	providerName := chi.URLParam(r, "provider")

	provider, err := h.registry.Get(providerName)
	if err != nil {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("provider "+providerName))
		return
	}

	normalizer, ok := provider.(pos.WebhookNormalizer)
	if !ok {
		h.WriteError(w, http.StatusBadRequest,
			dto.BadRequestError(providerName+" does not accept webhooks"))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("unreadable body"))
		return
	}

	signature := r.Header.Get("X-Square-Hmacsha256-Signature")
	if signature == "" {
		signature = r.Header.Get("X-Webhook-Signature")
	}

	event := normalizer.NormalizeWebhook(body, signature)
	if event == nil {
		h.Logger.Debug("ignoring unrecognized webhook payload",
			slog.String("provider", providerName))
		h.WriteJSON(w, http.StatusOK, dto.WebhookAck{Received: true})
		return
	}

	h.Logger.Info("webhook received",
		slog.String("provider", providerName),
		slog.String("event", string(event.Type)),
	)

	h.WriteJSON(w, http.StatusOK, dto.WebhookAck{Received: true, Event: string(event.Type)})
}
