package square

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewise/pos-sync-backend/internal/pos"
)

func signedProvider(t *testing.T, key string) *Provider {
	t.Helper()
	provider, err := New(Config{
		ApplicationID:       "app-id",
		ApplicationSecret:   "secret",
		WebhookSignatureKey: key,
	}, nil, nil)
	require.NoError(t, err)
	return provider
}

func sign(key string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestNormalizeWebhookMapsKnownEvents(t *testing.T) {
	provider := signedProvider(t, "")

	tests := []struct {
		name    string
		payload string
		want    pos.EventType
	}{
		{"inventory", `{"type": "inventory.count.updated", "data": {"object_id": "ITEM1"}}`, pos.EventInventoryUpdate},
		{"order created", `{"type": "order.created", "data": {"order_id": "ORD1"}}`, pos.EventTransactionCreated},
		{"order updated", `{"type": "order.updated", "data": {"order_id": "ORD1"}}`, pos.EventTransactionCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := provider.NormalizeWebhook([]byte(tt.payload), "")
			require.NotNil(t, event)
			assert.Equal(t, tt.want, event.Type)
		})
	}
}

func TestNormalizeWebhookIgnoresUnknownEvents(t *testing.T) {
	provider := signedProvider(t, "")

	assert.Nil(t, provider.NormalizeWebhook([]byte(`{"type": "payment.created", "data": {}}`), ""))
	assert.Nil(t, provider.NormalizeWebhook([]byte(`not json at all`), ""))
}

func TestNormalizeWebhookVerifiesSignature(t *testing.T) {
	provider := signedProvider(t, "whk-key")
	payload := []byte(`{"type": "order.created", "data": {"order_id": "ORD1"}}`)

	event := provider.NormalizeWebhook(payload, sign("whk-key", payload))
	require.NotNil(t, event)
	assert.Equal(t, pos.EventTransactionCreated, event.Type)

	assert.Nil(t, provider.NormalizeWebhook(payload, "bogus-signature"))
	assert.Nil(t, provider.NormalizeWebhook(payload, sign("wrong-key", payload)))
}

func TestNormalizeWebhookSkipsVerifyWithoutKey(t *testing.T) {
	provider := signedProvider(t, "")
	payload := []byte(`{"type": "order.created", "data": {}}`)

	event := provider.NormalizeWebhook(payload, "anything")
	assert.NotNil(t, event)
}
