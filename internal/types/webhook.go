package types

import (
	"encoding/json"
	"time"
)

// Webhook event names published by the billing core.
const (
	WebhookEventSubscriptionChanged   = "subscription.changed"
	WebhookEventSubscriptionScheduled = "subscription.change_scheduled"
	WebhookEventSubscriptionRenewed   = "subscription.renewed"
)

// WebhookEvent is the envelope published on the internal event bus after a
// successful subscription mutation. Consumers (webhook delivery, realtime
// sync) subscribe to these; the billing core only publishes.
type WebhookEvent struct {
	ID        string          `json:"id"`
	EventName string          `json:"event_name"`
	TenantID  string          `json:"tenant_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewWebhookEvent creates a webhook event with a generated ID and the payload
// marshalled to JSON.
func NewWebhookEvent(eventName, tenantID string, payload any) (*WebhookEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &WebhookEvent{
		ID:        GenerateUUIDWithPrefix(UUID_PREFIX_EVENT),
		EventName: eventName,
		TenantID:  tenantID,
		Timestamp: time.Now().UTC(),
		Payload:   raw,
	}, nil
}
