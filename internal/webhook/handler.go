package webhook

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/inmoval/billing/internal/config"
	"github.com/inmoval/billing/internal/logger"
	"github.com/inmoval/billing/internal/pubsub"
	pubsubRouter "github.com/inmoval/billing/internal/pubsub/router"
	"github.com/inmoval/billing/internal/types"
)

// Handler consumes billing events off the internal bus. Downstream delivery
// (tenant webhooks, realtime sync) hangs off processMessage.
type Handler interface {
	RegisterHandler(router *pubsubRouter.Router)
}

type handler struct {
	pubSub pubsub.PubSub
	config *config.WebhookConfig
	logger *logger.Logger
}

// NewHandler creates a billing event consumer
func NewHandler(
	pubSub pubsub.PubSub,
	cfg *config.Configuration,
	logger *logger.Logger,
) Handler {
	return &handler{
		pubSub: pubSub,
		config: &cfg.Webhook,
		logger: logger,
	}
}

func (h *handler) RegisterHandler(router *pubsubRouter.Router) {
	router.AddNoPublishHandler(
		"billing_event_handler",
		h.config.Topic,
		h.pubSub,
		h.processMessage,
	)
}

// processMessage processes a single billing event message
func (h *handler) processMessage(msg *message.Message) error {
	var event types.WebhookEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		h.logger.Errorw("failed to unmarshal billing event",
			"error", err,
			"message_uuid", msg.UUID,
		)
		// Don't retry on unmarshal errors
		return nil
	}

	h.logger.Infow("billing event received",
		"event_id", event.ID,
		"event_name", event.EventName,
		"tenant_id", event.TenantID,
		"timestamp", event.Timestamp,
	)

	return nil
}
