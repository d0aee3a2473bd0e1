package webhook

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"cozycorner-be/internal/logger"
	"cozycorner-be/internal/metrics"
	"cozycorner-be/internal/order"
	"cozycorner-be/internal/payment"
	"cozycorner-be/internal/utils"

	"go.uber.org/zap"
)

const (
	eventPaymentSucceeded = "payment_intent.succeeded"
	eventPaymentFailed    = "payment_intent.payment_failed"

	maxPayloadBytes = 1 << 20
)

// Event is the slice of a Stripe webhook envelope this handler reads.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID string `json:"id"`
		} `json:"object"`
	} `json:"data"`
}

type Handler struct {
	orderSvc order.Service
	gateway  payment.Gateway
}

func NewHandler(orderSvc order.Service, gateway payment.Gateway) *Handler {
	return &Handler{
		orderSvc: orderSvc,
		gateway:  gateway,
	}
}

// Webhook handles provider event delivery. The signature check runs against
// the raw body before any parsing, and failure rejects the request with no
// state change. Events the system does not act on are still acknowledged so
// the provider stops redelivering them.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	log := logger.FromCtx(r.Context())

	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		utils.WriteJSONError(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := h.gateway.VerifyWebhookSignature(body, r.Header.Get("Stripe-Signature")); err != nil {
		metrics.Default.WebhooksRejected.Inc()
		log.Warn("webhook signature rejected", zap.Error(err))
		utils.WriteJSONError(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		utils.WriteJSONError(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	log = log.With(
		zap.String("event_id", event.ID),
		zap.String("event_type", event.Type),
		zap.String("intent_id", event.Data.Object.ID),
	)

	switch event.Type {
	case eventPaymentSucceeded:
		err = h.orderSvc.ApplyPaymentSucceeded(r.Context(), event.Data.Object.ID)
	case eventPaymentFailed:
		err = h.orderSvc.ApplyPaymentFailed(r.Context(), event.Data.Object.ID)
	default:
		log.Info("ignoring webhook event type")
		utils.WriteJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			// No order carries this intent. Acknowledge so the provider does
			// not retry forever; the mismatch is visible in the logs.
			log.Warn("webhook references unknown payment intent")
			utils.WriteJSON(w, http.StatusOK, map[string]bool{"received": true})
			return
		}
		log.Error("failed to apply payment event", zap.Error(err))
		utils.WriteJSONError(w, "failed to update order", http.StatusInternalServerError)
		return
	}

	metrics.Default.WebhooksProcessed.Inc()
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"received": true})
}
