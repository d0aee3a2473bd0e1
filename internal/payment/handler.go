package payment

import (
	"encoding/json"
	"errors"
	"net/http"

	"cozycorner-be/internal/logger"
	"cozycorner-be/internal/order"
	"cozycorner-be/internal/utils"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Handler struct {
	gateway   Gateway
	orderRepo order.Repository
	currency  string
}

func NewHandler(gateway Gateway, orderRepo order.Repository) *Handler {
	return &Handler{
		gateway:   gateway,
		orderRepo: orderRepo,
		currency:  "usd",
	}
}

type createIntentRequest struct {
	OrderID uint `json:"orderId"`
}

type createIntentResponse struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

// CreateIntent opens a provider payment intent for an order's total and
// attaches the intent id to the order. The id column is unique, so attaching
// the same intent to a second order fails rather than double charging.
func (h *Handler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req createIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	o, err := h.orderRepo.GetByID(r.Context(), req.OrderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			utils.WriteJSONError(w, "order not found", http.StatusNotFound)
			return
		}
		logger.FromCtx(r.Context()).Error("failed to load order", zap.Error(err))
		utils.WriteJSONError(w, "error creating payment intent", http.StatusInternalServerError)
		return
	}
	if o.UserID != userID && !utils.IsAdmin(r.Context()) {
		utils.WriteJSONError(w, "order not found", http.StatusNotFound)
		return
	}

	intent, err := h.gateway.CreateIntent(r.Context(), o.TotalAmount, h.currency,
		Description(o.ID, len(o.Items), string(o.OrderType)))
	if err != nil {
		logger.FromCtx(r.Context()).Error("payment intent creation failed",
			zap.Uint("order_id", o.ID), zap.Error(err))
		utils.WriteJSONError(w, "error creating payment intent", http.StatusInternalServerError)
		return
	}

	if err := h.orderRepo.AttachPaymentIntent(r.Context(), o.ID, intent.ID); err != nil {
		logger.FromCtx(r.Context()).Error("failed to attach payment intent",
			zap.Uint("order_id", o.ID),
			zap.String("intent_id", intent.ID),
			zap.Error(err),
		)
		utils.WriteJSONError(w, "error creating payment intent", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, createIntentResponse{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	})
}

// Verify is a read-only status lookup against the provider.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	intentID := mux.Vars(r)["id"]

	intent, err := h.gateway.RetrieveIntent(r.Context(), intentID)
	if err != nil {
		if errors.Is(err, ErrIntentNotFound) {
			utils.WriteJSONError(w, "payment intent not found", http.StatusNotFound)
			return
		}
		logger.FromCtx(r.Context()).Error("payment verification failed",
			zap.String("intent_id", intentID), zap.Error(err))
		utils.WriteJSONError(w, "error verifying payment", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": intent.Status})
}
