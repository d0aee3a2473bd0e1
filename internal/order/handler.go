package order

import (
	"encoding/json"
	"errors"
	"net/http"

	"cozycorner-be/internal/logger"
	"cozycorner-be/internal/utils"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var input CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.WriteJSONError(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	o, err := h.svc.Checkout(r.Context(), userID, input)
	if err != nil {
		writeOrderError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, o)
}

func (h *Handler) MyOrders(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	orders, err := h.svc.ListMyOrders(r.Context(), userID)
	if err != nil {
		writeOrderError(w, r, err)
		return
	}
	if orders == nil {
		orders = []Order{}
	}

	utils.WriteJSON(w, http.StatusOK, orders)
}

func (h *Handler) All(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListAllOrders(r.Context())
	if err != nil {
		writeOrderError(w, r, err)
		return
	}
	if orders == nil {
		orders = []Order{}
	}

	utils.WriteJSON(w, http.StatusOK, orders)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	orderID, err := utils.ToUint(mux.Vars(r)["id"])
	if err != nil {
		utils.WriteJSONError(w, "invalid order id", http.StatusBadRequest)
		return
	}

	o, err := h.svc.GetOrder(r.Context(), userID, orderID, utils.IsAdmin(r.Context()))
	if err != nil {
		writeOrderError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, o)
}

type updateStatusRequest struct {
	Status Status `json:"status"`
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := utils.ToUint(mux.Vars(r)["id"])
	if err != nil {
		utils.WriteJSONError(w, "invalid order id", http.StatusBadRequest)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	o, err := h.svc.UpdateStatus(r.Context(), orderID, req.Status)
	if err != nil {
		writeOrderError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	orderID, err := utils.ToUint(mux.Vars(r)["id"])
	if err != nil {
		utils.WriteJSONError(w, "invalid order id", http.StatusBadRequest)
		return
	}

	if _, err := h.svc.CancelOwn(r.Context(), userID, orderID); err != nil {
		writeOrderError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Order cancelled successfully"})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Stats(r.Context())
	if err != nil {
		writeOrderError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, summary)
}

func writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrOrderNotFound):
		utils.WriteJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrItemUnavailable),
		errors.Is(err, ErrEmptyOrder),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrInvalidOrderType),
		errors.Is(err, ErrMissingAddress):
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrNotCancellable):
		utils.WriteJSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrDuplicatePaymentIntent):
		// Data-layer invariant breach; surface as a server error.
		logger.FromCtx(r.Context()).Error("duplicate payment intent", zap.Error(err))
		utils.WriteJSONError(w, "server error", http.StatusInternalServerError)
	default:
		logger.FromCtx(r.Context()).Error("order operation failed", zap.Error(err))
		utils.WriteJSONError(w, "server error", http.StatusInternalServerError)
	}
}
