package reservation

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

// CheckAvailability is the only public reservation endpoint.
func (h *Handler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	availability, err := h.svc.CheckAvailability(r.Context(), vars["date"], vars["time"])
	if err != nil {
		writeReservationError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, availability)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var input CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.WriteJSONError(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	res, err := h.svc.Create(r.Context(), userID, input)
	if err != nil {
		writeReservationError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) MyReservations(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	reservations, err := h.svc.ListMine(r.Context(), userID)
	if err != nil {
		writeReservationError(w, r, err)
		return
	}
	if reservations == nil {
		reservations = []Reservation{}
	}

	utils.WriteJSON(w, http.StatusOK, reservations)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	id, err := utils.ToUint(mux.Vars(r)["id"])
	if err != nil {
		utils.WriteJSONError(w, "invalid reservation id", http.StatusBadRequest)
		return
	}

	res, err := h.svc.Get(r.Context(), userID, id, utils.IsAdmin(r.Context()))
	if err != nil {
		writeReservationError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	id, err := utils.ToUint(mux.Vars(r)["id"])
	if err != nil {
		utils.WriteJSONError(w, "invalid reservation id", http.StatusBadRequest)
		return
	}

	var input CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.WriteJSONError(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	res, err := h.svc.Update(r.Context(), userID, id, input)
	if err != nil {
		writeReservationError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	id, err := utils.ToUint(mux.Vars(r)["id"])
	if err != nil {
		utils.WriteJSONError(w, "invalid reservation id", http.StatusBadRequest)
		return
	}

	if _, err := h.svc.Cancel(r.Context(), userID, id); err != nil {
		writeReservationError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Reservation cancelled successfully"})
}

// --- admin surface ---

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	reservations, err := h.svc.ListAll(r.Context())
	if err != nil {
		writeReservationError(w, r, err)
		return
	}
	if reservations == nil {
		reservations = []Reservation{}
	}

	utils.WriteJSON(w, http.StatusOK, reservations)
}

type setStatusRequest struct {
	Status Status `json:"status"`
}

func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ToUint(mux.Vars(r)["id"])
	if err != nil {
		utils.WriteJSONError(w, "invalid reservation id", http.StatusBadRequest)
		return
	}

	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	res, err := h.svc.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		writeReservationError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, res)
}

func writeReservationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrReservationNotFound):
		utils.WriteJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrSlotFull):
		utils.WriteJSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrInvalidDate),
		errors.Is(err, ErrInvalidTime),
		errors.Is(err, ErrInvalidPartySize),
		errors.Is(err, ErrInvalidStatus):
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		logger.FromCtx(r.Context()).Error("reservation request failed", zap.Error(err))
		utils.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
	}
}
