package review

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

func (h *Handler) ListApproved(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.svc.ListApproved(r.Context())
	if err != nil {
		writeReviewError(w, r, err)
		return
	}
	if reviews == nil {
		reviews = []Review{}
	}

	utils.WriteJSON(w, http.StatusOK, reviews)
}

func (h *Handler) Featured(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.svc.Featured(r.Context())
	if err != nil {
		writeReviewError(w, r, err)
		return
	}
	if reviews == nil {
		reviews = []Review{}
	}

	utils.WriteJSON(w, http.StatusOK, reviews)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeReviewError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) MyReviews(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	reviews, err := h.svc.ListMine(r.Context(), userID)
	if err != nil {
		writeReviewError(w, r, err)
		return
	}
	if reviews == nil {
		reviews = []Review{}
	}

	utils.WriteJSON(w, http.StatusOK, reviews)
}

func (h *Handler) All(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.svc.ListAll(r.Context())
	if err != nil {
		writeReviewError(w, r, err)
		return
	}
	if reviews == nil {
		reviews = []Review{}
	}

	utils.WriteJSON(w, http.StatusOK, reviews)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var input SubmitInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.WriteJSONError(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	rev, err := h.svc.Submit(r.Context(), userID, input)
	if err != nil {
		writeReviewError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, rev)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	id, err := utils.ToUint(mux.Vars(r)["id"])
	if err != nil {
		utils.WriteJSONError(w, "invalid review id", http.StatusBadRequest)
		return
	}

	var input SubmitInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.WriteJSONError(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	rev, err := h.svc.Update(r.Context(), userID, id, input)
	if err != nil {
		writeReviewError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, rev)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	id, err := utils.ToUint(mux.Vars(r)["id"])
	if err != nil {
		utils.WriteJSONError(w, "invalid review id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		writeReviewError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Review deleted successfully"})
}

func (h *Handler) Moderate(w http.ResponseWriter, r *http.Request) {
	moderatorID, _ := utils.GetUserIDFromContext(r.Context())

	id, err := utils.ToUint(mux.Vars(r)["id"])
	if err != nil {
		utils.WriteJSONError(w, "invalid review id", http.StatusBadRequest)
		return
	}

	var input ModerateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.WriteJSONError(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	rev, err := h.svc.Moderate(r.Context(), moderatorID, id, input)
	if err != nil {
		writeReviewError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, rev)
}

func writeReviewError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrReviewNotFound):
		utils.WriteJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrDuplicateReview):
		utils.WriteJSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrOrderNotEligible),
		errors.Is(err, ErrInvalidRating),
		errors.Is(err, ErrCommentTooShort),
		errors.Is(err, ErrInvalidStatus):
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		logger.FromCtx(r.Context()).Error("review request failed", zap.Error(err))
		utils.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
	}
}
