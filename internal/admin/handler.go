package admin

import (
	"encoding/json"
	"net/http"

	"cozycorner-be/internal/logger"
	"cozycorner-be/internal/user"
	"cozycorner-be/internal/utils"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Handler struct {
	svc     Service
	userSvc user.Service
}

func NewHandler(svc Service, userSvc user.Service) *Handler {
	return &Handler{svc: svc, userSvc: userSvc}
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboard(r.Context())
	if err != nil {
		logger.FromCtx(r.Context()).Error("dashboard aggregation failed", zap.Error(err))
		utils.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.userSvc.ListUsers(r.Context())
	if err != nil {
		logger.FromCtx(r.Context()).Error("user listing failed", zap.Error(err))
		utils.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if users == nil {
		users = []user.User{}
	}

	utils.WriteJSON(w, http.StatusOK, users)
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

func (h *Handler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ToUint(mux.Vars(r)["id"])
	if err != nil {
		utils.WriteJSONError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	var req updateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	u, err := h.userSvc.SetRole(r.Context(), id, req.Role)
	if err != nil {
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	utils.WriteJSON(w, http.StatusOK, u)
}
