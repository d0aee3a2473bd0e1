package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"cozycorner-be/internal/logger"
	"cozycorner-be/internal/utils"

	"go.uber.org/zap"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Name == "" || req.Email == "" || len(req.Password) < 6 {
		utils.WriteJSONError(w, "name, email and a password of at least 6 characters are required", http.StatusBadRequest)
		return
	}

	token, u, err := h.svc.Register(r.Context(), req.Name, req.Email, req.Password, req.Phone)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			utils.WriteJSONError(w, err.Error(), http.StatusConflict)
			return
		}
		logger.FromCtx(r.Context()).Error("register failed", zap.Error(err))
		utils.WriteJSONError(w, "error creating account", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, authResponse{Token: token, User: u})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	token, u, err := h.svc.Login(r.Context(), strings.TrimSpace(strings.ToLower(req.Email)), req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			utils.WriteJSONError(w, err.Error(), http.StatusUnauthorized)
			return
		}
		logger.FromCtx(r.Context()).Error("login failed", zap.Error(err))
		utils.WriteJSONError(w, "error logging in", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, authResponse{Token: token, User: u})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	u, err := h.svc.GetByID(r.Context(), userID)
	if err != nil {
		utils.WriteJSONError(w, "user not found", http.StatusNotFound)
		return
	}

	utils.WriteJSON(w, http.StatusOK, u)
}
