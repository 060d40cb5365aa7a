package handlers

import (
	"encoding/json"
	"net/http"

	"payments-dashboard/http/response"
	"payments-dashboard/logger"
	"payments-dashboard/services"
	"payments-dashboard/utils"
)

// AuthHandler serves dashboard registration and login
type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := utils.ValidateRegister(req.Username, req.Password); len(errs) > 0 {
		response.SendJSON(w, http.StatusBadRequest, map[string]interface{}{
			"message": "Validation failed",
			"errors":  errs,
		})
		return
	}

	user, err := h.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		response.Error(w, err)
		return
	}

	logger.Info("New user registered: %s", user.Username)
	response.SendJSON(w, http.StatusCreated, map[string]interface{}{
		"userId":   user.ID,
		"username": user.Username,
		"message":  "User registered successfully",
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, user, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		response.Error(w, err)
		return
	}

	logger.Info("User logged in: %s", user.Username)
	response.SendJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"userId":   user.ID,
			"username": user.Username,
		},
	})
}
