package controllers

import (
	"encoding/json"
	"net/http"

	"feedboard/app/apperr"
	"feedboard/app/services"

	"github.com/rs/zerolog"
)

// AuthController handles signup and login
type AuthController struct {
	auth *services.AuthService
	log  zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(auth *services.AuthService, log zerolog.Logger) *AuthController {
	return &AuthController{auth: auth, log: log}
}

// Signup handles account creation
func (ac *AuthController) Signup(w http.ResponseWriter, r *http.Request) {
	var input services.SignupInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		ac.sendError(w, apperr.NewValidation("invalid JSON body"))
		return
	}

	user, err := ac.auth.Signup(input)
	if err != nil {
		ac.sendError(w, err)
		return
	}

	ac.sendJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "user created",
		"userId":  user.ID,
	})
}

// Login handles credential checks and token issuance
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		ac.sendError(w, apperr.NewValidation("invalid JSON body"))
		return
	}

	token, userID, err := ac.auth.Login(creds.Email, creds.Password)
	if err != nil {
		ac.sendError(w, err)
		return
	}

	ac.sendJSON(w, http.StatusOK, map[string]interface{}{
		"token":  token,
		"userId": userID,
	})
}

func (ac *AuthController) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		ac.log.Warn().Err(err).Msg("failed to encode response")
	}
}

func (ac *AuthController) sendError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		ac.log.Error().Err(err).Msg("request failed")
	}
	payload := map[string]interface{}{"message": err.Error()}
	if data := apperr.Details(err); len(data) > 0 {
		payload["data"] = data
	}
	ac.sendJSON(w, status, payload)
}
