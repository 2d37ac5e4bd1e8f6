package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/regeshengen/water-quality-api/internal/api/middleware"
	"github.com/regeshengen/water-quality-api/internal/app/service"
	"github.com/regeshengen/water-quality-api/internal/common"
)

type AuthHandler struct {
	authService  *service.AuthService
	loginLimiter *middleware.IPRateLimiter
	authn        func(http.Handler) http.Handler
}

func NewAuthHandler(authService *service.AuthService, loginLimiter *middleware.IPRateLimiter, authn func(http.Handler) http.Handler) *AuthHandler {
	return &AuthHandler{authService: authService, loginLimiter: loginLimiter, authn: authn}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.With(h.loginLimiter.Handler).Post("/login", h.login)
	r.Post("/register", h.register)

	r.Group(func(authed chi.Router) {
		authed.Use(h.authn)
		authed.Get("/profile", h.profile)
	})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req service.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	user, err := h.authService.Register(r.Context(), req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	user, err := h.authService.Profile(r.Context(), userID)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}
