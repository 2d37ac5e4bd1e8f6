package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/regeshengen/water-quality-api/internal/api/middleware"
	"github.com/regeshengen/water-quality-api/internal/app/service"
	"github.com/regeshengen/water-quality-api/internal/common"
)

type UserHandler struct {
	userService *service.UserService
	authn       func(http.Handler) http.Handler
}

func NewUserHandler(us *service.UserService, authn func(http.Handler) http.Handler) *UserHandler {
	return &UserHandler{userService: us, authn: authn}
}

// RegisterRoutes mounts user management. Creation is open like
// /auth/register; everything else is administrator-only.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.createUser)

	r.Group(func(adminRouter chi.Router) {
		adminRouter.Use(h.authn)
		adminRouter.Use(middleware.AdminOnly)
		adminRouter.Get("/", h.listUsers)
		adminRouter.Get("/{userID}", h.getUser)
		adminRouter.Patch("/{userID}", h.updateUser)
		adminRouter.Delete("/{userID}", h.deleteUser)
	})
}

func (h *UserHandler) createUser(w http.ResponseWriter, r *http.Request) {
	var req service.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	user, err := h.userService.Create(r.Context(), req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, users)
}

func (h *UserHandler) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "userID")
	if !ok {
		return
	}
	user, err := h.userService.FindByID(r.Context(), id)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "userID")
	if !ok {
		return
	}
	var req service.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	user, err := h.userService.Update(r.Context(), id, req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "userID")
	if !ok {
		return
	}
	if err := h.userService.Remove(r.Context(), id); err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondNoContent(w)
}
