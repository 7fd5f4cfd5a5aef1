package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ledgerline/identity-core/internal/domain/auth"
	"github.com/ledgerline/identity-core/internal/domain/user"
	"github.com/ledgerline/identity-core/internal/handler/http/response"
)

type UserHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	ListManagers(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type UserHandlerImpl struct {
	directory user.Directory
}

func NewUserHandler(directory user.Directory) UserHandler {
	return &UserHandlerImpl{directory: directory}
}

type usersResponse struct {
	Users []user.MemberResponse `json:"users"`
}

type userResponse struct {
	Message string      `json:"message,omitempty"`
	User    interface{} `json:"user"`
}

type managersResponse struct {
	Managers []user.ManagerResponse `json:"managers"`
}

// List implements UserHandler.
func (h *UserHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	members, err := h.directory.ListByCompany(r.Context(), principal.CompanyID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	users := make([]user.MemberResponse, 0, len(members))
	for _, m := range members {
		users = append(users, user.NewMemberResponse(m))
	}
	response.OK(w, usersResponse{Users: users})
}

// ListManagers implements UserHandler.
func (h *UserHandlerImpl) ListManagers(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	options, err := h.directory.ListManagers(r.Context(), principal.CompanyID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	managers := make([]user.ManagerResponse, 0, len(options))
	for _, m := range options {
		managers = append(managers, user.NewManagerResponse(m))
	}
	response.OK(w, managersResponse{Managers: managers})
}

// Get implements UserHandler.
func (h *UserHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	member, err := h.directory.Get(r.Context(), principal.CompanyID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.OK(w, userResponse{User: user.NewMemberResponse(member)})
}

// Create implements UserHandler. The new user always joins the caller's
// company.
func (h *UserHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	var createReq user.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
		slog.Warn("Create user decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	created, err := h.directory.CreateMember(r.Context(), principal.CompanyID, createReq)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, userResponse{
		Message: "User created successfully",
		User:    user.NewUserResponse(created),
	})
}

// Update implements UserHandler.
func (h *UserHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	var updateReq user.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		slog.Warn("Update user decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	updated, err := h.directory.Update(r.Context(), principal.CompanyID, principal.UserID, chi.URLParam(r, "id"), updateReq)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.OK(w, userResponse{
		Message: "User updated successfully",
		User:    user.NewUserResponse(updated),
	})
}

// Delete implements UserHandler. Users are deactivated, never removed.
func (h *UserHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	if err := h.directory.Deactivate(r.Context(), principal.CompanyID, principal.UserID, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "User deactivated successfully")
}
