package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MATTHEWPURBA/management-system/internal/model"
	"github.com/MATTHEWPURBA/management-system/internal/service"
)

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
	Active   *bool   `json:"active"`
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	actor, _ := principalFrom(r.Context())
	users, err := s.users.List(r.Context(), actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	views := make([]userView, len(users))
	for i, user := range users {
		views[i] = toUserView(user)
	}
	writeSuccess(w, http.StatusOK, "", views)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := principalFrom(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, http.StatusNotFound, "user not found")
		return
	}
	user, err := s.users.Get(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", toUserView(user))
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := principalFrom(r.Context())
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, err := s.users.Create(r.Context(), actor, service.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     model.Role(req.Role),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "User created successfully", toUserView(user))
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := principalFrom(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, http.StatusNotFound, "user not found")
		return
	}
	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	input := service.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Active:   req.Active,
	}
	if req.Role != nil {
		role := model.Role(*req.Role)
		input.Role = &role
	}

	user, err := s.users.Update(r.Context(), actor, id, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "User updated successfully", toUserView(user))
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := principalFrom(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, http.StatusNotFound, "user not found")
		return
	}
	if err := s.users.Delete(r.Context(), actor, id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "User deleted successfully", nil)
}
