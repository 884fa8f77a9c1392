// Package handler contains the HTTP layer: request parsing, response
// writing, and nothing else. Business rules live in the service package.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/generation/blogpessoal/internal/apperror"
	"github.com/generation/blogpessoal/internal/model"
	"github.com/generation/blogpessoal/internal/service"
)

// UserHandler maps the /usuarios endpoints onto the UserService.
//
// ROUTES (wired in server.setupRoutes):
//
//	POST /usuarios/cadastrar → HandleRegister  (public)
//	POST /usuarios/logar     → HandleLogin     (public)
//	PUT  /usuarios/atualizar → HandleUpdate    (basic auth)
//	GET  /usuarios/all       → HandleList      (basic auth)
//	GET  /usuarios/{id}      → HandleGetByID   (basic auth)
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// userRequest is the write DTO for register and update.
//
// WHY A SEPARATE STRUCT AND NOT model.User?
// The senha arrives in plaintext on these two endpoints only. model.User
// tags Senha with json:"-" precisely so it can never travel in a
// response — which also means it can't be decoded from a request. The
// DTO keeps the write-only field at the HTTP boundary.
type userRequest struct {
	ID      string `json:"id"`
	Nome    string `json:"nome"`
	Usuario string `json:"usuario"`
	Senha   string `json:"senha"`
	Foto    string `json:"foto"`
}

// loginRequest is the credential DTO for /usuarios/logar.
type loginRequest struct {
	Usuario string `json:"usuario"`
	Senha   string `json:"senha"`
}

// loginResponse carries the issued bearer token next to the account data.
type loginResponse struct {
	*model.User
	Token string `json:"token"`
}

// HandleRegister creates a new user account.
//
// HTTP: POST /usuarios/cadastrar
// Success: 201 Created with the stored user (no senha in the body).
// Failure: 400 on validation errors or a duplicate usuario.
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	user, err := h.users.Register(r.Context(), service.UserInput{
		Nome:    req.Nome,
		Usuario: req.Usuario,
		Senha:   req.Senha,
		Foto:    req.Foto,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// HandleLogin verifies credentials and issues a bearer token.
//
// HTTP: POST /usuarios/logar
// Success: 200 OK with the user plus a "token" field.
// Failure: 400 on a malformed body, 401 on bad credentials.
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	result, err := h.users.Login(r.Context(), req.Usuario, req.Senha)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{User: result.User, Token: result.Token})
}

// HandleUpdate modifies an existing user.
//
// HTTP: PUT /usuarios/atualizar (behind RequireBasicAuth)
// The target account is the one named by the body's id — any
// authenticated user may update any account; there is no role model.
// Success: 200 OK with the updated user. Failure: 400 validation or
// duplicate usuario, 404 unknown id.
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	user, err := h.users.Update(r.Context(), req.ID, service.UserInput{
		Nome:    req.Nome,
		Usuario: req.Usuario,
		Senha:   req.Senha,
		Foto:    req.Foto,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleList returns every registered user.
//
// HTTP: GET /usuarios/all (behind RequireBasicAuth)
// The response is always a JSON array — empty, never null — and the
// senha hashes never leave the model (json:"-").
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// HandleGetByID returns a single user by internal ID.
//
// HTTP: GET /usuarios/{id} (behind RequireBasicAuth)
func (h *UserHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
