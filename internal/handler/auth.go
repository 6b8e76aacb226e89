package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/mkamau/fleet-ledger/internal/domain"
)

// loginRequest is the JSON body of POST /api/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the successful login body.
type loginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// registerRequest is the JSON body of POST /api/register (admin only).
type registerRequest struct {
	Username   string      `json:"username"`
	Password   string      `json:"password"`
	Role       domain.Role `json:"role"`
	VehicleReg string      `json:"vehicle_reg,omitempty"`
}

// Login handles POST /api/login. Invalid usernames and wrong passwords get
// the same 401 so the endpoint does not leak which accounts exist.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		requestError(w, "request body must be JSON with username and password")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		requestError(w, "username and password are required")
		return
	}

	user, err := s.users.Get(req.Username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{errorDetail{"invalid_credentials", "invalid username or password"}})
			return
		}
		writeError(w, err)
		return
	}
	if !s.tokens.CheckPassword(req.Password, user.PasswordHash) {
		writeJSON(w, http.StatusUnauthorized, errorResponse{errorDetail{"invalid_credentials", "invalid username or password"}})
		return
	}

	token, err := s.tokens.GenerateToken(user, s.now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

// Register handles POST /api/register. It sits behind the admin-only route
// group; admins create driver accounts scoped to a vehicle, or further
// admins.
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		requestError(w, "request body must be JSON")
		return
	}
	if req.Password == "" {
		requestError(w, "password is required")
		return
	}

	hash, err := s.tokens.HashPassword(req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	user := domain.User{
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: hash,
		Role:         req.Role,
		VehicleReg:   strings.TrimSpace(req.VehicleReg),
	}
	if err := s.users.Create(user); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}
