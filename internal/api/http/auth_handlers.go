package http

import (
	"encoding/json"
	"net/http"

	"github.com/gzdyj/exam-system/internal/account"
	"github.com/gzdyj/exam-system/internal/rbac"
)

// POST /auth/login  { "username": "...", "password": "..." }
func LoginHandler(accounts *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		user, token, err := accounts.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": user})
	}
}

// POST /auth/register. Role and status in the payload are ignored:
// self-registration always creates an active student account.
func RegisterHandler(accounts *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Username == "" || req.Password == "" {
			http.Error(w, "username and password required", http.StatusBadRequest)
			return
		}
		if _, err := accounts.Register(r.Context(), req.Username, req.Password); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResult{Message: "registered"})
	}
}

// GET /auth/info resolves the bearer token to the caller's user row.
func UserInfoHandler(accounts *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := rbac.SubjectFromContext(r.Context())
		if userID == 0 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		user, err := accounts.GetByID(r.Context(), userID)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}
