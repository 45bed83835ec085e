package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gzdyj/exam-system/internal/account"
)

type userPayload struct {
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
	Role     int    `json:"role"`
	Status   int    `json:"status"`
}

// GET /users?page&limit&username&role
func ListUsersHandler(accounts *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, total, err := accounts.List(r.Context(), account.ListOpts{
			Username: strings.TrimSpace(r.URL.Query().Get("username")),
			Role:     parseIntDefault(r.URL.Query().Get("role"), 0),
			Page:     parseIntDefault(r.URL.Query().Get("page"), 1),
			Limit:    parseIntDefault(r.URL.Query().Get("limit"), 10),
		})
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pageResult{List: list, Total: total})
	}
}

func AddUserHandler(accounts *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req userPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Username == "" || req.Password == "" {
			http.Error(w, "username and password required", http.StatusBadRequest)
			return
		}
		u := account.User{Username: req.Username, Role: req.Role, Status: req.Status}
		if _, err := accounts.Add(r.Context(), u, req.Password); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResult{Message: "created"})
	}
}

// PUT /users/{id} — partial update: fields absent from the payload keep
// their stored values.
func UpdateUserHandler(accounts *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username *string `json:"username"`
			Password *string `json:"password"`
			Role     *int    `json:"role"`
			Status   *int    `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		err := accounts.Update(r.Context(), idParam(r), account.UpdateParams{
			Username: req.Username,
			Password: req.Password,
			Role:     req.Role,
			Status:   req.Status,
		})
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResult{Message: "updated"})
	}
}

func DeleteUserHandler(accounts *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := accounts.Delete(r.Context(), idParam(r)); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResult{Message: "deleted"})
	}
}
