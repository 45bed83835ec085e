package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gzdyj/exam-system/internal/account"
	"github.com/gzdyj/exam-system/internal/exam"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// pageResult is the {list,total} envelope every listing endpoint returns.
type pageResult struct {
	List  any   `json:"list"`
	Total int64 `json:"total"`
}

type messageResult struct {
	Message string `json:"message"`
}

// httpError maps domain errors onto distinct externally visible statuses.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, exam.ErrNotFound), errors.Is(err, account.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, exam.ErrAlreadySubmitted), errors.Is(err, account.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, account.ErrUnauthorized):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, account.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}

func parseInt64(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

func idParam(r *http.Request) int64 {
	return parseInt64(chi.URLParam(r, "id"))
}
