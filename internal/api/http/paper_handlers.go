package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gzdyj/exam-system/internal/exam"
	"github.com/gzdyj/exam-system/internal/rbac"
)

// GET /papers?page&limit&title
func ListPapersHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, total, err := store.ListPapers(r.Context(), exam.PaperListOpts{
			Title: strings.TrimSpace(r.URL.Query().Get("title")),
			Page:  parseIntDefault(r.URL.Query().Get("page"), 1),
			Limit: parseIntDefault(r.URL.Query().Get("limit"), 10),
		})
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pageResult{List: list, Total: total})
	}
}

func GetPaperHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := store.GetPaper(r.Context(), idParam(r))
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// GET /papers/{id}/questions — the paper's rows in stored order, without
// answer keys.
func PaperQuestionsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qs, err := store.PaperQuestions(r.Context(), idParam(r))
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, exam.StripAnswers(qs))
	}
}

func CreatePaperHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p exam.Paper
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		p.CreatedBy = rbac.SubjectFromContext(r.Context())
		if _, err := store.CreatePaper(r.Context(), p); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResult{Message: "created"})
	}
}

func UpdatePaperHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p exam.Paper
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		p.ID = idParam(r)
		if _, err := store.UpdatePaper(r.Context(), p); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResult{Message: "updated"})
	}
}

func DeletePaperHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeletePaper(r.Context(), idParam(r)); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResult{Message: "deleted"})
	}
}
