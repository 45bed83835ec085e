package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gzdyj/exam-system/internal/exam"
	"github.com/gzdyj/exam-system/internal/rbac"
)

// GET /questions?page&limit&type&keyword
func ListQuestionsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, total, err := store.ListQuestions(r.Context(), exam.QuestionListOpts{
			Type:    parseIntDefault(r.URL.Query().Get("type"), 0),
			Keyword: strings.TrimSpace(r.URL.Query().Get("keyword")),
			Page:    parseIntDefault(r.URL.Query().Get("page"), 1),
			Limit:   parseIntDefault(r.URL.Query().Get("limit"), 10),
		})
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pageResult{List: list, Total: total})
	}
}

func GetQuestionHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := store.GetQuestion(r.Context(), idParam(r))
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

func CreateQuestionHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q exam.Question
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		q.CreatedBy = rbac.SubjectFromContext(r.Context())
		if _, err := store.CreateQuestion(r.Context(), q); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResult{Message: "created"})
	}
}

func UpdateQuestionHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q exam.Question
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		q.ID = idParam(r)
		if err := store.UpdateQuestion(r.Context(), q); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResult{Message: "updated"})
	}
}

func DeleteQuestionHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteQuestion(r.Context(), idParam(r)); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResult{Message: "deleted"})
	}
}

// GET /questions/random?type&count
func RandomQuestionsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qtype := parseIntDefault(r.URL.Query().Get("type"), 0)
		if qtype == 0 {
			http.Error(w, "type required", http.StatusBadRequest)
			return
		}
		list, err := store.RandomQuestions(r.Context(), qtype, parseIntDefault(r.URL.Query().Get("count"), 10))
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"list": list})
	}
}

// GET /questions/modules
func ListModulesHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListModules(r.Context())
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"list": list})
	}
}

// GET /questions/practice?module&page&limit — paged drill through one module.
func PracticeQuestionsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		module := strings.TrimSpace(r.URL.Query().Get("module"))
		if module == "" {
			http.Error(w, "module required", http.StatusBadRequest)
			return
		}
		list, total, err := store.PracticeQuestions(r.Context(), module,
			parseIntDefault(r.URL.Query().Get("page"), 1),
			parseIntDefault(r.URL.Query().Get("limit"), 20))
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"list": list, "total": total, "module": module})
	}
}

// GET /questions/exam?module&count — random sample for exam mode.
// Answers are stripped: the taker never sees the key.
func ExamQuestionsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		module := strings.TrimSpace(r.URL.Query().Get("module"))
		list, err := store.ExamQuestions(r.Context(), module, parseIntDefault(r.URL.Query().Get("count"), 100))
		if err != nil {
			httpError(w, err)
			return
		}
		if module == "" {
			module = "all"
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"list":   exam.StripAnswers(list),
			"total":  len(list),
			"module": module,
		})
	}
}
