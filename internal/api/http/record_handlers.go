package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gzdyj/exam-system/internal/exam"
	"github.com/gzdyj/exam-system/internal/rbac"
)

// GET /exam-records?page&limit&userId&status
// Callers without record:view-all only see their own records: the user
// filter is forced to the token's subject.
func ListRecordsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := parseInt64(r.URL.Query().Get("userId"))

		status := -1
		if s := r.URL.Query().Get("status"); s != "" {
			if v, err := strconv.Atoi(s); err == nil {
				status = v
			}
		}

		role := rbac.RoleFromContext(r.Context())
		if role != "admin" {
			userID = rbac.SubjectFromContext(r.Context())
		}

		list, total, err := store.ListRecords(r.Context(), exam.RecordListOpts{
			UserID: userID,
			Status: status,
			Page:   parseIntDefault(r.URL.Query().Get("page"), 1),
			Limit:  parseIntDefault(r.URL.Query().Get("limit"), 10),
		})
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pageResult{List: list, Total: total})
	}
}

func GetRecordHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := store.GetRecord(r.Context(), idParam(r))
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// POST /exam-records/start  { "userId": ..., "paperId": ... }
// userId defaults to the token's subject when absent.
func StartExamHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID  int64 `json:"userId"`
			PaperID int64 `json:"paperId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.UserID == 0 {
			req.UserID = rbac.SubjectFromContext(r.Context())
		}
		if req.UserID == 0 || req.PaperID == 0 {
			http.Error(w, "userId and paperId required", http.StatusBadRequest)
			return
		}
		rec, err := store.StartExam(r.Context(), req.UserID, req.PaperID)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"record": rec})
	}
}

// POST /exam-records/{id}/submit  { "answers": "{\"1\":\"A\"}" }
func SubmitExamHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Answers string `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		rec, err := store.SubmitExam(r.Context(), idParam(r), req.Answers)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "submitted", "score": rec.Score})
	}
}
