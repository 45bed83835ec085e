package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gzdyj/exam-system/internal/account"
	api "github.com/gzdyj/exam-system/internal/api/http"
	"github.com/gzdyj/exam-system/internal/auth"
	"github.com/gzdyj/exam-system/internal/db"
	"github.com/gzdyj/exam-system/internal/exam"
	"github.com/gzdyj/exam-system/internal/rbac"
)

// newTestServer wires the exam-flow routes the way cmd/gateway does.
func newTestServer(t *testing.T) (*httptest.Server, *exam.SQLStore, *account.Service) {
	t.Helper()
	dbh, err := db.Open(context.Background(), db.DriverSQLite,
		"file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })

	store := exam.NewSQLStore(dbh)
	authSvc := auth.NewAuthService("test-secret", time.Hour)
	accounts := account.NewService(dbh, authSvc, 4)

	r := chi.NewRouter()
	r.Post("/auth/login", api.LoginHandler(accounts))
	r.Post("/auth/register", api.RegisterHandler(accounts))
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Get("/auth/info", api.UserInfoHandler(accounts))
		pr.With(rbac.Require("record:start")).Post("/exam-records/start", api.StartExamHandler(store))
		pr.With(rbac.Require("record:submit")).Post("/exam-records/{id}/submit", api.SubmitExamHandler(store))
		pr.With(rbac.RequireAny("record:view-own", "record:view-all")).Get("/exam-records", api.ListRecordsHandler(store))
		pr.With(rbac.Require("question:manage")).Post("/questions", api.CreateQuestionHandler(store))
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, store, accounts
}

func postJSON(t *testing.T, url, token string, body any) *http.Response {
	t.Helper()
	buf, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func TestExamFlowOverHTTP(t *testing.T) {
	srv, store, _ := newTestServer(t)
	ctx := context.Background()

	q1, err := store.CreateQuestion(ctx, exam.Question{Content: "q1", Type: exam.TypeSingleChoice, Answer: "A", Score: 5})
	if err != nil {
		t.Fatalf("seed q1: %v", err)
	}
	q2, err := store.CreateQuestion(ctx, exam.Question{Content: "q2", Type: exam.TypeSingleChoice, Answer: "B", Score: 3})
	if err != nil {
		t.Fatalf("seed q2: %v", err)
	}
	paper, err := store.CreatePaper(ctx, exam.Paper{
		Title:       "quiz",
		QuestionIDs: fmt.Sprintf("%d,%d", q1.ID, q2.ID),
		Status:      1,
	})
	if err != nil {
		t.Fatalf("seed paper: %v", err)
	}

	// register + login
	resp := postJSON(t, srv.URL+"/auth/register", "", map[string]string{"username": "alice", "password": "pw"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("register status %d", resp.StatusCode)
	}
	resp.Body.Close()

	var login struct {
		Token string       `json:"token"`
		User  account.User `json:"user"`
	}
	resp = postJSON(t, srv.URL+"/auth/login", "", map[string]string{"username": "alice", "password": "pw"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status %d", resp.StatusCode)
	}
	decodeBody(t, resp, &login)
	if login.Token == "" {
		t.Fatal("empty token")
	}

	// start
	var started struct {
		Record exam.ExamRecord `json:"record"`
	}
	resp = postJSON(t, srv.URL+"/exam-records/start", login.Token, map[string]int64{"paperId": paper.ID})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start status %d", resp.StatusCode)
	}
	decodeBody(t, resp, &started)
	if started.Record.Status != exam.StatusInProgress || started.Record.UserID != login.User.ID {
		t.Fatalf("started record: %+v", started.Record)
	}

	// submit: case-insensitive hit on q1, miss on q2
	answers := fmt.Sprintf(`{"%d":"a","%d":"C"}`, q1.ID, q2.ID)
	var submitted struct {
		Message string `json:"message"`
		Score   int    `json:"score"`
	}
	url := fmt.Sprintf("%s/exam-records/%d/submit", srv.URL, started.Record.ID)
	resp = postJSON(t, url, login.Token, map[string]string{"answers": answers})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit status %d", resp.StatusCode)
	}
	decodeBody(t, resp, &submitted)
	if submitted.Score != 5 {
		t.Fatalf("score = %d, want 5", submitted.Score)
	}

	// resubmission is rejected
	resp = postJSON(t, url, login.Token, map[string]string{"answers": `{}`})
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("resubmit status = %d, want 409", resp.StatusCode)
	}
}

func TestAuthAndRBAC(t *testing.T) {
	srv, _, accounts := newTestServer(t)
	ctx := context.Background()

	// no token
	resp := postJSON(t, srv.URL+"/exam-records/start", "", map[string]int64{"paperId": 1})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token status = %d, want 401", resp.StatusCode)
	}

	// students cannot curate the question bank
	if _, err := accounts.Register(ctx, "stu", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	var login struct {
		Token string `json:"token"`
	}
	resp = postJSON(t, srv.URL+"/auth/login", "", map[string]string{"username": "stu", "password": "pw"})
	decodeBody(t, resp, &login)

	resp = postJSON(t, srv.URL+"/questions", login.Token, map[string]any{"content": "x", "type": 1, "answer": "A", "score": 1})
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("student create question status = %d, want 403", resp.StatusCode)
	}

	// admins can
	if _, err := accounts.Add(ctx, account.User{Username: "root", Role: auth.RoleAdmin}, "pw"); err != nil {
		t.Fatalf("add admin: %v", err)
	}
	resp = postJSON(t, srv.URL+"/auth/login", "", map[string]string{"username": "root", "password": "pw"})
	decodeBody(t, resp, &login)
	resp = postJSON(t, srv.URL+"/questions", login.Token, map[string]any{"content": "x", "type": 1, "answer": "A", "score": 1})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin create question status = %d, want 200", resp.StatusCode)
	}

	// wrong password
	resp = postJSON(t, srv.URL+"/auth/login", "", map[string]string{"username": "stu", "password": "nope"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad password status = %d, want 401", resp.StatusCode)
	}

	// duplicate registration
	resp = postJSON(t, srv.URL+"/auth/register", "", map[string]string{"username": "stu", "password": "pw"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register status = %d, want 409", resp.StatusCode)
	}
}
