package exam_test

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/gzdyj/exam-system/internal/db"
	"github.com/gzdyj/exam-system/internal/exam"
)

func newTestStore(t *testing.T) *exam.SQLStore {
	t.Helper()
	dbh, err := db.Open(context.Background(), db.DriverSQLite,
		"file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })
	return exam.NewSQLStore(dbh)
}

func seedQuestion(t *testing.T, s *exam.SQLStore, answer string, score int, module string) exam.Question {
	t.Helper()
	q, err := s.CreateQuestion(context.Background(), exam.Question{
		Content: "seed question",
		Type:    exam.TypeSingleChoice,
		OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d",
		Answer: answer,
		Score:  score,
		Module: module,
	})
	if err != nil {
		t.Fatalf("seed question: %v", err)
	}
	return q
}

func csvIDs(qs ...exam.Question) string {
	parts := make([]string, len(qs))
	for i, q := range qs {
		parts[i] = strconv.FormatInt(q.ID, 10)
	}
	return strings.Join(parts, ",")
}

func TestQuestionCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	q := seedQuestion(t, s, "A", 5, "mod-1")

	got, err := s.GetQuestion(ctx, q.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Answer != "A" || got.Score != 5 || got.Module != "mod-1" {
		t.Fatalf("unexpected row: %+v", got)
	}

	got.Content = "edited"
	if err := s.UpdateQuestion(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}

	if err := s.DeleteQuestion(ctx, q.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetQuestion(ctx, q.ID); !errors.Is(err, exam.ErrNotFound) {
		t.Fatalf("soft-deleted row still visible: %v", err)
	}
	if err := s.DeleteQuestion(ctx, q.ID); !errors.Is(err, exam.ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestListQuestionsPaging(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		seedQuestion(t, s, "A", 1, "m")
	}

	list, total, err := s.ListQuestions(ctx, exam.QuestionListOpts{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 5 || len(list) != 2 {
		t.Fatalf("total=%d len=%d, want 5/2", total, len(list))
	}

	list, total, err = s.ListQuestions(ctx, exam.QuestionListOpts{Page: 3, Limit: 2})
	if err != nil {
		t.Fatalf("list page 3: %v", err)
	}
	if total != 5 || len(list) != 1 {
		t.Fatalf("page 3: total=%d len=%d, want 5/1", total, len(list))
	}
}

func TestPaperTotalScore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	q1 := seedQuestion(t, s, "A", 5, "")
	q2 := seedQuestion(t, s, "B", 3, "")

	p, err := s.CreatePaper(ctx, exam.Paper{Title: "midterm", QuestionIDs: csvIDs(q1, q2), Duration: 60, Status: 1})
	if err != nil {
		t.Fatalf("create paper: %v", err)
	}
	if p.TotalScore != 8 {
		t.Fatalf("total = %d, want 8", p.TotalScore)
	}

	// malformed id list resolves to zero questions, total zero
	empty, err := s.CreatePaper(ctx, exam.Paper{Title: "empty", QuestionIDs: "not,ids,at,all", Status: 1})
	if err != nil {
		t.Fatalf("create malformed paper: %v", err)
	}
	if empty.TotalScore != 0 {
		t.Fatalf("malformed list total = %d, want 0", empty.TotalScore)
	}

	// update recomputes the cached total
	p.QuestionIDs = csvIDs(q1)
	p, err = s.UpdatePaper(ctx, p)
	if err != nil {
		t.Fatalf("update paper: %v", err)
	}
	if p.TotalScore != 5 {
		t.Fatalf("updated total = %d, want 5", p.TotalScore)
	}

	// clearing the question list zeroes the cached total too
	p.QuestionIDs = ""
	p, err = s.UpdatePaper(ctx, p)
	if err != nil {
		t.Fatalf("clear paper: %v", err)
	}
	if p.TotalScore != 0 {
		t.Fatalf("cleared list total = %d, want 0", p.TotalScore)
	}

	p.QuestionIDs = csvIDs(q1)
	if p, err = s.UpdatePaper(ctx, p); err != nil || p.TotalScore != 5 {
		t.Fatalf("restore paper: total=%d err=%v", p.TotalScore, err)
	}

	qs, err := s.PaperQuestions(ctx, p.ID)
	if err != nil {
		t.Fatalf("paper questions: %v", err)
	}
	if len(qs) != 1 || qs[0].ID != q1.ID {
		t.Fatalf("paper questions = %+v", qs)
	}

	// missing paper yields empty, not an error
	qs, err = s.PaperQuestions(ctx, 9999)
	if err != nil || len(qs) != 0 {
		t.Fatalf("missing paper: %v %v", qs, err)
	}
}

func TestExamFlow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	q1 := seedQuestion(t, s, "A", 5, "")
	q2 := seedQuestion(t, s, "B", 3, "")
	p, err := s.CreatePaper(ctx, exam.Paper{Title: "quiz", QuestionIDs: csvIDs(q1, q2), Status: 1})
	if err != nil {
		t.Fatalf("create paper: %v", err)
	}

	rec, err := s.StartExam(ctx, 7, p.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if rec.Status != exam.StatusInProgress || rec.Score != 0 || rec.StartedAt == 0 || rec.SubmittedAt != 0 {
		t.Fatalf("fresh record: %+v", rec)
	}

	// case-insensitive match on q1, mismatch on q2
	answers := `{"` + strconv.FormatInt(q1.ID, 10) + `":"a","` + strconv.FormatInt(q2.ID, 10) + `":"C"}`
	done, err := s.SubmitExam(ctx, rec.ID, answers)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if done.Score != 5 {
		t.Fatalf("score = %d, want 5", done.Score)
	}
	if done.Status != exam.StatusCompleted || done.SubmittedAt == 0 {
		t.Fatalf("submitted record: %+v", done)
	}

	// a second submission is rejected, the stored result is untouched
	if _, err := s.SubmitExam(ctx, rec.ID, `{}`); !errors.Is(err, exam.ErrAlreadySubmitted) {
		t.Fatalf("resubmit: %v", err)
	}
	again, err := s.GetRecord(ctx, rec.ID)
	if err != nil || again.Score != 5 {
		t.Fatalf("record after resubmit: %+v %v", again, err)
	}

	if _, err := s.SubmitExam(ctx, 9999, `{}`); !errors.Is(err, exam.ErrNotFound) {
		t.Fatalf("submit missing record: %v", err)
	}
}

func TestSubmitMalformedAnswers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	q := seedQuestion(t, s, "A", 5, "")
	p, _ := s.CreatePaper(ctx, exam.Paper{Title: "quiz", QuestionIDs: csvIDs(q), Status: 1})
	rec, _ := s.StartExam(ctx, 1, p.ID)

	done, err := s.SubmitExam(ctx, rec.ID, `{"1":`)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if done.Score != 0 || done.Status != exam.StatusCompleted {
		t.Fatalf("malformed payload should complete with zero score: %+v", done)
	}
}

func TestStartExamMissingPaper(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.StartExam(context.Background(), 1, 42); !errors.Is(err, exam.ErrNotFound) {
		t.Fatalf("start against missing paper: %v", err)
	}
}

func TestListRecordsFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	q := seedQuestion(t, s, "A", 1, "")
	p, _ := s.CreatePaper(ctx, exam.Paper{Title: "quiz", QuestionIDs: csvIDs(q), Status: 1})

	r1, _ := s.StartExam(ctx, 1, p.ID)
	s.StartExam(ctx, 2, p.ID)
	if _, err := s.SubmitExam(ctx, r1.ID, `{}`); err != nil {
		t.Fatalf("submit: %v", err)
	}

	_, total, err := s.ListRecords(ctx, exam.RecordListOpts{Status: -1, Page: 1, Limit: 10})
	if err != nil || total != 2 {
		t.Fatalf("all records: total=%d err=%v", total, err)
	}
	_, total, err = s.ListRecords(ctx, exam.RecordListOpts{UserID: 1, Status: -1, Page: 1, Limit: 10})
	if err != nil || total != 1 {
		t.Fatalf("user filter: total=%d err=%v", total, err)
	}
	_, total, err = s.ListRecords(ctx, exam.RecordListOpts{Status: exam.StatusInProgress, Page: 1, Limit: 10})
	if err != nil || total != 1 {
		t.Fatalf("status filter: total=%d err=%v", total, err)
	}
}

func TestModules(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		seedQuestion(t, s, "A", 1, "unit-b")
	}
	seedQuestion(t, s, "A", 1, "unit-a")
	seedQuestion(t, s, "A", 1, "") // unlabeled, excluded from aggregation

	mods, err := s.ListModules(ctx)
	if err != nil {
		t.Fatalf("modules: %v", err)
	}
	if len(mods) != 2 {
		t.Fatalf("modules = %+v", mods)
	}
	if !sort.SliceIsSorted(mods, func(i, j int) bool { return mods[i].Name < mods[j].Name }) {
		t.Fatalf("modules not sorted by name: %+v", mods)
	}
	if mods[0].Name != "unit-a" || mods[0].Count != 1 || mods[1].Count != 4 {
		t.Fatalf("module counts: %+v", mods)
	}

	// fewer rows than requested returns all of them
	qs, err := s.ExamQuestions(ctx, "unit-b", 10)
	if err != nil || len(qs) != 4 {
		t.Fatalf("exam sample: len=%d err=%v", len(qs), err)
	}
	// "all" samples across modules, including unlabeled rows
	qs, err = s.ExamQuestions(ctx, "all", 100)
	if err != nil || len(qs) != 6 {
		t.Fatalf("exam sample all: len=%d err=%v", len(qs), err)
	}

	list, total, err := s.PracticeQuestions(ctx, "unit-b", 1, 3)
	if err != nil || total != 4 || len(list) != 3 {
		t.Fatalf("practice page: total=%d len=%d err=%v", total, len(list), err)
	}
}

func TestRandomQuestionsByType(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedQuestion(t, s, "A", 1, "")
	tf, err := s.CreateQuestion(ctx, exam.Question{Content: "tf", Type: exam.TypeTrueFalse, Answer: "T", Score: 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	qs, err := s.RandomQuestions(ctx, exam.TypeTrueFalse, 5)
	if err != nil {
		t.Fatalf("random: %v", err)
	}
	if len(qs) != 1 || qs[0].ID != tf.ID {
		t.Fatalf("random by type: %+v", qs)
	}
}
