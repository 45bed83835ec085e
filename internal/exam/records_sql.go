package exam

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gzdyj/exam-system/internal/grading"
)

const recordCols = `id,user_id,paper_id,answers_json,score,status,started_at,submitted_at,created_at`

func scanRecord(r rowScanner) (ExamRecord, error) {
	var rec ExamRecord
	var submitted sql.NullInt64
	err := r.Scan(&rec.ID, &rec.UserID, &rec.PaperID, &rec.Answers, &rec.Score,
		&rec.Status, &rec.StartedAt, &submitted, &rec.CreatedAt)
	if submitted.Valid {
		rec.SubmittedAt = submitted.Int64
	}
	return rec, err
}

// StartExam opens a new in-progress record against an existing paper.
func (s *SQLStore) StartExam(ctx context.Context, userID, paperID int64) (ExamRecord, error) {
	if _, err := s.GetPaper(ctx, paperID); err != nil {
		return ExamRecord{}, err
	}
	rec := ExamRecord{
		UserID:    userID,
		PaperID:   paperID,
		Answers:   "{}",
		Status:    StatusInProgress,
		StartedAt: now(),
		CreatedAt: now(),
	}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO exam_records (user_id,paper_id,answers_json,score,status,started_at,created_at)
		 VALUES ($1,$2,$3,0,$4,$5,$6) RETURNING id`,
		rec.UserID, rec.PaperID, rec.Answers, rec.Status, rec.StartedAt, rec.CreatedAt,
	).Scan(&rec.ID)
	if err != nil {
		return ExamRecord{}, err
	}
	return rec, nil
}

// SubmitExam moves a record from in-progress to completed, storing the
// submitted answers and the auto-computed score. The status check rides
// on the UPDATE itself, so a lost race or a repeat submission surfaces
// as ErrAlreadySubmitted instead of silently overwriting the result.
func (s *SQLStore) SubmitExam(ctx context.Context, recordID int64, answers string) (ExamRecord, error) {
	rec, err := s.GetRecord(ctx, recordID)
	if err != nil {
		return ExamRecord{}, err
	}
	if rec.Status == StatusCompleted {
		return ExamRecord{}, ErrAlreadySubmitted
	}

	score, err := s.scoreSubmission(ctx, rec.PaperID, answers)
	if err != nil {
		return ExamRecord{}, err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE exam_records SET answers_json=$1, score=$2, status=$3, submitted_at=$4
		 WHERE id=$5 AND status=$6 AND deleted=0`,
		answers, score, StatusCompleted, now(), recordID, StatusInProgress)
	if err != nil {
		return ExamRecord{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ExamRecord{}, ErrAlreadySubmitted
	}
	return s.GetRecord(ctx, recordID)
}

// scoreSubmission resolves the paper's questions and scores the answer
// payload. Every failure mode (missing paper, empty question list,
// unparseable payload) degrades to zero.
func (s *SQLStore) scoreSubmission(ctx context.Context, paperID int64, answers string) (int, error) {
	p, err := s.GetPaper(ctx, paperID)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	qs, err := s.QuestionsByIDs(ctx, p.QuestionIDs)
	if err != nil {
		return 0, err
	}
	view := make([]grading.Q, len(qs))
	for i, q := range qs {
		view[i] = grading.Q{ID: q.ID, Answer: q.Answer, Score: q.Score}
	}
	return grading.Score(view, grading.ParseAnswers(answers)), nil
}

func (s *SQLStore) GetRecord(ctx context.Context, id int64) (ExamRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordCols+` FROM exam_records WHERE id=$1 AND deleted=0`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ExamRecord{}, ErrNotFound
	}
	return rec, err
}

func (s *SQLStore) ListRecords(ctx context.Context, opts RecordListOpts) ([]ExamRecord, int64, error) {
	where := `WHERE deleted=0`
	args := []any{}
	if opts.UserID != 0 {
		args = append(args, opts.UserID)
		where += fmt.Sprintf(` AND user_id=$%d`, len(args))
	}
	if opts.Status >= 0 {
		args = append(args, opts.Status)
		where += fmt.Sprintf(` AND status=$%d`, len(args))
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM exam_records `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := pageBounds(opts.Page, opts.Limit)
	args = append(args, limit, offset)
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM exam_records %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
			recordCols, where, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []ExamRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rec)
	}
	return out, total, rows.Err()
}
