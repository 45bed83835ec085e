package exam

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const questionCols = `id,content,qtype,option_a,option_b,option_c,option_d,answer,score,module,analysis,created_by,created_at,updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(r rowScanner) (Question, error) {
	var q Question
	err := r.Scan(&q.ID, &q.Content, &q.Type, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD,
		&q.Answer, &q.Score, &q.Module, &q.Analysis, &q.CreatedBy, &q.CreatedAt, &q.UpdatedAt)
	return q, err
}

func (s *SQLStore) CreateQuestion(ctx context.Context, q Question) (Question, error) {
	ts := now()
	q.CreatedAt, q.UpdatedAt = ts, ts
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO questions (content,qtype,option_a,option_b,option_c,option_d,answer,score,module,analysis,created_by,created_at,updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13) RETURNING id`,
		q.Content, q.Type, q.OptionA, q.OptionB, q.OptionC, q.OptionD,
		q.Answer, q.Score, q.Module, q.Analysis, q.CreatedBy, q.CreatedAt, q.UpdatedAt,
	).Scan(&q.ID)
	if err != nil {
		return Question{}, err
	}
	return q, nil
}

func (s *SQLStore) GetQuestion(ctx context.Context, id int64) (Question, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+questionCols+` FROM questions WHERE id=$1 AND deleted=0`, id)
	q, err := scanQuestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Question{}, ErrNotFound
	}
	return q, err
}

func (s *SQLStore) UpdateQuestion(ctx context.Context, q Question) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE questions SET content=$1,qtype=$2,option_a=$3,option_b=$4,option_c=$5,option_d=$6,
		 answer=$7,score=$8,module=$9,analysis=$10,updated_at=$11 WHERE id=$12 AND deleted=0`,
		q.Content, q.Type, q.OptionA, q.OptionB, q.OptionC, q.OptionD,
		q.Answer, q.Score, q.Module, q.Analysis, now(), q.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) DeleteQuestion(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE questions SET deleted=1, updated_at=$1 WHERE id=$2 AND deleted=0`, now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) ListQuestions(ctx context.Context, opts QuestionListOpts) ([]Question, int64, error) {
	where := `WHERE deleted=0`
	args := []any{}
	if opts.Type != 0 {
		args = append(args, opts.Type)
		where += fmt.Sprintf(` AND qtype=$%d`, len(args))
	}
	if opts.Keyword != "" {
		args = append(args, "%"+opts.Keyword+"%")
		where += fmt.Sprintf(` AND content LIKE $%d`, len(args))
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := pageBounds(opts.Page, opts.Limit)
	args = append(args, limit, offset)
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM questions %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
			questionCols, where, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, q)
	}
	return out, total, rows.Err()
}

// QuestionsByIDs resolves a comma-separated id list to question rows,
// preserving the list's order. Unknown or deleted ids are skipped.
func (s *SQLStore) QuestionsByIDs(ctx context.Context, ids string) ([]Question, error) {
	idList := parseIDList(ids)
	if len(idList) == 0 {
		return []Question{}, nil
	}
	args := make([]any, len(idList))
	for i, id := range idList {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+questionCols+` FROM questions WHERE deleted=0 AND id IN (`+placeholders(1, len(idList))+`)`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := map[int64]Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		byID[q.ID] = q
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make([]Question, 0, len(byID))
	for _, id := range idList {
		if q, ok := byID[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

// RandomQuestions samples up to count rows of one type. ORDER BY RANDOM()
// is a full scan; fine at this table size.
func (s *SQLStore) RandomQuestions(ctx context.Context, qtype, count int) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+questionCols+` FROM questions WHERE deleted=0 AND qtype=$1 ORDER BY RANDOM() LIMIT $2`,
		qtype, count)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQuestions(rows)
}

// ListModules aggregates the distinct non-empty module labels with their
// question counts, sorted by name.
func (s *SQLStore) ListModules(ctx context.Context) ([]Module, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT module, COUNT(*) FROM questions WHERE deleted=0 AND module<>'' GROUP BY module ORDER BY module`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Module{}
	for rows.Next() {
		var m Module
		if err := rows.Scan(&m.Name, &m.Count); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// PracticeQuestions pages through one module's questions in id order.
func (s *SQLStore) PracticeQuestions(ctx context.Context, module string, page, limit int) ([]Question, int64, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM questions WHERE deleted=0 AND module=$1`, module).Scan(&total); err != nil {
		return nil, 0, err
	}

	lim, offset := pageBounds(page, limit)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+questionCols+` FROM questions WHERE deleted=0 AND module=$1 ORDER BY id ASC LIMIT $2 OFFSET $3`,
		module, lim, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	list, err := collectQuestions(rows)
	return list, total, err
}

// ExamQuestions samples up to count questions from a module, or from the
// whole bank when module is empty or "all". Fewer matching rows than
// requested returns all of them.
func (s *SQLStore) ExamQuestions(ctx context.Context, module string, count int) ([]Question, error) {
	var rows *sql.Rows
	var err error
	if module == "" || module == "all" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+questionCols+` FROM questions WHERE deleted=0 ORDER BY RANDOM() LIMIT $1`, count)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+questionCols+` FROM questions WHERE deleted=0 AND module=$1 ORDER BY RANDOM() LIMIT $2`,
			module, count)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQuestions(rows)
}

func collectQuestions(rows *sql.Rows) ([]Question, error) {
	out := []Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// StripAnswers blanks the answer and analysis fields before rows are
// served to an exam taker.
func StripAnswers(qs []Question) []Question {
	for i := range qs {
		qs[i].Answer = ""
		qs[i].Analysis = ""
	}
	return qs
}
