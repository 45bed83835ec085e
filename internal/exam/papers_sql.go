package exam

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const paperCols = `id,title,question_ids,total_score,duration,created_by,status,created_at,updated_at`

func scanPaper(r rowScanner) (Paper, error) {
	var p Paper
	err := r.Scan(&p.ID, &p.Title, &p.QuestionIDs, &p.TotalScore, &p.Duration,
		&p.CreatedBy, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// totalScoreFor recomputes a paper's cached total from its referenced,
// currently-existing questions. Empty or malformed id lists total zero.
func (s *SQLStore) totalScoreFor(ctx context.Context, questionIDs string) (int, error) {
	qs, err := s.QuestionsByIDs(ctx, questionIDs)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, q := range qs {
		total += q.Score
	}
	return total, nil
}

func (s *SQLStore) CreatePaper(ctx context.Context, p Paper) (Paper, error) {
	total, err := s.totalScoreFor(ctx, p.QuestionIDs)
	if err != nil {
		return Paper{}, err
	}
	p.TotalScore = total
	ts := now()
	p.CreatedAt, p.UpdatedAt = ts, ts
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO papers (title,question_ids,total_score,duration,created_by,status,created_at,updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id`,
		p.Title, p.QuestionIDs, p.TotalScore, p.Duration, p.CreatedBy, p.Status, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return Paper{}, err
	}
	return p, nil
}

func (s *SQLStore) GetPaper(ctx context.Context, id int64) (Paper, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+paperCols+` FROM papers WHERE id=$1 AND deleted=0`, id)
	p, err := scanPaper(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Paper{}, ErrNotFound
	}
	return p, err
}

func (s *SQLStore) UpdatePaper(ctx context.Context, p Paper) (Paper, error) {
	total, err := s.totalScoreFor(ctx, p.QuestionIDs)
	if err != nil {
		return Paper{}, err
	}
	p.TotalScore = total
	res, err := s.db.ExecContext(ctx,
		`UPDATE papers SET title=$1,question_ids=$2,total_score=$3,duration=$4,status=$5,updated_at=$6
		 WHERE id=$7 AND deleted=0`,
		p.Title, p.QuestionIDs, p.TotalScore, p.Duration, p.Status, now(), p.ID)
	if err != nil {
		return Paper{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Paper{}, ErrNotFound
	}
	return s.GetPaper(ctx, p.ID)
}

func (s *SQLStore) DeletePaper(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE papers SET deleted=1, updated_at=$1 WHERE id=$2 AND deleted=0`, now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) ListPapers(ctx context.Context, opts PaperListOpts) ([]Paper, int64, error) {
	where := `WHERE deleted=0`
	args := []any{}
	if opts.Title != "" {
		args = append(args, "%"+opts.Title+"%")
		where += fmt.Sprintf(` AND title LIKE $%d`, len(args))
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM papers `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := pageBounds(opts.Page, opts.Limit)
	args = append(args, limit, offset)
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM papers %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
			paperCols, where, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Paper{}
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// PaperQuestions resolves a paper's question list in its stored order.
// A missing paper yields an empty slice, not an error.
func (s *SQLStore) PaperQuestions(ctx context.Context, paperID int64) ([]Question, error) {
	p, err := s.GetPaper(ctx, paperID)
	if errors.Is(err, ErrNotFound) {
		return []Question{}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.QuestionsByIDs(ctx, p.QuestionIDs)
}
