package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/gzdyj/exam-system/internal/auth"
)

// User statuses.
const (
	StatusDisabled = 0
	StatusActive   = 1
)

var (
	ErrNotFound     = errors.New("user not found")
	ErrConflict     = errors.New("username already exists")
	ErrUnauthorized = errors.New("wrong password")
	ErrForbidden    = errors.New("account disabled")
)

type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         int    `json:"role"`   // auth.RoleAdmin | auth.RoleStudent
	Status       int    `json:"status"` // active | disabled
	CreatedAt    int64  `json:"created_at,omitempty"`
	UpdatedAt    int64  `json:"updated_at,omitempty"`
}

type ListOpts struct {
	Username string
	Role     int // 0 matches any
	Page     int
	Limit    int
}

// Service owns authentication and user administration. Explicitly
// constructed, no shared mutable state.
type Service struct {
	db         *sql.DB
	auth       *auth.AuthService
	bcryptCost int
}

func NewService(db *sql.DB, authSvc *auth.AuthService, bcryptCost int) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = 12
	}
	return &Service{db: db, auth: authSvc, bcryptCost: bcryptCost}
}

const userCols = `id,username,password_hash,role,status,created_at,updated_at`

func scanUser(r interface{ Scan(...any) error }) (User, error) {
	var u User
	err := r.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Login checks credentials and issues a signed token carrying the user's
// id and role. Distinct failures: unknown user, disabled account, and
// password mismatch.
func (s *Service) Login(ctx context.Context, username, password string) (User, string, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE username=$1 AND deleted=0`, username)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, "", ErrNotFound
	}
	if err != nil {
		return User{}, "", err
	}
	if u.Status == StatusDisabled {
		return User{}, "", ErrForbidden
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, "", ErrUnauthorized
	}
	token, err := s.auth.IssueJWT(u.ID, u.Role)
	if err != nil {
		return User{}, "", err
	}
	return u, token, nil
}

// Register creates a self-service account. Whatever role or status the
// caller supplied is discarded: self-registration always yields an
// active student account.
func (s *Service) Register(ctx context.Context, username, password string) (User, error) {
	return s.insertUser(ctx, User{
		Username: username,
		Role:     auth.RoleStudent,
		Status:   StatusActive,
	}, password)
}

// Add creates a user with admin-chosen role and status.
func (s *Service) Add(ctx context.Context, u User, password string) (User, error) {
	if u.Role == 0 {
		u.Role = auth.RoleStudent
	}
	if u.Status == 0 {
		u.Status = StatusActive
	}
	return s.insertUser(ctx, u, password)
}

func (s *Service) insertUser(ctx context.Context, u User, password string) (User, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username=$1 AND deleted=0`, u.Username).Scan(&n); err != nil {
		return User{}, err
	}
	if n > 0 {
		return User{}, ErrConflict
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return User{}, err
	}
	u.PasswordHash = string(hash)
	ts := time.Now().Unix()
	u.CreatedAt, u.UpdatedAt = ts, ts
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO users (username,password_hash,role,status,created_at,updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
		u.Username, u.PasswordHash, u.Role, u.Status, u.CreatedAt, u.UpdatedAt,
	).Scan(&u.ID)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE id=$1 AND deleted=0`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

// UpdateParams carries the fields an update should touch. Nil fields are
// left as stored.
type UpdateParams struct {
	Username *string
	Password *string // re-hashed when supplied
	Role     *int
	Status   *int
}

// Update applies the supplied fields only; everything else on the row
// stays as it was.
func (s *Service) Update(ctx context.Context, id int64, p UpdateParams) error {
	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s=$%d", col, len(args)))
	}

	if p.Username != nil {
		if *p.Username == "" {
			return fmt.Errorf("username cannot be empty")
		}
		var n int
		if err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM users WHERE username=$1 AND deleted=0 AND id<>$2`,
			*p.Username, id).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return ErrConflict
		}
		add("username", *p.Username)
	}
	if p.Role != nil {
		if *p.Role != auth.RoleAdmin && *p.Role != auth.RoleStudent {
			return fmt.Errorf("unknown role %d", *p.Role)
		}
		add("role", *p.Role)
	}
	if p.Status != nil {
		add("status", *p.Status)
	}
	if p.Password != nil && *p.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*p.Password), s.bcryptCost)
		if err != nil {
			return err
		}
		add("password_hash", string(hash))
	}
	add("updated_at", time.Now().Unix())

	args = append(args, id)
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE users SET %s WHERE id=$%d AND deleted=0`,
			strings.Join(sets, ", "), len(args)),
		args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET deleted=1, updated_at=$1 WHERE id=$2 AND deleted=0`,
		time.Now().Unix(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) List(ctx context.Context, opts ListOpts) ([]User, int64, error) {
	where := `WHERE deleted=0`
	args := []any{}
	if opts.Username != "" {
		args = append(args, "%"+opts.Username+"%")
		where += fmt.Sprintf(` AND username LIKE $%d`, len(args))
	}
	if opts.Role != 0 {
		args = append(args, opts.Role)
		where += fmt.Sprintf(` AND role=$%d`, len(args))
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	page := opts.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM users %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
			userCols, where, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}
