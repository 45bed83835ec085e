package exam

import (
	"database/sql"
	"strconv"
	"strings"
	"time"
)

// SQLStore works against either backing driver: the $N placeholder
// syntax is shared by pgx and modernc sqlite.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func now() int64 { return time.Now().Unix() }

// parseIDList splits a comma-separated id list, dropping blanks and
// anything that does not parse. A malformed list is just fewer ids.
func parseIDList(s string) []int64 {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}

// pageBounds converts 1-based page/limit into LIMIT/OFFSET.
func pageBounds(page, limit int) (int, int) {
	if limit <= 0 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}
	return limit, (page - 1) * limit
}

func placeholders(start, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(start + i))
	}
	return b.String()
}
