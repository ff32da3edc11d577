package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// nullString maps an optional column value to SQL NULL when absent.
func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// isUnavailable reports whether a connection error means "not ready yet" and is worth retrying.
// Authentication failures and unknown databases will not fix themselves.
func isUnavailable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "28", "3D":
			return false
		}
	}
	return true
}
