package repository

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// timeLayout is fixed width so that text comparison in SQL orders the same
// way as the instants do.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// nullableString converts a *string to a value suitable for SQLite storage.
// Returns nil (SQL NULL) if the pointer is nil.
func nullableString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

// stringFromNull converts a sql.NullString to *string.
func stringFromNull(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// intToBool converts a SQLite integer (0 or 1) to a Go bool.
func intToBool(i int) bool {
	return i != 0
}

// escapeLike escapes LIKE wildcards so s matches literally. Pair with
// ESCAPE '\'.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// isUniqueViolation reports whether err is a SQLite unique-constraint failure.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code()
	if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	return code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "UNIQUE")
}
