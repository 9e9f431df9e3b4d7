package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// IsConnectionError reports whether err means the database is unreachable.
// Handlers answer these with 503 instead of a generic 500.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"connection refused",
		"connection reset",
		"host is unreachable",
		"network is unreachable",
		"broken pipe",
		"bad connection",
		"database is closed",
		"too many connections",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// IsCanceled reports whether the query was aborted by the caller.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
