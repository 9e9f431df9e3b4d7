package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDriver(t *testing.T) {
	tests := map[string]string{
		"postgres":   DriverPostgres,
		"PostgreSQL": DriverPostgres,
		"mariadb":    DriverMySQL,
		"mysql":      DriverMySQL,
		"sqlite":     DriverSQLite,
		" sqlite3 ":  DriverSQLite,
		"oracle":     "",
		"":           "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeDriver(in), in)
	}

	assert.True(t, IsMySQL("mariadb"))
	assert.True(t, IsPostgreSQL("pgsql"))
	assert.True(t, IsSQLite("sqlite"))
}

func TestIsConnectionError(t *testing.T) {
	assert.False(t, IsConnectionError(nil))
	assert.True(t, IsConnectionError(sql.ErrConnDone))
	assert.True(t, IsConnectionError(fmt.Errorf("count tickets: %w", context.DeadlineExceeded)))
	assert.True(t, IsConnectionError(errors.New("dial tcp 10.0.0.1:5432: connect: connection refused")))
	assert.False(t, IsConnectionError(errors.New("syntax error at or near WHERE")))

	assert.True(t, IsCanceled(fmt.Errorf("wrapped: %w", context.Canceled)))
	assert.False(t, IsCanceled(context.DeadlineExceeded))
}
