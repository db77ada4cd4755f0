package postgres

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()

	db, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, db.ExpectationsWereMet())
		db.Close()
	})
	return db
}

func sqlContains(fragment string) string {
	return regexp.QuoteMeta(fragment)
}

// utcTime matches a time.Time argument that is in UTC and equal to want.
type utcTime struct {
	want time.Time
}

func (a utcTime) Match(v any) bool {
	ts, ok := v.(time.Time)
	return ok && ts.Location() == time.UTC && ts.Equal(a.want)
}

func (a utcTime) String() string {
	return fmt.Sprintf("UTC time %s", a.want.Format(time.RFC3339Nano))
}
