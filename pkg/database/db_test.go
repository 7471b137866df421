package database

import (
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/qrmenu/pkg/metrics"
)

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "qrmenu.db?_foreign_keys=on&_busy_timeout=5000", sqliteDSN("qrmenu.db"))
	assert.Equal(t, "file::memory:?cache=shared&_foreign_keys=on&_busy_timeout=5000", sqliteDSN(":memory:"))
	assert.Equal(t, "x.db?_foreign_keys=off&_busy_timeout=5000", sqliteDSN("x.db?_foreign_keys=off"))
}

func TestUnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "whatever")
	assert.ErrorContains(t, err, "unsupported DB_DRIVER")
}

func TestOpenRecordsQueryMetrics(t *testing.T) {
	db, err := Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	before := testutil.CollectAndCount(metrics.DBQueryDuration)

	var n int
	require.NoError(t, db.Raw("SELECT 1").Scan(&n).Error)
	assert.Equal(t, 1, n)

	assert.GreaterOrEqual(t, testutil.CollectAndCount(metrics.DBQueryDuration), before)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(metrics.DBQueryDuration), 1)
}
