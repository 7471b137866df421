package migration

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type createTable struct{ name string }

func (m createTable) Up(db *gorm.DB) error {
	return db.Exec("CREATE TABLE " + m.name + " (id TEXT PRIMARY KEY)").Error
}

func (m createTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(m.name)
}

func withRegistry(t *testing.T) {
	t.Helper()
	saved := registry
	registry = nil
	t.Cleanup(func() { registry = saved })
}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "m.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestRunThenRollbackByBatch(t *testing.T) {
	withRegistry(t)
	db := openDB(t)
	var out bytes.Buffer
	r := New(db, &out)

	Register("0002_create_categories", createTable{"categories"})
	Register("0001_create_restaurants", createTable{"restaurants"})

	n, err := r.Run()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, db.Migrator().HasTable("restaurants"))
	assert.Contains(t, out.String(), "Migrated:  0001_create_restaurants")

	Register("0003_create_menu_items", createTable{"menu_items"})
	n, err = r.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rows, err := r.Status()
	require.NoError(t, err)
	assert.Equal(t, []StatusRow{
		{Name: "0001_create_restaurants", Ran: true, Batch: 1},
		{Name: "0002_create_categories", Ran: true, Batch: 1},
		{Name: "0003_create_menu_items", Ran: true, Batch: 2},
	}, rows)

	n, err = r.Rollback()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.False(t, db.Migrator().HasTable("menu_items"))
	assert.True(t, db.Migrator().HasTable("categories"))

	pending, err := r.Pending()
	require.NoError(t, err)
	assert.Equal(t, []string{"0003_create_menu_items"}, pending)
}

func TestNothingToDo(t *testing.T) {
	withRegistry(t)
	var out bytes.Buffer
	r := New(openDB(t), &out)

	n, err := r.Run()
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = r.Rollback()
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Contains(t, out.String(), "Nothing to roll back.")
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	withRegistry(t)
	Register("0001_x", createTable{"x"})
	assert.Panics(t, func() { Register("0001_x", createTable{"x"}) })
}
