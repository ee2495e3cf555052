package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add invoices table", "add_invoices_table"},
		{"Add-Invoices-Table", "add_invoices_table"},
		{"ADD_INVOICES_TABLE", "add_invoices_table"},
		{"add__invoices__table", "add_invoices_table"},
		{"Add Invoices 123", "add_invoices_123"},
		{"create-credit-applications", "create_credit_applications"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "add invoices table", "Create invoices table with payment state")
	require.NoError(t, err)
	require.NotNil(t, mf)

	// Version is a 14-digit timestamp so pairs sort lexicographically.
	assert.Len(t, mf.Version, 14)

	assert.True(t, strings.HasSuffix(mf.UpPath, ".up.sql"))
	assert.True(t, strings.HasSuffix(mf.DownPath, ".down.sql"))

	upBase := strings.TrimSuffix(filepath.Base(mf.UpPath), ".up.sql")
	downBase := strings.TrimSuffix(filepath.Base(mf.DownPath), ".down.sql")
	assert.Equal(t, upBase, downBase)

	upContent, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(upContent), "add invoices table")
	assert.Contains(t, string(upContent), "Create invoices table with payment state")
	assert.Contains(t, string(upContent), "Write your UP migration SQL here")

	downContent, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(downContent), "Rollback")
	assert.Contains(t, string(downContent), "Write your DOWN migration SQL here")
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "nested", "migrations")

	_, err := CreateMigration(nested, "init", "initial schema")
	require.NoError(t, err)

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

// seedMigrationDir writes the named files into a fresh temp directory.
func seedMigrationDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("-- test"), 0644))
	}
	return dir
}

func TestListMigrations(t *testing.T) {
	t.Run("returns pairs in version order", func(t *testing.T) {
		dir := seedMigrationDir(t,
			"000003_add_credits.up.sql",
			"000003_add_credits.down.sql",
			"000001_init_schema.up.sql",
			"000001_init_schema.down.sql",
			"000002_add_payments.up.sql",
			"000002_add_payments.down.sql",
		)

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"000001_init_schema",
			"000002_add_payments",
			"000003_add_credits",
		}, migrations)
	})

	t.Run("empty directory", func(t *testing.T) {
		migrations, err := ListMigrations(t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})

	t.Run("nonexistent directory", func(t *testing.T) {
		migrations, err := ListMigrations("/nonexistent/path/to/migrations")
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})

	t.Run("ignores files that are not migrations", func(t *testing.T) {
		dir := seedMigrationDir(t,
			"000001_init.up.sql",
			"000001_init.down.sql",
			"README.md",
			"config.yaml",
			".gitkeep",
		)

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"000001_init"}, migrations)
	})

	t.Run("ignores directories", func(t *testing.T) {
		dir := seedMigrationDir(t,
			"000001_init.up.sql",
			"000001_init.down.sql",
		)
		require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir.up.sql"), 0755))

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"000001_init"}, migrations)
	})
}
