package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/crmconsole/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "add_cutoff_index", sanitizeName("Add cutoff-index"))
	assert.Equal(t, "roles", sanitizeName("  roles__ "))
	assert.Equal(t, "", sanitizeName("!!"))
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000001_init.up.sql"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000001_init.down.sql"), nil, 0o644))

	mf, err := CreateMigration(dir, "Add role index", "speeds up role lookups")
	require.NoError(t, err)
	assert.Equal(t, "000002", mf.Version)
	assert.FileExists(t, mf.UpPath)
	assert.FileExists(t, mf.DownPath)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- Description: speeds up role lookups")

	list, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_init", "000002_add_role_index"}, list)

	_, err = CreateMigration(dir, "??", "")
	assert.Error(t, err)
}

func TestListMigrations_MissingDir(t *testing.T) {
	list, err := ListMigrations(filepath.Join(t.TempDir(), "none"))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestEmbeddedMigrations(t *testing.T) {
	up, err := migrations.FS.ReadFile("000001_init.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(up), "CREATE TABLE IF NOT EXISTS integration_mappings")

	_, err = migrations.FS.ReadFile("000001_init.down.sql")
	assert.NoError(t, err)
}
