// snapshots/retention_test.go
package snapshots

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wafops/go-waf-admin/logger"
)

func writeSnapshot(t *testing.T, dir, name string, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

func TestCleanupOldDisabledByDefault(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().AddDate(0, 0, -365)
	writeSnapshot(t, dir, "20250101T000000Z_alpha_t-1"+Suffix, old)

	removed := CleanupOld(dir, 0, logger.NewNop())
	assert.Zero(t, removed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCleanupOldRemovesExpired(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().AddDate(0, 0, -10)
	fresh := time.Now().Add(-time.Hour)

	expired := writeSnapshot(t, dir, "20260820T000000Z_alpha_t-1"+Suffix, old)
	kept := writeSnapshot(t, dir, "20260830T000000Z_alpha_t-1"+Suffix, fresh)
	unrelated := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(unrelated, []byte("keep me"), 0o644))
	require.NoError(t, os.Chtimes(unrelated, old, old))

	removed := CleanupOld(dir, 7, logger.NewNop())
	assert.Equal(t, 1, removed)

	assert.NoFileExists(t, expired)
	assert.FileExists(t, kept)
	assert.FileExists(t, unrelated, "cleanup only touches snapshot files")
}

func TestLatestPerTenant(t *testing.T) {
	dir := t.TempDir()
	mtime := time.Now()

	writeSnapshot(t, dir, "20260829T100000Z_alpha_t-1"+Suffix, mtime)
	writeSnapshot(t, dir, "20260830T090000Z_alpha_t-1"+Suffix, mtime)
	writeSnapshot(t, dir, "20260815T120030Z_beta_t-2"+Suffix, mtime)

	latest := LatestPerTenant(dir)
	assert.Equal(t, map[string]string{
		"t-1": "2026-08-30T09:00:00Z",
		"t-2": "2026-08-15T12:00:30Z",
	}, latest)
}

func TestLatestPerTenantFallsBackToMtime(t *testing.T) {
	dir := t.TempDir()
	mtime := time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)
	writeSnapshot(t, dir, "badprefix_alpha_t-1"+Suffix, mtime)

	latest := LatestPerTenant(dir)
	assert.Equal(t, "2026-08-01T08:00:00Z", latest["t-1"])
}

func TestLatestPerTenantEmptyDir(t *testing.T) {
	assert.Empty(t, LatestPerTenant(t.TempDir()))
}

func TestTenantIDFromPath(t *testing.T) {
	assert.Equal(t, "t-1", tenantIDFromPath("exports/20260830T000000Z_alpha_t-1"+Suffix))
	assert.Equal(t, "", tenantIDFromPath("exports/noseparator"+Suffix))
	assert.Equal(t, "", tenantIDFromPath("exports/trailing_"+Suffix))
}
