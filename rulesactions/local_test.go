// rulesactions/local_test.go
package rulesactions

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedExports lays out a local export tree the way ExportTenant writes it.
func seedExports(t *testing.T) string {
	t.Helper()
	base := t.TempDir()

	alpha := filepath.Join(base, "alpha_t-1")
	require.NoError(t, os.MkdirAll(alpha, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(alpha, "block-bots.rule.json"),
		[]byte(`{"id":"r-1","name":"Block Bots"}`), 0o644))
	require.NoError(t, os.WriteFile(
		filepath.Join(alpha, "broken.rule.json"),
		[]byte(`{not json`), 0o644))
	require.NoError(t, os.WriteFile(
		filepath.Join(alpha, "deny.action.json"),
		[]byte(`{"id":"a-1","name":"Deny"}`), 0o644))

	beta := filepath.Join(base, "beta-corp_t-2")
	require.NoError(t, os.MkdirAll(beta, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(beta, "rate-limit.rule.json"),
		[]byte(`{"id":"r-2","name":"Rate Limit"}`), 0o644))

	// Empty tenant dir and a stray file must both be skipped.
	require.NoError(t, os.MkdirAll(filepath.Join(base, "empty_t-3"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "README.txt"), []byte("x"), 0o644))

	return base
}

func TestListLocalExports(t *testing.T) {
	base := seedExports(t)

	exports, err := ListLocalExports(base, KindRule)
	require.NoError(t, err)
	require.Len(t, exports, 2)

	assert.Equal(t, "alpha", exports[0].TenantName)
	assert.Equal(t, "alpha_t-1", exports[0].TenantDir)
	assert.Equal(t, "t-1", exports[0].TenantID)
	require.Len(t, exports[0].Files, 2, "only files with the kind suffix are listed")
	assert.Equal(t, "Block Bots", exports[0].Files[0].DisplayName)
	assert.Equal(t, "broken", exports[0].Files[1].DisplayName, "unreadable payload falls back to the filename")

	assert.Equal(t, "beta corp", exports[1].TenantName)
	assert.Equal(t, "t-2", exports[1].TenantID)
}

func TestListLocalExportsMissingDir(t *testing.T) {
	exports, err := ListLocalExports(filepath.Join(t.TempDir(), "nope"), KindRule)
	require.NoError(t, err)
	assert.Nil(t, exports)
}

func TestLoadLocalPayload(t *testing.T) {
	base := seedExports(t)

	payload, err := LoadLocalPayload(base, "Alpha", "block-bots.rule.json", KindRule)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"r-1","name":"Block Bots"}`, string(payload))

	// Matching on the raw directory name also works.
	payload, err = LoadLocalPayload(base, "alpha_t-1", "block-bots.rule.json", KindRule)
	require.NoError(t, err)
	require.NotNil(t, payload)
}

func TestLoadLocalPayloadRejectsWrongSuffix(t *testing.T) {
	base := seedExports(t)

	_, err := LoadLocalPayload(base, "Alpha", "deny.action.json", KindRule)
	assert.Error(t, err)
}

func TestLoadLocalPayloadRejectsTraversal(t *testing.T) {
	base := seedExports(t)

	_, err := LoadLocalPayload(base, "Alpha", "../alpha_t-1/block-bots.rule.json", KindRule)
	assert.Error(t, err)
}

func TestLoadLocalPayloadRejectsInvalidJSON(t *testing.T) {
	base := seedExports(t)

	_, err := LoadLocalPayload(base, "Alpha", "broken.rule.json", KindRule)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestLoadLocalPayloadUnknownTenant(t *testing.T) {
	base := seedExports(t)

	_, err := LoadLocalPayload(base, "Nobody", "block-bots.rule.json", KindRule)
	assert.Error(t, err)
}

func TestTenantLabelFromDir(t *testing.T) {
	label, id := tenantLabelFromDir("beta-corp_t-2")
	assert.Equal(t, "beta corp", label)
	assert.Equal(t, "t-2", id)

	label, id = tenantLabelFromDir("plain")
	assert.Equal(t, "plain", label)
	assert.Empty(t, id)
}

func TestDisplayNamePrefersPayloadName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.rule.json")
	payload, _ := json.Marshal(map[string]string{"id": "r", "name": "Friendly"})
	require.NoError(t, os.WriteFile(path, payload, 0o644))

	assert.Equal(t, "Friendly", displayName(path, KindRule))
	assert.Equal(t, "missing", displayName(filepath.Join(dir, "missing.rule.json"), KindRule))
}
