// tenants/tenants_test.go
package tenants

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBareList(t *testing.T) {
	raw := json.RawMessage(`[{"id":"t-1","name":"Alpha"},{"id":"t-2","displayName":"Beta Corp"}]`)

	list, err := normalize(raw)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "t-1", list[0].ID)
	assert.Equal(t, "Alpha", list[0].Label())
	assert.Equal(t, "Beta Corp", list[1].Label())
}

func TestNormalizeItemsEnvelope(t *testing.T) {
	raw := json.RawMessage(`{"items":[{"id":"t-1","name":"Alpha"}],"total":1}`)

	list, err := normalize(raw)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Alpha", list[0].Name)
}

func TestNormalizeRejectsUnknownShape(t *testing.T) {
	for _, body := range []string{
		`{"tenants":[]}`,
		`"just a string"`,
		`42`,
	} {
		_, err := normalize(json.RawMessage(body))
		assert.Error(t, err, "body %s", body)
	}
}

func TestNormalizeEmptyEnvelope(t *testing.T) {
	list, err := normalize(json.RawMessage(`{"items":[]}`))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestLabelFallsBackToID(t *testing.T) {
	assert.Equal(t, "t-9", Tenant{ID: "t-9"}.Label())
	assert.Equal(t, "Shown", Tenant{ID: "t-9", DisplayName: "Shown"}.Label())
	assert.Equal(t, "named", Tenant{ID: "t-9", Name: "named", DisplayName: "Shown"}.Label())
}

func TestFilter(t *testing.T) {
	list := []Tenant{
		{ID: "1", Name: "Alpha"},
		{ID: "2", Name: "Beta"},
		{ID: "3", Name: "Gamma"},
	}

	assert.Equal(t, list, Filter(list, nil, nil))

	only := Filter(list, []string{"alpha", " GAMMA "}, nil)
	require.Len(t, only, 2)
	assert.Equal(t, "Alpha", only[0].Name)
	assert.Equal(t, "Gamma", only[1].Name)

	skipped := Filter(list, nil, []string{"beta"})
	require.Len(t, skipped, 2)

	both := Filter(list, []string{"Alpha", "Beta"}, []string{"Beta"})
	require.Len(t, both, 1)
	assert.Equal(t, "Alpha", both[0].Name)
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Alpha":            "alpha",
		"Beta Corp":        "beta-corp",
		"  We/Do::Weird  ": "we-do-weird",
		"a--b":             "a-b",
		"!!!":              "tenant",
		"":                 "tenant",
		"v1.2_ok":          "v1.2_ok",
	}
	for input, want := range cases {
		assert.Equal(t, want, Slugify(input), "input %q", input)
	}
}
