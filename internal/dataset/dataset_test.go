package dataset

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	catalog, err := LoadFile(filepath.Join("..", "..", "testdata", "dataset.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "vanilla-mini", catalog.ID())
	assert.True(t, catalog.HasItem("iron-plate"))
	assert.False(t, catalog.HasItem("uranium-235"))

	recipe, ok := catalog.Recipe("iron-plate")
	require.True(t, ok)
	assert.Equal(t, "16/5", recipe.Time.String())
	assert.Equal(t, "1", recipe.In["iron-ore"].String())
	assert.Equal(t, []string{"stone-furnace", "electric-furnace"}, recipe.Producers)

	furnace, ok := catalog.Machine("stone-furnace")
	require.True(t, ok)
	assert.True(t, furnace.Burner())

	drill, ok := catalog.Machine("electric-mining-drill")
	require.True(t, ok)
	assert.False(t, drill.Burner())
	assert.Equal(t, "1/2", drill.Speed.String())
}

func TestDecodeJSON(t *testing.T) {
	input := `{
		"id": "json-set",
		"items": [{"id": "a"}],
		"recipes": [{"id": "r1", "time": "1/3", "out": {"a": 2}}]
	}`
	catalog, err := Decode(strings.NewReader(input))
	require.NoError(t, err)

	recipe, ok := catalog.Recipe("r1")
	require.True(t, ok)
	assert.Equal(t, "1/3", recipe.Time.String())
	assert.Equal(t, "2", recipe.Out["a"].String())
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"missing id", "items: []\nrecipes: []\n", "dataset id is required"},
		{"unknown field", "id: x\nbogus: 1\n", "bogus"},
		{"bad rational", "id: x\nrecipes:\n  - {id: r, time: 1.2.3}\n", "INVALID_RATIONAL"},
		{"duplicate item", "id: x\nitems: [{id: a}, {id: a}]\n", "duplicate item id"},
		{"duplicate recipe", "id: x\nrecipes: [{id: r, time: 1}, {id: r, time: 2}]\n", "duplicate recipe id"},
		{"zero speed", "id: x\nmachines: [{id: m, speed: 0}]\n", "positive speed"},
		{"zero fuel value", "id: x\nfuels: [{id: f, category: c, value: 0}]\n", "positive energy"},
		{"negative time", "id: x\nrecipes: [{id: r, time: -1}]\n", "negative time"},
		{"negative output", "id: x\nrecipes: [{id: r, time: 1, out: {a: -1, b: 1}}]\n", "negative output amount -1 of \"a\""},
		{"negative input", "id: x\nrecipes: [{id: r, time: 1, in: {a: -1/2}, out: {b: 1}}]\n", "negative input amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestCatalogOptions(t *testing.T) {
	catalog, err := LoadFile(filepath.Join("..", "..", "testdata", "dataset.yaml"))
	require.NoError(t, err)

	furnace, _ := catalog.Machine("stone-furnace")
	assert.Equal(t, []string{"coal", "wood"}, catalog.FuelsFor(furnace))

	assembler, _ := catalog.Machine("assembling-machine-2")
	assert.Nil(t, catalog.FuelsFor(assembler))

	assert.Equal(t, []string{"efficiency-module", "productivity-module", "speed-module"}, catalog.ModulesFor("iron-plate"))
	assert.Equal(t, []string{"efficiency-module", "speed-module"}, catalog.ModulesFor("research-automation"))

	ids := catalog.RecipeIDs()
	assert.Equal(t, "automation-science-pack", ids[0])
	assert.Len(t, ids, 10)
}
