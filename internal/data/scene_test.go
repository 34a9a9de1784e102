package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testScene = `
name: test
bounds: {min: [-500, -500], max: [500, 500]}
ground: 2
plateaus:
  - {min: [100, 100], max: [200, 200], height: 40}
roads:
  - name: main
    points: [[-500, 0, 2], [500, 0, 2]]
obstacles:
  - {min: [10, -5, 0], max: [12, 5, 20]}
player: {position: [0, 0, 3], heading: 90}
weather: thunder
entities:
  - {kind: ped, model: a_m_y_hipster_01, position: [20, 20, 3], count: 3, spread: 5}
  - {kind: vehicle, model: luxor, position: [-30, 0, 3], mass: 8000, plane: true}
asset_latency: {core: 3}
`

func TestParseScene(t *testing.T) {
	s, err := ParseScene([]byte(testScene))
	require.NoError(t, err)

	assert.Equal(t, "test", s.Name)
	assert.Equal(t, float32(2), s.Ground)
	require.Len(t, s.Plateaus, 1)
	assert.Equal(t, float32(40), s.Plateaus[0].Height)
	assert.Equal(t, [2]float32{100, 100}, s.Plateaus[0].Min)
	require.Len(t, s.Roads, 1)
	assert.Len(t, s.Roads[0].Points, 2)
	assert.True(t, s.Entities[1].Plane)
	assert.Equal(t, 4, s.EntityCount())
	assert.Equal(t, 3, s.AssetLatency["core"])
}

func TestParseSceneValidation(t *testing.T) {
	_, err := ParseScene([]byte(`name: empty`))
	assert.Error(t, err)

	_, err = ParseScene([]byte(`
bounds: {min: [0, 0], max: [10, 10]}
roads:
  - points: [[0, 0, 0]]
`))
	assert.Error(t, err)

	_, err = ParseScene([]byte(`
bounds: {min: [0, 0], max: [10, 10]}
entities:
  - {kind: dragon}
`))
	assert.Error(t, err)
}

func TestLoadParticlePresetsOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "particles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_size: 5\ncloud:\n  layer_cap: 8\n"), 0o644))

	p, err := LoadParticlePresets(path)
	require.NoError(t, err)
	assert.Equal(t, float32(5), p.BaseSize)
	assert.Equal(t, 8, p.Cloud.LayerCap)
	// nested fields not present in the file keep their defaults
	assert.Equal(t, float32(12), p.Cloud.Lift)
	assert.Equal(t, "prop_beach_volball02", p.PropModel)
	assert.Equal(t, "scr_agencyheistb", p.Funnel.Asset)
}

func TestShippedDataFilesLoad(t *testing.T) {
	scene, err := LoadScene(filepath.Join("..", "..", "data", "yaml", "scene.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "farmland", scene.Name)
	assert.Equal(t, 52, scene.EntityCount())
	assert.Equal(t, 5, scene.AssetLatency["scr_agencyheistb"])

	presets, err := LoadParticlePresets(filepath.Join("..", "..", "data", "yaml", "particles.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultParticlePresets(), presets)
}
