package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/phanxgames/grove"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/require"
)

const tinyPreset = `
name: tiny
seed: 9
area: {origin: [-20, 0, -20], size: [40, 40]}
grid: {dims_x: 4, dims_z: 4}
terrain: {resolution: 17}
trees: {count: 10}
rocks: {count: 10}
grass: {count: 100}
foliage: {count: 10}
`

func writePreset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "preset.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGenerate(t *testing.T) {
	out, err := execute(t, "generate", writePreset(t, tinyPreset))
	require.NoError(t, err)
	require.Contains(t, out, `World "tiny" (seed 9)`)
	for _, c := range []string{"tree-wood", "rock", "grass", "foliage-branches"} {
		require.Contains(t, out, c)
	}
}

func TestStatsJSON(t *testing.T) {
	path := writePreset(t, tinyPreset)
	out, err := execute(t, "stats", path, "--json", "--frames", "2", "--seed", "5")
	require.NoError(t, err)

	var rep worldReport
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	require.Equal(t, "tiny", rep.Preset)
	require.Equal(t, int64(5), rep.Seed)
	require.Len(t, rep.Fields, 4)
	require.NotNil(t, rep.Frame)
	require.Equal(t, uint64(2), rep.Frame.Frame)
	require.Equal(t, uint64(1), rep.Frame.Generation)
	require.Equal(t, 1, rep.Frame.Cameras)

	var placed int
	for _, f := range rep.Fields {
		require.LessOrEqual(t, f.Accepted, f.Target)
		require.Equal(t, f.Target-f.Accepted, f.Shortfall)
		placed += f.Instances
	}
	require.Equal(t, rep.Instances, placed)
}

func TestStatsText(t *testing.T) {
	out, err := execute(t, "stats", writePreset(t, tinyPreset))
	require.NoError(t, err)
	require.Contains(t, out, "Frame 1 (generation 1, 1 cameras)")
	require.Contains(t, out, "draw calls:")
}

func TestStatsRejectsZeroFrames(t *testing.T) {
	_, err := execute(t, "stats", writePreset(t, tinyPreset), "--frames", "0")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	out, err := execute(t, "validate", writePreset(t, tinyPreset))
	require.NoError(t, err)
	require.Contains(t, out, `Preset "tiny" is valid`)
	require.Contains(t, out, "count 100")
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"invalid value", func(t *testing.T) string { return writePreset(t, "trees: {count: -1}") }},
		{"syntax", func(t *testing.T) string { return writePreset(t, "seed: [") }},
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "validate", tt.path(t))
			require.Error(t, err)
		})
	}
}

func TestValidateRequiresPath(t *testing.T) {
	_, err := execute(t, "validate")
	require.Error(t, err)
}

func TestDefaults(t *testing.T) {
	out, err := execute(t, "defaults")
	require.NoError(t, err)

	p, err := grove.ParsePreset([]byte(out))
	require.NoError(t, err)
	require.Equal(t, grove.DefaultPreset().Seed, p.Seed)
	require.Equal(t, grove.DefaultPreset().Grass.Count, p.Grass.Count)
}

func TestLoadPresetDefault(t *testing.T) {
	p, err := loadPreset("")
	require.NoError(t, err)
	require.Equal(t, "default", p.Name)
}
