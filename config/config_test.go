package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/juanDcuatindioyN/ECG-Project/solver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []r3.Vec{{X: 0.5, Y: -0.4, Z: 0.1}}, cfg.Positions())
	assert.Equal(t, []float64{1}, cfg.Charges)
	assert.Equal(t, -0.4, cfg.ZLower)
	assert.Equal(t, 0.4, cfg.ZUpper)

	pc := cfg.PoissonConfig()
	assert.Equal(t, solver.CG{Tol: 1e-10}, pc.Solver)
	assert.Equal(t, 25, pc.ProjectIterations)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	doc := `
mesh: sphere.vtk
mode: both
sources:
  - [0, 0, 0.2]
  - [0.1, 0.1, -0.3]
charges: [1, -1]
solver: cholesky
debug: true
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sphere.vtk", cfg.MeshFile)
	assert.Equal(t, ModeBoth, cfg.Mode)
	assert.Equal(t, [][]float64{{0, 0, 0.2}, {0.1, 0.1, -0.3}}, cfg.Sources)
	assert.Equal(t, []float64{1, -1}, cfg.Charges)
	// Unset keys keep their defaults
	assert.Equal(t, 0.4, cfg.ZUpper)
	assert.Equal(t, ".", cfg.OutputDir)

	pc := cfg.PoissonConfig()
	assert.Equal(t, solver.Cholesky{}, pc.Solver)
	assert.True(t, pc.Debug)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	write := func(name, doc string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(doc), 0o644))
		return p
	}

	_, err := Load(write("mode.yaml", "mode: magnetic\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Load(write("counts.yaml", "charges: [1, 2]\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Load(write("short.yaml", "sources: [[1, 2]]\ncharges: [1]\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Load(write("syntax.yaml", "mode: [unclosed\n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestParseSources(t *testing.T) {
	got, err := ParseSources(" 0.5, -0.4, 0.1 ")
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0.5, -0.4, 0.1}}, got)

	got, err = ParseSources("0,0,0;1,2,3")
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0, 0, 0}, {1, 2, 3}}, got)

	for _, bad := range []string{"", "1,2", "1,2,3;4,5", "a,b,c"} {
		_, err = ParseSources(bad)
		assert.ErrorIs(t, err, ErrInvalidConfig, "%q", bad)
	}
}

func TestParseCharges(t *testing.T) {
	for in, want := range map[string][]float64{
		"2":        {2},
		"1,-1":     {1, -1},
		"1; 2; -3": {1, 2, -3},
	} {
		got, err := ParseCharges(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseCharges("1,x")
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = ParseCharges("  ")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
