// Package config holds the run parameters of the solver driver: which mesh
// to load, which problem to solve and where to put the results.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/juanDcuatindioyN/ECG-Project/locate"
	"github.com/juanDcuatindioyN/ECG-Project/poisson"
	"github.com/juanDcuatindioyN/ECG-Project/solver"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned for unusable parameter values
var ErrInvalidConfig = errors.New("invalid config")

// Problem modes
const (
	ModePoisson = "poisson"
	ModeSigma   = "sigma"
	ModeBoth    = "both"
)

// Solver names
const (
	SolverCG       = "cg"
	SolverCholesky = "cholesky"
)

// Config is the YAML document driving a run
type Config struct {
	MeshFile string `yaml:"mesh"`
	Mode     string `yaml:"mode"`

	Sources [][]float64 `yaml:"sources"` // each entry is x, y, z
	Charges []float64   `yaml:"charges"`

	ZLower float64 `yaml:"z_lower"`
	ZUpper float64 `yaml:"z_upper"`

	Solver            string  `yaml:"solver"`
	Tolerance         float64 `yaml:"tolerance"`
	MaxIterations     int     `yaml:"max_iterations"`
	ProjectIterations int     `yaml:"project_iterations"`

	OutputDir string `yaml:"output_dir"`
	Debug     bool   `yaml:"debug"`
}

// Default returns the parameters used when nothing else is given
func Default() Config {
	return Config{
		Mode:              ModePoisson,
		Sources:           [][]float64{{0.5, -0.4, 0.1}},
		Charges:           []float64{1},
		ZLower:            -0.4,
		ZUpper:            0.4,
		Solver:            SolverCG,
		Tolerance:         1e-10,
		ProjectIterations: locate.DefaultProjectIterations,
		OutputDir:         ".",
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default value.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the values that do not depend on the mesh
func (c Config) Validate() error {
	switch c.Mode {
	case ModePoisson, ModeSigma, ModeBoth:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, c.Mode)
	}
	switch c.Solver {
	case SolverCG, SolverCholesky:
	default:
		return fmt.Errorf("%w: unknown solver %q", ErrInvalidConfig, c.Solver)
	}
	if len(c.Sources) != len(c.Charges) {
		return fmt.Errorf("%w: %d sources but %d charges", ErrInvalidConfig, len(c.Sources), len(c.Charges))
	}
	for i, s := range c.Sources {
		if len(s) != 3 {
			return fmt.Errorf("%w: source %d has %d coordinates, want 3", ErrInvalidConfig, i, len(s))
		}
		for _, v := range s {
			if !finite(v) {
				return fmt.Errorf("%w: source %d is not finite", ErrInvalidConfig, i)
			}
		}
	}
	for i, q := range c.Charges {
		if !finite(q) {
			return fmt.Errorf("%w: charge %d is not finite", ErrInvalidConfig, i)
		}
	}
	if !finite(c.ZLower) || !finite(c.ZUpper) {
		return fmt.Errorf("%w: z thresholds must be finite", ErrInvalidConfig)
	}
	if c.Tolerance < 0 || c.MaxIterations < 0 || c.ProjectIterations < 0 {
		return fmt.Errorf("%w: tolerance and iteration counts must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Positions returns the source coordinates as vectors
func (c Config) Positions() []r3.Vec {
	out := make([]r3.Vec, len(c.Sources))
	for i, s := range c.Sources {
		if len(s) == 3 {
			out[i] = r3.Vec{X: s[0], Y: s[1], Z: s[2]}
		}
	}
	return out
}

// PoissonConfig builds the numerical settings for the solver package
func (c Config) PoissonConfig() poisson.Config {
	pc := poisson.DefaultConfig()
	switch c.Solver {
	case SolverCholesky:
		pc.Solver = solver.Cholesky{}
	default:
		pc.Solver = solver.CG{Tol: c.Tolerance, MaxIter: c.MaxIterations}
	}
	if c.ProjectIterations > 0 {
		pc.ProjectIterations = c.ProjectIterations
	}
	pc.Debug = c.Debug
	return pc
}

// ParseSources reads "x,y,z" or "x1,y1,z1;x2,y2,z2"
func ParseSources(s string) ([][]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty source list", ErrInvalidConfig)
	}
	var sources [][]float64
	for i, group := range strings.Split(s, ";") {
		coords, err := parseFloats(group, ",")
		if err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
		if len(coords) != 3 {
			return nil, fmt.Errorf("%w: source %d has %d coordinates, want 3", ErrInvalidConfig, i, len(coords))
		}
		sources = append(sources, coords)
	}
	return sources, nil
}

// ParseCharges reads a list of charges separated by ";" or ","
func ParseCharges(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty charge list", ErrInvalidConfig)
	}
	sep := ","
	if strings.Contains(s, ";") {
		sep = ";"
	}
	return parseFloats(s, sep)
}

func parseFloats(s, sep string) ([]float64, error) {
	parts := strings.Split(s, sep)
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidConfig, strings.TrimSpace(p))
		}
		out[i] = v
	}
	return out, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
