// Package config provides YAML configuration loading and validation for
// the ssis command.
//
// Order of precedence: Default() -> YAML file -> SSIS_* environment
// variables -> command-line flags (applied by the caller).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/ssis/network"
	"github.com/katalvlaran/ssis/sis"
)

// ErrInvalid indicates a configuration that failed validation.
var ErrInvalid = errors.New("config: invalid configuration")

// Graph kinds accepted by GraphConfig.Kind.
const (
	GraphComplete = "complete"
	GraphLattice  = "lattice"
	GraphRandom   = "random"
	GraphRegular  = "regular"
)

// validate is a singleton validator instance
var validate = validator.New()

// Config is the full ssis configuration document.
type Config struct {
	// Model holds the epidemic and seasonal-signal parameters.
	Model ModelConfig `json:"model" yaml:"model"`

	// Graph selects the contact topology.
	Graph GraphConfig `json:"graph" yaml:"graph"`

	// Run controls trial counts, horizons and seeding.
	Run RunConfig `json:"run" yaml:"run"`

	// Output selects where snapshots and summaries go.
	Output OutputConfig `json:"output" yaml:"output"`

	// Logging configures operational logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
}

// ModelConfig mirrors sis.Config in file form.
type ModelConfig struct {
	T1      float64 `json:"t1" yaml:"t1" validate:"gte=0"`
	T2      float64 `json:"t2" yaml:"t2" validate:"gtfield=T1"`
	Lambda  float64 `json:"lambda" yaml:"lambda" validate:"gte=0"`
	DLambda float64 `json:"dlambda" yaml:"dlambda"`

	// Mu is the recovery rate used by the seasonal mode.
	Mu float64 `json:"mu" yaml:"mu" validate:"gte=0"`

	// Mode is "constant" (default) or "seasonal".
	Mode string `json:"mode" yaml:"mode" validate:"omitempty,oneof=constant seasonal"`

	// InfectionPropensity and RecoveryPropensity drive the constant mode;
	// an absent key selects the engine default, an explicit 0 is kept.
	InfectionPropensity *float64 `json:"infection_propensity,omitempty" yaml:"infection_propensity,omitempty" validate:"omitempty,gte=0"`
	RecoveryPropensity  *float64 `json:"recovery_propensity,omitempty" yaml:"recovery_propensity,omitempty" validate:"omitempty,gte=0"`

	// SnapshotEvery is the snapshot interval in events; zero selects 50.
	SnapshotEvery int `json:"snapshot_every,omitempty" yaml:"snapshot_every,omitempty" validate:"gte=0"`
}

// GraphConfig selects and parameterizes a topology factory.
type GraphConfig struct {
	Kind string  `json:"kind" yaml:"kind" validate:"required,oneof=complete lattice random regular"`
	N    int     `json:"n" yaml:"n" validate:"gte=0"`
	LX   int     `json:"lx" yaml:"lx" validate:"gte=0"`
	LY   int     `json:"ly" yaml:"ly" validate:"gte=0"`
	P    float64 `json:"p" yaml:"p" validate:"gte=0,lte=1"`
	K    int     `json:"k" yaml:"k" validate:"gte=0"`

	// Directed makes contacts one-way. Not available for regular graphs.
	Directed bool `json:"directed,omitempty" yaml:"directed,omitempty"`

	// Seed drives the random factories; 0 reuses Run.Seed.
	Seed int64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// RunConfig controls the trial driver.
type RunConfig struct {
	Fraction float64 `json:"fraction" yaml:"fraction" validate:"gte=0"`
	TMax     float64 `json:"tmax" yaml:"tmax" validate:"gte=0"`

	// Runs is the number of labelled single trials of "ssis run".
	Runs int `json:"runs" yaml:"runs" validate:"gte=1"`

	// Trials is the number of Monte-Carlo trials of "ssis asymptotic".
	Trials int `json:"trials" yaml:"trials" validate:"gte=1"`

	Workers int    `json:"workers" yaml:"workers" validate:"gte=1"`
	Label   string `json:"label" yaml:"label" validate:"max=64"`

	// Seed is the root seed; 0 means "derive from the clock and log it".
	Seed int64 `json:"seed" yaml:"seed"`
}

// OutputConfig selects snapshot destinations.
type OutputConfig struct {
	// Path is the TSV file; "-" or empty writes to stdout.
	Path string `json:"path" yaml:"path"`

	// DB is an optional SQLite file receiving snapshots and summaries.
	DB string `json:"db,omitempty" yaml:"db,omitempty"`
}

// LoggingConfig configures operational logging.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	Level string `json:"level" yaml:"level" validate:"omitempty,oneof=info debug trace warn error"`

	// Format is "text" (default) or "json".
	Format string `json:"format" yaml:"format" validate:"omitempty,oneof=text json"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Addr is the listen address of /metrics, e.g. ":9090"; empty disables it.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty" validate:"omitempty,hostname_port"`
}

// Default returns a Config with the reference parameters: a complete graph
// of 200 nodes, t1=10, t2=20, lambda=2, no boost, mu=10, full seeding and a
// horizon of 100.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			T1:     10,
			T2:     20,
			Lambda: 2.0,
			Mu:     10.0,
			Mode:   sis.ModeConstant.String(),
		},
		Graph: GraphConfig{
			Kind: GraphComplete,
			N:    200,
			LX:   10,
			LY:   10,
			P:    0.05,
			K:    4,
		},
		Run: RunConfig{
			Fraction: 1.0,
			TMax:     100,
			Runs:     1,
			Trials:   100,
			Workers:  1,
			Label:    "Cont",
		},
		Output: OutputConfig{
			Path: "-",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path over Default() and applies SSIS_* environment overrides.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	applyEnvOverrides(cfg)

	return cfg, nil
}

// Validate checks struct tags and the cross-field rules tags cannot state.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	if c.Model.Lambda+c.Model.DLambda < 0 {
		return fmt.Errorf("model.dlambda: lambda+dlambda=%g must be ≥ 0: %w", c.Model.Lambda+c.Model.DLambda, ErrInvalid)
	}

	g := c.Graph
	switch g.Kind {
	case GraphLattice:
		if g.LX < 1 || g.LY < 1 {
			return fmt.Errorf("graph: lattice needs lx, ly ≥ 1 (got %d×%d): %w", g.LX, g.LY, ErrInvalid)
		}
	case GraphRegular:
		if g.N < 1 || g.K >= g.N || (g.N*g.K)%2 != 0 {
			return fmt.Errorf("graph: regular needs k < n and n·k even (n=%d, k=%d): %w", g.N, g.K, ErrInvalid)
		}
		if g.Directed {
			return fmt.Errorf("graph: regular graphs cannot be directed: %w", ErrInvalid)
		}
	default:
		if g.N < 1 {
			return fmt.Errorf("graph: n must be ≥ 1 (got %d): %w", g.N, ErrInvalid)
		}
	}

	return nil
}

// SIS converts the model section into an engine configuration.
func (c *Config) SIS() (sis.Config, error) {
	mode, err := sis.ParseMode(c.Model.Mode)
	if err != nil {
		return sis.Config{}, err
	}

	return sis.Config{
		T1:                  c.Model.T1,
		T2:                  c.Model.T2,
		Lambda:              c.Model.Lambda,
		DLambda:             c.Model.DLambda,
		RecoveryRate:        c.Model.Mu,
		InfectionPropensity: c.Model.InfectionPropensity,
		RecoveryPropensity:  c.Model.RecoveryPropensity,
		Mode:                mode,
		SnapshotEvery:       c.Model.SnapshotEvery,
	}, nil
}

// BuildTopology builds the configured contact graph. Random kinds use
// Graph.Seed, or Run.Seed when Graph.Seed is zero.
func (c *Config) BuildTopology() (*network.Topology, error) {
	g := c.Graph
	seed := g.Seed
	if seed == 0 {
		seed = c.Run.Seed
	}

	dir := network.Directed(g.Directed)
	switch g.Kind {
	case GraphComplete:
		return network.Complete(g.N, dir)
	case GraphLattice:
		return network.Lattice(g.LX, g.LY, dir)
	case GraphRandom:
		return network.ErdosRenyi(g.N, g.P, seed, dir)
	case GraphRegular:
		return network.KRegular(g.N, g.K, seed, dir)
	default:
		return nil, fmt.Errorf("graph: unknown kind %q: %w", g.Kind, ErrInvalid)
	}
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SSIS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SSIS_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("SSIS_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("SSIS_DB"); v != "" {
		cfg.Output.DB = v
	}
	if v := os.Getenv("SSIS_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Run.Workers = n
		}
	}
	if v := os.Getenv("SSIS_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Run.Seed = n
		}
	}
}

// formatValidationError converts validator errors to a more user-friendly
// format wrapping ErrInvalid.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	// Report the first failing field
	for _, e := range validationErrs {
		field := e.Namespace()
		param := e.Param()

		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required: %w", field, ErrInvalid)
		case "gte":
			return fmt.Errorf("%s: must be at least %s: %w", field, param, ErrInvalid)
		case "lte":
			return fmt.Errorf("%s: must not exceed %s: %w", field, param, ErrInvalid)
		case "max":
			return fmt.Errorf("%s: must not exceed %s characters: %w", field, param, ErrInvalid)
		case "gtfield":
			return fmt.Errorf("%s: must exceed %s: %w", field, param, ErrInvalid)
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s]: %w", field, param, ErrInvalid)
		default:
			return fmt.Errorf("%s: validation failed (%s): %w", field, e.Tag(), ErrInvalid)
		}
	}

	return fmt.Errorf("%w: %v", ErrInvalid, err)
}
