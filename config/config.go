// Package config reads and checks the parameter file of a simulation.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sarchlab/arap/dist"
	"github.com/sarchlab/arap/pathmgr"
	"gopkg.in/yaml.v3"
)

// ErrConfiguration is returned for any invalid parameter.
var ErrConfiguration = errors.New("invalid configuration")

// Limits of the parameters.
const (
	MinNodes            = 4
	MinAntSize          = 128
	MinStopTime         = 1.0
	MinAppStartTime     = 1.0
	DefaultAppStartTime = 1.0
)

// Environment variables that override the file.
const (
	EnvSeed      = "ARAP_SEED"
	EnvRun       = "ARAP_RUN"
	EnvOutputDir = "ARAP_OUTPUT_DIR"
)

// LinkDelay describes how the delay of the links changes.
type LinkDelay struct {
	// Interval, in seconds, between two changes. Zero keeps the initial delays.
	Interval float64 `yaml:"interval"`

	// Dist is the distribution of the delay of a link, in milliseconds.
	Dist dist.Spec `yaml:"dist"`
}

// PathManager selects the path manager of every node.
type PathManager struct {
	Kind   string    `yaml:"kind"`
	Params []float64 `yaml:"params,omitempty"`
}

// Config holds every parameter of a simulation.
type Config struct {
	Nodes               int         `yaml:"nodes"`
	Hops                int         `yaml:"hops"`
	AntSize             int         `yaml:"antSize"`
	EnableExplorerAnts  bool        `yaml:"enableExplorerAnts"`
	ExplorerInterval    float64     `yaml:"explorerInterval"`
	StopTime            float64     `yaml:"stopTime"`
	Seed                uint64      `yaml:"seed"`
	Run                 uint64      `yaml:"run"`
	OutputDir           string      `yaml:"outputDir"`
	PrintTablesInterval float64     `yaml:"printTablesInterval"`
	LinkDelay           LinkDelay   `yaml:"linkDelay"`
	PathManager         PathManager `yaml:"pathManager"`

	ComputingDelay          []DistRange   `yaml:"computingDelay"`
	ComputingDelayIncrement []FactorRange `yaml:"computingDelayIncrement"`
	AppStartTime            []TimeRange   `yaml:"appStartTime"`
	LoadAntTime             []DistRange   `yaml:"loadAntTime"`
	LoadAntQuantity         []DistRange   `yaml:"loadAntQuantity"`
	LoadAntTarget           []DistRange   `yaml:"loadAntTarget"`
}

// DefaultConfig returns the parameters used for the keys a file leaves out.
func DefaultConfig() *Config {
	return &Config{
		AntSize:   MinAntSize,
		Seed:      1,
		Run:       1,
		OutputDir: ".",
		LinkDelay: LinkDelay{Dist: dist.MustParse("constant 1")},
		PathManager: PathManager{
			Kind: string(pathmgr.KindSmartDefault),
		},
	}
}

// Load reads the parameter file at path, applies the environment overrides
// and validates the result. The .env files listed in envFiles are loaded
// first, if they exist.
func Load(path string, envFiles ...string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, err
	}

	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}

	if err := c.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Parse decodes a parameter file over the defaults. It does not validate the
// result.
func Parse(data []byte) (*Config, error) {
	c := DefaultConfig()

	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	return c, nil
}

func loadEnvFiles(files []string) error {
	existing := make([]string, 0, len(files))

	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}

	if len(existing) == 0 {
		return nil
	}

	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	return nil
}

// ApplyEnv overrides the seed, the run and the output directory with the
// ARAP_* variables that are set.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvSeed); ok {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrConfiguration, EnvSeed, err)
		}

		c.Seed = seed
	}

	if v, ok := os.LookupEnv(EnvRun); ok {
		run, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrConfiguration, EnvRun, err)
		}

		c.Run = run
	}

	if v, ok := os.LookupEnv(EnvOutputDir); ok && v != "" {
		c.OutputDir = v
	}

	return nil
}

// Descriptor returns the path manager descriptor selected by the file.
func (c *Config) Descriptor() (pathmgr.Descriptor, error) {
	d, err := pathmgr.Parse(c.PathManager.Kind, c.PathManager.Params)
	if err != nil {
		return d, fmt.Errorf("%w: pathManager: %w", ErrConfiguration, err)
	}

	d.Hops = c.Hops

	return d, nil
}
