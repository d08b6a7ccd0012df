package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultN           = 100
	DefaultTol         = 1e-8
	DefaultMaxKrylov   = 30
	DefaultMaxRestarts = 10
	DefaultMaxIters    = 500
	DefaultSteps       = 1
)

// Config describes one solve run: which problem, which solver backend,
// and the tolerances and workspace sizes to use.
type Config struct {
	Problem     string  `yaml:"problem"`
	Solver      string  `yaml:"solver"`
	Precond     string  `yaml:"precond"`
	N           int     `yaml:"n"`
	Peclet      float64 `yaml:"peclet"`
	Tol         float64 `yaml:"tol"`
	MaxKrylov   int     `yaml:"max_krylov"`
	MaxRestarts int     `yaml:"max_restarts"`
	MaxIters    int     `yaml:"max_iters"`
	Steps       int     `yaml:"steps"`
	MaxRetries  int     `yaml:"max_retries"`
	Scaling     bool    `yaml:"scaling"`
}

func DefaultConfig() *Config {
	return &Config{
		Problem:     "laplace1d",
		Solver:      "gmres",
		Precond:     "none",
		N:           DefaultN,
		Tol:         DefaultTol,
		MaxKrylov:   DefaultMaxKrylov,
		MaxRestarts: DefaultMaxRestarts,
		MaxIters:    DefaultMaxIters,
		Steps:       DefaultSteps,
	}
}

// Load reads a yaml config file, filling unset fields from defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as yaml.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
