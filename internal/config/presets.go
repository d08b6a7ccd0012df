package config

// Presets maps problem name → preset name → ready-made configurations.
var Presets = map[string]map[string]*Config{
	"identity": {
		"smoke": {
			Problem: "identity", Solver: "gmres", N: 3, Tol: 1e-10,
			MaxKrylov: 5, Steps: 1,
		},
	},
	"laplace1d": {
		"direct": {
			Problem: "laplace1d", Solver: "band", N: 200, Steps: 5,
		},
		"cg": {
			Problem: "laplace1d", Solver: "pcg", Precond: "jacobi",
			N: 200, Tol: 1e-8, MaxIters: 400, Steps: 1,
		},
		"gmres": {
			Problem: "laplace1d", Solver: "gmres", Precond: "jacobi",
			N: 200, Tol: 1e-8, MaxKrylov: 40, MaxRestarts: 20, Steps: 1,
		},
	},
	"convdiff1d": {
		"mild": {
			Problem: "convdiff1d", Solver: "gmres", Peclet: 0.5,
			N: 200, Tol: 1e-8, MaxKrylov: 40, MaxRestarts: 20, Steps: 1,
		},
		"stiff": {
			Problem: "convdiff1d", Solver: "gmres", Precond: "jacobi", Peclet: 5.0,
			N: 400, Tol: 1e-8, MaxKrylov: 60, MaxRestarts: 40, Steps: 1,
		},
	},
}

// GetPreset returns the named preset, or nil when unknown.
func GetPreset(problem, name string) *Config {
	group, ok := Presets[problem]
	if !ok {
		return nil
	}
	cfg, ok := group[name]
	if !ok {
		return nil
	}
	clone := *cfg
	if clone.Tol == 0 {
		clone.Tol = DefaultTol
	}
	if clone.MaxIters == 0 {
		clone.MaxIters = DefaultMaxIters
	}
	return &clone
}

// ListPresets returns the preset names for a problem, or nil when the
// problem has none.
func ListPresets(problem string) []string {
	group, ok := Presets[problem]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(group))
	for name := range group {
		names = append(names, name)
	}
	return names
}
