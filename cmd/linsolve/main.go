package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/linsolve/internal/config"
	"github.com/san-kum/linsolve/internal/driver"
	"github.com/san-kum/linsolve/internal/registry"
	"github.com/san-kum/linsolve/internal/storage"
	"github.com/san-kum/linsolve/internal/tui"
)

var (
	dataDir     string
	solverName  string
	precond     string
	dim         int
	peclet      float64
	tol         float64
	maxKrylov   int
	maxRestarts int
	maxIters    int
	steps       int
	retries     int
	scaling     bool
	configFile  string
	preset      string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "linsolve",
		Short: "linear solver contract lab",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".linsolve", "data directory")

	solveCmd := &cobra.Command{
		Use:   "solve [problem]",
		Short: "run a solve sequence",
		Args:  cobra.ExactArgs(1),
		RunE:  runSolve,
	}
	addRunFlags(solveCmd)

	liveCmd := &cobra.Command{
		Use:   "live [problem]",
		Short: "run a solve sequence with a live convergence monitor",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	compareCmd := &cobra.Command{
		Use:   "compare [problem] [solver1] [solver2] ...",
		Short: "compare solvers on the same problem",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runCompare,
	}
	compareCmd.Flags().IntVar(&dim, "n", config.DefaultN, "problem dimension")
	compareCmd.Flags().Float64Var(&tol, "tol", config.DefaultTol, "convergence tolerance")
	compareCmd.Flags().Float64Var(&peclet, "peclet", 0, "peclet number (convdiff1d)")
	compareCmd.Flags().StringVar(&precond, "precond", "none", "preconditioner (none|jacobi)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot residual history of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write a stored run's step records to stdout as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [problem]",
		Short: "list available presets for a problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets(args[0])
			if len(names) == 0 {
				fmt.Printf("no presets for problem: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range names {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench [problem]",
		Short: "time a solver across problem sizes",
		Args:  cobra.ExactArgs(1),
		RunE:  runBench,
	}
	benchCmd.Flags().StringVar(&solverName, "solver", "gmres", "solver backend")
	benchCmd.Flags().StringVar(&precond, "precond", "none", "preconditioner")
	benchCmd.Flags().Float64Var(&tol, "tol", config.DefaultTol, "convergence tolerance")

	rootCmd.AddCommand(solveCmd, liveCmd, compareCmd, listCmd, plotCmd,
		exportCSVCmd, presetsCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&solverName, "solver", "gmres", "solver backend (dense|band|gmres|gmres-mat|pcg)")
	cmd.Flags().StringVar(&precond, "precond", "none", "preconditioner (none|jacobi)")
	cmd.Flags().IntVar(&dim, "n", config.DefaultN, "problem dimension")
	cmd.Flags().Float64Var(&peclet, "peclet", 0, "peclet number (convdiff1d)")
	cmd.Flags().Float64Var(&tol, "tol", config.DefaultTol, "convergence tolerance")
	cmd.Flags().IntVar(&maxKrylov, "max-krylov", config.DefaultMaxKrylov, "gmres basis size")
	cmd.Flags().IntVar(&maxRestarts, "max-restarts", config.DefaultMaxRestarts, "gmres restarts")
	cmd.Flags().IntVar(&maxIters, "max-iters", config.DefaultMaxIters, "pcg iteration cap")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "setup+solve cycles")
	cmd.Flags().IntVar(&retries, "retries", 0, "retries on recoverable statuses")
	cmd.Flags().BoolVar(&scaling, "scaling", false, "bind diagonal row scaling")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// buildConfig resolves precedence: config file, then preset, then flags.
func buildConfig(problemName string) (*config.Config, error) {
	if configFile != "" {
		return config.Load(configFile)
	}
	if preset != "" {
		cfg := config.GetPreset(problemName, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q for problem %q", preset, problemName)
		}
		return cfg, nil
	}
	cfg := config.DefaultConfig()
	cfg.Problem = problemName
	cfg.Solver = solverName
	cfg.Precond = precond
	cfg.N = dim
	cfg.Peclet = peclet
	cfg.Tol = tol
	cfg.MaxKrylov = maxKrylov
	cfg.MaxRestarts = maxRestarts
	cfg.MaxIters = maxIters
	cfg.Steps = steps
	cfg.MaxRetries = retries
	cfg.Scaling = scaling
	return cfg, nil
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(args[0])
	if err != nil {
		return err
	}
	reg := registry.New()
	s, spec, err := reg.Compose(cfg)
	if err != nil {
		return err
	}

	d := driver.New()
	result, runErr := d.Run(context.Background(), s, spec)
	printResult(cfg, result)
	if runErr != nil {
		return runErr
	}

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}
	runID, err := store.Save(cfg.Problem, cfg.Solver, cfg.Precond, cfg.N, cfg.Tol, result)
	if err != nil {
		return err
	}
	fmt.Printf("\nsaved run: %s\n", runID)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(args[0])
	if err != nil {
		return err
	}
	reg := registry.New()
	s, spec, err := reg.Compose(cfg)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("%s / %s (n=%d, tol=%.1e)", cfg.Problem, cfg.Solver, cfg.N, cfg.Tol)
	return tui.Run(title, cfg.Steps, func(obs driver.Observer) error {
		d := driver.New()
		d.AddObserver(obs)
		_, err := d.Run(context.Background(), s, spec)
		return err
	})
}

func runCompare(cmd *cobra.Command, args []string) error {
	problemName, solvers := args[0], args[1:]

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "solver\tcategory\tstatus\titers\tresnorm\telapsed")
	for _, name := range solvers {
		cfg := config.DefaultConfig()
		cfg.Problem = problemName
		cfg.Solver = name
		cfg.Precond = precond
		cfg.N = dim
		cfg.Peclet = peclet
		cfg.Tol = tol

		reg := registry.New()
		s, spec, err := reg.Compose(cfg)
		if err != nil {
			return err
		}
		cat := s.Type()
		result, runErr := driver.New().Run(context.Background(), s, spec)
		last := lastStep(result)
		status := "-"
		if last != nil {
			status = last.Status.String()
		}
		if runErr != nil {
			status = runErr.Error()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.3e\t%s\n",
			name, cat, status, stepIters(last), stepResNorm(last), runElapsed(result))
	}
	return w.Flush()
}

func runElapsed(r *driver.Result) time.Duration {
	if r == nil {
		return 0
	}
	return r.Elapsed
}

func lastStep(r *driver.Result) *driver.StepResult {
	if r == nil || len(r.Steps) == 0 {
		return nil
	}
	return &r.Steps[len(r.Steps)-1]
}

func stepIters(sr *driver.StepResult) int {
	if sr == nil {
		return 0
	}
	return sr.Iters
}

func stepResNorm(sr *driver.StepResult) float64 {
	if sr == nil {
		return 0
	}
	return sr.ResNorm
}

func listRuns(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	runs, err := store.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no stored runs")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "id\tproblem\tsolver\tprecond\tn\tconverged\telapsed")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%v\t%s\n",
			r.ID, r.Problem, r.Solver, r.Precond, r.N, r.Converged, r.Elapsed)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	stepRecs, err := store.LoadSteps(args[0])
	if err != nil {
		return err
	}
	if len(stepRecs) == 0 {
		fmt.Println("run has no step records")
		return nil
	}
	data := make([]float64, len(stepRecs))
	for i, sr := range stepRecs {
		if sr.ResNorm > 0 {
			data[i] = math.Log10(sr.ResNorm)
		} else {
			data[i] = -16
		}
	}
	graph := asciigraph.Plot(data,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("log10 residual norm per step"),
	)
	fmt.Println(graph)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	stepRecs, err := store.LoadSteps(args[0])
	if err != nil {
		return err
	}
	fmt.Println("step,status,iters,res_norm,retries")
	for _, sr := range stepRecs {
		fmt.Printf("%d,%d,%d,%e,%d\n",
			sr.Step, int(sr.Status), sr.Iters, sr.ResNorm, sr.Retries)
	}
	return nil
}

func runBench(cmd *cobra.Command, args []string) error {
	sizes := []int{50, 100, 200, 400, 800}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "n\tstatus\titers\tresnorm\telapsed")
	for _, n := range sizes {
		cfg := config.DefaultConfig()
		cfg.Problem = args[0]
		cfg.Solver = solverName
		cfg.Precond = precond
		cfg.N = n
		cfg.Tol = tol

		reg := registry.New()
		s, spec, err := reg.Compose(cfg)
		if err != nil {
			return err
		}
		start := time.Now()
		result, runErr := driver.New().Run(context.Background(), s, spec)
		elapsed := time.Since(start)
		last := lastStep(result)
		status := "-"
		if last != nil {
			status = last.Status.String()
		}
		if runErr != nil {
			status = runErr.Error()
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%.3e\t%s\n",
			n, status, stepIters(last), stepResNorm(last), elapsed)
	}
	return w.Flush()
}

func printResult(cfg *config.Config, result *driver.Result) {
	if result == nil {
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "step\tstatus\titers\tresnorm\tretries")
	for _, sr := range result.Steps {
		fmt.Fprintf(w, "%d\t%s\t%d\t%.3e\t%d\n",
			sr.Step, sr.Status, sr.Iters, sr.ResNorm, sr.Retries)
	}
	w.Flush()
	fmt.Printf("\n%s / %s: converged=%v status=%s elapsed=%s workspace=%d real / %d int words\n",
		cfg.Problem, cfg.Solver, result.Converged, result.FinalStatus,
		result.Elapsed, result.RealWords, result.IntWords)
}
