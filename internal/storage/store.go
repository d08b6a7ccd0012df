package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/linsolve/internal/driver"
	"github.com/san-kum/linsolve/internal/linsol"
)

// Store persists solve runs under a base directory, one subdirectory per
// run holding metadata.json and steps.csv.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string        `json:"id"`
	Timestamp   time.Time     `json:"timestamp"`
	Problem     string        `json:"problem"`
	Solver      string        `json:"solver"`
	Precond     string        `json:"precond"`
	N           int           `json:"n"`
	Tol         float64       `json:"tol"`
	FinalStatus int           `json:"final_status"`
	Converged   bool          `json:"converged"`
	Elapsed     time.Duration `json:"elapsed_ns"`
	RealWords   int64         `json:"workspace_real_words"`
	IntWords    int64         `json:"workspace_int_words"`
}

// Save writes one run and returns its generated ID.
func (s *Store) Save(problemName, solverName, precondName string, n int, tol float64, result *driver.Result) (string, error) {
	runID := fmt.Sprintf("%s_%s_%d", problemName, solverName, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Timestamp:   time.Now(),
		Problem:     problemName,
		Solver:      solverName,
		Precond:     precondName,
		N:           n,
		Tol:         tol,
		FinalStatus: int(result.FinalStatus),
		Converged:   result.Converged,
		Elapsed:     result.Elapsed,
		RealWords:   result.RealWords,
		IntWords:    result.IntWords,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()
	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	stepsFile, err := os.Create(filepath.Join(runDir, "steps.csv"))
	if err != nil {
		return "", err
	}
	defer stepsFile.Close()
	w := csv.NewWriter(stepsFile)
	defer w.Flush()
	if err := w.Write([]string{"step", "status", "iters", "res_norm", "retries"}); err != nil {
		return "", err
	}
	for _, sr := range result.Steps {
		rec := []string{
			strconv.Itoa(sr.Step),
			strconv.Itoa(int(sr.Status)),
			strconv.Itoa(sr.Iters),
			strconv.FormatFloat(sr.ResNorm, 'e', 10, 64),
			strconv.Itoa(sr.Retries),
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
	}
	return runID, nil
}

// List returns the metadata of all stored runs, newest directories last.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var runs []RunMetadata
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := s.LoadMetadata(e.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	return runs, nil
}

func (s *Store) LoadMetadata(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadSteps reads back the per-step record of a run.
func (s *Store) LoadSteps(runID string) ([]driver.StepResult, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "steps.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	var steps []driver.StepResult
	for i, row := range rows {
		if i == 0 || len(row) < 5 {
			continue
		}
		step, _ := strconv.Atoi(row[0])
		status, _ := strconv.Atoi(row[1])
		iters, _ := strconv.Atoi(row[2])
		resNorm, _ := strconv.ParseFloat(row[3], 64)
		retries, _ := strconv.Atoi(row[4])
		steps = append(steps, driver.StepResult{
			Step:    step,
			Status:  linsol.Status(status),
			Iters:   iters,
			ResNorm: resNorm,
			Retries: retries,
		})
	}
	return steps, nil
}
