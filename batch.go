package plotscript

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

// BatchJob is one script/data pair to interpret. Script and Data may be
// inlined in the manifest or pulled from files.
type BatchJob struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Script     string `yaml:"script"`
	ScriptFile string `yaml:"script_file"`
	Data       string `yaml:"data"`
	DataFile   string `yaml:"data_file"`
	TimeoutMs  int    `yaml:"timeout_ms"`
}

// BatchResult is the outcome of one job. Script errors land in Err and do
// not abort the batch.
type BatchResult struct {
	JobID   string
	Name    string
	Shapes  []Shape
	Err     error
	Elapsed time.Duration
}

type batchManifest struct {
	Jobs []BatchJob `yaml:"jobs"`
}

// LoadBatchManifest reads a YAML job manifest. script_file/data_file
// entries are resolved relative to the manifest's directory and inlined.
func LoadBatchManifest(path string) ([]BatchJob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	var m batchManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i := range m.Jobs {
		job := &m.Jobs[i]
		if job.ScriptFile != "" {
			b, err := os.ReadFile(resolvePath(dir, job.ScriptFile))
			if err != nil {
				return nil, fmt.Errorf("job %d: reading script: %w", i, err)
			}
			job.Script = string(b)
		}
		if job.DataFile != "" {
			b, err := os.ReadFile(resolvePath(dir, job.DataFile))
			if err != nil {
				return nil, fmt.Errorf("job %d: reading data: %w", i, err)
			}
			job.Data = string(b)
		}
	}
	return m.Jobs, nil
}

func resolvePath(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// BatchRunner interprets many jobs concurrently against one interpreter.
// Runs never share state, so the only coordination is the worker limit
// and the optional start-rate cap.
type BatchRunner struct {
	interp  *Interpreter
	workers int
	limiter *rate.Limiter
	logger  *Logger
}

// NewBatchRunner creates a runner. workers bounds concurrent jobs;
// perSecond caps how fast jobs start, 0 meaning unlimited.
func NewBatchRunner(in *Interpreter, workers int, perSecond float64) *BatchRunner {
	if workers < 1 {
		workers = 1
	}
	var limiter *rate.Limiter
	if perSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
	return &BatchRunner{interp: in, workers: workers, limiter: limiter, logger: in.Logger()}
}

// Run interprets all jobs and returns results in job order. Per-job
// script errors are recorded in the results; only context cancellation
// makes Run itself fail, and even then the results gathered so far come
// back.
func (b *BatchRunner) Run(ctx context.Context, jobs []BatchJob) ([]BatchResult, error) {
	results := make([]BatchResult, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if b.limiter != nil {
				if err := b.limiter.Wait(ctx); err != nil {
					return err
				}
			}

			id := job.ID
			if id == "" {
				id = uuid.NewString()
			}
			timeout := b.interp.Config().Timeout
			if job.TimeoutMs > 0 {
				timeout = time.Duration(job.TimeoutMs) * time.Millisecond
			}

			start := time.Now()
			shapes, err := b.interp.InterpretWithTimeout(job.Script, job.Data, timeout)
			results[i] = BatchResult{
				JobID:   id,
				Name:    job.Name,
				Shapes:  shapes,
				Err:     err,
				Elapsed: time.Since(start),
			}
			if err != nil {
				b.logger.WarnCat(CatBatch, "job %s (%s) failed: %v", id, job.Name, err)
			} else {
				b.logger.DebugCat(CatBatch, "job %s (%s): %d shapes in %s", id, job.Name, len(shapes), results[i].Elapsed)
			}
			return nil
		})
	}

	err := g.Wait()
	return results, err
}
