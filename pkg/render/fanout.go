package render

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/bft-labs/ptflview/pkg/log"
	"github.com/bft-labs/ptflview/pkg/scan"
)

// Job renders one entry into its own file.
type Job struct {
	Entry     scan.Entry
	Hue       float64
	Lightness float64
	Path      string
}

// JobResult is the outcome of one Job. Err is nil on success.
type JobResult struct {
	Job Job
	Err error
}

// BatchResult collects every job outcome in submission order.
type BatchResult struct {
	Results  []JobResult
	Duration time.Duration
}

// Written returns the paths that were produced.
func (b BatchResult) Written() []string {
	var out []string
	for _, r := range b.Results {
		if r.Err == nil {
			out = append(out, r.Job.Path)
		}
	}
	return out
}

// Failed returns the results that carry an error.
func (b BatchResult) Failed() []JobResult {
	var out []JobResult
	for _, r := range b.Results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

// Err joins every per-job error, or returns nil when all jobs succeeded.
func (b BatchResult) Err() error {
	var errs []error
	for _, r := range b.Failed() {
		errs = append(errs, fmt.Errorf("%s: %w", r.Job.Entry.Key, r.Err))
	}
	return errors.Join(errs...)
}

// FanOut renders independent jobs on a bounded pool of workers. Workers
// only read their own Job; nothing is shared but the stateless encoder.
type FanOut struct {
	Encoder Encoder
	Params  Params
	Workers int
	Logger  log.Logger
}

// Run renders every job and waits for all of them. A failing job never
// stops the others. Jobs not yet started when ctx is canceled fail with the
// context error.
func (f *FanOut) Run(ctx context.Context, jobs []Job) BatchResult {
	start := time.Now()
	logger := f.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	workers := f.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	results := make([]JobResult, len(jobs))
	indexes := make(chan int, workers*2)

	var wg sync.WaitGroup
	worker := func() {
		defer wg.Done()
		for i := range indexes {
			job := jobs[i]
			var err error
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			} else {
				err = f.render(job)
			}
			results[i] = JobResult{Job: job, Err: err}
			if err != nil {
				logger.Warn("render failed",
					log.String("entry", job.Entry.Key.String()),
					log.String("path", job.Path),
					log.Err(err),
				)
				continue
			}
			logger.Debug("rendered",
				log.String("entry", job.Entry.Key.String()),
				log.String("path", job.Path),
			)
		}
	}

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go worker()
	}
	for i := range jobs {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return BatchResult{Results: results, Duration: time.Since(start)}
}

func (f *FanOut) render(job Job) error {
	set, err := Build(job.Entry, f.Params, job.Hue, job.Lightness)
	if err != nil {
		return err
	}
	return WriteFile(job.Path, f.Encoder, set)
}
