// Package batch classifies many statement files concurrently.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ProcessedSuffix marks files written by a previous run so they are not picked up again.
const ProcessedSuffix = ".processed"

// Job is one statement file to classify.
type Job struct {
	Path   string
	Output string
}

// Result is the outcome of one job. Err is per job and does not stop the batch.
type Result[T any] struct {
	Value T
	Err   error
	Job   Job
}

// Discover returns a job for every file in dir that supports accepts, sorted by name.
// Output paths are placed in outDir, or next to the input when outDir is empty, with
// ProcessedSuffix added before the extension. Files carrying the suffix are skipped.
func Discover(dir, outDir string, supports func(path string) bool) ([]Job, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading statement dir: %w", err)
	}
	if outDir == "" {
		outDir = dir
	}

	var jobs []Job
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := filepath.Ext(name)
		stem := strings.TrimSuffix(name, ext)
		if strings.HasSuffix(stem, ProcessedSuffix) || strings.HasPrefix(name, "~$") {
			continue
		}
		path := filepath.Join(dir, name)
		if !supports(path) {
			continue
		}
		jobs = append(jobs, Job{
			Path:   path,
			Output: filepath.Join(outDir, stem+ProcessedSuffix+ext),
		})
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Path < jobs[j].Path })
	return jobs, nil
}

// Deduplicate returns jobs with every output path distinct. When several jobs share
// an output, a job whose input already has the output's extension keeps it, otherwise
// the first one does. The others get their input extension added before
// ProcessedSuffix, so march.xlsx and march.ofx write march.processed.xlsx and
// march.ofx.processed.xlsx.
func Deduplicate(jobs []Job) []Job {
	keeps := func(job Job) bool {
		return strings.EqualFold(filepath.Ext(job.Path), filepath.Ext(job.Output))
	}

	owners := make(map[string]int, len(jobs))
	for i, job := range jobs {
		key := strings.ToLower(job.Output)
		j, taken := owners[key]
		if !taken || (!keeps(jobs[j]) && keeps(job)) {
			owners[key] = i
		}
	}

	out := make([]Job, len(jobs))
	copy(out, jobs)
	seen := make(map[string]bool, len(jobs))
	for i, job := range out {
		if owners[strings.ToLower(job.Output)] != i {
			ext := filepath.Ext(job.Output)
			stem := strings.TrimSuffix(job.Output, ProcessedSuffix+ext)
			job.Output = stem + filepath.Ext(job.Path) + ProcessedSuffix + ext
		}
		for n := 2; seen[strings.ToLower(job.Output)]; n++ {
			ext := filepath.Ext(job.Output)
			stem := strings.TrimSuffix(job.Output, ProcessedSuffix+ext)
			job.Output = fmt.Sprintf("%s-%d%s%s", stem, n, ProcessedSuffix, ext)
		}
		seen[strings.ToLower(job.Output)] = true
		out[i] = job
	}
	return out
}

// Run calls fn for every job with at most workers calls in flight. Results keep the
// order of jobs. progress, when set, is called once per finished job from one
// goroutine at a time. The returned error is only set when ctx ends the batch early;
// jobs that never started then carry the context error.
func Run[T any](ctx context.Context, jobs []Job, workers int, fn func(context.Context, Job) (T, error), progress func(Result[T])) ([]Result[T], error) {
	if workers < 1 {
		workers = 1
	}

	results := make([]Result[T], len(jobs))
	for i, job := range jobs {
		results[i].Job = job
	}

	var mu sync.Mutex
	done := make([]bool, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			value, err := fn(gctx, jobs[i])

			mu.Lock()
			defer mu.Unlock()
			results[i].Value = value
			results[i].Err = err
			done[i] = true
			if progress != nil {
				progress(results[i])
			}
			return nil
		})
	}

	err := g.Wait()
	for i := range results {
		if done[i] {
			continue
		}
		if err == nil {
			err = ctx.Err()
		}
		results[i].Err = err
	}
	return results, err
}
