package ocr

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/inkocr/inkocr/input"
	"github.com/inkocr/inkocr/log"
)

// ImportReport summarizes an ImportDir run.
type ImportReport struct {
	Added   int
	Skipped []string
}

type importJob struct {
	path  string
	label string
	vec   []float64
	err   error
}

// ImportDir adds every supported file found in the label directories of dir:
// dir/<label>/<file>. Files are normalized concurrently, at most concurrency
// at a time, and added in path order. Blank drawings are skipped.
func (s *Service) ImportDir(ctx context.Context, dir string, opts input.Options, concurrency int64) (*ImportReport, error) {
	jobs, err := scanLabelDirs(dir)
	if err != nil {
		return nil, err
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	sem := semaphore.NewWeighted(concurrency)
	g, gctx := errgroup.WithContext(ctx)
	for _, job := range jobs {
		job := job
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			job.vec, job.err = input.Load(job.path, opts)
			if job.err != nil && errors.Cause(job.err) != input.ErrEmpty {
				return job.err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &ImportReport{}
	for _, job := range jobs {
		if job.err != nil {
			log.Warning.Printf("skipping %s: %v", job.path, job.err)
			report.Skipped = append(report.Skipped, job.path)
			continue
		}
		if _, err := s.AddSample(job.vec, job.label); err != nil {
			return report, errors.Wrap(err, job.path)
		}
		report.Added++
	}
	log.Info.Printf("imported %d samples from %s", report.Added, dir)
	return report, nil
}

func scanLabelDirs(dir string) ([]*importJob, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var jobs []*importJob
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		label := e.Name()
		files, err := os.ReadDir(filepath.Join(dir, label))
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			path := filepath.Join(dir, label, f.Name())
			if f.IsDir() || !input.Supported(path) {
				continue
			}
			jobs = append(jobs, &importJob{path: path, label: label})
		}
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].path < jobs[j].path })

	if len(jobs) == 0 {
		return nil, errors.Errorf("no images found in %s", dir)
	}
	return jobs, nil
}
