package batch

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/mgmeyers/pdfmarks/marking"
	"github.com/mgmeyers/pdfmarks/pdfutils"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	ErrDuplicateOutput = errors.New("duplicate output")
	ErrJobsFailed      = errors.New("jobs failed")
)

// Job is one submission to finalize. Submission is a JSON file holding a
// pdfutils.SubmissionInfo.
type Job struct {
	Input      string `json:"input"`
	Submission string `json:"submission"`
	Output     string `json:"output"`
}

type JobResult struct {
	Job       Job     `json:"job"`
	TotalMark float64 `json:"totalMark"`
	Pages     int     `json:"pages"`
	Warnings  int     `json:"warnings"`
	Err       error   `json:"-"`
}

// LoadManifest reads a JSON array of jobs. Relative paths are resolved
// against the directory holding the manifest.
func LoadManifest(path string) ([]Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var jobs []Job
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, errors.Wrapf(err, "manifest %s", path)
	}

	dir := filepath.Dir(path)
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}

	for i := range jobs {
		jobs[i].Input = resolve(jobs[i].Input)
		jobs[i].Submission = resolve(jobs[i].Submission)
		jobs[i].Output = resolve(jobs[i].Output)
	}

	return jobs, nil
}

func LoadSubmission(path string) (pdfutils.SubmissionInfo, error) {
	var submission pdfutils.SubmissionInfo

	data, err := os.ReadFile(path)
	if err != nil {
		return submission, err
	}

	if err := json.Unmarshal(data, &submission); err != nil {
		return submission, errors.Wrapf(err, "submission %s", path)
	}

	return submission, nil
}

// Runner finalizes independent submissions concurrently.
type Runner struct {
	Finalizer *marking.Finalizer
	// Concurrency caps the jobs in flight. Zero or less means no limit.
	Concurrency int
	// FailFast cancels the jobs not yet finished on the first failure.
	FailFast bool
	Log      logrus.FieldLogger
}

// Run finalizes every job and returns one result per job, in job order. An
// output file is only written once its job has fully succeeded.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]JobResult, error) {
	if err := checkJobs(jobs); err != nil {
		return nil, err
	}

	log := r.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	results := make([]JobResult, len(jobs))
	for i, job := range jobs {
		results[i].Job = job
	}

	g, gctx := errgroup.WithContext(ctx)
	if r.Concurrency > 0 {
		g.SetLimit(r.Concurrency)
	}

	var failed int32

	for i := range jobs {
		i := i

		g.Go(func() error {
			jobCtx := ctx
			if r.FailFast {
				jobCtx = gctx
			}

			jobLog := log.WithFields(logrus.Fields{
				"job":    i,
				"input":  jobs[i].Input,
				"output": jobs[i].Output,
			})

			if err := jobCtx.Err(); err != nil {
				results[i].Err = err
				atomic.AddInt32(&failed, 1)
				return r.failure(err)
			}

			res, err := r.runJob(jobCtx, jobs[i])
			if err != nil {
				jobLog.WithError(err).Error("job failed")
				results[i].Err = err
				atomic.AddInt32(&failed, 1)
				return r.failure(err)
			}

			results[i].TotalMark = res.TotalMark
			results[i].Pages = res.Pages
			results[i].Warnings = len(res.Warnings)

			jobLog.WithField("totalMark", res.TotalMark).Info("job done")

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}

	if n := atomic.LoadInt32(&failed); n > 0 {
		return results, errors.Wrapf(ErrJobsFailed, "%d of %d", n, len(jobs))
	}

	return results, nil
}

// failure decides whether a job error stops the group.
func (r *Runner) failure(err error) error {
	if r.FailFast {
		return err
	}
	return nil
}

func (r *Runner) runJob(ctx context.Context, job Job) (*marking.Result, error) {
	submission, err := LoadSubmission(job.Submission)
	if err != nil {
		return nil, err
	}

	res, err := r.Finalizer.FinalizeFile(ctx, job.Input, submission)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := WriteFileAtomic(job.Output, res.PDF); err != nil {
		return nil, errors.Wrapf(err, "write %s", job.Output)
	}

	return res, nil
}

// checkJobs rejects jobs that would write the same output, or overwrite any
// job's input.
func checkJobs(jobs []Job) error {
	outputs := make(map[string]int, len(jobs))
	inputs := make(map[string]bool, len(jobs))

	for _, job := range jobs {
		inputs[cleanPath(job.Input)] = true
	}

	for i, job := range jobs {
		if job.Input == "" || job.Submission == "" || job.Output == "" {
			return errors.Errorf("job %d: missing path", i)
		}

		out := cleanPath(job.Output)

		if j, ok := outputs[out]; ok {
			return errors.Wrapf(ErrDuplicateOutput, "jobs %d and %d write %s", j, i, job.Output)
		}

		if inputs[out] {
			return errors.Wrapf(ErrDuplicateOutput, "job %d would overwrite input %s", i, job.Output)
		}

		outputs[out] = i
	}

	return nil
}

func cleanPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// WriteFileAtomic writes data to a temporary file next to name and renames it
// into place, so readers never see a partial file.
func WriteFileAtomic(name string, data []byte) error {
	dir := filepath.Dir(name)

	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(name)+".*")
	if err != nil {
		return err
	}

	tmpName := tmp.Name()
	committed := false

	defer func() {
		if !committed {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}

	if err := os.Rename(tmpName, name); err != nil {
		return err
	}

	committed = true

	return nil
}
