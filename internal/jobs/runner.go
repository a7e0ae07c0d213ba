package jobs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/luxdoc/doc2quiz"
)

// DefaultTimeout bounds one background conversion.
const DefaultTimeout = 2 * time.Minute

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	OutputDir string
	Timeout   time.Duration // DefaultTimeout when zero
	Logger    *slog.Logger  // discards when nil
}

// Runner executes queued jobs in the background.
type Runner struct {
	store   Store
	pool    *doc2quiz.ConverterPool
	outDir  string
	timeout time.Duration
	logger  *slog.Logger
	wg      sync.WaitGroup
}

// NewRunner creates a Runner that converts with converters from pool.
func NewRunner(store Store, pool *doc2quiz.ConverterPool, cfg RunnerConfig) *Runner {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{
		store:   store,
		pool:    pool,
		outDir:  cfg.OutputDir,
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
	}
}

// OutputPath is where the result of job id is written.
func (r *Runner) OutputPath(id string) string {
	return filepath.Join(r.outDir, id+".txt")
}

// Submit records job and converts inputPath in the background. The
// conversion outlives ctx's cancellation but keeps its values.
func (r *Runner) Submit(ctx context.Context, job *Job, inputPath string) error {
	format, err := doc2quiz.ParseFormat(job.Format)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJob, err)
	}
	if err := r.store.Create(ctx, job); err != nil {
		return err
	}
	r.logger.Info("job queued", "job", job.ID, "filename", job.Filename, "format", format)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(context.WithoutCancel(ctx), job.ID, inputPath, format)
	}()
	return nil
}

// Wait blocks until every submitted job has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) run(ctx context.Context, id, inputPath string, format doc2quiz.Format) {
	log := r.logger.With("job", id)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.store.UpdateStatus(ctx, id, StatusProcessing, MsgStarted); err != nil {
		log.Error("job status update failed", "status", StatusProcessing, "error", err)
		r.abandon(log, id, err)
		return
	}
	log.Info("job processing")

	start := time.Now()
	questions, err := r.convert(ctx, inputPath, r.OutputPath(id), format)
	if err != nil {
		log.Error("job failed", "error", err, "elapsed", time.Since(start))
		r.finish(log, id, StatusError, err.Error(), 0)
		return
	}

	log.Info("job completed", "questions", questions, "elapsed", time.Since(start))
	r.finish(log, id, StatusCompleted, MsgCompleted, questions)
}

// convert writes the quiz for in to out and returns its question count.
func (r *Runner) convert(ctx context.Context, in, out string, format doc2quiz.Format) (int, error) {
	conv, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer r.pool.Release(conv)

	res, err := conv.ConvertFile(ctx, in, out, format)
	if err != nil {
		return 0, err
	}
	return len(res.Records), nil
}

// abandon marks a job that could not start as failed, unless another
// writer already finished it.
func (r *Runner) abandon(log *slog.Logger, id string, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if job, err := r.store.Get(ctx, id); err == nil && job.Status.Terminal() {
		return
	}
	r.finish(log, id, StatusError, cause.Error(), 0)
}

// finish records a terminal status. It uses a fresh context so a job that
// hit its timeout can still be marked as failed.
func (r *Runner) finish(log *slog.Logger, id string, status Status, message string, questions int) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	if status == StatusCompleted {
		err = r.store.Complete(ctx, id, questions, message)
	} else {
		err = r.store.UpdateStatus(ctx, id, status, message)
	}
	if err != nil {
		log.Error("job status update failed", "status", status, "error", err)
	}
}
