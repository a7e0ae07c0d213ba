package jobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/luxdoc/doc2quiz"
)

// tableRenderer writes a one-question table as the rendered markup.
type tableRenderer struct {
	err   error
	delay time.Duration
}

func (r *tableRenderer) Name() string                    { return "table" }
func (r *tableRenderer) Available(context.Context) error { return nil }

func (r *tableRenderer) Render(ctx context.Context, src, outDir string) (string, error) {
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if r.err != nil {
		return "", r.err
	}
	out := filepath.Join(outDir, "out.htm")
	markup := "<table><tr><td>1</td><td>2+2?</td><td>4</td><td>5</td></tr></table>"
	return out, os.WriteFile(out, []byte(markup), 0o644)
}

func newTestRunner(t *testing.T, r doc2quiz.Renderer, timeout time.Duration) (*Runner, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	pool := doc2quiz.NewConverterPool(2, doc2quiz.WithRenderer(r), doc2quiz.WithWorkspaceDir(t.TempDir()))
	t.Cleanup(func() { _ = pool.Close() })
	return NewRunner(store, pool, RunnerConfig{OutputDir: t.TempDir(), Timeout: timeout}), store
}

func uploadFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("doc"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunner_Completes(t *testing.T) {
	t.Parallel()

	runner, store := newTestRunner(t, &tableRenderer{}, 0)
	job := NewJob("quiz.docx", "gift")

	if err := runner.Submit(context.Background(), job, uploadFile(t, job.ID+".docx")); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	runner.Wait()

	got, err := store.Get(context.Background(), job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusCompleted || got.Message != MsgCompleted {
		t.Errorf("job = %+v, want completed", got)
	}
	if got.Questions != 1 {
		t.Errorf("Questions = %d, want 1", got.Questions)
	}
	if got.UpdatedAt.Before(got.CreatedAt) {
		t.Errorf("UpdatedAt = %v, before CreatedAt %v", got.UpdatedAt, got.CreatedAt)
	}

	out, err := os.ReadFile(runner.OutputPath(job.ID))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if string(out) != "::2+2?{\n=4\n~5\n}\n" {
		t.Errorf("output = %q", out)
	}
}

func TestRunner_RecordsFailure(t *testing.T) {
	t.Parallel()

	runner, store := newTestRunner(t, &tableRenderer{err: errors.New("soffice crashed")}, 0)
	job := NewJob("broken.doc", "hemis")

	if err := runner.Submit(context.Background(), job, uploadFile(t, job.ID+".doc")); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	runner.Wait()

	got, _ := store.Get(context.Background(), job.ID)
	if got.Status != StatusError || !strings.Contains(got.Message, "soffice crashed") {
		t.Errorf("job = %+v, want error mentioning the cause", got)
	}
	if _, err := os.Stat(runner.OutputPath(job.ID)); !os.IsNotExist(err) {
		t.Error("output written for a failed job")
	}
}

func TestRunner_Timeout(t *testing.T) {
	t.Parallel()

	runner, store := newTestRunner(t, &tableRenderer{delay: time.Second}, 20*time.Millisecond)
	job := NewJob("slow.docx", "gift")

	if err := runner.Submit(context.Background(), job, uploadFile(t, job.ID+".docx")); err != nil {
		t.Fatal(err)
	}
	runner.Wait()

	got, _ := store.Get(context.Background(), job.ID)
	if got.Status != StatusError {
		t.Errorf("status = %s, want error after timeout", got.Status)
	}
}

func TestRunner_SurvivesRequestCancel(t *testing.T) {
	t.Parallel()

	runner, store := newTestRunner(t, &tableRenderer{delay: 20 * time.Millisecond}, 0)
	job := NewJob("q.docx", "gift")

	ctx, cancel := context.WithCancel(context.Background())
	if err := runner.Submit(ctx, job, uploadFile(t, job.ID+".docx")); err != nil {
		t.Fatal(err)
	}
	cancel()
	runner.Wait()

	got, _ := store.Get(context.Background(), job.ID)
	if got.Status != StatusCompleted {
		t.Errorf("status = %s, want completed despite request cancel", got.Status)
	}
}

// startFailStore fails the first move to processing.
type startFailStore struct {
	*MemoryStore
	mu     sync.Mutex
	failed bool
}

func (s *startFailStore) UpdateStatus(ctx context.Context, id string, status Status, message string) error {
	s.mu.Lock()
	fail := status == StatusProcessing && !s.failed
	s.failed = s.failed || fail
	s.mu.Unlock()
	if fail {
		return errors.New("connection reset")
	}
	return s.MemoryStore.UpdateStatus(ctx, id, status, message)
}

func TestRunner_FailsJobWhenStartUpdateFails(t *testing.T) {
	t.Parallel()

	store := &startFailStore{MemoryStore: NewMemoryStore()}
	pool := doc2quiz.NewConverterPool(1, doc2quiz.WithRenderer(&tableRenderer{}), doc2quiz.WithWorkspaceDir(t.TempDir()))
	t.Cleanup(func() { _ = pool.Close() })
	runner := NewRunner(store, pool, RunnerConfig{OutputDir: t.TempDir()})

	job := NewJob("quiz.docx", "gift")
	if err := runner.Submit(context.Background(), job, uploadFile(t, job.ID+".docx")); err != nil {
		t.Fatal(err)
	}
	runner.Wait()

	got, err := store.Get(context.Background(), job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Status.Terminal() {
		t.Fatalf("job left in %s", got.Status)
	}
	if got.Status != StatusError || !strings.Contains(got.Message, "connection reset") {
		t.Errorf("job = %+v, want error mentioning the cause", got)
	}
	if _, err := os.Stat(runner.OutputPath(job.ID)); !os.IsNotExist(err) {
		t.Error("output written for a job that never started")
	}
}

func TestRunner_RejectsBadFormat(t *testing.T) {
	t.Parallel()

	runner, store := newTestRunner(t, &tableRenderer{}, 0)
	job := NewJob("q.docx", "xml")

	if err := runner.Submit(context.Background(), job, "unused.docx"); !errors.Is(err, ErrInvalidJob) {
		t.Errorf("Submit() = %v, want ErrInvalidJob", err)
	}
	if _, err := store.Get(context.Background(), job.ID); !errors.Is(err, ErrNotFound) {
		t.Error("rejected job was stored")
	}
}
