package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Store persists jobs.
type Store interface {
	// Create inserts a queued job. ErrDuplicate if the ID exists.
	Create(ctx context.Context, job *Job) error

	// Get returns the job with id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Job, error)

	// UpdateStatus moves a job to status with a user-facing message.
	// ErrInvalidTransition if the current status does not allow it.
	UpdateStatus(ctx context.Context, id string, status Status, message string) error

	// Complete moves a processing job to completed and records how many
	// questions it produced.
	Complete(ctx context.Context, id string, questions int, message string) error

	// CountByStatus counts jobs in status.
	CountByStatus(ctx context.Context, status Status) (int, error)
}

// MemoryStore keeps jobs in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]Job
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]Job)}
}

func (m *MemoryStore) Create(_ context.Context, job *Job) error {
	if err := validateNew(job); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[job.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, job.ID)
	}
	m.jobs[job.ID] = *job
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &j, nil
}

func (m *MemoryStore) UpdateStatus(_ context.Context, id string, status Status, message string) error {
	return m.update(id, status, func(j *Job) { j.Message = message })
}

func (m *MemoryStore) Complete(_ context.Context, id string, questions int, message string) error {
	return m.update(id, StatusCompleted, func(j *Job) {
		j.Message = message
		j.Questions = questions
	})
}

func (m *MemoryStore) update(id string, status Status, set func(*Job)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !j.Status.CanTransition(status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, status)
	}
	j.Status = status
	set(&j)
	j.UpdatedAt = time.Now().UTC()
	m.jobs[id] = j
	return nil
}

func (m *MemoryStore) CountByStatus(_ context.Context, status Status) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, j := range m.jobs {
		if j.Status == status {
			n++
		}
	}
	return n, nil
}
