package tasks

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/clanhub-backend/internal/platform/logger"
)

type memoryTracker struct {
	log   *logger.Logger
	mu    sync.RWMutex
	tasks map[uuid.UUID]*Task
}

// NewMemoryTracker keeps task status in process; a restart forgets it.
func NewMemoryTracker(baseLog *logger.Logger) Tracker {
	return &memoryTracker{
		log:   baseLog.With("component", "MemoryTaskTracker"),
		tasks: map[uuid.UUID]*Task{},
	}
}

func (m *memoryTracker) Create(ctx context.Context, clanID uuid.UUID) (*Task, error) {
	t := &Task{ID: uuid.New(), ClanID: clanID, Status: StatusPending}
	m.mu.Lock()
	m.tasks[t.ID] = t
	m.mu.Unlock()
	cp := *t
	return &cp, nil
}

func (m *memoryTracker) apply(id uuid.UUID, step transition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return ErrTaskNotFound
	}
	step(t)
	return nil
}

func (m *memoryTracker) Start(ctx context.Context, id uuid.UUID, total int) error {
	return m.apply(id, startStep(total))
}

func (m *memoryTracker) Progress(ctx context.Context, id uuid.UUID, processed int) error {
	return m.apply(id, progressStep(processed))
}

func (m *memoryTracker) Complete(ctx context.Context, id uuid.UUID, result Result) error {
	return m.apply(id, completeStep(result))
}

func (m *memoryTracker) Fail(ctx context.Context, id uuid.UUID, processed int, cause error) error {
	return m.apply(id, failStep(processed, cause))
}

func (m *memoryTracker) Get(ctx context.Context, id uuid.UUID) (*Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	cp := *t
	if t.Result != nil {
		r := *t.Result
		cp.Result = &r
	}
	return &cp, nil
}
