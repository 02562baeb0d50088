package tasks

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusError      Status = "ERROR"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

var ErrTaskNotFound = errors.New("task not found")

// Result is what a completed ingestion reports back to the poller.
type Result struct {
	Total           int `json:"total"`
	Processed       int `json:"processed"`
	KHChecksAdded   int `json:"khChecksAdded"`
	ZUCirclesAdded  int `json:"zuCirclesAdded"`
	NewDancers      int `json:"newDancers"`
	FinishedDancers int `json:"finishedDancers"`
}

type Task struct {
	ID       uuid.UUID `json:"id"`
	ClanID   uuid.UUID `json:"clanId"`
	Status   Status    `json:"status"`
	Progress int       `json:"progress"`
	Total    int       `json:"total"`
	Result   *Result   `json:"result,omitempty"`
	Error    string    `json:"error,omitempty"`
}

/*
Tracker is the lifecycle of one asynchronous job as seen by a polling client.
Contract:
  - Create always yields a PENDING task with a fresh id, owned by clanID.
  - Once COMPLETED or ERROR a task no longer changes; later calls are no-ops.
  - Progress never decreases.
  - Get returns ErrTaskNotFound for unknown or expired ids.
*/
type Tracker interface {
	Create(ctx context.Context, clanID uuid.UUID) (*Task, error)
	Start(ctx context.Context, id uuid.UUID, total int) error
	Progress(ctx context.Context, id uuid.UUID, processed int) error
	Complete(ctx context.Context, id uuid.UUID, result Result) error
	Fail(ctx context.Context, id uuid.UUID, processed int, cause error) error
	Get(ctx context.Context, id uuid.UUID) (*Task, error)
}

// transition applies one lifecycle step in place and reports whether t changed.
type transition func(t *Task) bool

func startStep(total int) transition {
	return func(t *Task) bool {
		if t.Status != StatusPending {
			return false
		}
		t.Status = StatusProcessing
		t.Total = total
		return true
	}
}

func progressStep(processed int) transition {
	return func(t *Task) bool {
		if t.Status.Terminal() || processed <= t.Progress {
			return false
		}
		t.Progress = processed
		return true
	}
}

func completeStep(result Result) transition {
	return func(t *Task) bool {
		if t.Status.Terminal() {
			return false
		}
		t.Status = StatusCompleted
		if result.Processed > t.Progress {
			t.Progress = result.Processed
		}
		if result.Total > 0 {
			t.Total = result.Total
		}
		r := result
		t.Result = &r
		return true
	}
}

func failStep(processed int, cause error) transition {
	return func(t *Task) bool {
		if t.Status.Terminal() {
			return false
		}
		t.Status = StatusError
		if processed > t.Progress {
			t.Progress = processed
		}
		t.Error = "unknown error"
		if cause != nil {
			t.Error = cause.Error()
		}
		return true
	}
}
