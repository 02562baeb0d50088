package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/clanhub-backend/internal/platform/logger"
)

const (
	DefaultTTL     = 24 * time.Hour
	redisKeyPrefix = "clanhub:task:"
	maxCASAttempts = 8
)

type redisTracker struct {
	client goredis.UniversalClient
	log    *logger.Logger
	ttl    time.Duration
}

// NewRedisTracker stores each task as a JSON value with a TTL so status
// survives restarts and is visible to every replica.
func NewRedisTracker(client goredis.UniversalClient, baseLog *logger.Logger, ttl time.Duration) Tracker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisTracker{
		client: client,
		log:    baseLog.With("component", "RedisTaskTracker"),
		ttl:    ttl,
	}
}

func redisKey(id uuid.UUID) string { return redisKeyPrefix + id.String() }

func (r *redisTracker) Create(ctx context.Context, clanID uuid.UUID) (*Task, error) {
	t := &Task{ID: uuid.New(), ClanID: clanID, Status: StatusPending}
	raw, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	if err := r.client.Set(ctx, redisKey(t.ID), raw, r.ttl).Err(); err != nil {
		return nil, fmt.Errorf("store task: %w", err)
	}
	return t, nil
}

func (r *redisTracker) Get(ctx context.Context, id uuid.UUID) (*Task, error) {
	raw, err := r.client.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load task: %w", err)
	}
	var t Task
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("decode task: %w", err)
	}
	return &t, nil
}

// apply runs step under WATCH so concurrent updates to one task cannot
// regress its status or progress.
func (r *redisTracker) apply(ctx context.Context, id uuid.UUID, step transition) error {
	key := redisKey(id)
	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		err := r.client.Watch(ctx, func(tx *goredis.Tx) error {
			raw, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, goredis.Nil) {
				return ErrTaskNotFound
			}
			if err != nil {
				return err
			}
			var t Task
			if err := json.Unmarshal(raw, &t); err != nil {
				return err
			}
			if !step(&t) {
				return nil
			}
			next, err := json.Marshal(&t)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(p goredis.Pipeliner) error {
				p.Set(ctx, key, next, r.ttl)
				return nil
			})
			return err
		}, key)
		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		return err
	}
	r.log.Warn("task update lost to contention", "task_id", id)
	return goredis.TxFailedErr
}

func (r *redisTracker) Start(ctx context.Context, id uuid.UUID, total int) error {
	return r.apply(ctx, id, startStep(total))
}

func (r *redisTracker) Progress(ctx context.Context, id uuid.UUID, processed int) error {
	return r.apply(ctx, id, progressStep(processed))
}

func (r *redisTracker) Complete(ctx context.Context, id uuid.UUID, result Result) error {
	return r.apply(ctx, id, completeStep(result))
}

func (r *redisTracker) Fail(ctx context.Context, id uuid.UUID, processed int, cause error) error {
	return r.apply(ctx, id, failStep(processed, cause))
}
