package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/clanhub-backend/internal/platform/logger"
)

func TestRegisterRejectsBadSpec(t *testing.T) {
	s := New(logger.Nop(), time.Second)
	if err := s.Register("bad", "not a spec", func(context.Context) error { return nil }); err == nil {
		t.Fatalf("Register: want error for invalid spec")
	}
	if err := s.Register("ok", EveryMinute, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := s.Register("minute first", "* * * * *", func(context.Context) error { return nil }); err == nil {
		t.Fatalf("Register: want error for five-field spec")
	}
	if err := s.Register("descriptor", "@every 30s", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("Register descriptor: %v", err)
	}
}

func TestRunFiresSecondsSpec(t *testing.T) {
	s := New(logger.Nop(), time.Second)
	fired := make(chan struct{}, 1)
	if err := s.Register("tick", "* * * * * *", func(context.Context) error {
		select {
		case fired <- struct{}{}:
		default:
		}
		return nil
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Run(ctx) }()
	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatalf("Run: per-second job did not fire")
	}
}

func TestWrapSkipsOverlappingRuns(t *testing.T) {
	s := New(logger.Nop(), time.Second)
	var calls atomic.Int32
	release := make(chan struct{})
	entered := make(chan struct{})
	run := s.wrap("slow", func(ctx context.Context) error {
		calls.Add(1)
		close(entered)
		<-release
		return nil
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		run()
	}()
	<-entered
	run()
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("overlap: want=1 call got=%d", got)
	}
}

func TestWrapSurvivesPanicAndError(t *testing.T) {
	s := New(logger.Nop(), time.Second)
	s.wrap("panics", func(context.Context) error { panic("boom") })()
	s.wrap("fails", func(context.Context) error { return errors.New("nope") })()

	var deadline bool
	s.wrap("deadline", func(ctx context.Context) error {
		_, deadline = ctx.Deadline()
		return nil
	})()
	if !deadline {
		t.Fatalf("wrap: want job context with deadline")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	s := New(logger.Nop(), time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run: did not stop after cancel")
	}
}
