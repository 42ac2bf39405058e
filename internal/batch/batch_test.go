package batch

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"
)

func TestRun_ContinuesAfterItemError(t *testing.T) {
	job := NewJob()
	var seen []int
	rep := Runner{Logger: zap.NewNop()}.Run(context.Background(), job, 5, func(_ context.Context, i int) error {
		seen = append(seen, i)
		if i == 1 || i == 3 {
			return errors.New("boom")
		}
		return nil
	})
	if len(seen) != 5 {
		t.Fatalf("expected every item attempted, got %v", seen)
	}
	if rep.Succeeded != 3 || rep.Failed != 2 || rep.Cancelled {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if rep.JobID != job.ID || rep.Requested != 5 || len(rep.Items) != 5 {
		t.Fatalf("unexpected report header: %+v", rep)
	}
	if rep.Items[1].Err == nil || rep.Items[2].Err != nil {
		t.Fatalf("item errors misrecorded: %+v", rep.Items)
	}
}

func TestRun_JobCancelStopsBeforeNextItem(t *testing.T) {
	job := NewJob()
	calls := 0
	rep := Run(context.Background(), job, 10, func(_ context.Context, i int) error {
		calls++
		if i == 2 {
			job.Cancel()
		}
		return nil
	})
	if calls != 3 || !rep.Cancelled || rep.Succeeded != 3 {
		t.Fatalf("calls=%d report=%+v", calls, rep)
	}
}

func TestRun_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	rep := Run(ctx, NewJob(), 3, func(context.Context, int) error {
		calls++
		return nil
	})
	if calls != 0 || !rep.Cancelled || len(rep.Items) != 0 {
		t.Fatalf("calls=%d report=%+v", calls, rep)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	a, b := r.Start(), r.Start()
	if a.ID == b.ID {
		t.Fatalf("job IDs collide: %s", a.ID)
	}
	if !r.Cancel(a.ID) || !a.Cancelled() || b.Cancelled() {
		t.Fatalf("cancel should only flag job a")
	}
	if r.Cancel("missing") {
		t.Fatalf("cancel of unknown job should report false")
	}
	r.Finish(a.ID)
	if _, ok := r.Get(a.ID); ok {
		t.Fatalf("finished job still registered")
	}
	r.CancelAll()
	if !b.Cancelled() {
		t.Fatalf("CancelAll missed job b")
	}
}

func TestRegistry_ConcurrentCancel(t *testing.T) {
	r := NewRegistry()
	job := r.Start()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Cancel(job.ID)
			_, _ = r.Get(job.ID)
		}()
	}
	wg.Wait()
	if !job.Cancelled() {
		t.Fatalf("job not cancelled")
	}
}
