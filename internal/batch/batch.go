package batch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Job is one batch run. Cancel is safe to call from any goroutine.
type Job struct {
	ID        string
	CreatedAt time.Time

	cancelled atomic.Bool
}

func NewJob() *Job {
	return &Job{ID: uuid.New().String(), CreatedAt: time.Now().UTC()}
}

func (j *Job) Cancel() { j.cancelled.Store(true) }

func (j *Job) Cancelled() bool { return j.cancelled.Load() }

// Registry tracks running jobs by ID.
type Registry struct {
	mu   sync.Mutex
	jobs map[string]*Job
}

func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*Job)}
}

// Start creates and registers a job.
func (r *Registry) Start() *Job {
	j := NewJob()
	r.mu.Lock()
	r.jobs[j.ID] = j
	r.mu.Unlock()
	return j
}

func (r *Registry) Get(id string) (*Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	return j, ok
}

// Cancel flags the job; it reports false for unknown IDs.
func (r *Registry) Cancel(id string) bool {
	j, ok := r.Get(id)
	if !ok {
		return false
	}
	j.Cancel()
	return true
}

// CancelAll flags every registered job, e.g. on SIGINT.
func (r *Registry) CancelAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range r.jobs {
		j.Cancel()
	}
}

func (r *Registry) Finish(id string) {
	r.mu.Lock()
	delete(r.jobs, id)
	r.mu.Unlock()
}

type ItemResult struct {
	Index int
	Err   error
}

type Report struct {
	JobID     string
	Requested int
	Succeeded int
	Failed    int
	// Cancelled is set when the run stopped before all items were attempted.
	Cancelled bool
	Items     []ItemResult
}

// Runner executes batch items sequentially.
type Runner struct {
	Logger *zap.Logger
}

// Run calls fn for items 0..n-1. The job flag and ctx are checked before each
// item; an item error is recorded and the run continues.
func (r Runner) Run(ctx context.Context, job *Job, n int, fn func(ctx context.Context, i int) error) Report {
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}
	rep := Report{JobID: job.ID, Requested: n}
	for i := 0; i < n; i++ {
		if job.Cancelled() || ctx.Err() != nil {
			rep.Cancelled = true
			log.Info("batch cancelled", zap.String("job", job.ID), zap.Int("item", i))
			break
		}
		err := fn(ctx, i)
		rep.Items = append(rep.Items, ItemResult{Index: i, Err: err})
		if err != nil {
			rep.Failed++
			log.Warn("batch item failed", zap.String("job", job.ID), zap.Int("item", i), zap.Error(err))
			continue
		}
		rep.Succeeded++
	}
	return rep
}

// Run is Runner{}.Run.
func Run(ctx context.Context, job *Job, n int, fn func(ctx context.Context, i int) error) Report {
	return Runner{}.Run(ctx, job, n, fn)
}
