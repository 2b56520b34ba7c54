// package registry keeps the in-memory record of every ingestion job
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytingest/internal/models"
	"github.com/desertthunder/ytingest/internal/shared"
)

// Update is a partial write to a [models.Task].
//
// Zero-valued fields are left untouched. Counters are merged key-by-key.
type Update struct {
	Status          models.Status
	Message         string
	Progress        string
	DetailedStatus  models.Phase
	Counters        models.CounterPatch
	LastVideoStatus models.Outcome
	Result          any
	Error           string
}

// Registry is a mutex-guarded map of task id to [models.Task].
//
// All reads return copies, so callers never observe a record mid-update.
type Registry struct {
	mu     sync.Mutex
	tasks  map[string]models.Task
	now    func() time.Time
	logger *log.Logger
}

// New creates an empty [Registry].
//
// The clock defaults to [time.Now] and the logger to [shared.NewLogger].
func New(logger *log.Logger, clock func() time.Time) *Registry {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if clock == nil {
		clock = time.Now
	}
	return &Registry{
		tasks:  make(map[string]models.Task),
		now:    clock,
		logger: logger,
	}
}

// Create inserts a fresh task, replacing any record with the same id.
func (r *Registry) Create(id string, kind models.Kind, description string) models.Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	task := models.Task{
		ID:             id,
		Kind:           kind,
		Description:    description,
		Status:         models.StatusCreated,
		Message:        "Task created",
		DetailedStatus: models.PhaseInitiated,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	r.tasks[id] = task
	return task
}

// Update applies u to the task with the given id.
//
// Returns [shared.ErrTaskNotFound] when the id was never created or has been evicted.
func (r *Registry) Update(id string, u Update) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrTaskNotFound, id)
	}

	if u.Status != "" {
		task.Status = u.Status
	}
	if u.Message != "" {
		task.Message = u.Message
	}
	if u.Progress != "" {
		task.Progress = u.Progress
	}
	if u.DetailedStatus != models.PhaseNone {
		task.DetailedStatus = u.DetailedStatus
	}
	if len(u.Counters) > 0 {
		task.Counters.Merge(u.Counters)
	}
	if u.LastVideoStatus != "" {
		task.LastVideoStatus = u.LastVideoStatus
	}
	if u.Result != nil {
		task.Result = u.Result
	}
	if u.Error != "" {
		task.Error = u.Error
	}

	now := r.now().UTC()
	if now.Before(task.CreatedAt) {
		now = task.CreatedAt
	}
	task.UpdatedAt = now

	r.tasks[id] = task
	return nil
}

// Get returns a copy of the task with the given id.
func (r *Registry) Get(id string) (models.Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	return task, ok
}

// List returns a snapshot of every task keyed by id.
func (r *Registry) List() map[string]models.Task {
	return r.filter(func(models.Task) bool { return true })
}

// ListByStatus returns a snapshot of tasks in the given status.
func (r *Registry) ListByStatus(status models.Status) map[string]models.Task {
	return r.filter(func(t models.Task) bool { return t.Status == status })
}

// ListActive returns a snapshot of tasks that are created or processing.
func (r *Registry) ListActive() map[string]models.Task {
	return r.filter(func(t models.Task) bool { return t.Status.Active() })
}

func (r *Registry) filter(keep func(models.Task) bool) map[string]models.Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]models.Task, len(r.tasks))
	for id, task := range r.tasks {
		if keep(task) {
			out[id] = task
		}
	}
	return out
}

// Delete removes the task and reports whether it existed.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return false
	}
	delete(r.tasks, id)
	return true
}

// Len returns the number of tracked tasks.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}

// EvictOldest keeps the max most recently updated tasks and drops the rest.
//
// Active tasks are not exempt. Returns the number of evicted tasks.
func (r *Registry) EvictOldest(max int) int {
	if max < 0 {
		max = 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.tasks) <= max {
		return 0
	}

	ordered := make([]models.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		ordered = append(ordered, task)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].UpdatedAt.Equal(ordered[j].UpdatedAt) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].UpdatedAt.After(ordered[j].UpdatedAt)
	})

	evicted := 0
	for _, task := range ordered[max:] {
		delete(r.tasks, task.ID)
		evicted++
	}
	return evicted
}

// StartJanitor runs [Registry.EvictOldest] every interval until ctx is done.
//
// A non-positive interval disables the janitor.
func (r *Registry) StartJanitor(ctx context.Context, interval time.Duration, max int) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := r.EvictOldest(max); n > 0 {
					r.logger.Info("evicted old tasks", "count", n, "remaining", r.Len())
				}
			}
		}
	}()
}
