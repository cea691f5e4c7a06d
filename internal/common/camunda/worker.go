// internal/common/camunda/worker.go
package camunda

import (
	"sort"
	"sync"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// JobHandler is the signature every worker package exposes via Handle.
type JobHandler func(client worker.JobClient, job entities.Job)

// WorkerSettings are the per-task-type polling knobs.
type WorkerSettings struct {
	MaxJobsActive int
	Timeout       time.Duration
}

// RegisterWorker opens a job worker for taskType and tracks it for
// Shutdown. Registering the same task type twice replaces the old worker.
func (c *Client) RegisterWorker(taskType string, settings WorkerSettings, handler JobHandler) {
	jobWorker := c.client.NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(handler)).
		MaxJobsActive(settings.MaxJobsActive).
		Timeout(settings.Timeout).
		Open()

	if old, ok := c.workers.remove(taskType); ok {
		old.Close()
	}
	c.workers.add(taskType, jobWorker)

	c.logger.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": settings.MaxJobsActive,
		"timeout":       settings.Timeout.String(),
	})
}

// RegisteredTaskTypes returns the task types with an open worker, sorted.
func (c *Client) RegisteredTaskTypes() []string {
	return c.workers.taskTypes()
}

// registry is the mutex-guarded set of open job workers.
type registry struct {
	mu      sync.Mutex
	workers map[string]worker.JobWorker
}

func newRegistry() *registry {
	return &registry{workers: make(map[string]worker.JobWorker)}
}

func (r *registry) add(taskType string, w worker.JobWorker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workers[taskType] = w
}

func (r *registry) remove(taskType string) (worker.JobWorker, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workers[taskType]
	if ok {
		delete(r.workers, taskType)
	}
	return w, ok
}

func (r *registry) taskTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.workers))
	for t := range r.workers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
