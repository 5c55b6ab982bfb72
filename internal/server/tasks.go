package server

import (
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Task states. A task never leaves a terminal state.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// taskRetention is how long finished tasks and their audio files are kept.
const taskRetention = time.Hour

// Task is one asynchronous synthesis job.
type Task struct {
	ID        string    `json:"task_id"`
	Status    string    `json:"status"`
	AudioPath string    `json:"-"`
	Error     string    `json:"error,omitempty"`
	Created   time.Time `json:"-"`
}

// TaskStore tracks synthesis tasks in memory. All access goes through the
// mutex; handlers and workers share one instance per server.
type TaskStore struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

func NewTaskStore() *TaskStore {
	return &TaskStore{tasks: make(map[string]*Task)}
}

// Create registers a new task in the processing state and returns its id.
func (s *TaskStore) Create() string {
	id := uuid.NewString()
	s.mu.Lock()
	s.tasks[id] = &Task{
		ID:      id,
		Status:  StatusProcessing,
		Created: time.Now(),
	}
	s.mu.Unlock()
	return id
}

// Complete moves a task to the completed state with its audio file.
func (s *TaskStore) Complete(id, audioPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tasks[id]; ok {
		t.Status = StatusCompleted
		t.AudioPath = audioPath
	}
}

// Fail moves a task to the error state.
func (s *TaskStore) Fail(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tasks[id]; ok {
		t.Status = StatusError
		t.Error = err.Error()
	}
}

// Get returns a snapshot of a task.
func (s *TaskStore) Get(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return Task{}, false
	}
	return *t, true
}

// Sweep removes tasks older than the retention window, deleting their audio
// files. It returns the number of tasks removed.
func (s *TaskStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, t := range s.tasks {
		if now.Sub(t.Created) < taskRetention {
			continue
		}
		if t.AudioPath != "" {
			if err := os.Remove(t.AudioPath); err != nil && !os.IsNotExist(err) {
				log.Warn("sweep: remove audio file", "path", t.AudioPath, "err", err)
			}
		}
		delete(s.tasks, id)
		removed++
	}
	return removed
}

// sweepLoop runs Sweep periodically until stop is closed.
func (s *TaskStore) sweepLoop(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if n := s.Sweep(time.Now()); n > 0 {
				log.Debug("swept expired tasks", "count", n)
			}
		}
	}
}
