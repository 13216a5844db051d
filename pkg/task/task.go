// Package task is the in-process background-task registry: every
// long-running CLI or HTTP operation gets a handle here, with thread-safe
// progress updates, idempotent terminal transitions, and LRU eviction once
// the registry grows past a configured ceiling. Entries are sequence
// numbered under one lock with copy-out snapshot reads, generalized from a
// fixed test-run lifetime to an evict-past-a-ceiling one.
package task

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fleetsync/fleetsync/internal/errs"
	"github.com/fleetsync/fleetsync/internal/logging"
)

// Status is a task's lifecycle state.
type Status string

const (
	Pending   Status = "pending"
	Running   Status = "running"
	Completed Status = "completed"
	Failed    Status = "failed"
	Cancelled Status = "cancelled"
)

func (s Status) terminal() bool {
	return s == Completed || s == Failed || s == Cancelled
}

// Task is an immutable snapshot returned to callers. It never carries the
// live cancellation plumbing — that stays inside the registry.
type Task struct {
	ID               string
	Kind             string
	Status           Status
	CreatedAt        time.Time
	StartedAt        *time.Time
	FinishedAt       *time.Time
	ProgressPercent  float64
	CurrentStepIndex *int
	TotalSteps       *int
	Message          string
	Result           any
	Error            string
	// Tags carries arbitrary caller metadata (e.g. pipeline id, triggering
	// user) for CLI/HTTP filtering; nil unless the caller passes any.
	Tags map[string]string
	// Logger is a task-scoped log context (fields: task_id, kind) shared by
	// every Update/Complete/Fail call for this task, so the resulting log
	// lines can be correlated without threading the task id through every
	// call site by hand.
	Logger *logrus.Entry
}

// entry is the registry's live, mutable record for one task.
type entry struct {
	seq    int
	task   Task
	cancel context.CancelFunc
	ctx    context.Context
}

// Manager is the shared mutex-guarded task registry. The zero value is not
// usable; construct with NewManager.
type Manager struct {
	mu      sync.Mutex
	tasks   map[string]*entry
	seq     int
	ceiling int
}

// NewManager builds a Manager that LRU-evicts terminal tasks once the
// registry holds more than ceiling entries. ceiling <= 0 disables eviction.
func NewManager(ceiling int) *Manager {
	return &Manager{
		tasks:   map[string]*entry{},
		ceiling: ceiling,
	}
}

func newTaskID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Create registers a new task in state pending and returns its id.
// totalSteps is optional; pass 0 when the operation has no fixed step count.
func (m *Manager) Create(kind string, totalSteps int) string {
	return m.CreateWithTags(kind, totalSteps, nil)
}

// CreateWithTags is Create plus arbitrary caller metadata attached to the
// task for later filtering (e.g. by pipeline id or triggering user).
func (m *Manager) CreateWithTags(kind string, totalSteps int, tags map[string]string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	id := newTaskID()
	ctx, cancel := context.WithCancel(context.Background())

	var total *int
	if totalSteps > 0 {
		t := totalSteps
		total = &t
	}

	logger := logging.WithTask(id).WithField("kind", kind)
	if len(tags) > 0 {
		fields := make(logrus.Fields, len(tags))
		for k, v := range tags {
			fields[k] = v
		}
		logger = logger.WithFields(fields)
	}

	m.tasks[id] = &entry{
		seq: m.seq,
		task: Task{
			ID:         id,
			Kind:       kind,
			Status:     Pending,
			CreatedAt:  time.Now(),
			TotalSteps: total,
			Tags:       tags,
			Logger:     logger,
		},
		cancel: cancel,
		ctx:    ctx,
	}
	m.evictLocked()
	logger.Info("task created")
	return id
}

// Start transitions a pending task to running, recording StartedAt.
func (m *Manager) Start(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, err := m.getLocked(id)
	if err != nil {
		return err
	}
	if e.task.Status.terminal() {
		return fmt.Errorf("%w: %s", errs.ErrTaskTerminal, id)
	}
	now := time.Now()
	e.task.Status = Running
	e.task.StartedAt = &now
	e.task.Logger.Info("task started")
	return nil
}

// Update applies an incremental, thread-safe progress update. Any of
// progressPercent/currentStepIndex/message may be left zero-valued by the
// caller; pass -1 for currentStepIndex to leave it unset.
func (m *Manager) Update(id string, progressPercent float64, currentStepIndex int, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, err := m.getLocked(id)
	if err != nil {
		return err
	}
	if e.task.Status.terminal() {
		return fmt.Errorf("%w: %s", errs.ErrTaskTerminal, id)
	}
	e.task.ProgressPercent = progressPercent
	if currentStepIndex >= 0 {
		idx := currentStepIndex
		e.task.CurrentStepIndex = &idx
	}
	if message != "" {
		e.task.Message = message
	}
	return nil
}

// Complete idempotently transitions a task to completed with the given
// result. Calling it again on an already-terminal task is a no-op.
func (m *Manager) Complete(id string, result any) error {
	return m.finish(id, Completed, result, nil)
}

// Fail idempotently transitions a task to failed, recording err's message.
func (m *Manager) Fail(id string, taskErr error) error {
	return m.finish(id, Failed, nil, taskErr)
}

// Cancel requests cooperative cancellation: it signals the task's context
// (observed by workers at their next seam) and, if the task has not already
// reached another terminal state, marks it cancelled.
func (m *Manager) Cancel(id string) error {
	m.mu.Lock()
	e, err := m.getLocked(id)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if e.task.Status.terminal() {
		m.mu.Unlock()
		return nil
	}
	e.cancel()
	m.mu.Unlock()
	return m.finish(id, Cancelled, nil, nil)
}

func (m *Manager) finish(id string, status Status, result any, taskErr error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, err := m.getLocked(id)
	if err != nil {
		return err
	}
	if e.task.Status.terminal() {
		return nil
	}
	now := time.Now()
	e.task.Status = status
	e.task.FinishedAt = &now
	e.task.Result = result
	if taskErr != nil {
		e.task.Error = taskErr.Error()
	}
	level := logrus.InfoLevel
	if status == Failed {
		level = logrus.WarnLevel
	}
	e.task.Logger.Logf(level, "task %s", status)
	return nil
}

// Context returns the task's cancellation-aware context, for workers that
// poll ctx.Err at their seams.
func (m *Manager) Context(id string) (context.Context, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, err := m.getLocked(id)
	if err != nil {
		return nil, err
	}
	return e.ctx, nil
}

// Get returns a copied snapshot of the task. Mutating the returned value
// never affects registry state.
func (m *Manager) Get(id string) (Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, err := m.getLocked(id)
	if err != nil {
		return Task{}, err
	}
	return e.task, nil
}

func (m *Manager) getLocked(id string) (*entry, error) {
	e, ok := m.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrTaskNotFound, id)
	}
	return e, nil
}

// evictLocked drops the oldest terminal task once the registry holds more
// than m.ceiling entries. Never evicts a pending/running task.
func (m *Manager) evictLocked() {
	if m.ceiling <= 0 || len(m.tasks) <= m.ceiling {
		return
	}
	var oldestID string
	oldestSeq := -1
	for id, e := range m.tasks {
		if !e.task.Status.terminal() {
			continue
		}
		if oldestSeq == -1 || e.seq < oldestSeq {
			oldestSeq = e.seq
			oldestID = id
		}
	}
	if oldestID != "" {
		delete(m.tasks, oldestID)
	}
}
