// Package pipeline runs a declarative step DAG over a device fleet: an
// ordered list of named steps, each producing a StepResult, with non-fatal
// partial failure (a skipped step) accumulated into an overall
// PipelineResult, and an explicit RunContext threaded through every step
// rather than an ambient "current device" receiver.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/fleetsync/fleetsync/internal/logging"
	"github.com/fleetsync/fleetsync/pkg/fleetdevice"
	"github.com/fleetsync/fleetsync/pkg/pipelinecat"
	"github.com/fleetsync/fleetsync/pkg/task"
)

// StepStatus is one step's terminal classification within a run.
type StepStatus string

const (
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
	StepSkipped   StepStatus = "skipped"
)

// PipelineStatus is the overall run's terminal classification.
type PipelineStatus string

const (
	PipelineCompleted PipelineStatus = "completed"
	PipelineFailed    PipelineStatus = "failed"
	PipelineCancelled PipelineStatus = "cancelled"
)

// StepResult records one step's outcome.
type StepResult struct {
	StepID   string
	Kind     pipelinecat.StepKind
	Status   StepStatus
	Message  string
	Duration time.Duration
	Output   any
}

// PipelineResult is the terminal report for one run: one StepResult per
// enabled step that actually ran or was gated, in execution order.
type PipelineResult struct {
	PipelineID string
	Status     PipelineStatus
	Steps      []StepResult
}

// RunContext is the explicit, per-run dictionary threaded through every
// step and collaborator, replacing a global mutable "current run" value.
type RunContext struct {
	Devices               []*fleetdevice.Device
	Credentials           fleetdevice.Credentials
	RemoteInventoryConfig any
	DryRun                bool
	CollectedData         map[string]any
}

// NewRunContext builds a RunContext with an initialized, empty CollectedData.
func NewRunContext(devices []*fleetdevice.Device, creds fleetdevice.Credentials, remoteInventoryConfig any, dryRun bool) *RunContext {
	return &RunContext{
		Devices:               devices,
		Credentials:           creds,
		RemoteInventoryConfig: remoteInventoryConfig,
		DryRun:                dryRun,
		CollectedData:         map[string]any{},
	}
}

// Collector runs a collect step for target, returning the data to store
// under collected_data[target].
type Collector interface {
	Collect(ctx context.Context, target string, rc *RunContext) (any, error)
}

// SyncOutcome is what a Syncer reports back for one sync step.
type SyncOutcome struct {
	Message string
	Output  any
}

// Syncer reconciles previously collected data for target against the
// remote inventory.
type Syncer interface {
	Sync(ctx context.Context, target string, data any, rc *RunContext) (SyncOutcome, error)
}

// Exporter serializes collected data for target to an external collaborator.
type Exporter interface {
	Export(ctx context.Context, target string, data any, rc *RunContext) error
}

// StepObserver receives progress callbacks around each step that actually
// runs (gated-and-skipped steps do not fire these).
type StepObserver interface {
	OnStepStart(step pipelinecat.Step)
	OnStepComplete(step pipelinecat.Step, result StepResult)
}

// collectTargetFor maps a sync step's target to the
// collected_data key a collect step populates for it. Most targets are
// their own key; cables and ip_addresses borrow another kind's collection
// since there is no dedicated "cables" or "ip_addresses" collector.
func collectTargetFor(target string) string {
	switch target {
	case "cables":
		return "neighbors"
	case "ip_addresses":
		return "interfaces"
	default:
		return target
	}
}

// Executor runs a pipeline's steps against its collaborators. A nil
// Collector/Syncer/Exporter is valid as long as no step needs it; a step
// that needs a missing collaborator fails with an explanatory message.
type Executor struct {
	Collector Collector
	Syncer    Syncer
	Exporter  Exporter
	Observer  StepObserver
}

func (e *Executor) notifyStart(step pipelinecat.Step) {
	if e.Observer != nil {
		e.Observer.OnStepStart(step)
	}
}

func (e *Executor) notifyComplete(step pipelinecat.Step, result StepResult) {
	if e.Observer != nil {
		e.Observer.OnStepComplete(step, result)
	}
}

// Run validates p, then executes its enabled steps in declared order:
// no topological re-sort, a step's depends_on are checked against the
// completed set before it runs. Cancellation is polled between steps
// (never mid-step) — on cancellation, the run stops immediately with no
// result recorded for the step that would have run next.
func (e *Executor) Run(ctx context.Context, p *pipelinecat.Pipeline, rc *RunContext) PipelineResult {
	if err := pipelinecat.Validate(p); err != nil {
		return PipelineResult{
			PipelineID: p.ID,
			Status:     PipelineFailed,
			Steps: []StepResult{{
				StepID:  "validation",
				Status:  StepFailed,
				Message: err.Error(),
			}},
		}
	}

	log := logging.WithOperation("pipeline_run").WithField("pipeline", p.ID)
	for _, w := range pipelinecat.OutOfOrderWarnings(p) {
		log.Warn(w)
	}

	result := PipelineResult{PipelineID: p.ID, Status: PipelineCompleted}
	completed := make(map[string]bool, len(p.Steps))

	for _, step := range p.Steps {
		if !step.Enabled {
			continue
		}

		select {
		case <-ctx.Done():
			result.Status = PipelineCancelled
			log.Info("pipeline run cancelled")
			return result
		default:
		}

		if !dependenciesMet(step, completed) {
			sr := StepResult{StepID: step.ID, Kind: step.Kind, Status: StepSkipped, Message: "Dependencies not met"}
			result.Steps = append(result.Steps, sr)
			continue
		}

		e.notifyStart(step)
		start := time.Now()
		sr := e.runStep(ctx, step, rc)
		sr.Duration = time.Since(start)
		result.Steps = append(result.Steps, sr)
		e.notifyComplete(step, sr)

		switch sr.Status {
		case StepCompleted:
			completed[step.ID] = true
		case StepFailed:
			log.Warnf("step %s failed: %s", step.ID, sr.Message)
			result.Status = PipelineFailed
			return result
		}
	}

	return result
}

func dependenciesMet(step pipelinecat.Step, completed map[string]bool) bool {
	for _, dep := range step.DependsOn {
		if !completed[dep] {
			return false
		}
	}
	return true
}

func (e *Executor) runStep(ctx context.Context, step pipelinecat.Step, rc *RunContext) StepResult {
	switch step.Kind {
	case pipelinecat.KindCollect:
		return e.runCollect(ctx, step, rc)
	case pipelinecat.KindSync:
		return e.runSync(ctx, step, rc)
	case pipelinecat.KindExport:
		return e.runExport(ctx, step, rc)
	default:
		return StepResult{StepID: step.ID, Kind: step.Kind, Status: StepFailed, Message: fmt.Sprintf("unknown step kind %q", step.Kind)}
	}
}

func (e *Executor) runCollect(ctx context.Context, step pipelinecat.Step, rc *RunContext) StepResult {
	if e.Collector == nil {
		return StepResult{StepID: step.ID, Kind: step.Kind, Status: StepFailed, Message: "no collector configured"}
	}
	out, err := e.Collector.Collect(ctx, step.Target, rc)
	if err != nil {
		return StepResult{StepID: step.ID, Kind: step.Kind, Status: StepFailed, Message: err.Error()}
	}
	rc.CollectedData[step.Target] = out
	return StepResult{StepID: step.ID, Kind: step.Kind, Status: StepCompleted, Output: out}
}

func (e *Executor) runSync(ctx context.Context, step pipelinecat.Step, rc *RunContext) StepResult {
	if e.Syncer == nil {
		return StepResult{StepID: step.ID, Kind: step.Kind, Status: StepFailed, Message: "no syncer configured"}
	}

	dataKey := collectTargetFor(step.Target)
	data, ok := rc.CollectedData[dataKey]
	if !ok || data == nil {
		if e.Collector == nil {
			return StepResult{StepID: step.ID, Kind: step.Kind, Status: StepFailed, Message: fmt.Sprintf("no collected data for %q and no collector to synthesize it", dataKey)}
		}
		collected, err := e.Collector.Collect(ctx, dataKey, rc)
		if err != nil {
			return StepResult{StepID: step.ID, Kind: step.Kind, Status: StepFailed, Message: fmt.Sprintf("implicit collect of %q failed: %v", dataKey, err)}
		}
		rc.CollectedData[dataKey] = collected
		data = collected
	}

	outcome, err := e.Syncer.Sync(ctx, step.Target, data, rc)
	if err != nil {
		return StepResult{StepID: step.ID, Kind: step.Kind, Status: StepFailed, Message: err.Error()}
	}
	return StepResult{StepID: step.ID, Kind: step.Kind, Status: StepCompleted, Message: outcome.Message, Output: outcome.Output}
}

func (e *Executor) runExport(ctx context.Context, step pipelinecat.Step, rc *RunContext) StepResult {
	if e.Exporter == nil {
		return StepResult{StepID: step.ID, Kind: step.Kind, Status: StepFailed, Message: "no exporter configured"}
	}
	data := rc.CollectedData[step.Target]
	if err := e.Exporter.Export(ctx, step.Target, data, rc); err != nil {
		return StepResult{StepID: step.ID, Kind: step.Kind, Status: StepFailed, Message: err.Error()}
	}
	return StepResult{StepID: step.ID, Kind: step.Kind, Status: StepCompleted}
}

// TaskObserver routes on_step_start/on_step_complete callbacks to a task
// manager's progress updates, so an async pipeline run's task entry tracks
// live progress as its steps complete.
type TaskObserver struct {
	Manager *task.Manager
	TaskID  string
	Total   int
	done    int
}

// NewTaskObserver builds a StepObserver reporting progress against taskID
// out of total enabled steps.
func NewTaskObserver(m *task.Manager, taskID string, total int) *TaskObserver {
	return &TaskObserver{Manager: m, TaskID: taskID, Total: total}
}

func (o *TaskObserver) OnStepStart(step pipelinecat.Step) {
	_ = o.Manager.Update(o.TaskID, o.progressPercent(), o.done, fmt.Sprintf("running %s", step.ID))
}

func (o *TaskObserver) OnStepComplete(step pipelinecat.Step, result StepResult) {
	o.done++
	_ = o.Manager.Update(o.TaskID, o.progressPercent(), o.done, fmt.Sprintf("%s %s", step.ID, result.Status))
}

func (o *TaskObserver) progressPercent() float64 {
	if o.Total <= 0 {
		return 0
	}
	return 100 * float64(o.done) / float64(o.Total)
}
