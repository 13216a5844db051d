package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/fleetsync/fleetsync/pkg/fleetdevice"
	"github.com/fleetsync/fleetsync/pkg/pipelinecat"
	"github.com/fleetsync/fleetsync/pkg/task"
)

type fakeCollector struct {
	calls []string
	data  map[string]any
	err   error
}

func (f *fakeCollector) Collect(ctx context.Context, target string, rc *RunContext) (any, error) {
	f.calls = append(f.calls, target)
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.data[target]; ok {
		return v, nil
	}
	return target + "-data", nil
}

type fakeSyncer struct {
	calls []string
	err   error
}

func (f *fakeSyncer) Sync(ctx context.Context, target string, data any, rc *RunContext) (SyncOutcome, error) {
	f.calls = append(f.calls, target)
	if f.err != nil {
		return SyncOutcome{}, f.err
	}
	return SyncOutcome{Message: "synced " + target, Output: data}, nil
}

func TestRunPipelineWithAutoCollect(t *testing.T) {
	p := &pipelinecat.Pipeline{
		ID:      "p1",
		Enabled: true,
		Steps: []pipelinecat.Step{
			{ID: "sync_if", Kind: pipelinecat.KindSync, Target: "interfaces", Enabled: true},
		},
	}
	collector := &fakeCollector{}
	syncer := &fakeSyncer{}
	rc := NewRunContext(nil, fleetdevice.Credentials{}, nil, false)

	exec := &Executor{Collector: collector, Syncer: syncer}
	result := exec.Run(context.Background(), p, rc)

	if result.Status != PipelineCompleted {
		t.Fatalf("expected completed pipeline, got %s", result.Status)
	}
	if len(result.Steps) != 1 || result.Steps[0].StepID != "sync_if" || result.Steps[0].Status != StepCompleted {
		t.Fatalf("expected exactly one explicit step result for sync_if, got %+v", result.Steps)
	}
	if _, ok := rc.CollectedData["interfaces"]; !ok {
		t.Fatal("expected collected data to be present after implicit collect")
	}
	if len(collector.calls) != 1 || collector.calls[0] != "interfaces" {
		t.Fatalf("expected one implicit collect of interfaces, got %v", collector.calls)
	}
}

func TestRunPipelineCablesMapToNeighborsCollection(t *testing.T) {
	p := &pipelinecat.Pipeline{
		ID:      "p1",
		Enabled: true,
		Steps: []pipelinecat.Step{
			{ID: "sync_cables", Kind: pipelinecat.KindSync, Target: "cables", Enabled: true},
		},
	}
	collector := &fakeCollector{}
	syncer := &fakeSyncer{}
	exec := &Executor{Collector: collector, Syncer: syncer}

	exec.Run(context.Background(), p, NewRunContext(nil, fleetdevice.Credentials{}, nil, false))

	if len(collector.calls) != 1 || collector.calls[0] != "neighbors" {
		t.Fatalf("expected cables sync to implicitly collect neighbors, got %v", collector.calls)
	}
}

func TestRunPipelineDependencyGateSkipsUnmetStep(t *testing.T) {
	p := &pipelinecat.Pipeline{
		ID:      "p1",
		Enabled: true,
		Steps: []pipelinecat.Step{
			{ID: "collect_if", Kind: pipelinecat.KindCollect, Target: "interfaces", Enabled: false},
			{ID: "sync_if", Kind: pipelinecat.KindSync, Target: "interfaces", Enabled: true, DependsOn: []string{"collect_if"}},
		},
	}
	exec := &Executor{Collector: &fakeCollector{}, Syncer: &fakeSyncer{}}
	result := exec.Run(context.Background(), p, NewRunContext(nil, fleetdevice.Credentials{}, nil, false))

	if len(result.Steps) != 1 || result.Steps[0].Status != StepSkipped {
		t.Fatalf("expected sync_if to be skipped for unmet dependency, got %+v", result.Steps)
	}
	if result.Status != PipelineCompleted {
		t.Fatalf("a skipped step must not abort the pipeline, got %s", result.Status)
	}
}

func TestRunPipelineFailedStepAbortsRemainingSteps(t *testing.T) {
	p := &pipelinecat.Pipeline{
		ID:      "p1",
		Enabled: true,
		Steps: []pipelinecat.Step{
			{ID: "collect_if", Kind: pipelinecat.KindCollect, Target: "interfaces", Enabled: true},
			{ID: "export_if", Kind: pipelinecat.KindExport, Target: "interfaces", Enabled: true, DependsOn: []string{"collect_if"}},
		},
	}
	collector := &fakeCollector{err: errors.New("ssh timeout")}
	exec := &Executor{Collector: collector}
	result := exec.Run(context.Background(), p, NewRunContext(nil, fleetdevice.Credentials{}, nil, false))

	if result.Status != PipelineFailed {
		t.Fatalf("expected failed pipeline, got %s", result.Status)
	}
	if len(result.Steps) != 1 {
		t.Fatalf("expected the export step to never run after the collect step failed, got %+v", result.Steps)
	}
}

func TestRunPipelineCancellationStopsBeforeNextStep(t *testing.T) {
	p := &pipelinecat.Pipeline{
		ID:      "p1",
		Enabled: true,
		Steps: []pipelinecat.Step{
			{ID: "step1", Kind: pipelinecat.KindCollect, Target: "interfaces", Enabled: true},
			{ID: "step2", Kind: pipelinecat.KindCollect, Target: "inventory", Enabled: true},
			{ID: "step3", Kind: pipelinecat.KindCollect, Target: "mac", Enabled: true},
		},
	}
	mgr := task.NewManager(0)
	taskID := mgr.Create("pipeline", 3)
	_ = mgr.Start(taskID)
	ctx, _ := mgr.Context(taskID)

	collector := &cancelAfterOneCollector{cancel: func() { _ = mgr.Cancel(taskID) }}
	exec := &Executor{Collector: collector}
	result := exec.Run(ctx, p, NewRunContext(nil, fleetdevice.Credentials{}, nil, false))

	if result.Status != PipelineCancelled {
		t.Fatalf("expected cancelled pipeline, got %s", result.Status)
	}
	if len(result.Steps) != 1 || result.Steps[0].StepID != "step1" {
		t.Fatalf("expected only step1's result to be recorded, got %+v", result.Steps)
	}

	snap, err := mgr.Get(taskID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Status != task.Cancelled {
		t.Fatalf("expected task status cancelled, got %s", snap.Status)
	}
}

type cancelAfterOneCollector struct {
	n      int
	cancel func()
}

func (c *cancelAfterOneCollector) Collect(ctx context.Context, target string, rc *RunContext) (any, error) {
	c.n++
	if c.n == 1 {
		c.cancel()
	}
	return target + "-data", nil
}

func TestRunPipelineValidationFailureYieldsSyntheticStep(t *testing.T) {
	p := &pipelinecat.Pipeline{
		ID: "p1",
		Steps: []pipelinecat.Step{
			{ID: "a", DependsOn: []string{"ghost"}},
		},
	}
	exec := &Executor{}
	result := exec.Run(context.Background(), p, NewRunContext(nil, fleetdevice.Credentials{}, nil, false))

	if result.Status != PipelineFailed {
		t.Fatalf("expected failed pipeline, got %s", result.Status)
	}
	if len(result.Steps) != 1 || result.Steps[0].StepID != "validation" {
		t.Fatalf("expected a synthetic validation step, got %+v", result.Steps)
	}
}

func TestTaskObserverReportsProgress(t *testing.T) {
	mgr := task.NewManager(0)
	taskID := mgr.Create("pipeline", 2)
	_ = mgr.Start(taskID)

	obs := NewTaskObserver(mgr, taskID, 2)
	obs.OnStepStart(pipelinecat.Step{ID: "a"})
	obs.OnStepComplete(pipelinecat.Step{ID: "a"}, StepResult{Status: StepCompleted})

	snap, _ := mgr.Get(taskID)
	if snap.ProgressPercent != 50 {
		t.Fatalf("expected 50%% progress after one of two steps, got %v", snap.ProgressPercent)
	}
}
