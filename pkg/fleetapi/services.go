package fleetapi

import (
	"context"
	"fmt"

	"github.com/fleetsync/fleetsync/pkg/collect"
	"github.com/fleetsync/fleetsync/pkg/fleetdevice"
	"github.com/fleetsync/fleetsync/pkg/history"
	"github.com/fleetsync/fleetsync/pkg/pipeline"
	"github.com/fleetsync/fleetsync/pkg/pipelinecat"
	"github.com/fleetsync/fleetsync/pkg/reconcile"
	"github.com/fleetsync/fleetsync/pkg/statecache"
	"github.com/fleetsync/fleetsync/pkg/task"
)

// runAsyncOrSync is the shared "either run inline or hand back a task id"
// plumbing every service below needs.
func runAsyncOrSync(manager *task.Manager, kind string, async bool, run func(ctx context.Context) (any, error)) (AsyncResult, error) {
	if !async {
		result, err := run(context.Background())
		if err != nil {
			return AsyncResult{}, err
		}
		return AsyncResult{Result: result}, nil
	}

	taskID := manager.CreateWithTags(kind, 0, map[string]string{"triggered_by": "api"})
	ctx, err := manager.Context(taskID)
	if err != nil {
		return AsyncResult{}, err
	}
	go func() {
		if err := manager.Start(taskID); err != nil {
			return
		}
		result, err := run(ctx)
		if err != nil {
			_ = manager.Fail(taskID, err)
			return
		}
		_ = manager.Complete(taskID, result)
	}()
	return AsyncResult{Async: true, TaskID: taskID}, nil
}

// CollectServiceImpl implements CollectService over PipelineCollector,
// dispatching async runs through a shared task.Manager.
type CollectServiceImpl struct {
	Manager *task.Manager
	// Cache, when non-nil, is shared across every Collect call so repeated
	// requests against an unchanged device within its TTL skip the device.
	Cache *statecache.Client
}

func (c *CollectServiceImpl) Collect(ctx context.Context, kind string, devices []*fleetdevice.Device, opts CollectOptions, async bool) (AsyncResult, error) {
	collector := PipelineCollector{Options: collect.Options{Credentials: opts.Credentials, MaxWorkers: opts.MaxWorkers, Cache: c.Cache}}
	run := func(runCtx context.Context) (any, error) {
		rc := pipeline.NewRunContext(devices, opts.Credentials, nil, false)
		return collector.Collect(runCtx, kind, rc)
	}
	if !async {
		result, err := run(ctx)
		if err != nil {
			return AsyncResult{}, err
		}
		return AsyncResult{Result: result}, nil
	}
	return runAsyncOrSync(c.Manager, "collect_"+kind, async, run)
}

// SyncServiceImpl implements SyncService over reconcile.SyncAll.
type SyncServiceImpl struct {
	Manager *task.Manager
	Core    *reconcile.SyncCore
}

func (s *SyncServiceImpl) Sync(ctx context.Context, data reconcile.AllData, flags SyncFlags, dryRun, async bool) (AsyncResult, error) {
	core := s.Core
	core.DryRun = dryRun
	opts := flags.Options
	opts.Scope = flags.Scope
	run := func(runCtx context.Context) (any, error) {
		return reconcile.SyncAll(runCtx, core, data, opts), nil
	}
	if !async {
		result, err := run(ctx)
		if err != nil {
			return AsyncResult{}, err
		}
		return AsyncResult{Result: result}, nil
	}
	return runAsyncOrSync(s.Manager, "sync_all", async, run)
}

// PipelineServiceImpl implements PipelineService over pkg/pipelinecat's
// catalog and pkg/pipeline's executor.
type PipelineServiceImpl struct {
	Catalog   *pipelinecat.Catalog
	Manager   *task.Manager
	Collector pipeline.Collector
	Syncer    pipeline.Syncer
	Exporter  pipeline.Exporter
}

func (p *PipelineServiceImpl) List(ctx context.Context) ([]*pipelinecat.Pipeline, error) {
	return p.Catalog.List(), nil
}

func (p *PipelineServiceImpl) Get(ctx context.Context, id string) (*pipelinecat.Pipeline, error) {
	pl, ok := p.Catalog.Get(id)
	if !ok {
		return nil, fmt.Errorf("pipeline %q not found", id)
	}
	return pl, nil
}

func (p *PipelineServiceImpl) Validate(ctx context.Context, pl *pipelinecat.Pipeline) error {
	return pipelinecat.Validate(pl)
}

func (p *PipelineServiceImpl) Create(ctx context.Context, pl *pipelinecat.Pipeline) error {
	if err := pipelinecat.Validate(pl); err != nil {
		return err
	}
	return p.Catalog.Save(pl)
}

func (p *PipelineServiceImpl) Delete(ctx context.Context, id string) error {
	return p.Catalog.Delete(id)
}

func (p *PipelineServiceImpl) Run(ctx context.Context, id string, devices []*fleetdevice.Device, dryRun, async bool) (AsyncResult, error) {
	pl, ok := p.Catalog.Get(id)
	if !ok {
		return AsyncResult{}, fmt.Errorf("pipeline %q not found", id)
	}

	enabledSteps := 0
	for _, step := range pl.Steps {
		if step.Enabled {
			enabledSteps++
		}
	}

	run := func(runCtx context.Context) (any, error) {
		exec := &pipeline.Executor{Collector: p.Collector, Syncer: p.Syncer, Exporter: p.Exporter}
		rc := pipeline.NewRunContext(devices, fleetdevice.Credentials{}, nil, dryRun)
		return exec.Run(runCtx, pl, rc), nil
	}

	if !async {
		result, err := run(ctx)
		if err != nil {
			return AsyncResult{}, err
		}
		return AsyncResult{Result: result}, nil
	}

	taskID := p.Manager.CreateWithTags("pipeline_run", enabledSteps, map[string]string{
		"triggered_by": "api",
		"pipeline_id":  id,
	})
	taskCtx, err := p.Manager.Context(taskID)
	if err != nil {
		return AsyncResult{}, err
	}
	go func() {
		if err := p.Manager.Start(taskID); err != nil {
			return
		}
		exec := &pipeline.Executor{
			Collector: p.Collector,
			Syncer:    p.Syncer,
			Exporter:  p.Exporter,
			Observer:  pipeline.NewTaskObserver(p.Manager, taskID, enabledSteps),
		}
		rc := pipeline.NewRunContext(devices, fleetdevice.Credentials{}, nil, dryRun)
		result := exec.Run(taskCtx, pl, rc)
		if result.Status == pipeline.PipelineFailed {
			_ = p.Manager.Fail(taskID, fmt.Errorf("pipeline %s failed", id))
			return
		}
		_ = p.Manager.Complete(taskID, result)
	}()
	return AsyncResult{Async: true, TaskID: taskID}, nil
}

// TaskServiceImpl implements TaskService over task.Manager, adapting its
// context-free Cancel to TaskService's context-carrying method set.
type TaskServiceImpl struct {
	Manager *task.Manager
}

func (t TaskServiceImpl) Get(ctx context.Context, id string) (task.Task, error) {
	return t.Manager.Get(id)
}

func (t TaskServiceImpl) Cancel(ctx context.Context, id string) error {
	return t.Manager.Cancel(id)
}

// HistoryServiceImpl implements HistoryService over history.Store.
type HistoryServiceImpl struct {
	Store *history.Store
}

func (h HistoryServiceImpl) List(ctx context.Context, filter history.Filter, limit, offset int) ([]history.Entry, int, error) {
	entries, total := h.Store.List(filter, limit, offset)
	return entries, total, nil
}

func (h HistoryServiceImpl) Stats(ctx context.Context) (history.Stats, error) {
	return h.Store.Stats(), nil
}

var (
	_ CollectService  = (*CollectServiceImpl)(nil)
	_ SyncService     = (*SyncServiceImpl)(nil)
	_ PipelineService = (*PipelineServiceImpl)(nil)
	_ TaskService     = TaskServiceImpl{}
	_ HistoryService  = HistoryServiceImpl{}
)
