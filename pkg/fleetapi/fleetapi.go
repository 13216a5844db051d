// Package fleetapi defines the plain Go interfaces the HTTP and CLI
// adapters drive: one small interface per operation group (collect, sync,
// pipeline, task, history), each a set of method signatures an adapter
// maps routes or subcommands onto — nothing here touches net/http;
// cmd/fleetsyncd owns that mapping.
package fleetapi

import (
	"context"

	"github.com/fleetsync/fleetsync/pkg/fleetdevice"
	"github.com/fleetsync/fleetsync/pkg/history"
	"github.com/fleetsync/fleetsync/pkg/model"
	"github.com/fleetsync/fleetsync/pkg/pipelinecat"
	"github.com/fleetsync/fleetsync/pkg/reconcile"
	"github.com/fleetsync/fleetsync/pkg/task"
)

// AsyncResult is the uniform "either the full result or {task_id}" shape
// every long-running operation returns: when Async is false, Result
// carries the finished payload synchronously; when true, TaskID names a
// task.Manager entry the caller polls via TaskService.Get.
type AsyncResult struct {
	Async  bool
	TaskID string
	Result any
}

// CollectOptions carries the per-call knobs a collect operation needs,
// independent of any one collector's concrete Options struct.
type CollectOptions struct {
	Credentials fleetdevice.Credentials
	MaxWorkers  int
}

// CollectService exposes one collection run per domain kind ("mac",
// "neighbors", "interfaces", "inventory", "backup", "device"), keyed by name
// rather than by one method per kind so the HTTP adapter's
// POST /collect/{kind} route can dispatch generically.
type CollectService interface {
	Collect(ctx context.Context, kind string, devices []*fleetdevice.Device, opts CollectOptions, async bool) (AsyncResult, error)
}

// SyncFlags carries the per-kind sync options and scope a "sync all" (or
// sync-netbox) call needs.
type SyncFlags struct {
	Scope   reconcile.Scope
	Options reconcile.AllOptions
}

// SyncService runs reconciliation against the remote inventory.
type SyncService interface {
	Sync(ctx context.Context, data reconcile.AllData, flags SyncFlags, dryRun, async bool) (AsyncResult, error)
}

// PipelineService manages the pipeline catalog and runs pipelines.
type PipelineService interface {
	List(ctx context.Context) ([]*pipelinecat.Pipeline, error)
	Get(ctx context.Context, id string) (*pipelinecat.Pipeline, error)
	Validate(ctx context.Context, p *pipelinecat.Pipeline) error
	Create(ctx context.Context, p *pipelinecat.Pipeline) error
	Delete(ctx context.Context, id string) error
	Run(ctx context.Context, id string, devices []*fleetdevice.Device, dryRun, async bool) (AsyncResult, error)
}

// TaskService exposes the background task registry.
type TaskService interface {
	Get(ctx context.Context, id string) (task.Task, error)
	Cancel(ctx context.Context, id string) error
}

// HistoryService exposes the audit trail.
type HistoryService interface {
	List(ctx context.Context, filter history.Filter, limit, offset int) ([]history.Entry, int, error)
	Stats(ctx context.Context) (history.Stats, error)
}

// NeighborSyncInput bundles what match-mac / push-descriptions style
// operations need beyond a plain collect: the collected records to
// correlate against each other or against the remote inventory.
type NeighborSyncInput struct {
	Neighbors  []model.NeighborRecord
	Interfaces []model.Interface
	MACEntries []model.MACEntry
}
