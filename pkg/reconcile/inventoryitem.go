package reconcile

import (
	"context"
	"fmt"

	"github.com/fleetsync/fleetsync/internal/logging"
	"github.com/fleetsync/fleetsync/pkg/diff"
	"github.com/fleetsync/fleetsync/pkg/fields"
	"github.com/fleetsync/fleetsync/pkg/model"
)

// InventorySyncer reconciles hardware component records via full batch
// create/update/delete
type InventorySyncer struct {
	*SyncCore
}

func NewInventorySyncer(core *SyncCore) *InventorySyncer {
	return &InventorySyncer{SyncCore: core}
}

type InventorySyncOptions struct {
	DeviceRemoteID func(deviceHostname string) (string, bool)
	Cleanup        bool
}

type inventoryItemRecord struct{ item model.InventoryItem }

func (r inventoryItemRecord) Key() string { return r.item.Device + ":" + r.item.Serial }

func (r inventoryItemRecord) Field(name string) diff.Value {
	switch name {
	case "component_type":
		return present(string(r.item.ComponentType))
	case "serial":
		return present(r.item.Serial)
	case "part_id":
		return present(r.item.PartID)
	case "description":
		return present(r.item.Description)
	default:
		return diff.Value{}
	}
}

func (s *InventorySyncer) Sync(ctx context.Context, scope Scope, items []model.InventoryItem, opts InventorySyncOptions) (Stats, error) {
	var stats Stats

	remote, err := s.Client.ListRemote(ctx, KindInventoryItem, scope)
	if err != nil {
		return stats, fmt.Errorf("list remote inventory items: %w", err)
	}

	registry := fields.DefaultInventoryRegistry()
	localRecords := make([]diff.Record, len(items))
	byKey := make(map[string]model.InventoryItem, len(items))
	for i, it := range items {
		localRecords[i] = inventoryItemRecord{it}
		byKey[inventoryItemRecord{it}.Key()] = it
	}
	remoteRecords := make([]diff.Record, len(remote))
	for i, r := range remote {
		remoteRecords[i] = r
	}

	plan := diff.Compute(localRecords, remoteRecords, diff.Options{
		CreateMissing:  true,
		UpdateExisting: true,
		Cleanup:        opts.Cleanup,
		CompareFields:  registry.CompareFields,
		ClearOnEmpty:   registry.ClearOnEmpty,
	})
	stats.Skipped += len(plan.ToSkip)

	var createPayloads []map[string]string
	for _, item := range plan.ToCreate {
		it := byKey[item.Name]
		deviceID, ok := opts.DeviceRemoteID(it.Device)
		if !ok {
			stats.Failed++
			stats.detail("inventory item %s: owning device not yet synced remotely", item.Name)
			continue
		}
		createPayloads = append(createPayloads, map[string]string{
			"device_id":      deviceID,
			"device_key":     it.Device,
			"name":           it.Name,
			"serial":         it.Serial,
			"component_type": string(it.ComponentType),
			"part_id":        it.PartID,
			"description":    it.Description,
		})
	}
	BatchWithFallback(ctx, createPayloads, s.DryRun,
		func(ctx context.Context, items []map[string]string) error {
			_, err := s.Client.BulkCreate(ctx, KindInventoryItem, items)
			return err
		},
		func(ctx context.Context, item map[string]string) error {
			_, err := s.Client.Create(ctx, KindInventoryItem, item)
			return err
		},
		func(item map[string]string) { stats.Created++ },
		func(item map[string]string, err error) {
			stats.Failed++
			stats.detail("inventory item %s: create failed: %v", item["serial"], err)
		},
	)

	var updateItems []BulkUpdateItem
	updateLabels := map[string]string{}
	for _, item := range plan.ToUpdate {
		remoteObj := item.Remote.(RemoteObject)
		payload := make(map[string]string, len(item.FieldChanges))
		for _, fc := range item.FieldChanges {
			payload[fc.Field] = fc.NewValue
		}
		updateItems = append(updateItems, BulkUpdateItem{ID: remoteObj.ID, Fields: payload})
		updateLabels[remoteObj.ID] = item.Name
	}
	BatchWithFallback(ctx, updateItems, s.DryRun,
		func(ctx context.Context, items []BulkUpdateItem) error {
			_, err := s.Client.BulkUpdate(ctx, KindInventoryItem, items)
			return err
		},
		func(ctx context.Context, item BulkUpdateItem) error {
			_, err := s.Client.Update(ctx, KindInventoryItem, item.ID, item.Fields)
			return err
		},
		func(item BulkUpdateItem) { stats.Updated++ },
		func(item BulkUpdateItem, err error) {
			stats.Failed++
			stats.detail("inventory item %s: update failed: %v", updateLabels[item.ID], err)
		},
	)

	var deleteIDs []string
	deleteLabels := map[string]string{}
	for _, item := range plan.ToDelete {
		remoteObj := item.Remote.(RemoteObject)
		deleteIDs = append(deleteIDs, remoteObj.ID)
		deleteLabels[remoteObj.ID] = item.Name
	}
	BatchWithFallback(ctx, deleteIDs, s.DryRun,
		func(ctx context.Context, ids []string) error { return s.Client.BulkDelete(ctx, KindInventoryItem, ids) },
		func(ctx context.Context, id string) error { return s.Client.Delete(ctx, KindInventoryItem, id) },
		func(id string) { stats.Deleted++ },
		func(id string, err error) {
			stats.Failed++
			stats.detail("inventory item %s: delete failed: %v", deleteLabels[id], err)
		},
	)

	logging.WithOperation("sync_inventory").Infof("created=%d updated=%d deleted=%d skipped=%d failed=%d",
		stats.Created, stats.Updated, stats.Deleted, stats.Skipped, stats.Failed)
	return stats, nil
}
