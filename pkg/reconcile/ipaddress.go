package reconcile

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fleetsync/fleetsync/internal/logging"
	"github.com/fleetsync/fleetsync/pkg/diff"
	"github.com/fleetsync/fleetsync/pkg/model"
)

// IPAddressSyncer reconciles interface IP bindings. Creates and deletes go
// through the batch-with-fallback path; updates stay per-item since a
// mask change may require the remote side to delete and recreate the
// object rather than patch it in place
type IPAddressSyncer struct {
	*SyncCore
}

func NewIPAddressSyncer(core *SyncCore) *IPAddressSyncer {
	return &IPAddressSyncer{SyncCore: core}
}

type IPAddressSyncOptions struct {
	InterfaceRemoteID func(deviceHostname, interfaceShort string) (string, bool)
}

type ipBindingRecord struct{ binding model.IPBinding }

func (r ipBindingRecord) Key() string {
	return r.binding.Device + ":" + r.binding.InterfaceShort + ":" + r.binding.AddressCIDR
}

func (r ipBindingRecord) Field(name string) diff.Value {
	if name == "is_primary" {
		return present(strconv.FormatBool(r.binding.IsPrimary))
	}
	return diff.Value{}
}

func (s *IPAddressSyncer) Sync(ctx context.Context, scope Scope, bindings []model.IPBinding, opts IPAddressSyncOptions) (Stats, error) {
	var stats Stats

	remote, err := s.Client.ListRemote(ctx, KindIPAddress, scope)
	if err != nil {
		return stats, fmt.Errorf("list remote ip addresses: %w", err)
	}

	localRecords := make([]diff.Record, len(bindings))
	byKey := make(map[string]model.IPBinding, len(bindings))
	for i, b := range bindings {
		localRecords[i] = ipBindingRecord{b}
		byKey[ipBindingRecord{b}.Key()] = b
	}
	remoteRecords := make([]diff.Record, len(remote))
	for i, r := range remote {
		remoteRecords[i] = r
	}

	plan := diff.Compute(localRecords, remoteRecords, diff.Options{
		CreateMissing:  true,
		UpdateExisting: true,
		Cleanup:        true,
		CompareFields:  []string{"is_primary"},
	})
	stats.Skipped += len(plan.ToSkip)

	var createPayloads []map[string]string
	for _, item := range plan.ToCreate {
		binding := byKey[item.Name]
		ifaceID, ok := opts.InterfaceRemoteID(binding.Device, binding.InterfaceShort)
		if !ok {
			stats.Failed++
			stats.detail("ip %s: owning interface not yet synced remotely", item.Name)
			continue
		}
		createPayloads = append(createPayloads, map[string]string{
			"address":      binding.AddressCIDR,
			"interface_id": ifaceID,
			"is_primary":   strconv.FormatBool(binding.IsPrimary),
		})
	}
	BatchWithFallback(ctx, createPayloads, s.DryRun,
		func(ctx context.Context, items []map[string]string) error {
			_, err := s.Client.BulkCreate(ctx, KindIPAddress, items)
			return err
		},
		func(ctx context.Context, item map[string]string) error {
			_, err := s.Client.Create(ctx, KindIPAddress, item)
			return err
		},
		func(item map[string]string) { stats.Created++ },
		func(item map[string]string, err error) {
			stats.Failed++
			stats.detail("ip %s: create failed: %v", item["address"], err)
		},
	)

	for _, item := range plan.ToUpdate {
		remoteObj := item.Remote.(RemoteObject)
		if s.DryRun {
			stats.Updated++
			stats.detail("[DRY-RUN] would update ip %s", item.Name)
			continue
		}
		payload := make(map[string]string, len(item.FieldChanges))
		for _, fc := range item.FieldChanges {
			payload[fc.Field] = fc.NewValue
		}
		if _, err := s.Client.Update(ctx, KindIPAddress, remoteObj.ID, payload); err != nil {
			stats.Failed++
			stats.detail("ip %s: update failed: %v", item.Name, err)
			continue
		}
		stats.Updated++
		stats.detail("updated ip %s", item.Name)
	}

	var deleteIDs []string
	deleteNames := map[string]string{}
	for _, item := range plan.ToDelete {
		remoteObj := item.Remote.(RemoteObject)
		deleteIDs = append(deleteIDs, remoteObj.ID)
		deleteNames[remoteObj.ID] = item.Name
	}
	BatchWithFallback(ctx, deleteIDs, s.DryRun,
		func(ctx context.Context, ids []string) error { return s.Client.BulkDelete(ctx, KindIPAddress, ids) },
		func(ctx context.Context, id string) error { return s.Client.Delete(ctx, KindIPAddress, id) },
		func(id string) { stats.Deleted++ },
		func(id string, err error) {
			stats.Failed++
			stats.detail("ip %s: delete failed: %v", deleteNames[id], err)
		},
	)

	logging.WithOperation("sync_ip_addresses").Infof("created=%d updated=%d deleted=%d skipped=%d failed=%d",
		stats.Created, stats.Updated, stats.Deleted, stats.Skipped, stats.Failed)
	return stats, nil
}
