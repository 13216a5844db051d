package reconcile

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/fleetsync/fleetsync/internal/logging"
	"github.com/fleetsync/fleetsync/pkg/diff"
	"github.com/fleetsync/fleetsync/pkg/fields"
	"github.com/fleetsync/fleetsync/pkg/model"
)

// InterfaceSyncer reconciles normalized interfaces against the remote
// inventory's interface objects.
type InterfaceSyncer struct {
	*SyncCore
}

func NewInterfaceSyncer(core *SyncCore) *InterfaceSyncer {
	return &InterfaceSyncer{SyncCore: core}
}

// InterfaceSyncOptions carries the device-name-to-remote-id resolution a
// caller must already know (from a prior DeviceSyncer pass) plus the
// excluded-interface regex list.
type InterfaceSyncOptions struct {
	DeviceRemoteID func(deviceHostname string) (string, bool)
	ExcludeRegexes []*regexp.Regexp
	Cleanup        bool
}

type interfaceRecord struct{ iface model.Interface }

func (r interfaceRecord) Key() string { return r.iface.DeviceHostname + ":" + r.iface.Name }

func intOrEmpty(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

func (r interfaceRecord) Field(name string) diff.Value {
	switch name {
	case "description":
		return present(r.iface.Description)
	case "enabled":
		return present(strconv.FormatBool(r.iface.Enabled))
	case "mtu":
		return present(intOrEmpty(r.iface.MTU))
	case "speed":
		return present(r.iface.Speed)
	case "duplex":
		return present(r.iface.Duplex)
	case "mode":
		return present(string(r.iface.Mode))
	case "access_vlan":
		return present(intOrEmpty(r.iface.AccessVLAN))
	case "allowed_vlans":
		strs := make([]string, len(r.iface.AllowedVLANs))
		for i, v := range r.iface.AllowedVLANs {
			strs[i] = strconv.Itoa(v)
		}
		return present(strings.Join(strs, ","))
	case "lag_parent":
		return present(r.iface.LAGParent)
	default:
		return diff.Value{}
	}
}

// Sync reconciles interfaces. lag_parent linkage is resolved in a second
// pass after every interface in the batch has a remote id, since the
// parent's remote id must exist before a member can be pointed at it.
func (s *InterfaceSyncer) Sync(ctx context.Context, scope Scope, interfaces []model.Interface, opts InterfaceSyncOptions) (Stats, error) {
	var stats Stats

	kept := make([]model.Interface, 0, len(interfaces))
	for _, iface := range interfaces {
		if isExcludedName(iface.Name, opts.ExcludeRegexes) {
			stats.Skipped++
			continue
		}
		kept = append(kept, iface)
	}

	remote, err := s.Client.ListRemote(ctx, KindInterface, scope)
	if err != nil {
		return stats, fmt.Errorf("list remote interfaces: %w", err)
	}

	registry := fields.DefaultInterfaceRegistry()
	compareFields := make([]string, 0, len(registry.CompareFields))
	for _, f := range registry.CompareFields {
		if f != "lag_parent" {
			compareFields = append(compareFields, f)
		}
	}

	localRecords := make([]diff.Record, len(kept))
	byKey := make(map[string]model.Interface, len(kept))
	for i, iface := range kept {
		localRecords[i] = interfaceRecord{iface}
		byKey[interfaceRecord{iface}.Key()] = iface
	}
	remoteRecords := make([]diff.Record, len(remote))
	for i, r := range remote {
		remoteRecords[i] = r
	}

	plan := diff.Compute(localRecords, remoteRecords, diff.Options{
		CreateMissing:  true,
		UpdateExisting: true,
		Cleanup:        opts.Cleanup,
		CompareFields:  compareFields,
		ClearOnEmpty:   registry.ClearOnEmpty,
	})
	stats.Skipped += len(plan.ToSkip)

	resolvedID := make(map[string]string, len(kept))

	for _, item := range plan.ToSkip {
		if remoteObj, ok := item.Remote.(RemoteObject); ok {
			resolvedID[item.Name] = remoteObj.ID
		}
	}

	for _, item := range plan.ToCreate {
		iface := byKey[item.Name]
		deviceID, ok := opts.DeviceRemoteID(iface.DeviceHostname)
		if !ok {
			stats.Failed++
			stats.detail("interface %s: owning device not yet synced remotely", item.Name)
			continue
		}
		payload := interfaceCreatePayload(iface, deviceID)
		if s.DryRun {
			stats.Created++
			stats.detail("[DRY-RUN] would create interface %s", item.Name)
			continue
		}
		obj, err := s.Client.Create(ctx, KindInterface, payload)
		if err != nil {
			stats.Failed++
			stats.detail("interface %s: create failed: %v", item.Name, err)
			continue
		}
		resolvedID[item.Name] = obj.ID
		s.assignMACIfPresent(ctx, obj.ID, iface.MAC, item.Name, &stats)
		stats.Created++
		stats.detail("created interface %s", item.Name)
	}

	for _, item := range plan.ToUpdate {
		remoteObj := item.Remote.(RemoteObject)
		resolvedID[item.Name] = remoteObj.ID
		if s.DryRun {
			stats.Updated++
			stats.detail("[DRY-RUN] would update interface %s (%d fields)", item.Name, len(item.FieldChanges))
			continue
		}
		payload := make(map[string]string, len(item.FieldChanges))
		for _, fc := range item.FieldChanges {
			payload[fc.Field] = fc.NewValue
		}
		if _, err := s.Client.Update(ctx, KindInterface, remoteObj.ID, payload); err != nil {
			stats.Failed++
			stats.detail("interface %s: update failed: %v", item.Name, err)
			continue
		}
		s.assignMACIfPresent(ctx, remoteObj.ID, byKey[item.Name].MAC, item.Name, &stats)
		stats.Updated++
		stats.detail("updated interface %s (%d fields)", item.Name, len(item.FieldChanges))
	}

	for _, item := range plan.ToDelete {
		remoteObj := item.Remote.(RemoteObject)
		if s.DryRun {
			stats.Deleted++
			stats.detail("[DRY-RUN] would delete interface %s", item.Name)
			continue
		}
		if err := s.Client.Delete(ctx, KindInterface, remoteObj.ID); err != nil {
			stats.Failed++
			stats.detail("interface %s: delete failed: %v", item.Name, err)
			continue
		}
		stats.Deleted++
		stats.detail("deleted interface %s", item.Name)
	}

	s.resolveLAGParents(ctx, kept, byKey, resolvedID, &stats)

	logging.WithOperation("sync_interfaces").Infof("created=%d updated=%d deleted=%d skipped=%d failed=%d",
		stats.Created, stats.Updated, stats.Deleted, stats.Skipped, stats.Failed)
	return stats, nil
}

func (s *InterfaceSyncer) resolveLAGParents(ctx context.Context, kept []model.Interface, byKey map[string]model.Interface, resolvedID map[string]string, stats *Stats) {
	// Deterministic order for test stability.
	names := make([]string, 0, len(kept))
	for _, iface := range kept {
		if iface.LAGParent != "" {
			names = append(names, interfaceRecord{iface}.Key())
		}
	}
	sort.Strings(names)

	for _, key := range names {
		iface := byKey[key]
		parentKey := iface.DeviceHostname + ":" + iface.LAGParent
		if parentKey == key {
			stats.Skipped++
			stats.detail("interface %s: self-referential LAG parent, skipped", key)
			logging.WithOperation("sync_interfaces").Warnf("interface %s declares itself as its own LAG parent", key)
			continue
		}
		if parent, ok := byKey[parentKey]; ok && parent.LAGParent == iface.Name {
			stats.Skipped++
			stats.detail("interfaces %s and %s have circular LAG parenting, skipped", key, parentKey)
			logging.WithOperation("sync_interfaces").Warnf("circular LAG parenting between %s and %s", key, parentKey)
			continue
		}
		memberID, memberOK := resolvedID[key]
		parentID, parentOK := resolvedID[parentKey]
		if !memberOK || !parentOK {
			stats.Skipped++
			stats.detail("interface %s: LAG parent %s not resolved remotely, skipped", key, iface.LAGParent)
			continue
		}
		if s.DryRun {
			stats.detail("[DRY-RUN] would link %s to LAG parent %s", key, iface.LAGParent)
			continue
		}
		if _, err := s.Client.Update(ctx, KindInterface, memberID, map[string]string{"lag_id": parentID}); err != nil {
			stats.Failed++
			stats.detail("interface %s: LAG link failed: %v", key, err)
			continue
		}
		stats.detail("linked %s to LAG parent %s", key, iface.LAGParent)
	}
}

func interfaceCreatePayload(iface model.Interface, deviceID string) map[string]string {
	return map[string]string{
		"device_id":   deviceID,
		"device_key":  iface.DeviceHostname,
		"name":        iface.Name,
		"description": iface.Description,
		"enabled":     strconv.FormatBool(iface.Enabled),
		"mtu":         intOrEmpty(iface.MTU),
		"speed":       iface.Speed,
		"duplex":      iface.Duplex,
		"mode":        string(iface.Mode),
		"access_vlan": intOrEmpty(iface.AccessVLAN),
	}
}

// assignMACIfPresent pushes the interface's MAC through the dedicated
// post-create side channel, rather than embedding it in the create/update
// payload.
func (s *InterfaceSyncer) assignMACIfPresent(ctx context.Context, remoteID, mac, key string, stats *Stats) {
	if mac == "" {
		return
	}
	if s.DryRun {
		stats.detail("[DRY-RUN] would assign MAC %s to %s", mac, key)
		return
	}
	if err := s.Client.AssignMAC(ctx, remoteID, mac); err != nil {
		stats.detail("interface %s: MAC assignment failed: %v", key, err)
	}
}

func isExcludedName(name string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(name) {
			return true
		}
	}
	return false
}
