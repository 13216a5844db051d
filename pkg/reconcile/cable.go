package reconcile

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/fleetsync/fleetsync/internal/logging"
	"github.com/fleetsync/fleetsync/pkg/model"
	"github.com/fleetsync/fleetsync/pkg/normalize"
)

// CableSyncer reconciles observed link-layer neighbors into remote cable
// objects. Unlike the batch syncers, cables are processed one at a time —
// each link needs enough independent validation (local/remote device and
// interface resolution, LAG and existing-cable checks) that a structural
// diff pass buys nothing.
type CableSyncer struct {
	*SyncCore
}

func NewCableSyncer(core *SyncCore) *CableSyncer {
	return &CableSyncer{SyncCore: core}
}

type CableSyncOptions struct {
	SkipUnknown bool
	Cleanup     bool
	// ScopeDeviceIDs lists the remote device ids present in the current
	// scan; cleanup only ever deletes a cable whose both endpoints belong
	// to this set — an endpoint outside the current scan is never deleted,
	// regardless of cleanup.
	ScopeDeviceIDs []string
	DeviceRemoteID func(deviceHostname string) (string, bool)
}

// cableKey derives the dedup key for an undirected link: the sorted pair
// of "hostname:interface" endpoints joined by "|".
func cableKey(hostA, intfA, hostB, intfB string) string {
	pair := []string{hostA + ":" + intfA, hostB + ":" + intfB}
	sort.Strings(pair)
	return strings.Join(pair, "|")
}

func domainStripped(hostname string) string {
	if i := strings.IndexByte(hostname, '.'); i >= 0 {
		return hostname[:i]
	}
	return hostname
}

func isLAGInterfaceName(canonical string) bool {
	return strings.HasPrefix(canonical, "Po")
}

func (s *CableSyncer) resolveRemoteDevice(ctx context.Context, n model.NeighborRecord) (RemoteObject, error) {
	tryName := func() (RemoteObject, bool, error) {
		return s.resolveDeviceByName(ctx, domainStripped(n.RemoteHostname))
	}
	tryIP := func() (RemoteObject, bool, error) { return s.resolveDeviceByIP(ctx, n.RemoteIP) }
	tryMAC := func() (RemoteObject, bool, error) { return s.resolveDeviceByMAC(ctx, n.RemoteMAC) }

	var chain []func() (RemoteObject, bool, error)
	switch n.NeighborType {
	case model.NeighborHostname:
		chain = []func() (RemoteObject, bool, error){tryName, tryIP, tryMAC}
	case model.NeighborMAC:
		chain = []func() (RemoteObject, bool, error){tryMAC, tryIP}
	case model.NeighborIP:
		chain = []func() (RemoteObject, bool, error){tryIP, tryMAC}
	default:
		chain = []func() (RemoteObject, bool, error){tryIP, tryMAC}
	}

	for _, try := range chain {
		obj, found, err := try()
		if err != nil {
			return RemoteObject{}, err
		}
		if found {
			return obj, nil
		}
	}
	return RemoteObject{}, fmt.Errorf("remote device for neighbor of %s on %s: %w", n.LocalDevice, n.LocalInterfaceShort, errNotFound)
}

var errNotFound = fmt.Errorf("not found")

func (s *CableSyncer) Sync(ctx context.Context, scope Scope, neighbors []model.NeighborRecord, opts CableSyncOptions) (Stats, error) {
	var stats Stats
	observed := map[string]bool{}

	for _, n := range neighbors {
		if n.NeighborType == model.NeighborUnknown && opts.SkipUnknown {
			stats.Skipped++
			continue
		}

		localDeviceID, ok := opts.DeviceRemoteID(n.LocalDevice)
		if !ok {
			stats.Failed++
			stats.detail("cable %s/%s: local device not resolved remotely", n.LocalDevice, n.LocalInterfaceShort)
			continue
		}
		localIface, found, err := s.Client.LookupInterface(ctx, localDeviceID, n.LocalInterfaceShort)
		if err != nil {
			stats.Failed++
			stats.detail("cable %s/%s: local interface lookup failed: %v", n.LocalDevice, n.LocalInterfaceShort, err)
			continue
		}
		if !found {
			stats.Failed++
			stats.detail("cable %s/%s: local interface not found remotely", n.LocalDevice, n.LocalInterfaceShort)
			continue
		}

		remoteDevice, err := s.resolveRemoteDevice(ctx, n)
		if err != nil {
			stats.Failed++
			stats.detail("cable %s/%s: remote device not resolved (%s)", n.LocalDevice, n.LocalInterfaceShort, n.RemoteHostname)
			continue
		}

		remotePortCanonical := normalize.CanonicalInterfaceName(n.RemotePort)
		remoteIface, found, err := s.Client.LookupInterface(ctx, remoteDevice.ID, remotePortCanonical)
		if err != nil {
			stats.Failed++
			stats.detail("cable %s/%s: remote interface lookup failed: %v", n.LocalDevice, n.LocalInterfaceShort, err)
			continue
		}
		if !found {
			stats.Skipped++
			stats.detail("cable %s/%s: remote interface %s not found, skipped", n.LocalDevice, n.LocalInterfaceShort, remotePortCanonical)
			continue
		}

		if isLAGInterfaceName(n.LocalInterfaceShort) || isLAGInterfaceName(remotePortCanonical) {
			stats.Skipped++
			stats.detail("cable %s/%s: LAG endpoint, skipped", n.LocalDevice, n.LocalInterfaceShort)
			continue
		}
		if localIface.StringField("cable_id") != "" || remoteIface.StringField("cable_id") != "" {
			stats.Skipped++
			stats.detail("cable %s/%s: endpoint already cabled, skipped", n.LocalDevice, n.LocalInterfaceShort)
			continue
		}

		key := cableKey(n.LocalDevice, n.LocalInterfaceShort, n.RemoteHostname, remotePortCanonical)
		if observed[key] {
			stats.Skipped++
			continue
		}
		observed[key] = true

		if s.DryRun {
			stats.Created++
			stats.detail("[DRY-RUN] would create cable %s", key)
			continue
		}
		if _, err := s.Client.Create(ctx, KindCable, map[string]string{
			"a": localIface.ID, "b": remoteIface.ID, "status": "connected", "key": key,
		}); err != nil {
			stats.Failed++
			stats.detail("cable %s: create failed: %v", key, err)
			continue
		}
		stats.Created++
		stats.detail("created cable %s", key)
	}

	if opts.Cleanup {
		s.cleanupCables(ctx, scope, observed, opts, &stats)
	}

	logging.WithOperation("sync_cables").Infof("created=%d skipped=%d failed=%d deleted=%d",
		stats.Created, stats.Skipped, stats.Failed, stats.Deleted)
	return stats, nil
}

func (s *CableSyncer) cleanupCables(ctx context.Context, scope Scope, observed map[string]bool, opts CableSyncOptions, stats *Stats) {
	remote, err := s.Client.ListRemote(ctx, KindCable, scope)
	if err != nil {
		stats.detail("cable cleanup: list failed: %v", err)
		return
	}
	inScope := make(map[string]bool, len(opts.ScopeDeviceIDs))
	for _, id := range opts.ScopeDeviceIDs {
		inScope[id] = true
	}
	for _, r := range remote {
		if observed[r.Key()] {
			continue
		}
		if !inScope[r.StringField("a_device_id")] || !inScope[r.StringField("b_device_id")] {
			continue // an endpoint outside the current scan is never deleted
		}
		if s.DryRun {
			stats.Deleted++
			stats.detail("[DRY-RUN] would delete stale cable %s", r.Key())
			continue
		}
		if err := s.Client.Delete(ctx, KindCable, r.ID); err != nil {
			stats.Failed++
			stats.detail("cable %s: cleanup delete failed: %v", r.Key(), err)
			continue
		}
		stats.Deleted++
		stats.detail("deleted stale cable %s", r.Key())
	}
}
