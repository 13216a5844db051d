package reconcile

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/fleetsync/fleetsync/internal/logging"
	"github.com/fleetsync/fleetsync/pkg/model"
)

// VLANSyncer creates one remote VLAN object per unique VLAN ID observed
// across a scan's SVI interfaces, derived from SVI interface names and
// created one per unique id within the scope of the site.
type VLANSyncer struct {
	*SyncCore
}

func NewVLANSyncer(core *SyncCore) *VLANSyncer {
	return &VLANSyncer{SyncCore: core}
}

type VLANSyncOptions struct {
	Site string
}

var sviNameRe = regexp.MustCompile(`^Vlan(\d+)$`)

// DeriveVLANIDs extracts the unique, sorted set of VLAN IDs implied by a
// device's SVI interfaces.
func DeriveVLANIDs(interfaces []model.Interface) []int {
	seen := map[int]bool{}
	for _, iface := range interfaces {
		m := sviNameRe.FindStringSubmatch(iface.Name)
		if m == nil {
			continue
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		seen[id] = true
	}
	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (s *VLANSyncer) Sync(ctx context.Context, scope Scope, interfaces []model.Interface, opts VLANSyncOptions) (Stats, error) {
	var stats Stats

	remote, err := s.Client.ListRemote(ctx, KindVLAN, scope)
	if err != nil {
		return stats, fmt.Errorf("list remote vlans: %w", err)
	}
	existing := make(map[string]bool, len(remote))
	for _, r := range remote {
		existing[r.Key()] = true
	}

	site, err := s.getOrCreate(ctx, KindSite, opts.Site, nil)
	if err != nil {
		return stats, fmt.Errorf("resolve site: %w", err)
	}

	for _, vid := range DeriveVLANIDs(interfaces) {
		key := strconv.Itoa(vid)
		if existing[key] {
			stats.Skipped++
			continue
		}
		if s.DryRun {
			stats.Created++
			stats.detail("[DRY-RUN] would create vlan %d", vid)
			continue
		}
		if _, err := s.Client.Create(ctx, KindVLAN, map[string]string{
			"vid": key, "name": fmt.Sprintf("VLAN%d", vid), "site_id": site.ID,
		}); err != nil {
			stats.Failed++
			stats.detail("vlan %d: create failed: %v", vid, err)
			continue
		}
		stats.Created++
		stats.detail("created vlan %d", vid)
	}

	logging.WithOperation("sync_vlans").Infof("created=%d skipped=%d failed=%d", stats.Created, stats.Skipped, stats.Failed)
	return stats, nil
}
