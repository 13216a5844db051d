package reconcile

import (
	"context"
	"fmt"
	"sync"

	"github.com/fleetsync/fleetsync/internal/logging"
	"github.com/fleetsync/fleetsync/pkg/diff"
)

// Stats is the per-kind sync result shape: created, updated, deleted,
// skipped, failed, already-exists counts plus free-form detail messages.
type Stats struct {
	Created       int
	Updated       int
	Deleted       int
	Skipped       int
	Failed        int
	AlreadyExists int
	Details       []string
}

func (s *Stats) detail(format string, args ...any) {
	s.Details = append(s.Details, fmt.Sprintf(format, args...))
}

// Add folds another Stats into s, for callers that run several kinds and
// want a combined total.
func (s *Stats) Add(other Stats) {
	s.Created += other.Created
	s.Updated += other.Updated
	s.Deleted += other.Deleted
	s.Skipped += other.Skipped
	s.Failed += other.Failed
	s.AlreadyExists += other.AlreadyExists
	s.Details = append(s.Details, other.Details...)
}

// SyncCore is the machinery every per-kind syncer embeds by composition:
// device/IP/MAC lookup caches and get-or-create results, scoped to one sync
// call and never shared across calls or goroutines beyond this struct's own
// mutex.
type SyncCore struct {
	Client Inventory
	DryRun bool

	mu               sync.Mutex
	deviceByName     map[string]RemoteObject
	deviceByIP       map[string]RemoteObject
	deviceByMAC      map[string]RemoteObject
	getOrCreateCache map[string]RemoteObject
}

// NewSyncCore builds a fresh SyncCore with empty per-call caches.
func NewSyncCore(client Inventory, dryRun bool) *SyncCore {
	return &SyncCore{
		Client:           client,
		DryRun:           dryRun,
		deviceByName:     make(map[string]RemoteObject),
		deviceByIP:       make(map[string]RemoteObject),
		deviceByMAC:      make(map[string]RemoteObject),
		getOrCreateCache: make(map[string]RemoteObject),
	}
}

func (c *SyncCore) resolveDeviceByName(ctx context.Context, name string) (RemoteObject, bool, error) {
	c.mu.Lock()
	if v, ok := c.deviceByName[name]; ok {
		c.mu.Unlock()
		return v, true, nil
	}
	c.mu.Unlock()

	obj, found, err := c.Client.LookupDeviceByName(ctx, name)
	if err != nil || !found {
		return RemoteObject{}, found, err
	}
	c.mu.Lock()
	c.deviceByName[name] = obj
	c.mu.Unlock()
	return obj, true, nil
}

func (c *SyncCore) resolveDeviceByIP(ctx context.Context, ip string) (RemoteObject, bool, error) {
	c.mu.Lock()
	if v, ok := c.deviceByIP[ip]; ok {
		c.mu.Unlock()
		return v, true, nil
	}
	c.mu.Unlock()

	obj, found, err := c.Client.LookupDeviceByIP(ctx, ip)
	if err != nil || !found {
		return RemoteObject{}, found, err
	}
	c.mu.Lock()
	c.deviceByIP[ip] = obj
	c.mu.Unlock()
	return obj, true, nil
}

func (c *SyncCore) resolveDeviceByMAC(ctx context.Context, mac string) (RemoteObject, bool, error) {
	c.mu.Lock()
	if v, ok := c.deviceByMAC[mac]; ok {
		c.mu.Unlock()
		return v, true, nil
	}
	c.mu.Unlock()

	obj, found, err := c.Client.LookupDeviceByMAC(ctx, mac)
	if err != nil || !found {
		return RemoteObject{}, found, err
	}
	c.mu.Lock()
	c.deviceByMAC[mac] = obj
	c.mu.Unlock()
	return obj, true, nil
}

// getOrCreate resolves a dependent object (manufacturer, device-type,
// site, role, tenant) by name, caching the result for the rest of this
// sync call. In dry-run mode it never calls the client: it synthesizes a
// placeholder object so downstream create payloads still have an id to
// reference, and logs the "[DRY-RUN]" intent.
func (c *SyncCore) getOrCreate(ctx context.Context, kind ObjectKind, name string, extra map[string]string) (RemoteObject, error) {
	key := string(kind) + "/" + name
	c.mu.Lock()
	if v, ok := c.getOrCreateCache[key]; ok {
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	if c.DryRun {
		obj := RemoteObject{
			ID:       "dry-run:" + key,
			KeyValue: name,
			Fields: map[string]diff.Value{
				"name": {Raw: name, Present: true},
				"slug": {Raw: slug(name), Present: true},
			},
		}
		logging.WithOperation(string(kind)).Infof("[DRY-RUN] get-or-create %q", name)
		c.mu.Lock()
		c.getOrCreateCache[key] = obj
		c.mu.Unlock()
		return obj, nil
	}

	obj, err := c.Client.GetOrCreate(ctx, kind, name, extra)
	if err != nil {
		return RemoteObject{}, err
	}
	c.mu.Lock()
	c.getOrCreateCache[key] = obj
	c.mu.Unlock()
	return obj, nil
}
