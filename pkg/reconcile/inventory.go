package reconcile

import (
	"context"

	"github.com/fleetsync/fleetsync/pkg/diff"
)

// ObjectKind identifies a remote-inventory object type. These are not tied
// to pkg/model's entity kinds: a sync also touches dependent objects
// (manufacturer, device type, site, role, tenant) that have no local
// normalized counterpart.
type ObjectKind string

const (
	KindDevice        ObjectKind = "device"
	KindInterface     ObjectKind = "interface"
	KindIPAddress     ObjectKind = "ip_address"
	KindVLAN          ObjectKind = "vlan"
	KindCable         ObjectKind = "cable"
	KindInventoryItem ObjectKind = "inventory_item"
	KindManufacturer  ObjectKind = "manufacturer"
	KindDeviceType    ObjectKind = "device_type"
	KindSite          ObjectKind = "site"
	KindRole          ObjectKind = "role"
	KindTenant        ObjectKind = "tenant"
)

// RemoteObject is a generic remote-inventory record: an opaque ID plus the
// dedup key and field set the diff engine needs. It implements
// diff.Record so reconciliation can reuse pkg/diff's four-way partition
// for every batch-synced kind.
type RemoteObject struct {
	ID       string
	KeyValue string
	Fields   map[string]diff.Value
}

func (r RemoteObject) Key() string { return r.KeyValue }

func (r RemoteObject) Field(name string) diff.Value {
	v, ok := r.Fields[name]
	if !ok {
		return diff.Value{}
	}
	return v
}

// StringField returns the raw value of a field, or "" if absent.
func (r RemoteObject) StringField(name string) string {
	return r.Field(name).Raw
}

// Scope restricts a sync operation's blast radius: cleanup (delete) calls
// are only ever issued against objects within the declared tenant and/or
// device set, never globally.
type Scope struct {
	Tenant    string
	DeviceIDs []string
}

// BulkUpdateItem pairs a remote ID with the fields to patch, the shape a
// list-bulk-update PATCH call with an embedded id expects.
type BulkUpdateItem struct {
	ID     string
	Fields map[string]string
}

// Inventory is the remote-inventory client contract this package consumes;
// it does not implement one. pkg/netboxclient provides the one concrete
// implementation this repository ships.
type Inventory interface {
	LookupDeviceByName(ctx context.Context, name string) (RemoteObject, bool, error)
	LookupDeviceByIP(ctx context.Context, ip string) (RemoteObject, bool, error)
	LookupDeviceByMAC(ctx context.Context, mac string) (RemoteObject, bool, error)
	LookupInterface(ctx context.Context, deviceID, name string) (RemoteObject, bool, error)

	GetOrCreate(ctx context.Context, kind ObjectKind, name string, extra map[string]string) (RemoteObject, error)

	ListRemote(ctx context.Context, kind ObjectKind, scope Scope) ([]RemoteObject, error)

	Create(ctx context.Context, kind ObjectKind, fields map[string]string) (RemoteObject, error)
	Update(ctx context.Context, kind ObjectKind, id string, fields map[string]string) (RemoteObject, error)
	Delete(ctx context.Context, kind ObjectKind, id string) error

	BulkCreate(ctx context.Context, kind ObjectKind, items []map[string]string) ([]RemoteObject, error)
	BulkUpdate(ctx context.Context, kind ObjectKind, items []BulkUpdateItem) ([]RemoteObject, error)
	BulkDelete(ctx context.Context, kind ObjectKind, ids []string) error

	// AssignMAC is the post-create side channel for a property the bulk
	// API cannot carry
	AssignMAC(ctx context.Context, interfaceID, mac string) error
}
