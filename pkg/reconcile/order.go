package reconcile

import (
	"context"
	"fmt"

	"github.com/fleetsync/fleetsync/pkg/fleetdevice"
	"github.com/fleetsync/fleetsync/pkg/model"
)

// AllOptions bundles the per-kind options a "sync everything" run needs.
type AllOptions struct {
	Scope     Scope
	Devices   DeviceSyncOptions
	Interface InterfaceSyncOptions
	IP        IPAddressSyncOptions
	VLAN      VLANSyncOptions
	Cable     CableSyncOptions
	Inventory InventorySyncOptions
}

// AllData bundles the local, normalized records a "sync everything" run
// reconciles.
type AllData struct {
	Devices    []*fleetdevice.Device
	Interfaces []model.Interface
	IPs        []model.IPBinding
	Neighbors  []model.NeighborRecord
	Inventory  []model.InventoryItem
}

// AllStats carries one Stats per kind plus any kind-level error, so a
// whole-kind failure (e.g. authentication to the remote inventory) doesn't
// stop the remaining kinds from being attempted.
type AllStats struct {
	Devices    Stats
	Interfaces Stats
	IPs        Stats
	VLANs      Stats
	Cables     Stats
	Inventory  Stats
	Errors     map[string]error
}

// SyncAll runs every kind in dependency order: devices,
// then interfaces (which need device remote ids), then IP addresses and
// VLANs (which need interfaces), then cables, then inventory items.
// Device remote ids for later kinds are resolved via the shared SyncCore's
// device lookup cache, which is filled on the first lookup of each name;
// interface remote ids are looked up through the client on every call.
func SyncAll(ctx context.Context, core *SyncCore, data AllData, opts AllOptions) AllStats {
	result := AllStats{Errors: map[string]error{}}

	devSyncer := NewDeviceSyncer(core)
	devStats, err := devSyncer.Sync(ctx, opts.Scope, data.Devices, opts.Devices)
	result.Devices = devStats
	if err != nil {
		result.Errors["devices"] = fmt.Errorf("sync devices: %w", err)
	}

	deviceRemoteID := func(hostname string) (string, bool) {
		obj, found, err := core.resolveDeviceByName(ctx, hostname)
		if err != nil || !found {
			return "", false
		}
		return obj.ID, true
	}
	opts.Interface.DeviceRemoteID = deviceRemoteID

	ifaceSyncer := NewInterfaceSyncer(core)
	ifaceStats, err := ifaceSyncer.Sync(ctx, opts.Scope, data.Interfaces, opts.Interface)
	result.Interfaces = ifaceStats
	if err != nil {
		result.Errors["interfaces"] = fmt.Errorf("sync interfaces: %w", err)
	}

	interfaceRemoteID := func(deviceHostname, interfaceShort string) (string, bool) {
		deviceID, ok := deviceRemoteID(deviceHostname)
		if !ok {
			return "", false
		}
		obj, found, err := core.Client.LookupInterface(ctx, deviceID, interfaceShort)
		if err != nil || !found {
			return "", false
		}
		return obj.ID, true
	}
	opts.IP.InterfaceRemoteID = interfaceRemoteID

	ipSyncer := NewIPAddressSyncer(core)
	ipStats, err := ipSyncer.Sync(ctx, opts.Scope, data.IPs, opts.IP)
	result.IPs = ipStats
	if err != nil {
		result.Errors["ip_addresses"] = fmt.Errorf("sync ip addresses: %w", err)
	}

	vlanSyncer := NewVLANSyncer(core)
	vlanStats, err := vlanSyncer.Sync(ctx, opts.Scope, data.Interfaces, opts.VLAN)
	result.VLANs = vlanStats
	if err != nil {
		result.Errors["vlans"] = fmt.Errorf("sync vlans: %w", err)
	}

	opts.Cable.DeviceRemoteID = deviceRemoteID
	cableSyncer := NewCableSyncer(core)
	cableStats, err := cableSyncer.Sync(ctx, opts.Scope, data.Neighbors, opts.Cable)
	result.Cables = cableStats
	if err != nil {
		result.Errors["cables"] = fmt.Errorf("sync cables: %w", err)
	}

	opts.Inventory.DeviceRemoteID = deviceRemoteID
	invSyncer := NewInventorySyncer(core)
	invStats, err := invSyncer.Sync(ctx, opts.Scope, data.Inventory, opts.Inventory)
	result.Inventory = invStats
	if err != nil {
		result.Errors["inventory"] = fmt.Errorf("sync inventory: %w", err)
	}

	return result
}
