package fields

// DefaultInterfaceRegistry matches the compare-field list
// names for interface sync: description, enabled, mtu, speed, duplex,
// mode, access_vlan, allowed_vlans, lag_parent. mode and description clear
// on empty; the rest leave the remote value untouched when empty.
func DefaultInterfaceRegistry() *Registry {
	return NewRegistry(KindInterface, []Field{
		{Internal: "name", DisplayName: "Interface", Enabled: true, Order: 0},
		{Internal: "description", DisplayName: "Description", Enabled: true, Order: 1,
			Sync: SyncOptions{Syncable: true, Comparable: true, ClearOnEmpty: true}},
		{Internal: "status", DisplayName: "Status", Enabled: true, Order: 2},
		{Internal: "enabled", DisplayName: "Enabled", Enabled: true, Order: 3,
			Sync: SyncOptions{Syncable: true, Comparable: true}},
		{Internal: "mtu", DisplayName: "MTU", Enabled: true, Order: 4,
			Sync: SyncOptions{Syncable: true, Comparable: true}},
		{Internal: "speed", DisplayName: "Speed", Enabled: true, Order: 5,
			Sync: SyncOptions{Syncable: true, Comparable: true}},
		{Internal: "duplex", DisplayName: "Duplex", Enabled: true, Order: 6,
			Sync: SyncOptions{Syncable: true, Comparable: true}},
		{Internal: "mode", DisplayName: "Mode", Enabled: true, Order: 7,
			Sync: SyncOptions{Syncable: true, Comparable: true, ClearOnEmpty: true}},
		{Internal: "access_vlan", DisplayName: "Access VLAN", Enabled: true, Order: 8,
			Sync: SyncOptions{Syncable: true, Comparable: true}},
		{Internal: "allowed_vlans", DisplayName: "Allowed VLANs", Enabled: true, Order: 9,
			Sync: SyncOptions{Syncable: true, Comparable: true}},
		{Internal: "lag_parent", DisplayName: "LAG Parent", Enabled: true, Order: 10,
			Sync: SyncOptions{Syncable: true, Comparable: true}},
		{Internal: "mac", DisplayName: "MAC", Enabled: false, Order: 11},
	})
}

// DefaultDeviceRegistry compares hostname, serial, and model.
func DefaultDeviceRegistry() *Registry {
	return NewRegistry(KindDevice, []Field{
		{Internal: "host", DisplayName: "Host", Enabled: true, Order: 0},
		{Internal: "platform_tag", DisplayName: "Platform", Enabled: true, Order: 1},
		{Internal: "hostname", DisplayName: "Hostname", Enabled: true, Order: 2,
			Sync: SyncOptions{Syncable: true, Comparable: true}},
		{Internal: "serial", DisplayName: "Serial", Enabled: true, Order: 3,
			Sync: SyncOptions{Syncable: true, Comparable: true}},
		{Internal: "model", DisplayName: "Model", Enabled: true, Order: 4,
			Sync: SyncOptions{Syncable: true, Comparable: true}},
		{Internal: "role", DisplayName: "Role", Enabled: true, Order: 5},
		{Internal: "status", DisplayName: "Status", Enabled: true, Order: 6},
	})
}

// DefaultMACEntryRegistry is export-only — MAC table entries are never
// synced to the remote inventory, only displayed/exported.
func DefaultMACEntryRegistry() *Registry {
	return NewRegistry(KindMACEntry, []Field{
		{Internal: "device_hostname", DisplayName: "Device", Enabled: true, Order: 0},
		{Internal: "interface_short", DisplayName: "Interface", Enabled: true, Order: 1},
		{Internal: "mac_display", DisplayName: "MAC", Enabled: true, Order: 2},
		{Internal: "vlan_id", DisplayName: "VLAN", Enabled: true, Order: 3},
		{Internal: "mac_type", DisplayName: "Type", Enabled: true, Order: 4},
		{Internal: "port_status", DisplayName: "Port Status", Enabled: true, Order: 5},
	})
}

// DefaultNeighborRegistry is export-only, matching the LLDP/CDP display
// columns the CLI's lldp/cdp commands render.
func DefaultNeighborRegistry() *Registry {
	return NewRegistry(KindNeighbor, []Field{
		{Internal: "local_interface_short", DisplayName: "Local Interface", Enabled: true, Order: 0},
		{Internal: "remote_hostname", DisplayName: "Remote Host", Enabled: true, Order: 1},
		{Internal: "remote_port", DisplayName: "Remote Port", Enabled: true, Order: 2},
		{Internal: "protocol", DisplayName: "Protocol", Enabled: true, Order: 3},
		{Internal: "remote_platform", DisplayName: "Platform", Enabled: true, Order: 4},
	})
}

// DefaultInventoryRegistry drives full batch create/update/delete —
// every field except name participates in comparison.
func DefaultInventoryRegistry() *Registry {
	return NewRegistry(KindInventory, []Field{
		{Internal: "name", DisplayName: "Name", Enabled: true, Order: 0},
		{Internal: "component_type", DisplayName: "Type", Enabled: true, Order: 1,
			Sync: SyncOptions{Syncable: true, Comparable: true}},
		{Internal: "serial", DisplayName: "Serial", Enabled: true, Order: 2,
			Sync: SyncOptions{Syncable: true, Comparable: true}},
		{Internal: "part_id", DisplayName: "Part ID", Enabled: true, Order: 3,
			Sync: SyncOptions{Syncable: true, Comparable: true}},
		{Internal: "description", DisplayName: "Description", Enabled: true, Order: 4,
			Sync: SyncOptions{Syncable: true, Comparable: true, ClearOnEmpty: true}},
	})
}

// DefaultIPAddressRegistry covers the address/interface/primary-flag
// triple the IP-address syncer compares (pkg/reconcile/ipaddress.go).
func DefaultIPAddressRegistry() *Registry {
	return NewRegistry(KindIPAddress, []Field{
		{Internal: "device", DisplayName: "Device", Enabled: true, Order: 0},
		{Internal: "interface_short", DisplayName: "Interface", Enabled: true, Order: 1},
		{Internal: "address_cidr", DisplayName: "Address", Enabled: true, Order: 2,
			Sync: SyncOptions{Syncable: true, Comparable: true}},
		{Internal: "is_primary", DisplayName: "Primary", Enabled: true, Order: 3,
			Sync: SyncOptions{Syncable: true, Comparable: true}},
	})
}
