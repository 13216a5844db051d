// Package model holds the canonical, typed records collection and
// reconciliation pass between components: interface records, MAC entries,
// neighbor records, inventory items, and IP address bindings
//
// These are the "typed data" side of the parser boundary: pkg/textparse
// produces plain string-keyed maps, pkg/normalize turns them into the
// structs below, and everything downstream (pkg/diff, pkg/reconcile,
// pkg/collect) works only in terms of these types.
package model

import "strconv"

// InterfaceStatus is the normalized operational state of an interface.
type InterfaceStatus string

const (
	IfUp       InterfaceStatus = "up"
	IfDown     InterfaceStatus = "down"
	IfDisabled InterfaceStatus = "disabled"
	IfError    InterfaceStatus = "error"
	IfUnknown  InterfaceStatus = "unknown"
)

// InterfaceMode is the switchport trunking mode. An empty Mode carries the
// explicit meaning "clear this field remotely" in the diff engine's compare
// semantics — it is never the zero value by accident.
type InterfaceMode string

const (
	ModeUnset     InterfaceMode = ""
	ModeAccess    InterfaceMode = "access"
	ModeTagged    InterfaceMode = "tagged"
	ModeTaggedAll InterfaceMode = "tagged-all"
)

// Interface is the canonical, per-device interface record.
type Interface struct {
	DeviceHostname string
	DeviceHost     string

	Name         string // canonical short form, e.g. "Gi0/1"
	Description  string
	Status       InterfaceStatus
	Enabled      bool
	MTU          int
	Speed        string
	Duplex       string
	Mode         InterfaceMode
	AccessVLAN   int
	AllowedVLANs []int
	LAGParent    string
	MAC          string
}

// MACType classifies a MAC table entry's learning mechanism.
type MACType string

const (
	MACDynamic MACType = "dynamic"
	MACStatic  MACType = "static"
)

// PortStatus is the interface operational state a MAC entry was observed on.
type PortStatus string

const (
	PortOnline  PortStatus = "online"
	PortOffline PortStatus = "offline"
	PortUnknown PortStatus = "unknown"
)

// MACForm selects the rendering used for MACEntry.MACDisplay.
type MACForm string

const (
	MACFormIEEE  MACForm = "ieee"
	MACFormCisco MACForm = "cisco"
	MACFormUnix  MACForm = "unix"
)

// MACEntry is one row of a device's MAC address table.
type MACEntry struct {
	DeviceHostname string
	DeviceHost     string

	InterfaceShort string
	MACCanonical   string // 12 hex uppercase, no separators
	MACDisplay     string // rendered per MACForm at normalize time
	VLANID         int
	MACType        MACType
	PortStatus     PortStatus
	Description    string
}

// Key returns the MAC table dedup key: (mac_canonical, vlan, interface).
func (e MACEntry) Key() [3]string {
	return [3]string{e.MACCanonical, strconv.Itoa(e.VLANID), e.InterfaceShort}
}

// NeighborType classifies which identifier a neighbor actually supplied,
// which drives the remote-device lookup chain during cable reconciliation
type NeighborType string

const (
	NeighborHostname NeighborType = "hostname"
	NeighborMAC      NeighborType = "mac"
	NeighborIP       NeighborType = "ip"
	NeighborUnknown  NeighborType = "unknown"
)

// Protocol identifies which discovery protocol(s) produced a NeighborRecord.
type Protocol string

const (
	ProtocolLLDP Protocol = "LLDP"
	ProtocolCDP  Protocol = "CDP"
	ProtocolBoth Protocol = "BOTH"
)

// NeighborRecord is one observed link-layer neighbor relationship.
type NeighborRecord struct {
	LocalDevice         string
	LocalInterfaceShort string

	RemoteHostname string
	RemotePort     string
	RemoteMAC      string
	RemoteIP       string
	RemotePlatform string

	NeighborType NeighborType
	Protocol     Protocol
	Capabilities string
}

// ComponentType classifies an InventoryItem.
type ComponentType string

const (
	ComponentModule ComponentType = "module"
	ComponentSFP    ComponentType = "sfp"
	ComponentPSU    ComponentType = "psu"
	ComponentFan    ComponentType = "fan"
	ComponentOther  ComponentType = "other"
)

// InventoryItem is one hardware component reported by a device.
type InventoryItem struct {
	Device        string
	ComponentType ComponentType
	Name          string
	Serial        string
	PartID        string
	Description   string
}

// IPBinding associates an IP/CIDR with a device interface.
type IPBinding struct {
	Device         string
	InterfaceShort string
	AddressCIDR    string
	IsPrimary      bool
}
