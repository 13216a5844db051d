package main

import (
	"strconv"
	"strings"

	"github.com/fleetsync/fleetsync/pkg/fleetdevice"
	"github.com/fleetsync/fleetsync/pkg/model"
)

func deviceRow(d *fleetdevice.Device) map[string]string {
	return map[string]string{
		"host":         d.Host,
		"platform_tag": d.PlatformTag,
		"hostname":     d.Hostname,
		"serial":       d.Serial,
		"model":        d.Model,
		"role":         d.Role,
		"status":       string(d.Status),
	}
}

func macEntryRow(m model.MACEntry) map[string]string {
	return map[string]string{
		"device_hostname": m.DeviceHostname,
		"interface_short": m.InterfaceShort,
		"mac_display":     m.MACDisplay,
		"vlan_id":         strconv.Itoa(m.VLANID),
		"mac_type":        string(m.MACType),
		"port_status":     string(m.PortStatus),
	}
}

func neighborRow(n model.NeighborRecord) map[string]string {
	return map[string]string{
		"local_interface_short": n.LocalInterfaceShort,
		"remote_hostname":       n.RemoteHostname,
		"remote_port":           n.RemotePort,
		"protocol":              string(n.Protocol),
		"remote_platform":       n.RemotePlatform,
	}
}

func interfaceRow(i model.Interface) map[string]string {
	allowed := make([]string, len(i.AllowedVLANs))
	for idx, v := range i.AllowedVLANs {
		allowed[idx] = strconv.Itoa(v)
	}
	return map[string]string{
		"name":          i.Name,
		"description":   i.Description,
		"status":        string(i.Status),
		"enabled":       strconv.FormatBool(i.Enabled),
		"mtu":           strconv.Itoa(i.MTU),
		"speed":         i.Speed,
		"duplex":        i.Duplex,
		"mode":          string(i.Mode),
		"access_vlan":   strconv.Itoa(i.AccessVLAN),
		"allowed_vlans": strings.Join(allowed, ","),
		"lag_parent":    i.LAGParent,
		"mac":           i.MAC,
	}
}

func inventoryItemRow(item model.InventoryItem) map[string]string {
	return map[string]string{
		"name":           item.Name,
		"component_type": string(item.ComponentType),
		"serial":         item.Serial,
		"part_id":        item.PartID,
		"description":    item.Description,
	}
}

func ipBindingRow(b model.IPBinding) map[string]string {
	return map[string]string{
		"device":          b.Device,
		"interface_short": b.InterfaceShort,
		"address_cidr":    b.AddressCIDR,
		"is_primary":      strconv.FormatBool(b.IsPrimary),
	}
}
