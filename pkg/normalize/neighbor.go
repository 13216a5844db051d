package normalize

import (
	"strings"

	"github.com/fleetsync/fleetsync/pkg/model"
	"github.com/fleetsync/fleetsync/pkg/textparse"
)

// NeighborOptions carries device context a pure row normalizer can't
// derive from the row itself.
type NeighborOptions struct {
	DeviceHostname string
}

// NormalizeLLDP converts parser-facade LLDP rows into NeighborRecords.
func NormalizeLLDP(rows []textparse.Row, opts NeighborOptions) []model.NeighborRecord {
	var out []model.NeighborRecord
	for _, row := range rows {
		localIntf := CanonicalInterfaceName(row["local_interface"])
		if localIntf == "" {
			continue
		}
		port, portMAC := remotePort(row["neighbor_port_id"], row["port_description"])
		mac := chassisIDAsMAC(row["chassis_id"])
		if portMAC != "" {
			mac = portMAC
		}
		rec := model.NeighborRecord{
			LocalDevice:         opts.DeviceHostname,
			LocalInterfaceShort: localIntf,
			RemoteHostname:      strings.TrimSpace(row["system_name"]),
			RemoteMAC:           mac,
			RemoteIP:            strings.TrimSpace(row["mgmt_ip"]),
			RemotePlatform:      strings.TrimSpace(row["platform"]),
			RemotePort:          port,
			Protocol:            model.ProtocolLLDP,
			Capabilities:        strings.TrimSpace(row["capabilities"]),
		}
		rec.NeighborType = classifyNeighbor(rec)
		out = append(out, rec)
	}
	return out
}

// NormalizeCDP converts parser-facade CDP rows into NeighborRecords.
func NormalizeCDP(rows []textparse.Row, opts NeighborOptions) []model.NeighborRecord {
	var out []model.NeighborRecord
	for _, row := range rows {
		localIntf := CanonicalInterfaceName(row["local_interface"])
		if localIntf == "" {
			continue
		}
		port, portMAC := remotePort(row["neighbor_port_id"], "")
		rec := model.NeighborRecord{
			LocalDevice:         opts.DeviceHostname,
			LocalInterfaceShort: localIntf,
			RemoteHostname:      strings.TrimSpace(row["device_id"]),
			RemoteMAC:           portMAC,
			RemoteIP:            strings.TrimSpace(row["mgmt_ip"]),
			RemotePlatform:      strings.TrimSpace(row["platform"]),
			RemotePort:          port,
			Protocol:            model.ProtocolCDP,
			Capabilities:        strings.TrimSpace(row["capabilities"]),
		}
		rec.NeighborType = classifyNeighbor(rec)
		out = append(out, rec)
	}
	return out
}

// MergeNeighbors combines CDP and LLDP observations of the same links. CDP
// is the base record (richer device_id/platform on most Cisco gear); LLDP
// fills in fields CDP left blank. A local interface reported by both
// protocols becomes a single ProtocolBoth record.
func MergeNeighbors(cdp, lldp []model.NeighborRecord) []model.NeighborRecord {
	byIntf := make(map[string]*model.NeighborRecord, len(cdp))
	var out []model.NeighborRecord

	for _, c := range cdp {
		rec := c
		out = append(out, rec)
		byIntf[c.LocalInterfaceShort] = &out[len(out)-1]
	}

	for _, l := range lldp {
		existing, found := byIntf[l.LocalInterfaceShort]
		if !found {
			out = append(out, l)
			continue
		}
		existing.Protocol = model.ProtocolBoth
		if existing.RemoteHostname == "" {
			existing.RemoteHostname = l.RemoteHostname
		}
		if existing.RemoteMAC == "" {
			existing.RemoteMAC = l.RemoteMAC
		}
		if existing.RemoteIP == "" {
			existing.RemoteIP = l.RemoteIP
		}
		if existing.RemotePlatform == "" {
			existing.RemotePlatform = l.RemotePlatform
		}
		if existing.RemotePort == "" {
			existing.RemotePort = l.RemotePort
		}
		if existing.Capabilities == "" {
			existing.Capabilities = l.Capabilities
		}
		existing.NeighborType = classifyNeighbor(*existing)
	}
	return out
}

// remotePort applies the three-branch remote_port precedence rule: an
// interface-shaped port_id wins outright; failing that, a MAC-shaped port_id
// is moved into the returned mac and port_description takes over as the port
// (when it is itself interface-shaped); otherwise port_description is used
// as-is, falling back to the raw port_id.
func remotePort(portID, portDescription string) (port, mac string) {
	portID = strings.TrimSpace(portID)
	portDescription = strings.TrimSpace(portDescription)

	if IsInterfaceShaped(portID) {
		return CanonicalInterfaceName(portID), ""
	}
	if canonical, ok := CanonicalMAC(portID); ok {
		if IsInterfaceShaped(portDescription) {
			return CanonicalInterfaceName(portDescription), canonical
		}
		return portDescription, canonical
	}
	if IsInterfaceShaped(portDescription) {
		return CanonicalInterfaceName(portDescription), ""
	}
	return portID, ""
}

func chassisIDAsMAC(chassisID string) string {
	canonical, ok := CanonicalMAC(chassisID)
	if !ok {
		return ""
	}
	return canonical
}

// classifyNeighbor decides which identifier actually pins down the remote
// device, in priority order hostname > MAC > IP, matching the lookup chain
// the reconciliation engine uses to resolve cable endpoints.
func classifyNeighbor(rec model.NeighborRecord) model.NeighborType {
	switch {
	case rec.RemoteHostname != "":
		return model.NeighborHostname
	case rec.RemoteMAC != "":
		return model.NeighborMAC
	case rec.RemoteIP != "":
		return model.NeighborIP
	default:
		return model.NeighborUnknown
	}
}
