package normalize

import (
	"strconv"
	"strings"

	"github.com/fleetsync/fleetsync/pkg/model"
	"github.com/fleetsync/fleetsync/pkg/textparse"
)

// InterfaceOptions carries device context a pure row normalizer can't
// derive from the row itself.
type InterfaceOptions struct {
	DeviceHostname string
	DeviceHost     string
}

// NormalizeInterfaces merges the three interface-shaped collector outputs
// ("show interfaces", "show interfaces status", "show interfaces
// description") into one record per physical/logical interface, keyed on
// canonical interface name. Any of the three row sets may be nil.
func NormalizeInterfaces(detail, status, description []textparse.Row, opts InterfaceOptions) []model.Interface {
	byName := make(map[string]*model.Interface)
	var order []string

	get := func(name string) *model.Interface {
		if existing, ok := byName[name]; ok {
			return existing
		}
		rec := &model.Interface{
			DeviceHostname: opts.DeviceHostname,
			DeviceHost:     opts.DeviceHost,
			Name:           name,
			Status:         model.IfUnknown,
		}
		byName[name] = rec
		order = append(order, name)
		return rec
	}

	for _, row := range detail {
		name := CanonicalInterfaceName(row["interface"])
		if name == "" {
			continue
		}
		rec := get(name)
		rec.Status = interfaceStatusFromAdminProtocol(row["admin"], row["protocol"])
		rec.Enabled = !strings.EqualFold(strings.TrimSpace(row["admin"]), "administratively down")
		if mtu, err := strconv.Atoi(strings.TrimSpace(row["mtu"])); err == nil {
			rec.MTU = mtu
		}
		rec.Speed = strings.TrimSpace(row["speed"])
		rec.Duplex = strings.TrimSpace(row["duplex"])
		rec.MAC = strings.ToLower(strings.TrimSpace(row["mac"]))
	}

	for _, row := range status {
		name := CanonicalInterfaceName(row["interface"])
		if name == "" {
			continue
		}
		rec := get(name)
		if rec.Description == "" {
			rec.Description = strings.TrimSpace(row["description"])
		}
		rec.Status = interfaceStatusFromConnectState(row["status"])
		if vlan, err := strconv.Atoi(strings.TrimSpace(row["vlan"])); err == nil {
			rec.AccessVLAN = vlan
			rec.Mode = model.ModeAccess
		}
		if rec.Duplex == "" {
			rec.Duplex = strings.TrimSpace(row["duplex"])
		}
		if rec.Speed == "" {
			rec.Speed = strings.TrimSpace(row["speed"])
		}
	}

	for _, row := range description {
		name := CanonicalInterfaceName(row["interface"])
		if name == "" {
			continue
		}
		rec := get(name)
		if desc := strings.TrimSpace(row["description"]); desc != "" {
			rec.Description = desc
		}
	}

	out := make([]model.Interface, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out
}

func interfaceStatusFromAdminProtocol(admin, protocol string) model.InterfaceStatus {
	admin = strings.ToLower(strings.TrimSpace(admin))
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch {
	case strings.Contains(admin, "administratively down"):
		return model.IfDisabled
	case admin == "up" && protocol == "up":
		return model.IfUp
	case admin == "up" && protocol != "up" && protocol != "":
		return model.IfError
	case admin == "down":
		return model.IfDown
	default:
		return model.IfUnknown
	}
}

func interfaceStatusFromConnectState(status string) model.InterfaceStatus {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "connected":
		return model.IfUp
	case "notconnect", "disabled":
		return model.IfDisabled
	case "err-disabled":
		return model.IfError
	case "down":
		return model.IfDown
	default:
		return model.IfUnknown
	}
}
