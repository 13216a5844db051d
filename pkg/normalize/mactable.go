package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/fleetsync/fleetsync/pkg/model"
	"github.com/fleetsync/fleetsync/pkg/textparse"
)

// macKeyAliases maps the various column names vendors use for the MAC
// column onto the single row key the rest of this function expects.
var macKeyAliases = []string{"mac", "mac_address", "destination_address"}

// defaultExcludedInterfacePrefixes are the MAC table ports never reconciled
// as real links when the caller supplies no override: Port-channel/LAG
// aggregates and Vlan SVIs, whose MAC entries are artifacts of the
// aggregate/interface-VLAN construct rather than an observed link.
var defaultExcludedInterfacePrefixes = []*regexp.Regexp{
	regexp.MustCompile(`^Po`),
	regexp.MustCompile(`^Vlan`),
}

var excludedMACPrefixRe = regexp.MustCompile(`(?i)^(01005E|0180C2|FFFFFFFFFFFF)`)

// MACTableOptions carries the per-device context a pure row normalizer
// can't derive from the row itself.
type MACTableOptions struct {
	DeviceHostname string
	DeviceHost     string
	MACForm        model.MACForm
	// PortStatus, if non-nil, is consulted to join each MAC entry's
	// observed interface to an operational state. Keyed by canonical
	// interface short name.
	PortStatus map[string]model.PortStatus
	// ExcludedInterfacePrefixes overrides the default set of regexes
	// matched against an entry's canonical interface name to decide
	// whether it is excluded from the result. Nil uses the default
	// (^Po, ^Vlan).
	ExcludedInterfacePrefixes []*regexp.Regexp
}

func (o MACTableOptions) excludedInterfacePrefixesOrDefault() []*regexp.Regexp {
	if o.ExcludedInterfacePrefixes != nil {
		return o.ExcludedInterfacePrefixes
	}
	return defaultExcludedInterfacePrefixes
}

// NormalizeMACTable converts parser-facade rows from any of the MAC-table
// column spellings into deduplicated MACEntry records, keyed on
// (mac_canonical, vlan, interface).
func NormalizeMACTable(rows []textparse.Row, opts MACTableOptions) []model.MACEntry {
	seen := make(map[[3]string]bool)
	var out []model.MACEntry

	for _, row := range rows {
		rawMAC := firstNonEmpty(row, macKeyAliases)
		if rawMAC == "" {
			continue
		}
		canonical, ok := CanonicalMAC(rawMAC)
		if !ok {
			continue
		}
		if excludedMACPrefixRe.MatchString(canonical) {
			continue
		}

		iface := CanonicalInterfaceName(row["interface"])
		if isExcludedInterface(iface, opts.excludedInterfacePrefixesOrDefault()) {
			continue
		}

		vlan, _ := strconv.Atoi(row["vlan"])

		entry := model.MACEntry{
			DeviceHostname: opts.DeviceHostname,
			DeviceHost:     opts.DeviceHost,
			InterfaceShort: iface,
			MACCanonical:   canonical,
			MACDisplay:     RenderMAC(canonical, formOrDefault(opts.MACForm)),
			VLANID:         vlan,
			MACType:        macTypeFromRow(row["type"]),
			PortStatus:     model.PortUnknown,
		}
		if status, ok := opts.PortStatus[iface]; ok {
			entry.PortStatus = status
		}

		key := entry.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, entry)
	}
	return out
}

func firstNonEmpty(row textparse.Row, keys []string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(row[k]); v != "" {
			return v
		}
	}
	return ""
}

func isExcludedInterface(iface string, prefixes []*regexp.Regexp) bool {
	for _, re := range prefixes {
		if re.MatchString(iface) {
			return true
		}
	}
	return false
}

func macTypeFromRow(t string) model.MACType {
	if strings.EqualFold(strings.TrimSpace(t), "static") {
		return model.MACStatic
	}
	return model.MACDynamic
}

func formOrDefault(f model.MACForm) model.MACForm {
	if f == "" {
		return model.MACFormCisco
	}
	return f
}
