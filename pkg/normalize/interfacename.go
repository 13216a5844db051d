// Package normalize turns the parser facade's untyped rows into the typed
// records of pkg/model. Each function here is a pure function:
// (raw rows, context) -> typed records — no I/O.
package normalize

import "strings"

// prefixTable is the static longest-prefix interface-name replacement
// table. Order matters only in that every prefix must be tried; ties are
// impossible because no two prefixes here share a common prefix of equal
// length that would both match the same input differently.
var prefixTable = []struct {
	long  string
	short string
}{
	{"GigabitEthernet", "Gi"},
	{"TenGigabitEthernet", "Te"},
	{"FastEthernet", "Fa"},
	{"TwentyFiveGigE", "Twe"},
	{"FortyGigabitEthernet", "Fo"},
	{"HundredGigE", "Hu"},
	{"Ethernet", "Eth"},
	{"Port-channel", "Po"},
}

// CanonicalInterfaceName applies the longest-prefix replacement table,
// returning n unchanged if no prefix matches (including when n is already
// in canonical short form). Idempotent:
// CanonicalInterfaceName(CanonicalInterfaceName(n)) == CanonicalInterfaceName(n).
func CanonicalInterfaceName(n string) string {
	n = strings.TrimSpace(n)
	// Try longer prefixes first so "TenGigabitEthernet" doesn't get
	// shadowed by a hypothetical shorter alias sharing its start.
	best := -1
	for i, e := range prefixTable {
		if strings.HasPrefix(n, e.long) {
			if best == -1 || len(prefixTable[i].long) > len(prefixTable[best].long) {
				best = i
			}
		}
	}
	if best == -1 {
		return n
	}
	return prefixTable[best].short + strings.TrimPrefix(n, prefixTable[best].long)
}

// IsInterfaceShaped reports whether s looks like an interface name — either
// already canonical-short, or matching one of the long prefixes above. Used
// by the LLDP/CDP normalizer to classify port_id / port_description fields.
func IsInterfaceShaped(s string) bool {
	if s == "" {
		return false
	}
	if CanonicalInterfaceName(s) != s {
		return true // a long-form prefix matched
	}
	for _, short := range []string{"Gi", "Te", "Fa", "Twe", "Fo", "Hu", "Eth", "Po", "Vlan", "Lo"} {
		if strings.HasPrefix(s, short) {
			return hasTrailingDigitsOrSlash(s, len(short))
		}
	}
	return false
}

func hasTrailingDigitsOrSlash(s string, from int) bool {
	if from >= len(s) {
		return false
	}
	c := s[from]
	return c >= '0' && c <= '9'
}
