package textparse

import (
	"regexp"
	"strings"
)

// macLineRe matches one row of a Cisco-family "show mac address-table":
//
//	  10    aabb.ccdd.eeff    DYNAMIC      Gi0/2
//	Vlan    Mac Address       Type         Ports
var macLineRe = regexp.MustCompile(`(?i)^\s*(?P<vlan>\d+)\s+(?P<mac>[0-9a-fA-F]{4}[.:][0-9a-fA-F]{4}[.:][0-9a-fA-F]{4}|(?:[0-9a-fA-F]{2}[:-]){5}[0-9a-fA-F]{2})\s+(?P<type>dynamic|static)\s+(?P<interface>\S+)\s*$`)

// parseMACTableRegex is the stage-2 fallback for "show mac address-table".
// Row keys: mac, interface, vlan, type.
func parseMACTableRegex(output string) []Row {
	var rows []Row
	for _, line := range strings.Split(output, "\n") {
		m := macLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		rows = append(rows, Row{
			"vlan":      m[1],
			"mac":       m[2],
			"type":      strings.ToLower(m[3]),
			"interface": m[4],
		})
	}
	return rows
}
