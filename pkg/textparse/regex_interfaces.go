package textparse

import (
	"regexp"
	"strings"
)

// interfaceStatusRe matches one row of "show interfaces status":
//
//	Gi0/1     uplink to core        connected    1      a-full  a-1000
var interfaceStatusRe = regexp.MustCompile(`^(?P<interface>\S+)\s{2,}(?P<description>.*?)\s{2,}(?P<status>connected|notconnect|disabled|err-disabled|up|down|inactive)\s+(?P<vlan>\S+)\s+(?P<duplex>\S+)\s+(?P<speed>\S+)\s*$`)

func parseInterfaceStatusRegex(output string) []Row {
	var rows []Row
	for _, line := range strings.Split(output, "\n") {
		m := interfaceStatusRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		rows = append(rows, Row{
			"interface":   m[1],
			"description": strings.TrimSpace(m[2]),
			"status":      m[3],
			"vlan":        m[4],
			"duplex":      m[5],
			"speed":       m[6],
		})
	}
	return rows
}

// interfaceDescriptionRe matches one row of "show interfaces description":
//
//	Gi0/1    up        up        uplink to core
var interfaceDescriptionRe = regexp.MustCompile(`^(?P<interface>\S+)\s+(?P<status>up|down|admin down)\s+(?P<protocol>up|down)\s+(?P<description>.*)$`)

func parseInterfaceDescriptionsRegex(output string) []Row {
	var rows []Row
	for _, line := range strings.Split(output, "\n") {
		m := interfaceDescriptionRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		rows = append(rows, Row{
			"interface":   m[1],
			"status":      m[2],
			"protocol":    m[3],
			"description": strings.TrimSpace(m[4]),
		})
	}
	return rows
}

var (
	ifaceHeaderRe = regexp.MustCompile(`^(?P<interface>\S+) is (?P<admin>administratively down|up|down),? line protocol is (?P<proto>up|down)`)
	ifaceMTURe    = regexp.MustCompile(`MTU (?P<mtu>\d+) bytes`)
	ifaceMACRe    = regexp.MustCompile(`address is ([0-9a-fA-F.:]+)`)
	ifaceDuplexRe = regexp.MustCompile(`(?P<duplex>Full|Half)-duplex, (?P<speed>\d+\w*)(?:/\w+)?,`)
)

// parseInterfacesRegex is a block parser for "show interfaces": one block
// per interface, header line plus the handful of attribute lines the
// interface normalizer needs (MTU, MAC, duplex/speed).
func parseInterfacesRegex(output string) []Row {
	var rows []Row
	var cur Row

	flush := func() {
		if cur != nil && cur["interface"] != "" {
			rows = append(rows, cur)
		}
		cur = nil
	}

	for _, line := range strings.Split(output, "\n") {
		if m := ifaceHeaderRe.FindStringSubmatch(line); m != nil {
			flush()
			cur = Row{
				"interface": m[1],
				"admin":     m[2],
				"protocol":  m[3],
			}
			continue
		}
		if cur == nil {
			continue
		}
		if m := ifaceMTURe.FindStringSubmatch(line); m != nil {
			cur["mtu"] = m[1]
		}
		if m := ifaceMACRe.FindStringSubmatch(line); m != nil {
			cur["mac"] = m[1]
		}
		if m := ifaceDuplexRe.FindStringSubmatch(line); m != nil {
			cur["duplex"] = strings.ToLower(m[1])
			cur["speed"] = m[2]
		}
	}
	flush()
	return rows
}

var (
	inventoryNameRe = regexp.MustCompile(`NAME:\s*"([^"]*)"\s*,\s*DESCR:\s*"([^"]*)"`)
	inventoryPIDRe  = regexp.MustCompile(`PID:\s*(\S+)\s*,\s*VID:\s*(\S*)\s*,\s*SN:\s*(\S+)`)
)

// parseInventoryRegex is a two-line-pair block parser for "show inventory":
//
//	NAME: "1", DESCR: "WS-C3750X-48P-S"
//	PID: WS-C3750X-48P-S  , VID: V05  , SN: FOC1234X1YZ
func parseInventoryRegex(output string) []Row {
	var rows []Row
	var pending Row
	for _, line := range strings.Split(output, "\n") {
		if m := inventoryNameRe.FindStringSubmatch(line); m != nil {
			pending = Row{"name": m[1], "description": m[2]}
			continue
		}
		if m := inventoryPIDRe.FindStringSubmatch(line); m != nil && pending != nil {
			pending["part_id"] = strings.TrimSpace(m[1])
			pending["vid"] = strings.TrimSpace(m[2])
			pending["serial"] = strings.TrimSpace(m[3])
			rows = append(rows, pending)
			pending = nil
		}
	}
	return rows
}
