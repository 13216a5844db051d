package textparse

import (
	"regexp"
	"strings"
)

// blockDelimiterRe splits "detail" neighbor output into one block per
// neighbor; both LLDP and CDP detail output separate entries with a run of
// dashes on its own line.
var blockDelimiterRe = regexp.MustCompile(`^-{4,}\s*$`)

func splitBlocks(output string) []string {
	var blocks []string
	var cur []string
	for _, line := range strings.Split(output, "\n") {
		if blockDelimiterRe.MatchString(strings.TrimSpace(line)) {
			if len(cur) > 0 {
				blocks = append(blocks, strings.Join(cur, "\n"))
				cur = nil
			}
			continue
		}
		cur = append(cur, line)
	}
	if len(cur) > 0 {
		blocks = append(blocks, strings.Join(cur, "\n"))
	}
	return blocks
}

var (
	lldpLocalIntfRe = regexp.MustCompile(`(?i)Local\s+Intf(?:ace)?:\s*(\S+)`)
	lldpChassisIDRe = regexp.MustCompile(`(?i)Chassis\s+id:\s*(\S+)`)
	lldpPortIDRe    = regexp.MustCompile(`(?i)Port\s+id:\s*(\S+)`)
	lldpPortDescRe  = regexp.MustCompile(`(?i)Port\s+Description:\s*(\S+)`)
	lldpSysNameRe   = regexp.MustCompile(`(?i)System\s+Name:\s*(\S+)`)
	lldpMgmtIPRe    = regexp.MustCompile(`(?i)(?:IP|Management\s+Address(?:es)?):\s*(\d+\.\d+\.\d+\.\d+)`)
	lldpCapsRe      = regexp.MustCompile(`(?i)(?:System\s+)?Capabilities:\s*(\S.*)`)
	lldpPlatformRe  = regexp.MustCompile(`(?i)System\s+Description:\s*(\S.*)`)
)

// parseLLDPRegex is the stage-2 fallback for "show lldp neighbors detail".
// Row keys: local_interface, chassis_id, neighbor_port_id, port_description,
// system_name, mgmt_ip, capabilities, platform.
func parseLLDPRegex(output string) []Row {
	var rows []Row
	for _, block := range splitBlocks(output) {
		row := Row{}
		if m := lldpLocalIntfRe.FindStringSubmatch(block); m != nil {
			row["local_interface"] = m[1]
		}
		if m := lldpChassisIDRe.FindStringSubmatch(block); m != nil {
			row["chassis_id"] = m[1]
		}
		if m := lldpPortIDRe.FindStringSubmatch(block); m != nil {
			row["neighbor_port_id"] = m[1]
		}
		if m := lldpPortDescRe.FindStringSubmatch(block); m != nil {
			row["port_description"] = m[1]
		}
		if m := lldpSysNameRe.FindStringSubmatch(block); m != nil {
			row["system_name"] = m[1]
		}
		if m := lldpMgmtIPRe.FindStringSubmatch(block); m != nil {
			row["mgmt_ip"] = m[1]
		}
		if m := lldpCapsRe.FindStringSubmatch(block); m != nil {
			row["capabilities"] = strings.TrimSpace(m[1])
		}
		if m := lldpPlatformRe.FindStringSubmatch(block); m != nil {
			row["platform"] = strings.TrimSpace(m[1])
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}

var (
	cdpDeviceIDRe = regexp.MustCompile(`(?i)Device\s+ID:\s*(\S+)`)
	cdpIPRe       = regexp.MustCompile(`(?i)IP\s+address:\s*(\d+\.\d+\.\d+\.\d+)`)
	cdpPlatformRe = regexp.MustCompile(`(?i)Platform:\s*([^,]+),`)
	cdpIntfRe     = regexp.MustCompile(`(?i)Interface:\s*(\S+),`)
	cdpPortIDRe   = regexp.MustCompile(`(?i)Port ID \(outgoing port\):\s*(\S+)`)
	cdpCapsRe     = regexp.MustCompile(`(?i)Capabilities:\s*(\S.*)`)
)

// parseCDPRegex is the stage-2 fallback for "show cdp neighbors detail".
// Row keys: local_interface, device_id, mgmt_ip, platform, neighbor_port_id,
// capabilities.
func parseCDPRegex(output string) []Row {
	var rows []Row
	for _, block := range splitBlocks(output) {
		row := Row{}
		if m := cdpDeviceIDRe.FindStringSubmatch(block); m != nil {
			row["device_id"] = m[1]
		}
		if m := cdpIPRe.FindStringSubmatch(block); m != nil {
			row["mgmt_ip"] = m[1]
		}
		if m := cdpPlatformRe.FindStringSubmatch(block); m != nil {
			row["platform"] = strings.TrimSpace(m[1])
		}
		if m := cdpIntfRe.FindStringSubmatch(block); m != nil {
			row["local_interface"] = m[1]
		}
		if m := cdpPortIDRe.FindStringSubmatch(block); m != nil {
			row["neighbor_port_id"] = m[1]
		}
		if m := cdpCapsRe.FindStringSubmatch(block); m != nil {
			caps := strings.TrimSpace(m[1])
			// Capabilities trails the rest of the Platform/Capabilities line
			// in real output; trim anything after a following field label.
			row["capabilities"] = caps
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}
