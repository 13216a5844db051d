package platform

// DescriptionConfigLines builds the config-mode command sequence that sets
// one interface's description, in the dialect the driver tag's vendor
// expects. Junos's "set" syntax needs no interface/exit wrapping; the
// IOS-like dialects (cisco_ios, cisco_nxos, arista_eos) enter config mode,
// select the interface, set the description, then return to exec mode.
func DescriptionConfigLines(driverTag, ifaceName, description string) []string {
	switch driverTag {
	case "juniper_junos":
		return []string{
			"configure",
			"set interfaces " + ifaceName + " description \"" + description + "\"",
			"commit and-quit",
		}
	default:
		return []string{
			"configure terminal",
			"interface " + ifaceName,
			"description " + description,
			"end",
		}
	}
}
