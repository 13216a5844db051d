package normalize

import "testing"

func TestCanonicalInterfaceName(t *testing.T) {
	cases := map[string]string{
		"GigabitEthernet0/1":    "Gi0/1",
		"TenGigabitEthernet1/1": "Te1/1",
		"FastEthernet0/1":       "Fa0/1",
		"TwentyFiveGigE1/0/1":   "Twe1/0/1",
		"FortyGigabitEthernet1": "Fo1",
		"HundredGigE1/0/1":      "Hu1/0/1",
		"Ethernet1":             "Eth1",
		"Port-channel1":         "Po1",
		"Gi0/1":                 "Gi0/1",
		"Vlan100":               "Vlan100",
	}
	for in, want := range cases {
		if got := CanonicalInterfaceName(in); got != want {
			t.Errorf("CanonicalInterfaceName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCanonicalInterfaceNameIdempotent(t *testing.T) {
	for _, in := range []string{"GigabitEthernet0/1", "Gi0/1", "Vlan100", "hostname-not-an-iface"} {
		once := CanonicalInterfaceName(in)
		twice := CanonicalInterfaceName(once)
		if once != twice {
			t.Errorf("not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestCanonicalInterfaceNameDoesNotShadowTenGigOnEthernetPrefix(t *testing.T) {
	// "TenGigabitEthernet" contains "Ethernet" as a substring but not as a
	// prefix, and must not be truncated by the shorter "Ethernet" rule.
	if got := CanonicalInterfaceName("TenGigabitEthernet1/1"); got != "Te1/1" {
		t.Fatalf("got %q", got)
	}
}

func TestIsInterfaceShaped(t *testing.T) {
	shaped := []string{"GigabitEthernet0/1", "Gi0/1", "Vlan100", "Po1"}
	for _, s := range shaped {
		if !IsInterfaceShaped(s) {
			t.Errorf("expected %q to be interface-shaped", s)
		}
	}
	notShaped := []string{"", "core-sw1.example.com", "aabb.ccdd.eeff"}
	for _, s := range notShaped {
		if IsInterfaceShaped(s) {
			t.Errorf("expected %q to not be interface-shaped", s)
		}
	}
}
