package normalize

import (
	"regexp"
	"testing"

	"github.com/fleetsync/fleetsync/pkg/model"
	"github.com/fleetsync/fleetsync/pkg/textparse"
)

func TestNormalizeMACTableDedup(t *testing.T) {
	rows := []textparse.Row{
		{"vlan": "10", "mac": "aabb.ccdd.eeff", "type": "DYNAMIC", "interface": "Gi0/2"},
		{"vlan": "10", "mac": "AABB.CCDD.EEFF", "type": "DYNAMIC", "interface": "GigabitEthernet0/2"},
		{"vlan": "1", "mac": "0011.2233.4455", "type": "STATIC", "interface": "Gi0/1"},
	}
	out := NormalizeMACTable(rows, MACTableOptions{DeviceHostname: "sw1", DeviceHost: "10.0.0.1"})
	if len(out) != 2 {
		t.Fatalf("expected 2 deduped entries, got %d: %+v", len(out), out)
	}
	if out[1].MACType != model.MACStatic {
		t.Fatalf("expected static type, got %v", out[1].MACType)
	}
}

func TestNormalizeMACTableExcludesPortChannelAndVlanByDefault(t *testing.T) {
	rows := []textparse.Row{
		{"vlan": "1", "mac": "0011.2233.4455", "type": "DYNAMIC", "interface": "Po1"},
		{"vlan": "1", "mac": "0011.2233.4466", "type": "DYNAMIC", "interface": "Vlan100"},
	}
	out := NormalizeMACTable(rows, MACTableOptions{})
	if len(out) != 0 {
		t.Fatalf("expected Port-channel and Vlan SVI entries excluded by default, got %+v", out)
	}
}

func TestNormalizeMACTableExcludedInterfacePrefixesOverride(t *testing.T) {
	rows := []textparse.Row{
		{"vlan": "1", "mac": "0011.2233.4455", "type": "DYNAMIC", "interface": "CPU"},
	}
	out := NormalizeMACTable(rows, MACTableOptions{
		ExcludedInterfacePrefixes: []*regexp.Regexp{regexp.MustCompile(`^CPU`)},
	})
	if len(out) != 0 {
		t.Fatalf("expected CPU port excluded by caller-supplied override, got %+v", out)
	}
}

func TestNormalizeMACTableExcludesMulticastMAC(t *testing.T) {
	rows := []textparse.Row{
		{"vlan": "1", "mac": "0100.5e00.0001", "type": "DYNAMIC", "interface": "Gi0/1"},
	}
	out := NormalizeMACTable(rows, MACTableOptions{})
	if len(out) != 0 {
		t.Fatalf("expected multicast MAC excluded, got %+v", out)
	}
}

func TestNormalizeMACTableJoinsPortStatus(t *testing.T) {
	rows := []textparse.Row{
		{"vlan": "1", "mac": "0011.2233.4455", "type": "DYNAMIC", "interface": "Gi0/1"},
	}
	out := NormalizeMACTable(rows, MACTableOptions{
		PortStatus: map[string]model.PortStatus{"Gi0/1": model.PortOnline},
	})
	if len(out) != 1 || out[0].PortStatus != model.PortOnline {
		t.Fatalf("expected joined port status, got %+v", out)
	}
}

func TestNormalizeMACTableSkipsBadMAC(t *testing.T) {
	rows := []textparse.Row{
		{"vlan": "1", "mac": "not-a-mac", "interface": "Gi0/1"},
	}
	out := NormalizeMACTable(rows, MACTableOptions{})
	if len(out) != 0 {
		t.Fatalf("expected invalid MAC skipped, got %+v", out)
	}
}
