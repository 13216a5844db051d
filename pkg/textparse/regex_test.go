package textparse

import "testing"

func TestParseMACTableRegex(t *testing.T) {
	output := `Vlan    Mac Address       Type        Ports
----    -----------       ----        -----
  10    aabb.ccdd.eeff    DYNAMIC     Gi0/2
   1    0011.2233.4455    DYNAMIC     Gi0/1
`
	rows := parseMACTableRegex(output)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d: %+v", len(rows), rows)
	}
	if rows[0]["vlan"] != "10" || rows[0]["interface"] != "Gi0/2" {
		t.Fatalf("unexpected row 0: %+v", rows[0])
	}
}

func TestParseLLDPRegex(t *testing.T) {
	output := `------------------------------------------------
Local Intf: Gi1/0/49
Chassis id: 001a.3008.6c00
Port id: Gi0/24
System Capabilities: B,R
------------------------------------------------
`
	rows := parseLLDPRegex(output)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d: %+v", len(rows), rows)
	}
	if rows[0]["local_interface"] != "Gi1/0/49" || rows[0]["chassis_id"] != "001a.3008.6c00" {
		t.Fatalf("unexpected row: %+v", rows[0])
	}
}

func TestParseCDPRegex(t *testing.T) {
	output := `-------------------------
Device ID: peer.example
Entry address(es):
  IP address: 10.0.0.8
Platform: cisco WS-C3750,  Capabilities: Switch IGMP
Interface: GigabitEthernet1/0/49,  Port ID (outgoing port): GigabitEthernet3/13
`
	rows := parseCDPRegex(output)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d: %+v", len(rows), rows)
	}
	r := rows[0]
	if r["device_id"] != "peer.example" || r["neighbor_port_id"] != "GigabitEthernet3/13" || r["mgmt_ip"] != "10.0.0.8" {
		t.Fatalf("unexpected row: %+v", r)
	}
}

func TestParseInterfaceStatusRegex(t *testing.T) {
	output := "Gi0/1     uplink to core        connected    1      a-full  a-1000\n" +
		"Gi0/2     idle                  notconnect   10     auto    auto\n"
	rows := parseInterfaceStatusRegex(output)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d: %+v", len(rows), rows)
	}
	if rows[1]["interface"] != "Gi0/2" || rows[1]["status"] != "notconnect" {
		t.Fatalf("unexpected row: %+v", rows[1])
	}
}

func TestParseInventoryRegex(t *testing.T) {
	output := `NAME: "1", DESCR: "WS-C3750X-48P-S"
PID: WS-C3750X-48P-S  , VID: V05  , SN: FOC1234X1YZ
`
	rows := parseInventoryRegex(output)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d: %+v", len(rows), rows)
	}
	if rows[0]["serial"] != "FOC1234X1YZ" || rows[0]["part_id"] != "WS-C3750X-48P-S" {
		t.Fatalf("unexpected row: %+v", rows[0])
	}
}
