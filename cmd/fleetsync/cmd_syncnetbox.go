package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fleetsync/fleetsync/pkg/collect"
	"github.com/fleetsync/fleetsync/pkg/fleetdevice"
	"github.com/fleetsync/fleetsync/pkg/history"
	"github.com/fleetsync/fleetsync/pkg/reconcile"
)

var syncCleanup bool
var syncSite string

var syncNetboxCmd = &cobra.Command{
	Use:   "sync-netbox",
	Short: "Collect the fleet and reconcile it against NetBox",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		devices, err := app.loadDevices()
		if err != nil {
			return err
		}
		core, err := app.syncCore()
		if err != nil {
			return err
		}
		opts := app.collectOptions()

		ifaces, ifaceErrs := collect.Interfaces(ctx, devices, opts)
		neighbors, nbErrs := collect.Neighbors(ctx, devices, opts)
		items, invErrs := collect.Inventory(ctx, devices, opts)
		reportDeviceErrors(ifaceErrs)
		reportDeviceErrors(nbErrs)
		reportDeviceErrors(invErrs)

		data := reconcile.AllData{
			Devices:    devices,
			Interfaces: ifaces,
			Neighbors:  neighbors,
			Inventory:  items,
		}

		allOpts := reconcile.AllOptions{
			Scope: reconcile.Scope{Tenant: app.cfg.RemoteInventoryTenant},
			Devices: reconcile.DeviceSyncOptions{
				Site:         syncSite,
				Tenant:       app.cfg.RemoteInventoryTenant,
				Role:         deviceRole,
				Manufacturer: deviceManufacturer,
				DeviceType:   deviceType,
				Cleanup:      syncCleanup,
			},
			Interface: reconcile.InterfaceSyncOptions{Cleanup: syncCleanup},
			Cable:     reconcile.CableSyncOptions{Cleanup: syncCleanup},
			Inventory: reconcile.InventorySyncOptions{Cleanup: syncCleanup},
		}

		start := time.Now()
		stats := reconcile.SyncAll(ctx, core, data, allOpts)
		printSyncStats(stats)

		if store, herr := app.historyStore(); herr != nil {
			fmt.Printf("history: %v\n", herr)
		} else if err := store.Append(syncHistoryEntry(stats, devices, start)); err != nil {
			fmt.Printf("history: %v\n", err)
		}
		return nil
	},
}

func init() {
	syncNetboxCmd.Flags().BoolVar(&syncCleanup, "cleanup", false, "Delete remote objects no longer observed in the current scan")
	syncNetboxCmd.Flags().StringVar(&syncSite, "site", "", "NetBox site slug new devices are created under")
}

func deviceRole(dev *fleetdevice.Device) string {
	if dev.Role != "" {
		return dev.Role
	}
	return "network-device"
}

func deviceManufacturer(dev *fleetdevice.Device) string {
	vendor, _, _ := strings.Cut(dev.PlatformTag, "_")
	if vendor == "" {
		return "unknown"
	}
	return strings.ToUpper(vendor[:1]) + vendor[1:]
}

func deviceType(dev *fleetdevice.Device) string {
	if dev.Model != "" {
		return dev.Model
	}
	return dev.PlatformTag
}

// syncHistoryEntry builds the audit-trail record for one sync-netbox run:
// success if nothing failed, error if every kind's sync call itself errored
// out, partial otherwise.
func syncHistoryEntry(stats reconcile.AllStats, devices []*fleetdevice.Device, start time.Time) history.Entry {
	kindStats := map[string]history.KindStats{
		"devices":    toKindStats(stats.Devices),
		"interfaces": toKindStats(stats.Interfaces),
		"ips":        toKindStats(stats.IPs),
		"vlans":      toKindStats(stats.VLANs),
		"cables":     toKindStats(stats.Cables),
		"inventory":  toKindStats(stats.Inventory),
	}

	diff := map[string][]string{
		"devices":    stats.Devices.Details,
		"interfaces": stats.Interfaces.Details,
		"ips":        stats.IPs.Details,
		"vlans":      stats.VLANs.Details,
		"cables":     stats.Cables.Details,
		"inventory":  stats.Inventory.Details,
	}

	hostnames := make([]string, len(devices))
	for i, d := range devices {
		hostnames[i] = d.Host
	}

	status := history.StatusSuccess
	anyFailed := len(stats.Errors) > 0
	for _, ks := range kindStats {
		if ks.Failed > 0 {
			anyFailed = true
		}
	}
	if anyFailed {
		status = history.StatusPartial
	}
	if len(stats.Errors) == len(kindStats) {
		status = history.StatusError
	}

	var errMsg string
	for kind, err := range stats.Errors {
		errMsg += fmt.Sprintf("%s: %v; ", kind, err)
	}

	return history.Entry{
		ID:           newHistoryID(),
		Timestamp:    start,
		OperationTag: "sync-netbox",
		Status:       status,
		DeviceCount:  len(devices),
		DurationMS:   time.Since(start).Milliseconds(),
		Devices:      hostnames,
		Stats:        kindStats,
		Diff:         diff,
		Error:        strings.TrimSuffix(errMsg, "; "),
		TriggeredBy:  "cli",
	}
}

func toKindStats(s reconcile.Stats) history.KindStats {
	return history.KindStats{
		Created:       s.Created,
		Updated:       s.Updated,
		Deleted:       s.Deleted,
		Skipped:       s.Skipped,
		Failed:        s.Failed,
		AlreadyExists: s.AlreadyExists,
	}
}

func printSyncStats(stats reconcile.AllStats) {
	print1 := func(kind string, s reconcile.Stats) {
		fmt.Printf("%-10s created=%d updated=%d deleted=%d skipped=%d failed=%d\n",
			kind, s.Created, s.Updated, s.Deleted, s.Skipped, s.Failed)
		for _, d := range s.Details {
			fmt.Printf("  %s\n", d)
		}
	}
	print1("devices", stats.Devices)
	print1("interfaces", stats.Interfaces)
	print1("ips", stats.IPs)
	print1("vlans", stats.VLANs)
	print1("cables", stats.Cables)
	print1("inventory", stats.Inventory)
	for kind, err := range stats.Errors {
		fmt.Printf("%s: %v\n", kind, err)
	}
}
