package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fleetsync/fleetsync/pkg/collect"
	"github.com/fleetsync/fleetsync/pkg/fleetdevice"
	"github.com/fleetsync/fleetsync/pkg/fleetssh"
	"github.com/fleetsync/fleetsync/pkg/model"
	"github.com/fleetsync/fleetsync/pkg/platform"
)

// pushDescriptionsCmd derives an interface description from each observed
// LLDP/CDP neighbor ("to <remote-hostname>:<remote-port>") and pushes it to
// the owning device over SSH, honoring --dry-run by only printing the
// config lines it would send.
var pushDescriptionsCmd = &cobra.Command{
	Use:   "push-descriptions",
	Short: "Push neighbor-derived interface descriptions to devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		devices, err := app.loadDevices()
		if err != nil {
			return err
		}
		byHostname := map[string]*fleetdevice.Device{}
		for _, d := range devices {
			key := d.Hostname
			if key == "" {
				key = d.Host
			}
			byHostname[key] = d
		}

		neighbors, devErrs := collect.Neighbors(ctx, devices, app.collectOptions())
		reportDeviceErrors(devErrs)

		creds := app.credentials()
		for _, n := range neighbors {
			dev, ok := byHostname[n.LocalDevice]
			if !ok {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: device not in catalog, skipping\n", n.LocalDevice)
				continue
			}
			description := neighborDescription(n)
			lines := descriptionLines(dev, n.LocalInterfaceShort, description)

			if app.dryRun {
				fmt.Printf("%s/%s: would push %q\n", n.LocalDevice, n.LocalInterfaceShort, description)
				continue
			}
			if err := pushConfigLines(ctx, dev, creds, lines); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s/%s: %v\n", n.LocalDevice, n.LocalInterfaceShort, err)
				continue
			}
			fmt.Printf("%s/%s: pushed %q\n", n.LocalDevice, n.LocalInterfaceShort, description)
		}
		return nil
	},
}

func neighborDescription(n model.NeighborRecord) string {
	if n.RemotePort != "" {
		return "to " + n.RemoteHostname + ":" + n.RemotePort
	}
	return "to " + n.RemoteHostname
}

func descriptionLines(dev *fleetdevice.Device, ifaceName, description string) []string {
	entry, _ := platform.LookupOrFallback(dev.PlatformTag)
	return platform.DescriptionConfigLines(entry.DriverTag, ifaceName, description)
}

func pushConfigLines(ctx context.Context, dev *fleetdevice.Device, creds fleetdevice.Credentials, lines []string) error {
	return fleetssh.WithSession(ctx, dev, creds, fleetssh.Options{}, func(s *fleetssh.Session) error {
		for _, line := range lines {
			if _, err := s.SendCommand(line); err != nil {
				return err
			}
		}
		return nil
	})
}
