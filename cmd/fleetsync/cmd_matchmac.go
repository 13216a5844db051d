package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fleetsync/fleetsync/pkg/collect"
	"github.com/fleetsync/fleetsync/pkg/model"
)

// matchMACCmd previews how cable reconciliation will resolve MAC-only
// neighbor identities (model.NeighborMAC) against the remote inventory,
// without writing anything — the same lookup chain pkg/reconcile.CableSyncer
// uses internally, surfaced as a standalone diagnostic so an operator can
// see which links will fail to resolve before running sync-netbox.
var matchMACCmd = &cobra.Command{
	Use:   "match-mac",
	Short: "Preview MAC-address-only neighbor resolution against NetBox",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		devices, err := app.loadDevices()
		if err != nil {
			return err
		}
		client, err := app.netboxClient()
		if err != nil {
			return err
		}

		neighbors, devErrs := collect.Neighbors(ctx, devices, app.collectOptions())
		reportDeviceErrors(devErrs)

		any := false
		for _, n := range neighbors {
			if n.NeighborType != model.NeighborMAC {
				continue
			}
			any = true
			obj, found, err := client.LookupDeviceByMAC(ctx, n.RemoteMAC)
			switch {
			case err != nil:
				fmt.Printf("%s/%s -> mac %s: lookup error: %v\n", n.LocalDevice, n.LocalInterfaceShort, n.RemoteMAC, err)
			case !found:
				fmt.Printf("%s/%s -> mac %s: %s\n", n.LocalDevice, n.LocalInterfaceShort, n.RemoteMAC, red("unresolved"))
			default:
				fmt.Printf("%s/%s -> mac %s: %s\n", n.LocalDevice, n.LocalInterfaceShort, n.RemoteMAC, green(obj.StringField("name")))
			}
		}
		if !any {
			fmt.Println("no MAC-only neighbor identities observed")
		}
		return nil
	},
}
