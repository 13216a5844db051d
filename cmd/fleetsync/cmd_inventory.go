package main

import (
	"github.com/spf13/cobra"

	"github.com/fleetsync/fleetsync/pkg/collect"
	"github.com/fleetsync/fleetsync/pkg/fields"
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Collect hardware inventory (modules, SFPs, PSUs, fans)",
	RunE: func(cmd *cobra.Command, args []string) error {
		devices, err := app.loadDevices()
		if err != nil {
			return err
		}
		items, devErrs := collect.Inventory(cmd.Context(), devices, app.collectOptions())
		reportDeviceErrors(devErrs)
		rows := make([]map[string]string, 0, len(items))
		for _, item := range items {
			rows = append(rows, inventoryItemRow(item))
		}
		return app.render(app.registryFor(fields.KindInventory), rows)
	},
}
