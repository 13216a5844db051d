package main

import (
	"github.com/spf13/cobra"

	"github.com/fleetsync/fleetsync/pkg/collect"
	"github.com/fleetsync/fleetsync/pkg/fields"
)

var macCmd = &cobra.Command{
	Use:   "mac",
	Short: "Collect MAC address tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		devices, err := app.loadDevices()
		if err != nil {
			return err
		}
		entries, devErrs := collect.MACTable(cmd.Context(), devices, app.collectOptions())
		reportDeviceErrors(devErrs)
		rows := make([]map[string]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, macEntryRow(e))
		}
		return app.render(app.registryFor(fields.KindMACEntry), rows)
	},
}
