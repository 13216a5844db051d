package main

import (
	"github.com/spf13/cobra"

	"github.com/fleetsync/fleetsync/pkg/collect"
	"github.com/fleetsync/fleetsync/pkg/fields"
)

var lldpCmd = &cobra.Command{
	Use:   "lldp",
	Short: "Collect LLDP/CDP neighbor tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		devices, err := app.loadDevices()
		if err != nil {
			return err
		}
		neighbors, devErrs := collect.Neighbors(cmd.Context(), devices, app.collectOptions())
		reportDeviceErrors(devErrs)
		rows := make([]map[string]string, 0, len(neighbors))
		for _, n := range neighbors {
			rows = append(rows, neighborRow(n))
		}
		return app.render(app.registryFor(fields.KindNeighbor), rows)
	},
}
