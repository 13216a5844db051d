package main

import (
	"github.com/spf13/cobra"

	"github.com/fleetsync/fleetsync/pkg/collect"
	"github.com/fleetsync/fleetsync/pkg/fields"
)

var interfacesCmd = &cobra.Command{
	Use:   "interfaces",
	Short: "Collect interface tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		devices, err := app.loadDevices()
		if err != nil {
			return err
		}
		ifaces, devErrs := collect.Interfaces(cmd.Context(), devices, app.collectOptions())
		reportDeviceErrors(devErrs)
		rows := make([]map[string]string, 0, len(ifaces))
		for _, i := range ifaces {
			rows = append(rows, interfaceRow(i))
		}
		return app.render(app.registryFor(fields.KindInterface), rows)
	},
}
