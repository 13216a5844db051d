package main

import (
	"github.com/spf13/cobra"

	"github.com/fleetsync/fleetsync/pkg/fields"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List devices from the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		devices, err := app.loadDevices()
		if err != nil {
			return err
		}
		rows := make([]map[string]string, 0, len(devices))
		for _, d := range devices {
			rows = append(rows, deviceRow(d))
		}
		return app.render(app.registryFor(fields.KindDevice), rows)
	},
}
