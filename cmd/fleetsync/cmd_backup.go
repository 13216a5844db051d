package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fleetsync/fleetsync/pkg/collect"
)

var backupOutDir string

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Capture running-configuration backups",
	RunE: func(cmd *cobra.Command, args []string) error {
		devices, err := app.loadDevices()
		if err != nil {
			return err
		}
		snapshots, devErrs := collect.ConfigBackup(cmd.Context(), devices, app.collectOptions())
		reportDeviceErrors(devErrs)

		if backupOutDir == "" {
			for _, s := range snapshots {
				fmt.Printf("%s: %d bytes (captured %s)\n", s.DeviceHostname, len(s.Config), s.CapturedAt.Format("2006-01-02T15:04:05Z07:00"))
			}
			return nil
		}

		if err := os.MkdirAll(backupOutDir, 0o750); err != nil {
			return fmt.Errorf("creating backup directory: %w", err)
		}
		for _, s := range snapshots {
			name := s.DeviceHostname
			if name == "" {
				name = s.DeviceHost
			}
			path := filepath.Join(backupOutDir, name+".cfg")
			if err := os.WriteFile(path, []byte(s.Config), 0o640); err != nil {
				return fmt.Errorf("writing backup for %s: %w", name, err)
			}
			fmt.Printf("%s: saved %s\n", name, path)
		}
		return nil
	},
}

func init() {
	backupCmd.Flags().StringVar(&backupOutDir, "out-dir", "", "Directory to write per-device backup files (default: print sizes only)")
}
