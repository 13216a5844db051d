// Command fleetsync is a noun-group CLI over the fleetsync collection and
// reconciliation engine.
//
//	fleetsync <noun> [args] [-d devices.json] [-o table|json] [-c config.yaml] [--dry-run]
//
// Examples:
//
//	fleetsync devices -d devices.json
//	fleetsync interfaces -d devices.json -o json
//	fleetsync sync-netbox -d devices.json -c fleetsync.yaml --dry-run
//	fleetsync pipeline run nightly-sync -d devices.json
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fleetsync/fleetsync/internal/logging"
)

// exitUsageError marks an error that should exit 2 (invalid arguments)
// rather than 1 (recoverable error).
type exitUsageError struct{ err error }

func (e exitUsageError) Error() string { return e.err.Error() }
func (e exitUsageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return exitUsageError{err: fmt.Errorf(format, args...)}
}

// App holds CLI state shared across every subcommand, populated once in
// rootCmd's PersistentPreRunE.
type App struct {
	deviceFile string
	output     string
	configPath string
	transport  string
	dryRun     bool
	verbose    bool

	cfg config
}

var app = &App{}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, red(err.Error()))
		var usageErr exitUsageError
		if asExitUsage(err, &usageErr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func asExitUsage(err error, target *exitUsageError) bool {
	for err != nil {
		if u, ok := err.(exitUsageError); ok {
			*target = u
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}

var rootCmd = &cobra.Command{
	Use:               "fleetsync",
	Short:             "Fleet-wide network device inventory and reconciliation",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if app.verbose {
			_ = logging.SetLevel("debug")
		} else {
			_ = logging.SetLevel("warn")
		}

		cfg, err := loadConfig(app.configPath)
		if err != nil {
			return err
		}
		app.cfg = cfg
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&app.deviceFile, "devices", "d", "", "Device catalog file (JSON)")
	rootCmd.PersistentFlags().StringVarP(&app.output, "output", "o", "table", "Output format: table|json")
	rootCmd.PersistentFlags().StringVarP(&app.configPath, "config", "c", "", "Config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&app.transport, "transport", "", "Override SSH transport driver tag")
	rootCmd.PersistentFlags().BoolVar(&app.dryRun, "dry-run", false, "Preview changes without writing to the remote inventory")
	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "Verbose logging")

	rootCmd.AddGroup(
		&cobra.Group{ID: "collect", Title: "Collection Commands:"},
		&cobra.Group{ID: "sync", Title: "Reconciliation Commands:"},
		&cobra.Group{ID: "pipeline", Title: "Pipeline Commands:"},
		&cobra.Group{ID: "meta", Title: "Configuration & Meta:"},
	)

	for _, cmd := range []*cobra.Command{devicesCmd, macCmd, lldpCmd, interfacesCmd, inventoryCmd, backupCmd} {
		cmd.GroupID = "collect"
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{matchMACCmd, pushDescriptionsCmd, syncNetboxCmd} {
		cmd.GroupID = "sync"
		rootCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(pipelineCmd)
	pipelineCmd.GroupID = "pipeline"

	validateFieldsCmd.GroupID = "meta"
	rootCmd.AddCommand(validateFieldsCmd)
}
