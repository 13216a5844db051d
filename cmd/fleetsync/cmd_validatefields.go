package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fleetsync/fleetsync/pkg/fields"
)

// validateFieldsCmd checks the -c config file's field_overrides section
// against each kind's default registry, without requiring a device
// catalog or remote inventory connection.
var validateFieldsCmd = &cobra.Command{
	Use:   "validate-fields",
	Short: "Validate the config file's field_overrides section",
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := false
		for _, kind := range fields.Kinds() {
			overrides := app.cfg.Fields.ForKind(kind)
			if len(overrides) == 0 {
				continue
			}
			base := fields.DefaultRegistry(kind)
			errs := fields.ValidateOverrides(base, overrides)
			if len(errs) == 0 {
				fmt.Println(green(fmt.Sprintf("%s: ok", kind)))
				continue
			}
			failed = true
			fmt.Println(red(fmt.Sprintf("%s: %d error(s)", kind, len(errs))))
			for _, e := range errs {
				fmt.Printf("  - %v\n", e)
			}
		}
		if failed {
			return usageErrorf("field_overrides validation failed")
		}
		return nil
	},
}
