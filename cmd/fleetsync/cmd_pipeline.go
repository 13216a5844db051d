package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fleetsync/fleetsync/pkg/fleetapi"
	"github.com/fleetsync/fleetsync/pkg/fleetdevice"
	"github.com/fleetsync/fleetsync/pkg/history"
	"github.com/fleetsync/fleetsync/pkg/pipeline"
	"github.com/fleetsync/fleetsync/pkg/pipelinecat"
	"github.com/fleetsync/fleetsync/pkg/reconcile"
)

// pipelineCmd groups the pipeline catalog's CRUD and run subcommands under
// one noun, mirroring the cmd/newtron profile subcommands.
var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Manage and run collection/sync pipelines",
}

func init() {
	pipelineCmd.AddCommand(pipelineListCmd, pipelineShowCmd, pipelineRunCmd, pipelineValidateCmd, pipelineCreateCmd, pipelineDeleteCmd)
}

var pipelineListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pipelines in the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := app.pipelineCatalog()
		if err != nil {
			return err
		}
		for _, p := range cat.List() {
			status := "disabled"
			if p.Enabled {
				status = "enabled"
			}
			fmt.Printf("%s\t%s\t%s\t(%d steps)\n", p.ID, p.Name, status, len(p.Steps))
		}
		return nil
	},
}

var pipelineShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a pipeline's full definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := app.pipelineCatalog()
		if err != nil {
			return err
		}
		p, ok := cat.Get(args[0])
		if !ok {
			return usageErrorf("pipeline %q not found", args[0])
		}
		out, err := yaml.Marshal(p)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	},
}

var pipelineValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a pipeline YAML file without saving it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
		var p pipelinecat.Pipeline
		if err := yaml.Unmarshal(raw, &p); err != nil {
			return usageErrorf("parsing %s: %v", args[0], err)
		}
		if err := pipelinecat.Validate(&p); err != nil {
			return usageErrorf("%v", err)
		}
		fmt.Println(green("pipeline " + p.ID + " is valid"))
		return nil
	},
}

var pipelineCreateCmd = &cobra.Command{
	Use:   "create <file>",
	Short: "Validate and save a pipeline YAML file into the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
		var p pipelinecat.Pipeline
		if err := yaml.Unmarshal(raw, &p); err != nil {
			return usageErrorf("parsing %s: %v", args[0], err)
		}
		if err := pipelinecat.Validate(&p); err != nil {
			return usageErrorf("%v", err)
		}
		cat, err := app.pipelineCatalog()
		if err != nil {
			return err
		}
		if err := cat.Save(&p); err != nil {
			return fmt.Errorf("saving pipeline %s: %w", p.ID, err)
		}
		fmt.Println(green("saved pipeline " + p.ID))
		return nil
	},
}

var pipelineDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a pipeline from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := app.pipelineCatalog()
		if err != nil {
			return err
		}
		if err := cat.Delete(args[0]); err != nil {
			return fmt.Errorf("deleting pipeline %s: %w", args[0], err)
		}
		fmt.Println(green("deleted pipeline " + args[0]))
		return nil
	},
}

var pipelineRunCmd = &cobra.Command{
	Use:   "run <id>",
	Short: "Run a pipeline against the device catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := app.pipelineCatalog()
		if err != nil {
			return err
		}
		p, ok := cat.Get(args[0])
		if !ok {
			return usageErrorf("pipeline %q not found", args[0])
		}

		devices, err := app.loadDevices()
		if err != nil {
			return err
		}

		core, err := app.syncCore()
		if err != nil {
			return err
		}

		collector := fleetapi.PipelineCollector{Options: app.collectOptions()}
		syncer := fleetapi.PipelineSyncer{Core: core, Options: reconcile.AllOptions{}}
		exporter := fleetapi.PipelineExporter{Write: func(target string, data any) error {
			fmt.Printf("export[%s]: %v\n", target, data)
			return nil
		}}

		exec := &pipeline.Executor{Collector: collector, Syncer: syncer, Exporter: exporter}
		rc := pipeline.NewRunContext(devices, app.credentials(), nil, app.dryRun)
		start := time.Now()
		result := exec.Run(cmd.Context(), p, rc)

		for _, step := range result.Steps {
			fmt.Printf("%s\t%s\t%s\n", step.StepID, step.Status, step.Message)
		}
		fmt.Println(bold("pipeline " + string(result.Status)))

		if store, herr := app.historyStore(); herr != nil {
			fmt.Printf("history: %v\n", herr)
		} else if err := store.Append(pipelineHistoryEntry(p.ID, result, devices, start)); err != nil {
			fmt.Printf("history: %v\n", err)
		}

		if result.Status == pipeline.PipelineFailed {
			return fmt.Errorf("pipeline %s failed", args[0])
		}
		return nil
	},
}

// pipelineHistoryEntry builds the audit-trail record for one pipeline run,
// one diff line per step recording its terminal status and message.
func pipelineHistoryEntry(pipelineID string, result pipeline.PipelineResult, devices []*fleetdevice.Device, start time.Time) history.Entry {
	status := history.StatusSuccess
	switch result.Status {
	case pipeline.PipelineFailed:
		status = history.StatusError
	case pipeline.PipelineCancelled:
		status = history.StatusPartial
	}

	lines := make([]string, 0, len(result.Steps))
	for _, step := range result.Steps {
		lines = append(lines, fmt.Sprintf("%s: %s %s", step.StepID, step.Status, step.Message))
	}

	hostnames := make([]string, len(devices))
	for i, d := range devices {
		hostnames[i] = d.Host
	}

	return history.Entry{
		ID:           newHistoryID(),
		Timestamp:    start,
		OperationTag: "pipeline:" + pipelineID,
		Status:       status,
		DeviceCount:  len(devices),
		DurationMS:   time.Since(start).Milliseconds(),
		Devices:      hostnames,
		Diff:         map[string][]string{"steps": lines},
		TriggeredBy:  "pipeline:" + pipelineID,
	}
}
