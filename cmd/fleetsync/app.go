package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/fleetsync/fleetsync/pkg/cliout"
	"github.com/fleetsync/fleetsync/pkg/collect"
	"github.com/fleetsync/fleetsync/pkg/fields"
	"github.com/fleetsync/fleetsync/pkg/fleetdevice"
	"github.com/fleetsync/fleetsync/pkg/fleetssh"
	"github.com/fleetsync/fleetsync/pkg/history"
	"github.com/fleetsync/fleetsync/pkg/netboxclient"
	"github.com/fleetsync/fleetsync/pkg/pipelinecat"
	"github.com/fleetsync/fleetsync/pkg/reconcile"
	"github.com/fleetsync/fleetsync/pkg/repo"
	"github.com/fleetsync/fleetsync/pkg/statecache"
	"time"
)

// loadDevices opens the -d catalog file and returns every enabled device.
// Every collect/sync command needs exactly this, so it lives on App rather
// than being copy-pasted per command.
func (a *App) loadDevices() ([]*fleetdevice.Device, error) {
	if a.deviceFile == "" {
		return nil, usageErrorf("a device catalog is required: use -d <devices.json>")
	}
	catalog, err := repo.OpenDeviceCatalog(a.deviceFile)
	if err != nil {
		return nil, fmt.Errorf("opening device catalog: %w", err)
	}
	var out []*fleetdevice.Device
	for _, dev := range catalog.List() {
		if dev.Enabled {
			out = append(out, dev)
		}
	}
	return out, nil
}

// credentials resolves SSH login material: environment variables take
// precedence over the config file, matching the "never persist
// credentials" rule — only ever held in memory for the run's lifetime.
func (a *App) credentials() fleetdevice.Credentials {
	return fleetdevice.Credentials{
		Username:     envOrConfig("FLEETSYNC_USERNAME", a.cfg.Credentials.Username),
		Password:     envOrConfig("FLEETSYNC_PASSWORD", a.cfg.Credentials.Password),
		EnableSecret: envOrConfig("FLEETSYNC_ENABLE_SECRET", a.cfg.Credentials.EnableSecret),
	}
}

func (a *App) collectOptions() collect.Options {
	opts := collect.Options{
		Credentials: a.credentials(),
		MaxWorkers:  a.cfg.MaxWorkers,
		Cache:       a.cache(),
	}
	if a.transport != "" {
		opts.SSH = fleetssh.Options{DriverTag: a.transport}
	}
	return opts
}

// cache builds the optional command-output cache from the -c config file's
// cache section, or returns nil (caching disabled) when no addr is set.
func (a *App) cache() *statecache.Client {
	if a.cfg.Cache.Addr == "" {
		return nil
	}
	ttl := time.Duration(a.cfg.Cache.TTLSeconds) * time.Second
	return statecache.New(statecache.Options{
		Addr:     a.cfg.Cache.Addr,
		Password: a.cfg.Cache.Password,
		DB:       a.cfg.Cache.DB,
		TTL:      ttl,
	})
}

// netboxClient builds the remote-inventory client from config, or nil if
// no base_url is configured — callers that need one treat that as a
// usage error.
func (a *App) netboxClient() (*netboxclient.Client, error) {
	if a.cfg.Netbox.BaseURL == "" {
		return nil, usageErrorf("remote inventory not configured: set netbox.base_url in -c <config>")
	}
	return netboxclient.New(netboxclient.Config{
		BaseURL:     a.cfg.Netbox.BaseURL,
		Token:       envOrConfig("FLEETSYNC_NETBOX_TOKEN", a.cfg.Netbox.Token),
		HTTPTimeout: a.cfg.Netbox.HTTPTimeout,
		Retries:     a.cfg.Netbox.Retries,
	}), nil
}

func (a *App) syncCore() (*reconcile.SyncCore, error) {
	client, err := a.netboxClient()
	if err != nil {
		return nil, err
	}
	return reconcile.NewSyncCore(client, a.dryRun), nil
}

// pipelineCatalog opens the on-disk pipeline catalog for the pipeline
// noun group's subcommands.
func (a *App) pipelineCatalog() (*pipelinecat.Catalog, error) {
	cat, err := pipelinecat.OpenCatalog(a.cfg.pipelinesDir())
	if err != nil {
		return nil, fmt.Errorf("opening pipeline catalog: %w", err)
	}
	return cat, nil
}

// historyStore opens the audit-trail file, creating it on first write if it
// doesn't exist yet. CLI commands append one entry per completed run.
func (a *App) historyStore() (*history.Store, error) {
	store, err := history.Open(a.cfg.historyFile(), history.DefaultCap)
	if err != nil {
		return nil, fmt.Errorf("opening history store: %w", err)
	}
	return store, nil
}

// newHistoryID generates a random hex id for a history entry written
// directly by a CLI command (commands that run through the async task
// manager instead reuse the task id).
func newHistoryID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// format parses the -o flag once, rejecting an unknown value as a usage
// error (exit 2) rather than a recoverable one.
func (a *App) format() (cliout.Format, error) {
	f, err := cliout.ParseFormat(a.output)
	if err != nil {
		return f, usageErrorf("%v", err)
	}
	return f, nil
}

// registryFor returns kind's default field registry with any overrides
// from the config file's field_overrides section applied on top.
func (a *App) registryFor(kind fields.EntityKind) *fields.Registry {
	base := fields.DefaultRegistry(kind)
	if overrides := a.cfg.Fields.ForKind(kind); len(overrides) > 0 {
		return base.Override(overrides)
	}
	return base
}

// render builds a cliout.Document from rows keyed by reg's internal field
// names and writes it to stdout in the requested format.
func (a *App) render(reg *fields.Registry, rows []map[string]string) error {
	format, err := a.format()
	if err != nil {
		return err
	}
	doc := cliout.NewDocument(reg)
	for _, row := range rows {
		doc.AddRow(row)
	}
	return doc.Render(os.Stdout, format)
}

// reportDeviceErrors prints one line per failed device to stderr without
// failing the command: partial collection results are still useful even
// when a handful of devices in the batch were unreachable.
func reportDeviceErrors(errs []collect.DeviceError) {
	for _, e := range errs {
		fmt.Fprintf(os.Stderr, "%s: %v\n", e.Device.Host, e.Err)
	}
}
