// Command fleetsyncd serves pkg/fleetapi's collection/reconciliation
// interfaces over HTTP. It is an illustrative adapter, not a full
// production server: no TLS termination, no auth middleware, no rate
// limiting — those are deployment concerns left to the operator's
// reverse proxy. Service boundary ends at the process.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fleetsync/fleetsync/internal/logging"
	"github.com/fleetsync/fleetsync/pkg/collect"
	"github.com/fleetsync/fleetsync/pkg/fleetapi"
	"github.com/fleetsync/fleetsync/pkg/history"
	"github.com/fleetsync/fleetsync/pkg/netboxclient"
	"github.com/fleetsync/fleetsync/pkg/pipelinecat"
	"github.com/fleetsync/fleetsync/pkg/reconcile"
	"github.com/fleetsync/fleetsync/pkg/statecache"
	"github.com/fleetsync/fleetsync/pkg/task"
)

func main() {
	listenAddr := flag.String("listen", ":8765", "HTTP listen address")
	netboxURL := flag.String("netbox-url", os.Getenv("FLEETSYNC_NETBOX_URL"), "Remote inventory base URL")
	netboxToken := flag.String("netbox-token", os.Getenv("FLEETSYNC_NETBOX_TOKEN"), "Remote inventory API token")
	pipelinesDir := flag.String("pipelines-dir", "pipelines", "Pipeline catalog directory")
	historyPath := flag.String("history-file", "fleetsync-history.json", "Audit history file")
	cacheAddr := flag.String("cache-addr", os.Getenv("FLEETSYNC_CACHE_ADDR"), "Optional Redis address for the collector command-output cache")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	if *verbose {
		_ = logging.SetLevel("debug")
	}

	if err := run(*listenAddr, *netboxURL, *netboxToken, *pipelinesDir, *historyPath, *cacheAddr); err != nil {
		logging.Log.Fatal(err)
	}
}

func run(listenAddr, netboxURL, netboxToken, pipelinesDir, historyPath, cacheAddr string) error {
	taskManager := task.NewManager(1000)

	historyStore, err := history.Open(historyPath, history.DefaultCap)
	if err != nil {
		return fmt.Errorf("opening history store: %w", err)
	}

	catalog, err := pipelinecat.OpenCatalog(pipelinesDir)
	if err != nil {
		return fmt.Errorf("opening pipeline catalog: %w", err)
	}

	var client *netboxclient.Client
	if netboxURL != "" {
		client = netboxclient.New(netboxclient.Config{BaseURL: netboxURL, Token: netboxToken})
	}
	core := reconcile.NewSyncCore(client, false)

	var cache *statecache.Client
	if cacheAddr != "" {
		cache = statecache.New(statecache.Options{Addr: cacheAddr})
	}

	collector := fleetapi.PipelineCollector{Options: collect.Options{Cache: cache}}
	syncer := fleetapi.PipelineSyncer{Core: core}
	exporter := fleetapi.PipelineExporter{Write: func(target string, data any) error {
		logging.Log.WithField("target", target).Info("export step completed")
		return nil
	}}

	server := NewServer(
		WithListenAddr(listenAddr),
	)
	server.Collect = &fleetapi.CollectServiceImpl{Manager: taskManager, Cache: cache}
	server.Sync = &fleetapi.SyncServiceImpl{Manager: taskManager, Core: core}
	server.Pipeline = &fleetapi.PipelineServiceImpl{
		Catalog:   catalog,
		Manager:   taskManager,
		Collector: collector,
		Syncer:    syncer,
		Exporter:  exporter,
	}
	server.Tasks = fleetapi.TaskServiceImpl{Manager: taskManager}
	server.History = fleetapi.HistoryServiceImpl{Store: historyStore}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Run() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(ctx)
	}
}
