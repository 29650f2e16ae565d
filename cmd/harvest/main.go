// Command harvest retrieves the items changed on a remote platform since
// the last run and writes them as JSON lines.
//
// Usage:
//
//	harvest fetch confluence https://wiki.example.com --workers 4
//	harvest fetch discourse https://forum.example.com --from-date 2024-01-01
//	harvest checkpoint show
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/harvest/internal/adapters/driven/config/file"
	"github.com/custodia-labs/harvest/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/harvest/internal/adapters/driving/cli"
	"github.com/custodia-labs/harvest/internal/core/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// homeEnv overrides the directory holding configuration and state.
const homeEnv = "HARVEST_HOME"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	home := os.Getenv(homeEnv)

	dataDir := ""
	if home != "" {
		dataDir = filepath.Join(home, "data")
	}

	configStore, err := file.NewConfigStore(home)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		return err
	}

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store failed: %v\n", err)
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "close store failed: %v\n", closeErr)
		}
	}()

	syncStore := store.SyncStateStore()
	cli.SetVersion(version)
	cli.Configure(cli.Dependencies{
		HarvestService: services.NewHarvestOrchestrator(syncStore),
		SyncStore:      syncStore,
		ArchiveStore:   store.ArchiveStore(),
		ConfigStore:    configStore,
	})

	return cli.Execute(ctx)
}
