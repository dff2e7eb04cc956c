// Command swapsync is the offline-first sync client for the SwapSync shop backend.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/swapsync/swapsync-cli/internal/adapters/driven/config/file"
	"github.com/swapsync/swapsync-cli/internal/adapters/driving/cli"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	configDir, err := file.DefaultDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: resolving config directory: %v\n", err)
		return 1
	}

	store, err := file.NewConfigStore(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading config: %v\n", err)
		return 1
	}

	cli.SetVersion(version)
	cli.SetConfigStore(store)
	cli.SetBootstrap(newBootstrap(store, configDir))

	if err := cli.Execute(context.Background()); err != nil {
		return 1
	}
	return 0
}
