// Package cli implements the command-line interface for listq.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kaurvahtra/listq/internal/config"
	"github.com/kaurvahtra/listq/internal/queue"
	"github.com/kaurvahtra/listq/internal/remote"
	"github.com/kaurvahtra/listq/internal/store"
)

// cmdContext holds common resources for CLI commands.
type cmdContext struct {
	Config  *config.Config
	Store   *store.Store
	Client  remote.Client
	Manager *queue.Manager
}

// Close releases resources held by cmdContext.
func (c *cmdContext) Close() {
	if c.Store != nil {
		c.Store.Close()
	}
}

// initContext initializes config and store.
func initContext() *cmdContext {
	cfg, err := config.Load()
	if err != nil {
		exitError("%v", err)
	}

	st, err := store.New(cfg.DatabasePath())
	if err != nil {
		exitError("failed to open store: %v", err)
	}

	if n, err := st.MigrateLegacy(cfg.Path()); err != nil {
		fmt.Fprintf(os.Stderr, "warning: legacy queue import: %v\n", err)
	} else if n > 0 {
		fmt.Printf("Imported %d mutation(s) from legacy queue\n", n)
	}

	return &cmdContext{Config: cfg, Store: st}
}

// initFullContext initializes config, store, remote client, and queue manager.
func initFullContext() *cmdContext {
	c := initContext()

	hc := remote.NewHTTPClient(c.Config.ServerURL, c.Config.List, c.Config.Token)
	if id, err := c.Store.DeviceID(); err == nil {
		hc.SetClientID(id)
	}
	c.Client = hc

	qcfg := queue.DefaultConfig()
	if n := c.Config.RetryCeiling(); n > 0 {
		qcfg.MaxRetries = n
	}
	if c.Config.BaseDelay > 0 {
		qcfg.BaseDelay = c.Config.BaseDelayDuration()
	}
	if c.Config.MaxDelay > 0 {
		qcfg.MaxDelay = c.Config.MaxDelayDuration()
	}
	c.Manager = queue.New(c.Store, c.Client, qcfg, nil)

	return c
}

var rootCmd = &cobra.Command{
	Use:   "listq",
	Short: "Offline-first shared list client",
	Long: `listq keeps a shared item list in sync with a listq-server.
Edits made while offline are queued durably and pushed with
priority ordering, retry with backoff, and conflict detection.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(gotCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(queueCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(retryCmd)
	rootCmd.AddCommand(serverCmd)
}

// exitError prints an error and exits.
func exitError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

// shortID returns first 8 characters of an ID.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
