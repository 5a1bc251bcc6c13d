package cli

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/kaurvahtra/listq/internal/remote/server"
)

var (
	serverListen  string
	serverDataDir string
	serverToken   string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run a listq server (development)",
	Long: `Run a listq server in the foreground. For production deployments
use the listq-server binary instead.`,
	Run: runServer,
}

func init() {
	serverCmd.Flags().StringVar(&serverListen, "listen", "127.0.0.1:8730", "Listen address")
	serverCmd.Flags().StringVar(&serverDataDir, "data-dir", ".listq-server", "Data directory")
	serverCmd.Flags().StringVar(&serverToken, "token", "", "Bearer token (empty disables auth)")
}

func runServer(cmd *cobra.Command, args []string) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	st, err := server.NewStore(serverDataDir + "/listq-server.db")
	if err != nil {
		exitError("failed to open server store: %v", err)
	}
	defer st.Close()

	cfg := server.DefaultConfig()
	cfg.Token = serverToken

	fmt.Printf("listq server listening on %s\n", serverListen)
	if err := http.ListenAndServe(serverListen, server.Handler(st, cfg, logger)); err != nil {
		exitError("server failed: %v", err)
	}
}
