package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kaurvahtra/listq/internal/config"
	"github.com/kaurvahtra/listq/internal/store"
)

var (
	initList  string
	initToken string
)

var initCmd = &cobra.Command{
	Use:   "init <server-url>",
	Short: "Initialize a listq directory",
	Long: `Initialize a new .listq directory in the current directory.

Examples:
  listq init http://localhost:8730
  listq init http://localhost:8730 --list groceries --token s3cret`,
	Args: cobra.ExactArgs(1),
	Run:  runInit,
}

func init() {
	initCmd.Flags().StringVar(&initList, "list", "default", "List name on the server")
	initCmd.Flags().StringVar(&initToken, "token", "", "Bearer token for the server")
}

func runInit(cmd *cobra.Command, args []string) {
	cfg, err := config.Initialize(args[0], initList, initToken)
	if err != nil {
		exitError("%v", err)
	}

	st, err := store.New(cfg.DatabasePath())
	if err != nil {
		exitError("failed to create store: %v", err)
	}
	defer st.Close()

	fmt.Printf("Initialized listq directory in %s\n", cfg.Path())
}
