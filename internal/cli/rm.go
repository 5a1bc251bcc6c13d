package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <item-id>",
	Short: "Queue deletion of an item",
	Long: `Queue deletion of an item. Deletes carry the highest priority and
run before queued adds and updates on the next push.`,
	Args: cobra.ExactArgs(1),
	Run:  runRm,
}

func runRm(cmd *cobra.Command, args []string) {
	c := initFullContext()
	defer c.Close()

	mut := c.Manager.EnqueueDelete(args[0])

	green := color.New(color.FgGreen)
	green.Printf("Queued delete of item %s (mutation %s)\n", shortID(args[0]), shortID(mut.ID))
}
