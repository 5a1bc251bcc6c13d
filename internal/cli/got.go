package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var gotUndo bool

var gotCmd = &cobra.Command{
	Use:   "got <item-id>",
	Short: "Mark an item as gotten",
	Long: `Queue a completion-flag change for an item.

Examples:
  listq got 4f1c9a02
  listq got 4f1c9a02 --undo`,
	Args: cobra.ExactArgs(1),
	Run:  runGot,
}

func init() {
	gotCmd.Flags().BoolVar(&gotUndo, "undo", false, "Clear the gotten flag instead of setting it")
}

func runGot(cmd *cobra.Command, args []string) {
	c := initFullContext()
	defer c.Close()

	itemID := args[0]
	gotten := !gotUndo

	mut := c.Manager.EnqueueMarkGotten(itemID, gotten, baseSnapshot(c, itemID))

	green := color.New(color.FgGreen)
	if gotten {
		green.Printf("Queued item %s as gotten (mutation %s)\n", shortID(itemID), shortID(mut.ID))
	} else {
		green.Printf("Queued item %s as not gotten (mutation %s)\n", shortID(itemID), shortID(mut.ID))
	}
}
