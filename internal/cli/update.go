package cli

import (
	"context"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kaurvahtra/listq/internal/models"
)

var (
	updateName     string
	updateQty      int
	updateCategory string
	updateNotes    string
)

var updateCmd = &cobra.Command{
	Use:   "update <item-id>",
	Short: "Queue an update to an item",
	Long: `Queue a partial update to an existing item. Only the supplied
flags are changed.

Examples:
  listq update 4f1c9a02 --qty 3
  listq update 4f1c9a02 --name "Whole Milk" --notes "2 liters"`,
	Args: cobra.ExactArgs(1),
	Run:  runUpdate,
}

func init() {
	updateCmd.Flags().StringVar(&updateName, "name", "", "New name")
	updateCmd.Flags().IntVar(&updateQty, "qty", -1, "New quantity")
	updateCmd.Flags().StringVar(&updateCategory, "category", "", "New category")
	updateCmd.Flags().StringVar(&updateNotes, "notes", "", "New notes")
}

func runUpdate(cmd *cobra.Command, args []string) {
	c := initFullContext()
	defer c.Close()

	itemID := args[0]
	patch := &models.ItemPatch{}
	if cmd.Flags().Changed("name") {
		patch.Name = &updateName
	}
	if cmd.Flags().Changed("qty") {
		patch.Quantity = &updateQty
	}
	if cmd.Flags().Changed("category") {
		patch.Category = &updateCategory
	}
	if cmd.Flags().Changed("notes") {
		patch.Notes = &updateNotes
	}

	mut := c.Manager.EnqueueUpdate(itemID, patch, baseSnapshot(c, itemID))

	green := color.New(color.FgGreen)
	green.Printf("Queued update of item %s (mutation %s)\n", shortID(itemID), shortID(mut.ID))
}

// baseSnapshot fetches the current remote state the edit is made against.
// The conflict pre-check later compares it to the remote at push time.
// Returns nil when offline; the pre-check is skipped for such mutations.
func baseSnapshot(c *cmdContext, itemID string) *models.Item {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	base, err := c.Client.GetItem(ctx, itemID)
	if err != nil {
		return nil
	}
	return base
}
