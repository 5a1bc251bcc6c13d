package cli

import (
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kaurvahtra/listq/internal/models"
)

var (
	addQty      int
	addCategory string
	addNotes    string
)

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Queue a new item for the list",
	Long: `Queue creation of a new list item. The write is executed on the
next push.

Examples:
  listq add "Milk"
  listq add "Eggs" --qty 12 --category dairy --notes "free range"`,
	Args: cobra.ExactArgs(1),
	Run:  runAdd,
}

func init() {
	addCmd.Flags().IntVar(&addQty, "qty", 1, "Quantity")
	addCmd.Flags().StringVar(&addCategory, "category", "", "Category")
	addCmd.Flags().StringVar(&addNotes, "notes", "", "Notes")
}

func runAdd(cmd *cobra.Command, args []string) {
	c := initFullContext()
	defer c.Close()

	item := &models.Item{
		ID:        uuid.New().String(),
		Name:      args[0],
		Quantity:  addQty,
		Category:  addCategory,
		Notes:     addNotes,
		UpdatedAt: time.Now().UnixMilli(),
	}

	mut := c.Manager.EnqueueAdd(item)

	green := color.New(color.FgGreen)
	green.Printf("Queued add of %q (item %s, mutation %s)\n", item.Name, shortID(item.ID), shortID(mut.ID))
}
