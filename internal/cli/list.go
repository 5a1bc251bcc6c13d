package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List items on the remote list",
	Run:   runList,
}

func runList(cmd *cobra.Command, args []string) {
	c := initFullContext()
	defer c.Close()

	items, err := c.Client.ListItems(context.Background())
	if err != nil {
		exitError("failed to list items: %v", err)
	}

	if len(items) == 0 {
		fmt.Println("List is empty")
		return
	}

	green := color.New(color.FgGreen)
	for _, item := range items {
		mark := "[ ]"
		if item.Gotten {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %s  %s x%d", mark, shortID(item.ID), item.Name, item.Quantity)
		if item.Category != "" {
			line += "  (" + item.Category + ")"
		}
		if item.Gotten {
			green.Println(line)
		} else {
			fmt.Println(line)
		}
	}
}
