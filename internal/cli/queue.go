package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kaurvahtra/listq/internal/models"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Show pending offline mutations",
	Run:   runQueueStatus,
}

var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every queued mutation",
	Run:   runQueueList,
}

var queueClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every queued mutation",
	Long:  `Remove every queued mutation unconditionally. Irreversible.`,
	Run:   runQueueClear,
}

var queueRmCmd = &cobra.Command{
	Use:   "rm <mutation-id>",
	Short: "Remove a single queued mutation",
	Args:  cobra.ExactArgs(1),
	Run:   runQueueRm,
}

func init() {
	queueCmd.AddCommand(queueListCmd)
	queueCmd.AddCommand(queueClearCmd)
	queueCmd.AddCommand(queueRmCmd)
}

func runQueueStatus(cmd *cobra.Command, args []string) {
	c := initFullContext()
	defer c.Close()

	status := c.Manager.Status()

	fmt.Printf("Queued mutations: %d\n", status.Total)
	fmt.Printf("  pending:    %d\n", status.Pending)
	fmt.Printf("  processing: %d\n", status.Processing)
	if status.Failed > 0 {
		color.New(color.FgRed).Printf("  failed:     %d\n", status.Failed)
	} else {
		fmt.Printf("  failed:     %d\n", status.Failed)
	}
	if status.LastProcessed > 0 {
		fmt.Printf("Last push: %s\n", time.UnixMilli(status.LastProcessed).Format(time.RFC3339))
	}
}

func runQueueList(cmd *cobra.Command, args []string) {
	c := initFullContext()
	defer c.Close()

	mutations := c.Manager.List()
	if len(mutations) == 0 {
		fmt.Println("Queue is empty")
		return
	}

	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	for _, mut := range mutations {
		line := fmt.Sprintf("%s  %-11s p%-3d item %s  %s",
			shortID(mut.ID), mut.Type, mut.Priority, shortID(mut.ItemID()), mut.Status)
		if mut.RetryCount > 0 {
			line += fmt.Sprintf(" (retries: %d)", mut.RetryCount)
		}
		switch mut.Status {
		case models.StatusFailed:
			red.Println(line)
			if mut.Error != "" {
				red.Printf("          %s\n", mut.Error)
			}
		case models.StatusProcessing:
			yellow.Println(line)
		default:
			fmt.Println(line)
		}
	}
}

func runQueueClear(cmd *cobra.Command, args []string) {
	c := initFullContext()
	defer c.Close()

	n := c.Manager.Status().Total
	c.Manager.Clear()
	fmt.Printf("Cleared %d mutation(s)\n", n)
}

func runQueueRm(cmd *cobra.Command, args []string) {
	c := initFullContext()
	defer c.Close()

	c.Manager.Remove(args[0])
	fmt.Printf("Removed mutation %s\n", shortID(args[0]))
}
