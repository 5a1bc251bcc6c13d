package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var retryCmd = &cobra.Command{
	Use:   "retry",
	Short: "Retry failed mutations",
	Long: `Reset every failed mutation to pending with a fresh retry budget,
then process the queue.`,
	Run: runRetry,
}

func runRetry(cmd *cobra.Command, args []string) {
	c := initFullContext()
	defer c.Close()

	failed := c.Manager.Status().Failed
	if failed == 0 {
		fmt.Println("No failed mutations to retry")
		return
	}

	c.Manager.AddNotifier(&printNotifier{})
	result := c.Manager.RetryFailed(context.Background())

	fmt.Println()
	if result.FailedCount == 0 {
		color.New(color.FgGreen).Printf("Retried %d mutation(s) successfully\n", result.SuccessCount)
	} else {
		color.New(color.FgRed).Printf("Retried: %d succeeded, %d failed again\n", result.SuccessCount, result.FailedCount)
	}
}
