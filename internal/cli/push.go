package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kaurvahtra/listq/internal/conflict"
	"github.com/kaurvahtra/listq/internal/models"
	"github.com/kaurvahtra/listq/internal/queue"
	"github.com/kaurvahtra/listq/internal/remote"
)

var pushCheck bool

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Execute queued mutations against the server",
	Long: `Process every pending or failed mutation in priority order:
deletes first, then updates, then adds. Failed mutations stay queued
and are retried with exponential backoff.

With --check, report which queued mutations would conflict with the
current server state without executing anything.`,
	Run: runPush,
}

func init() {
	pushCmd.Flags().BoolVar(&pushCheck, "check", false, "Only report conflicts, do not execute")
}

func runPush(cmd *cobra.Command, args []string) {
	c := initFullContext()
	defer c.Close()
	ctx := context.Background()

	if pushCheck {
		runPushCheck(ctx, c)
		return
	}

	c.Manager.AddNotifier(&printNotifier{})

	result := c.Manager.Process(ctx)

	fmt.Println()
	if result.FailedCount == 0 {
		color.New(color.FgGreen).Printf("Pushed %d mutation(s) in %s\n", result.SuccessCount, result.Elapsed.Round(time.Millisecond))
	} else {
		color.New(color.FgRed).Printf("Pushed %d, failed %d (still queued: %d)\n",
			result.SuccessCount, result.FailedCount, result.FailedCount+result.PendingCount)
	}
}

// runPushCheck reports which queued mutations have drifted from the
// current server state, without executing any mutation.
func runPushCheck(ctx context.Context, c *cmdContext) {
	mutations := c.Manager.List()

	var ids []string
	for _, mut := range mutations {
		if mut.BaseState() != nil {
			ids = append(ids, mut.ItemID())
		}
	}
	if len(ids) == 0 {
		fmt.Println("Nothing to check")
		return
	}

	remoteItems, err := remote.Prefetch(ctx, c.Client, ids)
	if err != nil {
		exitError("failed to fetch remote state: %v", err)
	}

	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	found := 0

	for _, mut := range mutations {
		base := mut.BaseState()
		if base == nil {
			continue
		}
		remoteItem, ok := remoteItems[mut.ItemID()]
		if !ok {
			continue
		}
		conf, err := conflict.Detect(base, remoteItem)
		if err != nil || conf == nil {
			continue
		}
		found++
		red.Printf("Conflict on item %s (mutation %s):\n", shortID(conf.ItemID), shortID(mut.ID))
		for _, fc := range conf.FieldConflicts {
			fmt.Printf("  %-9s base=%v remote=%v\n", fc.Field, fc.Local, fc.Remote)
		}
		if conf.RequiresManual {
			yellow.Println("  requires manual resolution")
		} else if merged := conflict.AutoResolve(conf); merged != nil {
			fmt.Println("  auto-resolvable")
		}
	}

	if found == 0 {
		color.New(color.FgGreen).Printf("No conflicts across %d queued mutation(s)\n", len(mutations))
	}
}

// printNotifier prints per-mutation progress during a push.
type printNotifier struct {
	queue.NopNotifier
}

func (printNotifier) OnMutationSuccess(mut *models.Mutation) {
	color.New(color.FgGreen).Printf("  ok   %s %s (item %s)\n", mut.Type, shortID(mut.ID), shortID(mut.ItemID()))
}

func (printNotifier) OnMutationFailed(mut *models.Mutation, err error) {
	color.New(color.FgRed).Printf("  fail %s %s: %v\n", mut.Type, shortID(mut.ID), err)
}
