package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/avoinsys/viite/internal/match"
)

func reconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Automatically reconcile imported payment lines",
		Long: `Run the matching engine over every unreconciled payment line.
Each line is settled only when its reference and amount identify
exactly one open ledger entry; everything else is left for manual
review.`,
		RunE: runReconcile,
	}

	cmd.Flags().String("statement", "", "Only reconcile lines from this statement")

	return cmd
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	statementID, _ := cmd.Flags().GetString("statement")

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	lines, err := store.GetPaymentLinesToReconcile(ctx, statementID)
	if err != nil {
		return fmt.Errorf("failed to load payment lines: %w", err)
	}
	if len(lines) == 0 {
		slog.Info("Nothing to reconcile")
		return nil
	}

	engine := match.NewWithConfig(store, matchConfig())

	bar := progressbar.NewOptions(len(lines),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Reconciling payment lines..."),
	)

	matched, unmatched := 0, 0
	for _, line := range lines {
		result, err := engine.Reconcile(ctx, line)
		if err != nil {
			_ = bar.Finish()
			return fmt.Errorf("reconciliation failed on line %s: %w", line.ID, err)
		}
		if result != nil {
			matched++
		} else {
			unmatched++
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)

	slog.Info("Reconciliation complete",
		"matched", matched,
		"unmatched", unmatched,
		"total", len(lines))

	fmt.Printf("Reconciled %d of %d payment lines; %d left for review\n",
		matched, len(lines), unmatched)

	return nil
}
