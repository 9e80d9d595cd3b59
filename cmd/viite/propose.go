package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avoinsys/viite/internal/match"
)

func proposeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "propose [payment-line-id]",
		Short: "Suggest the best ledger entry for a payment line",
		Long: `Show the most plausible open ledger entry for a payment line
awaiting manual review, without committing anything. The amount
constraint is relaxed when nothing matches both reference and amount,
so a partial payment still surfaces its invoice.`,
		Args: cobra.ExactArgs(1),
		RunE: runPropose,
	}

	cmd.Flags().Int64Slice("exclude", nil, "Ledger line ids already rejected in this review")

	return cmd
}

func runPropose(cmd *cobra.Command, args []string) error {
	excluded, _ := cmd.Flags().GetInt64Slice("exclude")

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	line, err := store.GetPaymentLineByID(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to load payment line: %w", err)
	}

	engine := match.NewWithConfig(store, matchConfig())

	display, err := engine.DisplayInfo(ctx, *line)
	if err != nil {
		return err
	}

	fmt.Printf("Payment line %s\n", line.ID)
	fmt.Printf("  Date:      %s\n", line.Date.Format("2006-01-02"))
	fmt.Printf("  Amount:    %s\n", line.EffectiveAmount().StringFixed(2))
	fmt.Printf("  Reference: %s\n", line.Ref)
	if display.PartnerName != "" {
		fmt.Printf("  Partner:   %s\n", display.PartnerName)
	}
	if display.PartnerNote != "" && display.PartnerNote != display.PartnerName {
		fmt.Printf("  Bank text: %s\n", display.PartnerNote)
	}

	candidate, err := engine.Propose(ctx, *line, excluded)
	if err != nil {
		return err
	}
	if candidate == nil {
		fmt.Println("\nNo plausible ledger entry found")
		return nil
	}

	fmt.Printf("\nProposed ledger entry (line %d)\n", candidate.ID)
	fmt.Printf("  Entry:     %s\n", candidate.DisplayName())
	fmt.Printf("  Account:   %d (%s)\n", candidate.AccountID, candidate.AccountType)
	fmt.Printf("  Due:       %s\n", candidate.DateMaturity.Format("2006-01-02"))
	fmt.Printf("  Residual:  %s\n", candidate.ResidualAmount().StringFixed(2))
	fmt.Printf("  Reference: %s\n", candidate.PaymentReference)

	return nil
}
