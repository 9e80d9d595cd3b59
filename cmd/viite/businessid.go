package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avoinsys/viite/internal/businessid"
)

func businessIDCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "businessid",
		Short: "Validate Business IDs and derive OVT identifiers",
	}

	cmd.AddCommand(businessIDValidateCmd())
	cmd.AddCommand(businessIDOVTCmd())

	return cmd
}

func businessIDValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [ids...]",
		Short: "Validate company identifiers for a country",
		Long: `Validate each identifier against the rules of the given country.
Identifiers for countries without registered rules pass unchanged.

Examples:
  viite businessid validate 1234567-1
  viite businessid validate 12345671 123.456
  viite businessid validate --country SE 556677-8899`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			country, _ := cmd.Flags().GetString("country")
			registry := businessid.NewRegistry()

			invalid := 0
			for _, raw := range args {
				canonical, err := registry.Validate(country, raw)
				if err != nil {
					invalid++
					fmt.Printf("%s\tINVALID\t%v\n", raw, err)
					continue
				}
				fmt.Printf("%s\tOK\t%s\n", raw, canonical)
			}

			if invalid > 0 {
				return fmt.Errorf("%d of %d identifiers invalid", invalid, len(args))
			}
			return nil
		},
	}

	cmd.Flags().String("country", "FI", "country whose rules to apply")

	return cmd
}

func businessIDOVTCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ovt [business-ids...]",
		Short: "Derive the OVT e-invoicing identifier from a Business ID",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orgUnit, _ := cmd.Flags().GetString("org-unit")
			registry := businessid.NewRegistry()

			for _, raw := range args {
				canonical, err := registry.Validate("FI", raw)
				if err != nil {
					return fmt.Errorf("%s: %w", raw, err)
				}
				ovt, err := businessid.OVTIdentifier(canonical, orgUnit)
				if err != nil {
					return fmt.Errorf("%s: %w", raw, err)
				}
				fmt.Printf("%s\t%s\n", canonical, ovt)
			}
			return nil
		},
	}

	cmd.Flags().String("org-unit", "", "organisational unit suffix, up to 5 characters")

	return cmd
}
