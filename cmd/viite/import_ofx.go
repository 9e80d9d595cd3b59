package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/avoinsys/viite/internal/model"
	"github.com/avoinsys/viite/internal/ofx"
)

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import bank statement lines from OFX/QFX files",
		Long: `Import bank statement lines from OFX or QFX files exported from
your bank. Lines already in the database are skipped by content hash,
so re-importing an overlapping statement is safe.

Examples:
  # Import single file
  viite import-ofx ~/Downloads/statement_2025_03.ofx

  # Import all OFX files in a directory
  viite import-ofx ~/Downloads/*.ofx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	cmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")

	return cmd
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	// Expand globs and collect all files
	var allFiles []string
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			// If no glob matches, check if it's a direct file
			if _, err := os.Stat(pattern); err == nil {
				allFiles = append(allFiles, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
		} else {
			allFiles = append(allFiles, matches...)
		}
	}

	if len(allFiles) == 0 {
		return fmt.Errorf("no files found to import")
	}

	ctx := cmd.Context()
	parser := ofx.NewParser()
	parser.FunctionalCurrency = matchConfig().FunctionalCurrency

	var allLines []model.PaymentLine
	seen := make(map[string]bool)
	withRef := 0

	for _, filePath := range allFiles {
		f, err := os.Open(filePath)
		if err != nil {
			slog.Error("Failed to open file", "file", filePath, "error", err)
			continue
		}

		lines, err := parser.ParseFile(ctx, f)
		_ = f.Close()
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", filePath, "error", err)
			continue
		}

		added := 0
		for _, line := range lines {
			if seen[line.Hash] {
				continue
			}
			seen[line.Hash] = true
			allLines = append(allLines, line)
			added++
			if line.Ref != "" {
				withRef++
			}
		}

		slog.Info("Processed file",
			"file", filepath.Base(filePath),
			"lines_found", len(lines),
			"added", added,
			"duplicates", len(lines)-added)
	}

	if len(allLines) == 0 {
		slog.Warn("No payment lines found in any file")
		return nil
	}

	fmt.Printf("Parsed %d payment lines, %d with a structured reference\n",
		len(allLines), withRef)

	if dryRun {
		slog.Info("Dry run complete - no data saved")
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	inserted, err := store.SavePaymentLines(ctx, allLines)
	if err != nil {
		return fmt.Errorf("failed to save payment lines: %w", err)
	}

	slog.Info("Import complete",
		"parsed", len(allLines),
		"inserted", inserted,
		"already_known", len(allLines)-inserted)

	return nil
}
