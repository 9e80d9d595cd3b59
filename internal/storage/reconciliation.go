package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/avoinsys/viite/internal/common"
	"github.com/avoinsys/viite/internal/model"
	"github.com/google/uuid"
)

// ProcessReconciliation settles a matched set against a payment line: it
// creates the counterpart journal entry, zeroes the matched lines'
// residuals and flags the payment line reconciled.
//
// The whole commit runs inside a savepoint. A business-rule violation
// (for example a line settled by a concurrent run) rolls the savepoint
// back and returns a common.UserError; the surrounding transaction is
// unaffected. Any other failure is a fault and propagates.
func (s *SQLiteStorage) ProcessReconciliation(ctx context.Context, line model.PaymentLine, counterparts []model.CounterpartLine, liquidity []model.LedgerLine, newLines []model.CounterpartLine) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if len(counterparts) == 0 && len(liquidity) == 0 {
		return nil, common.NewUserError("nothing to reconcile", common.ErrReconciliationRejected)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "SAVEPOINT auto_reconcile"); err != nil {
		return nil, fmt.Errorf("failed to create savepoint: %w", err)
	}

	entryID, err := s.reconcileTx(ctx, tx, line, counterparts, liquidity, newLines)
	if err != nil {
		if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT auto_reconcile"); rbErr != nil {
			return nil, fmt.Errorf("failed to roll back savepoint after %v: %w", err, rbErr)
		}
		if _, relErr := tx.ExecContext(ctx, "RELEASE SAVEPOINT auto_reconcile"); relErr != nil {
			return nil, fmt.Errorf("failed to release savepoint: %w", relErr)
		}
		if common.IsUserCorrectable(err) {
			// Preserve the rest of the transaction; only the attempted
			// reconciliation's writes were undone.
			if commitErr := tx.Commit(); commitErr != nil {
				return nil, fmt.Errorf("failed to commit after rejection: %w", commitErr)
			}
		}
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT auto_reconcile"); err != nil {
		return nil, fmt.Errorf("failed to release savepoint: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reconciliation: %w", err)
	}

	slog.Debug("reconciliation committed",
		"payment_line", line.ID,
		"entry", entryID)
	return []string{entryID}, nil
}

func (s *SQLiteStorage) reconcileTx(ctx context.Context, tx *sql.Tx, line model.PaymentLine, counterparts []model.CounterpartLine, liquidity []model.LedgerLine, newLines []model.CounterpartLine) (string, error) {
	// Re-check every matched line under the savepoint: between the query
	// and the commit another run may have settled it.
	for _, cp := range counterparts {
		if cp.SourceLineID == 0 {
			continue
		}
		if err := assertLineOpen(ctx, tx, cp.SourceLineID); err != nil {
			return "", err
		}
	}
	for _, lq := range liquidity {
		if err := assertLineOpen(ctx, tx, lq.ID); err != nil {
			return "", err
		}
	}

	entryID := uuid.NewString()
	entryName := fmt.Sprintf("RECON/%s", line.ID)

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO journal_entries (id, name, payment_line_id)
		VALUES (?, ?, ?)`,
		entryID, entryName, line.ID); err != nil {
		return "", fmt.Errorf("failed to create journal entry: %w", err)
	}

	for _, group := range [][]model.CounterpartLine{counterparts, newLines} {
		for _, cp := range group {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO journal_entry_lines (entry_id, name, debit, credit, source_line_id)
				VALUES (?, ?, ?, ?, ?)`,
				entryID, cp.Name, decimalText(cp.Debit), decimalText(cp.Credit), cp.SourceLineID); err != nil {
				return "", fmt.Errorf("failed to create journal entry line: %w", err)
			}
		}
	}

	for _, cp := range counterparts {
		if cp.SourceLineID == 0 {
			continue
		}
		if err := settleLedgerLine(ctx, tx, cp.SourceLineID, entryID); err != nil {
			return "", err
		}
	}
	for _, lq := range liquidity {
		if err := settleLedgerLine(ctx, tx, lq.ID, entryID); err != nil {
			return "", err
		}
	}

	// A payment line imported into the store is flagged settled; lines
	// reconciled straight from memory simply have no row to update.
	if _, err := tx.ExecContext(ctx, `
		UPDATE payment_lines SET reconciled = 1 WHERE id = ?`, line.ID); err != nil {
		return "", fmt.Errorf("failed to flag payment line: %w", err)
	}

	return entryID, nil
}

func assertLineOpen(ctx context.Context, tx *sql.Tx, lineID int64) error {
	var reconciled bool
	err := tx.QueryRowContext(ctx, `
		SELECT reconciled FROM ledger_lines WHERE id = ?`, lineID).Scan(&reconciled)
	if err != nil {
		return fmt.Errorf("failed to check ledger line %d: %w", lineID, err)
	}
	if reconciled {
		return common.NewUserError(
			fmt.Sprintf("ledger line %d is already reconciled", lineID),
			common.ErrReconciliationRejected)
	}
	return nil
}

func settleLedgerLine(ctx context.Context, tx *sql.Tx, lineID int64, entryID string) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE ledger_lines
		SET reconciled = 1,
			amount_residual = '0',
			amount_residual_currency = '0',
			reconcile_entry_id = ?
		WHERE id = ? AND reconciled = 0`, entryID, lineID)
	if err != nil {
		return fmt.Errorf("failed to settle ledger line %d: %w", lineID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check settle result: %w", err)
	}
	if affected != 1 {
		return common.NewUserError(
			fmt.Sprintf("ledger line %d disappeared during reconciliation", lineID),
			common.ErrReconciliationRejected)
	}
	return nil
}
