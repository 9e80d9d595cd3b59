package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avoinsys/viite/internal/common"
	"github.com/avoinsys/viite/internal/model"
)

// SavePaymentLines inserts imported statement lines, skipping duplicates
// by content hash. Returns the number of lines actually inserted.
func (s *SQLiteStorage) SavePaymentLines(ctx context.Context, lines []model.PaymentLine) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO payment_lines (
			id, hash, statement_id, date, name, ref, partner_name,
			partner_id, amount, amount_currency, currency_code, reconciled
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	inserted := 0
	for i := range lines {
		line := &lines[i]
		if line.Hash == "" {
			line.Hash = line.GenerateHash()
		}

		res, execErr := stmt.ExecContext(ctx,
			line.ID,
			line.Hash,
			line.StatementID,
			line.Date,
			line.Name,
			line.Ref,
			line.PartnerName,
			line.PartnerID,
			decimalText(line.Amount),
			decimalText(line.AmountCurrency),
			line.CurrencyCode,
			line.Reconciled,
		)
		if execErr != nil {
			return inserted, fmt.Errorf("failed to insert payment line %s: %w", line.ID, execErr)
		}
		affected, affErr := res.RowsAffected()
		if affErr != nil {
			return inserted, fmt.Errorf("failed to check insert result: %w", affErr)
		}
		inserted += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit payment lines: %w", err)
	}
	return inserted, nil
}

const paymentLineColumns = `id, COALESCE(statement_id, ''), date, COALESCE(name, ''),
	COALESCE(ref, ''), COALESCE(partner_name, ''), COALESCE(partner_id, 0),
	amount, amount_currency, currency_code, reconciled, hash`

// GetPaymentLinesToReconcile returns the unreconciled statement lines,
// optionally restricted to one statement, oldest first.
func (s *SQLiteStorage) GetPaymentLinesToReconcile(ctx context.Context, statementID string) ([]model.PaymentLine, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + paymentLineColumns + ` FROM payment_lines WHERE reconciled = 0`
	args := []any{}
	if statementID != "" {
		query += " AND statement_id = ?"
		args = append(args, statementID)
	}
	query += " ORDER BY date ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("payment line query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var lines []model.PaymentLine
	for rows.Next() {
		line, scanErr := scanPaymentLine(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("payment line iteration failed: %w", err)
	}
	return lines, nil
}

// GetPaymentLineByID fetches a single statement line.
func (s *SQLiteStorage) GetPaymentLineByID(ctx context.Context, id string) (*model.PaymentLine, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+paymentLineColumns+` FROM payment_lines WHERE id = ?`, id)

	line, err := scanPaymentLine(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("payment line %s: %w", id, common.ErrNotFound)
		}
		return nil, err
	}
	return &line, nil
}

func scanPaymentLine(row rowScanner) (model.PaymentLine, error) {
	var (
		line           model.PaymentLine
		amount         string
		amountCurrency string
	)

	err := row.Scan(&line.ID, &line.StatementID, &line.Date, &line.Name,
		&line.Ref, &line.PartnerName, &line.PartnerID,
		&amount, &amountCurrency, &line.CurrencyCode, &line.Reconciled, &line.Hash)
	if err != nil {
		return model.PaymentLine{}, fmt.Errorf("failed to scan payment line: %w", err)
	}

	if line.Amount, err = decimalFromText(amount); err != nil {
		return model.PaymentLine{}, err
	}
	if line.AmountCurrency, err = decimalFromText(amountCurrency); err != nil {
		return model.PaymentLine{}, err
	}
	return line, nil
}
