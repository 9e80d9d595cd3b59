package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/avoinsys/viite/internal/common"
	"github.com/avoinsys/viite/internal/model"
	"github.com/avoinsys/viite/internal/service"
)

const ledgerLineColumns = `l.id, COALESCE(l.entry_id, 0), COALESCE(l.entry_name, ''),
	COALESCE(l.name, ''), a.internal_type, l.account_id, COALESCE(l.partner_id, 0),
	COALESCE(l.payment_reference, ''), COALESCE(l.ref, ''), l.date_maturity,
	l.debit, l.credit, l.amount_residual, l.amount_residual_currency,
	l.amount_currency, l.currency_code, l.reconciled`

// FindCandidates returns the open ledger lines matching one tier of a
// reconciliation query plan. References compare with leading zeros
// stripped on both sides, and the amount clause falls back to the signed
// debit/credit column on liquidity accounts.
func (s *SQLiteStorage) FindCandidates(ctx context.Context, params service.QueryParams) ([]model.LedgerLine, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if params.Ref == "" {
		return nil, nil
	}

	var sb strings.Builder
	var args []any

	sb.WriteString(`SELECT ` + ledgerLineColumns + `
		FROM ledger_lines l
		JOIN accounts a ON a.id = l.account_id
		WHERE l.reconciled = 0`)

	if len(params.AccountIDs) > 0 {
		sb.WriteString(" AND (l.account_id IN (" + placeholders(len(params.AccountIDs)) + ") OR a.internal_type = 'liquidity')")
		for _, id := range params.AccountIDs {
			args = append(args, id)
		}
	} else {
		sb.WriteString(" AND a.internal_type IN ('payable', 'receivable', 'liquidity')")
	}

	if !params.OverlookPartner && params.PartnerID != 0 {
		sb.WriteString(" AND l.partner_id = ?")
		args = append(args, params.PartnerID)
	}

	if params.CurrencyCode != "" {
		sb.WriteString(" AND l.currency_code = ?")
		args = append(args, params.CurrencyCode)
	} else {
		sb.WriteString(" AND l.currency_code = ''")
	}

	// Structured reference match on either reference column; the
	// proposition path additionally accepts the journal entry name.
	if params.Order == service.OrderProposition {
		sb.WriteString(` AND (LTRIM(l.payment_reference, '0') = LTRIM(?, '0')
			OR LTRIM(l.ref, '0') = LTRIM(?, '0')
			OR l.entry_name = ?)`)
		args = append(args, params.Ref, params.Ref, params.Ref)
	} else {
		sb.WriteString(` AND (LTRIM(l.payment_reference, '0') = LTRIM(?, '0')
			OR LTRIM(l.ref, '0') = LTRIM(?, '0'))`)
		args = append(args, params.Ref, params.Ref)
	}

	if params.MatchAmount {
		amountCol, err := amountColumn(params.AmountColumn)
		if err != nil {
			return nil, err
		}
		liquidityCol, liquidityAmount, err := liquidityClause(params)
		if err != nil {
			return nil, err
		}
		sb.WriteString(fmt.Sprintf(` AND (CAST(l.%s AS REAL) = CAST(? AS REAL)
			OR (a.internal_type = 'liquidity' AND CAST(l.%s AS REAL) = CAST(? AS REAL)))`,
			amountCol, liquidityCol))
		args = append(args, decimalText(params.Amount), liquidityAmount)
	}

	if len(params.ExcludedIDs) > 0 {
		sb.WriteString(" AND l.id NOT IN (" + placeholders(len(params.ExcludedIDs)) + ")")
		for _, id := range params.ExcludedIDs {
			args = append(args, id)
		}
	}

	switch params.Order {
	case service.OrderProposition:
		sb.WriteString(` ORDER BY CASE WHEN LTRIM(l.payment_reference, '0') = LTRIM(?, '0')
			THEN 1 ELSE 2 END, l.date_maturity DESC, l.id DESC`)
		args = append(args, params.Ref)
	default:
		sb.WriteString(" ORDER BY l.date_maturity ASC, l.id ASC")
	}

	if params.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, params.Limit)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("candidate query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var lines []model.LedgerLine
	for rows.Next() {
		line, err := scanLedgerLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("candidate query iteration failed: %w", err)
	}
	return lines, nil
}

// amountColumn maps the typed column selector to a SQL identifier; only
// the two residual columns are legal.
func amountColumn(col service.AmountColumn) (string, error) {
	switch col {
	case service.AmountResidual, "":
		return "amount_residual", nil
	case service.AmountResidualCurrency:
		return "amount_residual_currency", nil
	default:
		return "", fmt.Errorf("invalid amount column %q: %w", col, common.ErrInvalidConfig)
	}
}

// liquidityClause maps the liquidity column selector and its comparison
// value. Debit and credit columns are unsigned, so the payment amount
// compares by absolute value against them.
func liquidityClause(params service.QueryParams) (string, string, error) {
	switch params.LiquidityColumn {
	case service.LiquidityAmountCurrency:
		return "amount_currency", decimalText(params.Amount), nil
	case service.LiquidityDebit:
		return "debit", decimalText(params.Amount.Abs()), nil
	case service.LiquidityCredit, "":
		return "credit", decimalText(params.Amount.Abs()), nil
	default:
		return "", "", fmt.Errorf("invalid liquidity column %q: %w", params.LiquidityColumn, common.ErrInvalidConfig)
	}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLedgerLine(row rowScanner) (model.LedgerLine, error) {
	var (
		line         model.LedgerLine
		accountType  string
		dateMaturity sql.NullTime
		debit        string
		credit       string
		residual     string
		residualCcy  string
		amountCcy    string
	)

	err := row.Scan(&line.ID, &line.EntryID, &line.EntryName, &line.Name,
		&accountType, &line.AccountID, &line.PartnerID,
		&line.PaymentReference, &line.Ref, &dateMaturity,
		&debit, &credit, &residual, &residualCcy, &amountCcy,
		&line.CurrencyCode, &line.Reconciled)
	if err != nil {
		return model.LedgerLine{}, fmt.Errorf("failed to scan ledger line: %w", err)
	}

	line.AccountType = model.AccountType(accountType)
	if dateMaturity.Valid {
		line.DateMaturity = dateMaturity.Time
	}
	if line.Debit, err = decimalFromText(debit); err != nil {
		return model.LedgerLine{}, err
	}
	if line.Credit, err = decimalFromText(credit); err != nil {
		return model.LedgerLine{}, err
	}
	if line.AmountResidual, err = decimalFromText(residual); err != nil {
		return model.LedgerLine{}, err
	}
	if line.AmountResidualCurrency, err = decimalFromText(residualCcy); err != nil {
		return model.LedgerLine{}, err
	}
	if line.AmountCurrency, err = decimalFromText(amountCcy); err != nil {
		return model.LedgerLine{}, err
	}
	return line, nil
}

// SaveLedgerLines inserts ledger lines, assigning generated ids back to
// the slice elements.
func (s *SQLiteStorage) SaveLedgerLines(ctx context.Context, lines []model.LedgerLine) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ledger_lines (
			entry_id, entry_name, name, account_id, partner_id,
			payment_reference, ref, date_maturity, debit, credit,
			amount_residual, amount_residual_currency, amount_currency,
			currency_code, reconciled
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range lines {
		line := &lines[i]
		res, execErr := stmt.ExecContext(ctx,
			line.EntryID,
			line.EntryName,
			line.Name,
			line.AccountID,
			line.PartnerID,
			line.PaymentReference,
			line.Ref,
			line.DateMaturity,
			decimalText(line.Debit),
			decimalText(line.Credit),
			decimalText(line.AmountResidual),
			decimalText(line.AmountResidualCurrency),
			decimalText(line.AmountCurrency),
			line.CurrencyCode,
			line.Reconciled,
		)
		if execErr != nil {
			return fmt.Errorf("failed to insert ledger line: %w", execErr)
		}
		if line.ID == 0 {
			id, idErr := res.LastInsertId()
			if idErr != nil {
				return fmt.Errorf("failed to read ledger line id: %w", idErr)
			}
			line.ID = id
		}
	}

	return tx.Commit()
}

// GetLedgerLineByID fetches a single ledger line.
func (s *SQLiteStorage) GetLedgerLineByID(ctx context.Context, id int64) (*model.LedgerLine, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+ledgerLineColumns+`
		FROM ledger_lines l
		JOIN accounts a ON a.id = l.account_id
		WHERE l.id = ?`, id)

	line, err := scanLedgerLine(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("ledger line %d: %w", id, common.ErrNotFound)
		}
		return nil, err
	}
	return &line, nil
}
