package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avoinsys/viite/internal/common"
	"github.com/avoinsys/viite/internal/model"
)

// SaveInvoice inserts or updates an invoice.
func (s *SQLiteStorage) SaveInvoice(ctx context.Context, invoice *model.Invoice) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if invoice == nil {
		return fmt.Errorf("invoice cannot be nil")
	}
	if err := validateString(invoice.Number, "invoice number"); err != nil {
		return err
	}

	if invoice.ID == 0 {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO invoices (number, date, partner_id, state,
				payment_reference, ref, amount_total)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			invoice.Number, invoice.Date, nullableID(invoice.PartnerID), string(invoice.State),
			invoice.PaymentReference, invoice.Ref, decimalText(invoice.AmountTotal))
		if err != nil {
			return fmt.Errorf("failed to insert invoice: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read invoice id: %w", err)
		}
		invoice.ID = id
		return nil
	}

	if _, err := s.db.ExecContext(ctx, `
		UPDATE invoices SET number = ?, date = ?, partner_id = ?, state = ?,
			payment_reference = ?, ref = ?, amount_total = ?
		WHERE id = ?`,
		invoice.Number, invoice.Date, nullableID(invoice.PartnerID), string(invoice.State),
		invoice.PaymentReference, invoice.Ref, decimalText(invoice.AmountTotal),
		invoice.ID); err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}
	return nil
}

// FindOpenInvoiceByReference returns the first open invoice whose payment
// reference or customer reference equals ref. Used to resolve the partner
// shown next to an incoming statement line.
func (s *SQLiteStorage) FindOpenInvoiceByReference(ctx context.Context, ref string) (*model.Invoice, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if ref == "" {
		return nil, fmt.Errorf("reference: %w", common.ErrNotFound)
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT i.id, i.number, i.date, COALESCE(i.partner_id, 0),
			COALESCE(p.name, ''), i.state,
			COALESCE(i.payment_reference, ''), COALESCE(i.ref, ''), i.amount_total
		FROM invoices i
		LEFT JOIN partners p ON p.id = i.partner_id
		WHERE i.state = 'open' AND (i.payment_reference = ? OR i.ref = ?)
		ORDER BY i.id ASC
		LIMIT 1`, ref, ref)

	var (
		invoice model.Invoice
		date    sql.NullTime
		state   string
		total   string
	)
	err := row.Scan(&invoice.ID, &invoice.Number, &date, &invoice.PartnerID,
		&invoice.PartnerName, &state, &invoice.PaymentReference, &invoice.Ref, &total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("invoice with reference %q: %w", ref, common.ErrNotFound)
		}
		return nil, fmt.Errorf("invoice lookup failed: %w", err)
	}

	if date.Valid {
		invoice.Date = date.Time
	}
	invoice.State = model.InvoiceState(state)
	if invoice.AmountTotal, err = decimalFromText(total); err != nil {
		return nil, err
	}
	return &invoice, nil
}
