package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avoinsys/viite/internal/common"
	"github.com/avoinsys/viite/internal/model"
)

// SavePartner inserts or updates a partner together with its identifier
// collection. The id-number rows are rewritten as a whole; the partner's
// in-memory collection is the source of truth.
func (s *SQLiteStorage) SavePartner(ctx context.Context, partner *model.Partner) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if partner == nil {
		return fmt.Errorf("partner cannot be nil")
	}
	if err := validateString(partner.Name, "partner name"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if partner.ID == 0 {
		res, execErr := tx.ExecContext(ctx, `
			INSERT INTO partners (name, country_code) VALUES (?, ?)`,
			partner.Name, partner.CountryCode)
		if execErr != nil {
			return fmt.Errorf("failed to insert partner: %w", execErr)
		}
		id, idErr := res.LastInsertId()
		if idErr != nil {
			return fmt.Errorf("failed to read partner id: %w", idErr)
		}
		partner.ID = id
	} else {
		if _, execErr := tx.ExecContext(ctx, `
			UPDATE partners SET name = ?, country_code = ? WHERE id = ?`,
			partner.Name, partner.CountryCode, partner.ID); execErr != nil {
			return fmt.Errorf("failed to update partner: %w", execErr)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM partner_id_numbers WHERE partner_id = ?`, partner.ID); err != nil {
		return fmt.Errorf("failed to clear partner identifiers: %w", err)
	}
	for _, number := range partner.IDNumbers {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO partner_id_numbers (partner_id, category, value)
			VALUES (?, ?, ?)`,
			partner.ID, number.Category, number.Value); err != nil {
			return fmt.Errorf("failed to insert partner identifier: %w", err)
		}
	}

	return tx.Commit()
}

// GetPartner fetches a partner and its identifier collection.
func (s *SQLiteStorage) GetPartner(ctx context.Context, id int64) (*model.Partner, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	partner := &model.Partner{ID: id}
	var countryCode sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT name, country_code FROM partners WHERE id = ?`, id).
		Scan(&partner.Name, &countryCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("partner %d: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch partner %d: %w", id, err)
	}
	partner.CountryCode = countryCode.String

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, value FROM partner_id_numbers
		WHERE partner_id = ? ORDER BY id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch partner identifiers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var number model.IDNumber
		if err := rows.Scan(&number.ID, &number.Category, &number.Value); err != nil {
			return nil, fmt.Errorf("failed to scan partner identifier: %w", err)
		}
		partner.IDNumbers = append(partner.IDNumbers, number)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("partner identifier iteration failed: %w", err)
	}
	return partner, nil
}
