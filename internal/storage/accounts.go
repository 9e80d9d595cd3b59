package storage

import (
	"context"
	"fmt"

	"github.com/avoinsys/viite/internal/model"
)

// SaveAccount inserts or updates an account.
func (s *SQLiteStorage) SaveAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if account == nil {
		return fmt.Errorf("account cannot be nil")
	}
	if err := validateString(account.Code, "account code"); err != nil {
		return err
	}

	if account.ID == 0 {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO accounts (code, name, internal_type) VALUES (?, ?, ?)`,
			account.Code, account.Name, string(account.Type))
		if err != nil {
			return fmt.Errorf("failed to insert account: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read account id: %w", err)
		}
		account.ID = id
		return nil
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, code, name, internal_type) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET code = excluded.code,
			name = excluded.name, internal_type = excluded.internal_type`,
		account.ID, account.Code, account.Name, string(account.Type)); err != nil {
		return fmt.Errorf("failed to upsert account: %w", err)
	}
	return nil
}
