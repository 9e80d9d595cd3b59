package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoinsys/viite/internal/common"
	"github.com/avoinsys/viite/internal/model"
)

func testPaymentLine(id string, amount string) model.PaymentLine {
	return model.PaymentLine{
		ID:     id,
		Date:   time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		Name:   "ACME OY",
		Ref:    "1234561",
		Amount: decimal.RequireFromString(amount),
	}
}

func TestProcessReconciliation(t *testing.T) {
	ctx := context.Background()
	due := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("settles matched line and creates journal entry", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		accountID := seedAccount(t, store, "1700", model.AccountReceivable)
		line := receivableLine(accountID, 1, "1234561", "100.00", due)
		lineID := seedLedgerLine(t, store, line)
		line.ID = lineID

		payment := testPaymentLine("PAY-1", "100.00")
		_, err := store.SavePaymentLines(ctx, []model.PaymentLine{payment})
		require.NoError(t, err)

		entryIDs, err := store.ProcessReconciliation(ctx, payment,
			[]model.CounterpartLine{model.NewCounterpart(line)}, nil, nil)
		require.NoError(t, err)
		require.Len(t, entryIDs, 1)

		settled, err := store.GetLedgerLineByID(ctx, lineID)
		require.NoError(t, err)
		assert.True(t, settled.Reconciled)
		assert.True(t, settled.AmountResidual.IsZero())

		flagged, err := store.GetPaymentLineByID(ctx, "PAY-1")
		require.NoError(t, err)
		assert.True(t, flagged.Reconciled)

		var entryLines int
		err = store.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM journal_entry_lines WHERE entry_id = ?`, entryIDs[0]).
			Scan(&entryLines)
		require.NoError(t, err)
		assert.Equal(t, 1, entryLines)
	})

	t.Run("settles liquidity lines", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		liquidityID := seedAccount(t, store, "1910", model.AccountLiquidity)
		line := model.LedgerLine{
			Name:             "BANK",
			AccountID:        liquidityID,
			PaymentReference: "1234561",
			DateMaturity:     due,
			Debit:            decimal.RequireFromString("100.00"),
		}
		lineID := seedLedgerLine(t, store, line)
		line.ID = lineID

		payment := testPaymentLine("PAY-2", "100.00")
		entryIDs, err := store.ProcessReconciliation(ctx, payment, nil,
			[]model.LedgerLine{line}, nil)
		require.NoError(t, err)
		require.Len(t, entryIDs, 1)

		settled, err := store.GetLedgerLineByID(ctx, lineID)
		require.NoError(t, err)
		assert.True(t, settled.Reconciled)
	})

	t.Run("writes synthesized lines into the entry", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		accountID := seedAccount(t, store, "1700", model.AccountReceivable)
		line := receivableLine(accountID, 1, "1234561", "102.00", due)
		line.ID = seedLedgerLine(t, store, line)

		payment := testPaymentLine("PAY-3", "100.00")
		discount := model.CounterpartLine{
			Name:  "Cash discount",
			Debit: decimal.RequireFromString("2.00"),
		}
		entryIDs, err := store.ProcessReconciliation(ctx, payment,
			[]model.CounterpartLine{model.NewCounterpart(line)}, nil,
			[]model.CounterpartLine{discount})
		require.NoError(t, err)
		require.Len(t, entryIDs, 1)

		var entryLines int
		err = store.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM journal_entry_lines WHERE entry_id = ?`, entryIDs[0]).
			Scan(&entryLines)
		require.NoError(t, err)
		assert.Equal(t, 2, entryLines)
	})

	t.Run("already settled line rejects and leaves data intact", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		accountID := seedAccount(t, store, "1700", model.AccountReceivable)
		settled := receivableLine(accountID, 1, "1234561", "100.00", due)
		settled.Reconciled = true
		settled.ID = seedLedgerLine(t, store, settled)

		open := receivableLine(accountID, 1, "7654327", "50.00", due)
		open.ID = seedLedgerLine(t, store, open)

		payment := testPaymentLine("PAY-4", "100.00")
		_, err := store.SavePaymentLines(ctx, []model.PaymentLine{payment})
		require.NoError(t, err)

		_, err = store.ProcessReconciliation(ctx, payment,
			[]model.CounterpartLine{model.NewCounterpart(settled)}, nil, nil)
		require.Error(t, err)
		assert.True(t, common.IsUserCorrectable(err))
		assert.ErrorIs(t, err, common.ErrReconciliationRejected)

		// Nothing else moved: no journal entry, payment line still open,
		// unrelated ledger line untouched.
		var entries int
		require.NoError(t, store.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM journal_entries`).Scan(&entries))
		assert.Equal(t, 0, entries)

		flagged, err := store.GetPaymentLineByID(ctx, "PAY-4")
		require.NoError(t, err)
		assert.False(t, flagged.Reconciled)

		untouched, err := store.GetLedgerLineByID(ctx, open.ID)
		require.NoError(t, err)
		assert.False(t, untouched.Reconciled)
	})

	t.Run("empty match is rejected", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		payment := testPaymentLine("PAY-5", "100.00")
		_, err := store.ProcessReconciliation(ctx, payment, nil, nil, nil)
		assert.ErrorIs(t, err, common.ErrReconciliationRejected)
	})
}
