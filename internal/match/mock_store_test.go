package match

import (
	"context"

	"github.com/avoinsys/viite/internal/common"
	"github.com/avoinsys/viite/internal/model"
	"github.com/avoinsys/viite/internal/service"
)

// mockStore scripts candidate query responses per tier and records the
// reconciliation commits the engine requests.
type mockStore struct {
	// responses are returned by FindCandidates in call order; missing
	// entries yield no candidates.
	responses [][]model.LedgerLine
	findErr   error

	commitErr error
	entryIDs  []string

	invoice    *model.Invoice
	invoiceErr error

	queries       []service.QueryParams
	commits       int
	lastLine      model.PaymentLine
	lastCounter   []model.CounterpartLine
	lastLiquidity []model.LedgerLine
	lastNewLines  []model.CounterpartLine
}

func (m *mockStore) FindCandidates(_ context.Context, params service.QueryParams) ([]model.LedgerLine, error) {
	call := len(m.queries)
	m.queries = append(m.queries, params)
	if m.findErr != nil {
		return nil, m.findErr
	}
	if call < len(m.responses) {
		return m.responses[call], nil
	}
	return nil, nil
}

func (m *mockStore) ProcessReconciliation(_ context.Context, line model.PaymentLine, counterparts []model.CounterpartLine, liquidity []model.LedgerLine, newLines []model.CounterpartLine) ([]string, error) {
	m.commits++
	m.lastLine = line
	m.lastCounter = counterparts
	m.lastLiquidity = liquidity
	m.lastNewLines = newLines
	if m.commitErr != nil {
		return nil, m.commitErr
	}
	if m.entryIDs != nil {
		return m.entryIDs, nil
	}
	return []string{"entry-1"}, nil
}

func (m *mockStore) FindOpenInvoiceByReference(_ context.Context, _ string) (*model.Invoice, error) {
	if m.invoiceErr != nil {
		return nil, m.invoiceErr
	}
	if m.invoice == nil {
		return nil, common.ErrNotFound
	}
	return m.invoice, nil
}
