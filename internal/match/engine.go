package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/avoinsys/viite/internal/common"
	"github.com/avoinsys/viite/internal/model"
	"github.com/shopspring/decimal"
)

// Engine reconciles payment lines against open ledger lines. Each
// invocation is terminal: it either commits a full match or reports no
// match, never a partial state.
type Engine struct {
	store      Store
	validMatch MatchValidator
	newLines   NewLinesFunc
	cfg        Config
}

// New creates an engine with the default configuration.
func New(store Store) *Engine {
	return NewWithConfig(store, DefaultConfig())
}

// NewWithConfig creates an engine with custom configuration.
func NewWithConfig(store Store, cfg Config) *Engine {
	validMatch := cfg.ValidMatch
	if validMatch == nil {
		validMatch = BalanceConserved
	}
	return &Engine{
		store:      store,
		cfg:        cfg,
		validMatch: validMatch,
		newLines:   cfg.NewLines,
	}
}

// Reconcile attempts to automatically settle one payment line.
//
// The query tiers run in order and the first tier returning exactly one
// candidate wins; zero or several candidates fall through to the next
// tier. A nil result with a nil error means no match was found or the
// match was rejected - the caller may retry later, nothing was committed.
// Errors are faults from the store and abort the enclosing transaction.
func (e *Engine) Reconcile(ctx context.Context, line model.PaymentLine) (*model.MatchResult, error) {
	matched, err := e.findMatch(ctx, line)
	if err != nil {
		return nil, err
	}
	if matched == nil {
		slog.Debug("no reconciliation match found",
			"payment_line", line.ID,
			"ref", line.Ref)
		return nil, nil
	}

	result := partition(matched)

	var newLines []model.CounterpartLine
	if e.newLines != nil {
		newLines = e.newLines(line, matched)
	}

	if !e.validMatch(line, result, newLines, e.cfg.DecimalPlaces) {
		slog.Debug("reconciliation match rejected by validation",
			"payment_line", line.ID,
			"candidates", len(matched))
		return nil, nil
	}

	entryIDs, err := e.store.ProcessReconciliation(ctx, line, result.Counterparts, result.Liquidity, newLines)
	if err != nil {
		// A business-rule failure that makes the commit impossible should
		// not abort the run: automatic reconciliation is an amenity, and
		// the user hits the same rule when reconciling manually. Anything
		// else is a fault and propagates.
		if common.IsUserCorrectable(err) || errors.Is(err, common.ErrReconciliationRejected) {
			slog.Debug("reconciliation commit rejected",
				"payment_line", line.ID,
				"error", err)
			return nil, nil
		}
		return nil, fmt.Errorf("reconciliation commit failed for line %s: %w", line.ID, err)
	}

	result.EntryIDs = entryIDs
	slog.Debug("reconciled payment line",
		"payment_line", line.ID,
		"entries", entryIDs)
	return result, nil
}

// findMatch runs the plan tiers and returns the accepted candidate set,
// or nil when no tier produced exactly one candidate.
func (e *Engine) findMatch(ctx context.Context, line model.PaymentLine) ([]model.LedgerLine, error) {
	for _, params := range BuildPlan(line, e.cfg) {
		candidates, err := e.store.FindCandidates(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("candidate query failed for line %s: %w", line.ID, err)
		}
		if len(candidates) == 1 {
			return candidates, nil
		}
	}
	return nil, nil
}

// Propose returns the single best candidate for manual review without
// committing anything, or nil when nothing plausible exists.
func (e *Engine) Propose(ctx context.Context, line model.PaymentLine, excludedIDs []int64) (*model.LedgerLine, error) {
	for _, params := range BuildPropositionPlan(line, e.cfg, excludedIDs) {
		candidates, err := e.store.FindCandidates(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("proposition query failed for line %s: %w", line.ID, err)
		}
		if len(candidates) > 0 {
			return &candidates[0], nil
		}
	}
	return nil, nil
}

// LineDisplay carries the counterparty information shown next to a
// statement line awaiting review.
type LineDisplay struct {
	PartnerName string
	// PartnerNote is the bank's free-text counterparty column. It often
	// describes the payment better than the resolved partner name, so it
	// is kept as a separate note instead of being overwritten.
	PartnerNote  string
	PartnerID    int64
	HasNoPartner bool
}

// DisplayInfo resolves the partner to show for a statement line. When an
// open invoice carries the line's reference, the invoice's partner wins
// over whatever the bank reported.
func (e *Engine) DisplayInfo(ctx context.Context, line model.PaymentLine) (LineDisplay, error) {
	info := LineDisplay{
		PartnerName:  line.PartnerName,
		PartnerNote:  line.PartnerName,
		PartnerID:    line.PartnerID,
		HasNoPartner: line.PartnerID == 0,
	}

	if line.Ref == "" {
		return info, nil
	}

	invoice, err := e.store.FindOpenInvoiceByReference(ctx, line.Ref)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return info, nil
		}
		return info, fmt.Errorf("invoice lookup failed for line %s: %w", line.ID, err)
	}
	if invoice != nil {
		info.PartnerName = invoice.PartnerName
		info.PartnerID = invoice.PartnerID
		info.HasNoPartner = false
	}
	return info, nil
}

// partition splits the matched set into liquidity lines, settled directly
// against the bank balance, and payable/receivable lines, which get
// counterpart postings derived from the sign of their residual.
func partition(matched []model.LedgerLine) *model.MatchResult {
	result := &model.MatchResult{}
	for _, line := range matched {
		if line.AccountType.IsLiquidity() {
			result.Liquidity = append(result.Liquidity, line)
			continue
		}
		result.Lines = append(result.Lines, line)
		result.Counterparts = append(result.Counterparts, model.NewCounterpart(line))
	}
	return result
}

// BalanceConserved is the default acceptance predicate: the settled
// amounts must equal the payment amount once both sides are rounded to
// the ledger's precision. Counterpart and synthesized lines contribute
// credit minus debit, liquidity lines debit minus credit.
func BalanceConserved(line model.PaymentLine, result *model.MatchResult, newLines []model.CounterpartLine, decimalPlaces int32) bool {
	total := decimal.Zero
	for _, cp := range result.Counterparts {
		total = total.Add(cp.Credit).Sub(cp.Debit)
	}
	for _, nl := range newLines {
		total = total.Add(nl.Credit).Sub(nl.Debit)
	}
	for _, lq := range result.Liquidity {
		total = total.Add(lq.Debit).Sub(lq.Credit)
	}

	amount := line.EffectiveAmount()
	return total.Round(decimalPlaces).Equal(amount.Round(decimalPlaces))
}
