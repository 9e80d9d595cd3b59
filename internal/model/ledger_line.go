package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType is the internal type of the account a ledger line is posted
// on. The matching engine only distinguishes payable/receivable lines
// (which get counterpart postings) from liquidity lines (which settle
// against the bank balance directly).
type AccountType string

// Account internal types.
const (
	AccountReceivable AccountType = "receivable"
	AccountPayable    AccountType = "payable"
	AccountLiquidity  AccountType = "liquidity"
	AccountOther      AccountType = "other"
)

// IsLiquidity reports whether the type represents a cash or bank account.
func (t AccountType) IsLiquidity() bool {
	return t == AccountLiquidity
}

// LedgerLine is an open journal item that a payment can settle. It is
// owned by the ledger store; the engine reads it and, on success,
// instructs the store to reconcile it.
type LedgerLine struct {
	DateMaturity           time.Time
	Name                   string
	EntryName              string // Name of the journal entry the line belongs to
	PaymentReference       string
	Ref                    string
	CurrencyCode           string // Empty when posted in the functional currency
	AccountType            AccountType
	ID                     int64
	EntryID                int64
	AccountID              int64
	PartnerID              int64
	Debit                  decimal.Decimal
	Credit                 decimal.Decimal
	AmountResidual         decimal.Decimal
	AmountResidualCurrency decimal.Decimal
	AmountCurrency         decimal.Decimal
	Reconciled             bool
}

// ResidualAmount returns the unsettled amount in the line's own currency:
// the currency residual when the line carries a foreign currency, the
// functional residual otherwise.
func (l *LedgerLine) ResidualAmount() decimal.Decimal {
	if l.CurrencyCode != "" {
		return l.AmountResidualCurrency
	}
	return l.AmountResidual
}

// DisplayName returns the line's own label, falling back to the journal
// entry name when the line was posted with the "/" placeholder.
func (l *LedgerLine) DisplayName() string {
	if l.Name == "" || l.Name == "/" {
		return l.EntryName
	}
	return l.Name
}

// CounterpartLine describes one side of the reconciliation posting that
// settles a matched ledger line.
type CounterpartLine struct {
	Name         string
	Debit        decimal.Decimal
	Credit       decimal.Decimal
	SourceLineID int64 // Matched ledger line this posting settles, 0 for synthesized lines
}

// NewCounterpart builds the counterpart posting for a matched
// payable/receivable line. A positive residual is settled by a credit, a
// negative residual by a debit.
func NewCounterpart(line LedgerLine) CounterpartLine {
	amount := line.ResidualAmount()
	cp := CounterpartLine{
		Name:         line.DisplayName(),
		SourceLineID: line.ID,
	}
	if amount.IsNegative() {
		cp.Debit = amount.Neg()
	} else {
		cp.Credit = amount
	}
	return cp
}

// MatchResult is the all-or-nothing outcome of a reconciliation attempt.
// The engine returns nil instead of a partial result when no single match
// was found.
type MatchResult struct {
	Lines        []LedgerLine      // Matched payable/receivable lines
	Liquidity    []LedgerLine      // Matched liquidity lines, settled directly
	Counterparts []CounterpartLine // Postings created against Lines
	EntryIDs     []string          // Journal entries created by the commit
}
