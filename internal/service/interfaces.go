// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/avoinsys/viite/internal/model"
	"github.com/shopspring/decimal"
)

// AmountColumn selects which residual column a candidate query compares
// the payment amount against.
type AmountColumn string

// Amount columns.
const (
	AmountResidual         AmountColumn = "amount_residual"
	AmountResidualCurrency AmountColumn = "amount_residual_currency"
)

// LiquidityColumn selects the column compared on liquidity-type accounts,
// where residuals do not apply: the signed debit/credit column matching
// the payment's sign, or the currency amount for foreign currency lines.
type LiquidityColumn string

// Liquidity columns.
const (
	LiquidityAmountCurrency LiquidityColumn = "amount_currency"
	LiquidityDebit          LiquidityColumn = "debit"
	LiquidityCredit         LiquidityColumn = "credit"
)

// QueryOrder fixes the result ordering contract of a candidate query.
type QueryOrder string

const (
	// OrderDueDateAsc orders by due date ascending then id ascending;
	// used by the auto-reconcile path.
	OrderDueDateAsc QueryOrder = "due_date_asc"
	// OrderProposition ranks exact payment-reference hits first, then due
	// date descending, then id descending; used by the proposition path.
	OrderProposition QueryOrder = "proposition"
)

// QueryParams is one tier of a candidate-matching plan: a structured
// parameter set executed against the ledger store. Reference comparison
// strips leading zeros on both sides.
type QueryParams struct {
	Ref             string
	CurrencyCode    string // Empty means functional currency
	AmountColumn    AmountColumn
	LiquidityColumn LiquidityColumn
	Order           QueryOrder
	AccountIDs      []int64 // Payable/receivable accounts to search, empty = all
	ExcludedIDs     []int64
	PartnerID       int64
	Amount          decimal.Decimal
	MatchAmount     bool
	OverlookPartner bool
	Limit           int // 0 = no limit
}

// Ledger is the read side of the ledger-line query service.
type Ledger interface {
	// FindCandidates returns the open ledger lines matching params, in the
	// order params.Order dictates.
	FindCandidates(ctx context.Context, params QueryParams) ([]model.LedgerLine, error)
}

// Reconciler is the posting/reconciliation-commit service. A recoverable
// business-rule violation is reported as a common.UserError; anything else
// is a fault.
type Reconciler interface {
	// ProcessReconciliation settles the matched lines against the payment
	// line inside a savepoint and returns the created journal entry ids.
	ProcessReconciliation(ctx context.Context, line model.PaymentLine, counterparts []model.CounterpartLine, liquidity []model.LedgerLine, newLines []model.CounterpartLine) ([]string, error)
}

// InvoiceLookup resolves open documents by their structured reference.
type InvoiceLookup interface {
	FindOpenInvoiceByReference(ctx context.Context, ref string) (*model.Invoice, error)
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	Ledger
	Reconciler
	InvoiceLookup

	// Payment line operations
	SavePaymentLines(ctx context.Context, lines []model.PaymentLine) (int, error)
	GetPaymentLinesToReconcile(ctx context.Context, statementID string) ([]model.PaymentLine, error)
	GetPaymentLineByID(ctx context.Context, id string) (*model.PaymentLine, error)

	// Partner operations
	SavePartner(ctx context.Context, partner *model.Partner) error
	GetPartner(ctx context.Context, id int64) (*model.Partner, error)

	// Document and ledger operations
	SaveAccount(ctx context.Context, account *model.Account) error
	SaveInvoice(ctx context.Context, invoice *model.Invoice) error
	SaveLedgerLines(ctx context.Context, lines []model.LedgerLine) error
	GetLedgerLineByID(ctx context.Context, id int64) (*model.LedgerLine, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
}
