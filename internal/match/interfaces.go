package match

import (
	"github.com/avoinsys/viite/internal/model"
	"github.com/avoinsys/viite/internal/service"
)

// Store is the slice of the persistence layer the engine depends on: the
// candidate query service, the reconciliation commit service and the
// invoice lookup used for proposition display.
type Store interface {
	service.Ledger
	service.Reconciler
	service.InvoiceLookup
}

// MatchValidator decides whether a numerically located match may be
// committed. Implementations must be side-effect free.
type MatchValidator func(line model.PaymentLine, result *model.MatchResult, newLines []model.CounterpartLine, decimalPlaces int32) bool

// NewLinesFunc synthesizes additional posting lines for a match, e.g. a
// cash discount write-off. The returned lines participate in balance
// validation and are posted together with the counterparts.
type NewLinesFunc func(line model.PaymentLine, matched []model.LedgerLine) []model.CounterpartLine
