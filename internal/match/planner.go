// Package match implements the bank statement auto-reconciliation engine:
// a query planner that derives layered candidate searches from a payment
// line, and an engine that executes them and commits the match.
package match

import (
	"strings"

	"github.com/avoinsys/viite/internal/model"
	"github.com/avoinsys/viite/internal/service"
)

// Config holds the company-level settings the planner and engine need.
type Config struct {
	// FunctionalCurrency is the company currency; payment lines in any
	// other currency are matched on currency residuals.
	FunctionalCurrency string
	// DecimalPlaces is the rounding precision of the ledger's currency.
	DecimalPlaces int32
	// AccountIDs restricts candidate queries to the journal's
	// payable/receivable accounts. Empty means no restriction.
	AccountIDs []int64
	// ValidMatch overrides the acceptance predicate run before commit.
	// nil uses the balance-conservation check.
	ValidMatch MatchValidator
	// NewLines synthesizes additional posting lines for complex matches
	// such as cash discounts. nil synthesizes nothing.
	NewLines NewLinesFunc
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		FunctionalCurrency: "EUR",
		DecimalPlaces:      2,
	}
}

// foreignCurrency reports whether the line is denominated in a currency
// other than the company's functional currency.
func foreignCurrency(line model.PaymentLine, cfg Config) bool {
	return line.CurrencyCode != "" && line.CurrencyCode != cfg.FunctionalCurrency
}

// baseParams derives the parameter fields shared by every tier of a plan
// from the payment line's amount, currency and sign.
func baseParams(line model.PaymentLine, cfg Config) service.QueryParams {
	foreign := foreignCurrency(line, cfg)

	amount := line.EffectiveAmount().Round(cfg.DecimalPlaces)

	params := service.QueryParams{
		Ref:          strings.TrimSpace(line.Ref),
		PartnerID:    line.PartnerID,
		Amount:       amount,
		AccountIDs:   cfg.AccountIDs,
		AmountColumn: service.AmountResidual,
	}

	if foreign {
		params.CurrencyCode = line.CurrencyCode
		params.AmountColumn = service.AmountResidualCurrency
		params.LiquidityColumn = service.LiquidityAmountCurrency
	} else if amount.IsPositive() {
		params.LiquidityColumn = service.LiquidityDebit
	} else {
		params.LiquidityColumn = service.LiquidityCredit
	}

	return params
}

// BuildPlan derives the ordered candidate-query tiers for the
// auto-reconcile path: reference and amount with the partner constraint,
// then the same overlooking the partner. A line without a reference yields
// an empty plan; matching without a structured reference is never
// attempted automatically.
func BuildPlan(line model.PaymentLine, cfg Config) []service.QueryParams {
	if strings.TrimSpace(line.Ref) == "" {
		return nil
	}

	base := baseParams(line, cfg)
	base.MatchAmount = true
	base.Order = service.OrderDueDateAsc

	withPartner := base

	overlook := base
	overlook.OverlookPartner = true

	return []service.QueryParams{withPartner, overlook}
}

// BuildPropositionPlan derives the tiers for the proposition path, which
// suggests a single best candidate instead of committing: reference and
// amount first, then reference only, both overlooking the partner and
// ranked by exact payment-reference equality before due date.
func BuildPropositionPlan(line model.PaymentLine, cfg Config, excludedIDs []int64) []service.QueryParams {
	if strings.TrimSpace(line.Ref) == "" {
		return nil
	}

	base := baseParams(line, cfg)
	base.OverlookPartner = true
	base.Order = service.OrderProposition
	base.ExcludedIDs = excludedIDs
	base.Limit = 1

	refAndAmount := base
	refAndAmount.MatchAmount = true

	refOnly := base

	return []service.QueryParams{refAndAmount, refOnly}
}
