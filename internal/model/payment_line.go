// Package model defines the domain types shared by the matching engine,
// storage layer and CLI.
package model

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentLine is a single incoming bank statement transaction awaiting
// reconciliation. It is input to the matching engine, which never mutates
// it; the storage layer flags it settled after a successful commit.
type PaymentLine struct {
	Date           time.Time
	ID             string
	StatementID    string
	Name           string // Free-text description from the bank
	Ref            string // Structured reference / message field
	PartnerName    string // Counterparty text as reported by the bank
	CurrencyCode   string // Empty when the line is in the functional currency
	Hash           string
	PartnerID      int64 // 0 when the bank line carries no partner linkage
	Amount         decimal.Decimal
	AmountCurrency decimal.Decimal // Foreign currency amount, zero if none
	Reconciled     bool
}

// GenerateHash creates a unique hash for duplicate detection across
// repeated statement imports.
func (l *PaymentLine) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%s:%s",
		l.Date.Format("2006-01-02"),
		l.Amount.String(),
		l.Ref,
		l.Name,
		l.StatementID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// EffectiveAmount returns the amount the line should be matched on: the
// foreign currency amount when one is present, otherwise the functional
// currency amount.
func (l *PaymentLine) EffectiveAmount() decimal.Decimal {
	if !l.AmountCurrency.IsZero() {
		return l.AmountCurrency
	}
	return l.Amount
}

// ReferenceEqual compares two structured references, ignoring leading
// zeros and surrounding whitespace on both sides. Bank systems commonly
// left-pad references with zeros, so "000111" and "111" identify the same
// document.
func ReferenceEqual(a, b string) bool {
	a = strings.TrimLeft(strings.TrimSpace(a), "0")
	b = strings.TrimLeft(strings.TrimSpace(b), "0")
	return a != "" && a == b
}
