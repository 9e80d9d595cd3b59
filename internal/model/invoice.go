package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceState tracks an invoice through its lifecycle. Only open invoices
// participate in reference lookups.
type InvoiceState string

// Invoice states.
const (
	InvoiceDraft InvoiceState = "draft"
	InvoiceOpen  InvoiceState = "open"
	InvoicePaid  InvoiceState = "paid"
)

// Invoice is the minimal document view the matching and lookup paths need:
// the posted number, the partner, and the structured references assigned
// at posting time.
type Invoice struct {
	Date             time.Time
	Number           string
	PaymentReference string // Structured reference generated at posting
	Ref              string // Free-form customer reference
	State            InvoiceState
	PartnerName      string
	ID               int64
	PartnerID        int64
	AmountTotal      decimal.Decimal
}
