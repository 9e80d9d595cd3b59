// Package ofx converts OFX/QFX bank statement files into payment lines
// ready for reconciliation.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/avoinsys/viite/internal/model"
	"github.com/avoinsys/viite/internal/reference"
)

// Parser implements OFX/QFX statement parsing.
type Parser struct {
	// FunctionalCurrency is the bookkeeping currency. Transactions in any
	// other currency carry their currency code on the payment line.
	FunctionalCurrency string
}

// NewParser creates a parser with EUR as the functional currency.
func NewParser() *Parser {
	return &Parser{FunctionalCurrency: "EUR"}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	// Trim any leading whitespace or blank lines before the header
	content = strings.TrimLeft(content, " \t\r\n")

	// Fix mixed-case SEVERITY values (should be INFO, WARN, or ERROR)
	severityRegex := regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// Fix missing closing angle brackets in SGML-style OFX files
	tagFixRegex := regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// ParseFile parses an OFX/QFX file and returns payment lines.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]model.PaymentLine, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var lines []model.PaymentLine
	statements := 0

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}
		statements++
		lines = append(lines, p.processStatement(stmt)...)
	}

	slog.Info("Parsed OFX file",
		"payment_lines", len(lines),
		"statements", statements)

	return lines, nil
}

// processStatement converts the transactions of one bank statement.
func (p *Parser) processStatement(stmt *ofxgo.StatementResponse) []model.PaymentLine {
	if stmt.BankTranList == nil {
		return nil
	}

	statementID := statementID(stmt)
	currency := strings.ToUpper(stmt.CurDef.String())

	var lines []model.PaymentLine
	for _, ofxTx := range stmt.BankTranList.Transactions {
		lines = append(lines, p.convertTransaction(ofxTx, statementID, currency))
	}
	return lines
}

// statementID identifies the statement a line came from: the account
// number plus the statement period end.
func statementID(stmt *ofxgo.StatementResponse) string {
	acct := string(stmt.BankAcctFrom.AcctID)
	if stmt.BankTranList == nil {
		return acct
	}
	return acct + "/" + stmt.BankTranList.DtEnd.Format("2006-01-02")
}

// convertTransaction converts one OFX transaction to a payment line.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, statementID, currency string) model.PaymentLine {
	amount := decimal.NewFromBigRat(&ofxTx.TrnAmt.Rat, 2)

	line := model.PaymentLine{
		ID:          string(ofxTx.FiTID),
		StatementID: statementID,
		Date:        ofxTx.DtPosted.Time,
		Name:        string(ofxTx.Name),
		PartnerName: partnerName(ofxTx),
		Ref:         extractReference(ofxTx),
		Amount:      amount,
	}

	// Per-transaction currency overrides the statement default.
	if ofxTx.Currency != nil && ofxTx.Currency.CurSym.String() != "" {
		currency = strings.ToUpper(ofxTx.Currency.CurSym.String())
	}
	if currency != "" && currency != p.FunctionalCurrency {
		line.CurrencyCode = currency
		line.AmountCurrency = amount
	}

	line.Hash = line.GenerateHash()
	return line
}

// partnerName prefers the structured payee record over the free-form
// name line.
func partnerName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}
	return strings.TrimSpace(string(tx.Name))
}

var (
	rfCandidate    = regexp.MustCompile(`\bRF\d{2}\d{3,20}\b`)
	digitCandidate = regexp.MustCompile(`\b\d{4,20}\b`)
)

// extractReference pulls a structured payment reference off the
// transaction. The REFNUM field wins when present; otherwise the memo
// and name fields are scanned for a token whose check digits verify.
func extractReference(tx ofxgo.Transaction) string {
	if ref := strings.TrimSpace(string(tx.RefNum)); ref != "" {
		return ref
	}

	for _, field := range []string{string(tx.Memo), string(tx.Name)} {
		if ref := rfCandidate.FindString(field); ref != "" {
			if reference.Validate(reference.SchemeFinnishRF, ref) == nil {
				return ref
			}
		}
		for _, candidate := range digitCandidate.FindAllString(field, -1) {
			if reference.Validate(reference.SchemeFinnish, candidate) == nil {
				return candidate
			}
		}
	}
	return ""
}
