package businessid

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/avoinsys/viite/internal/checksum"
	"github.com/avoinsys/viite/internal/common"
)

var (
	fiEightDigits = regexp.MustCompile(`^[0-9]{8}$`)
	fiFormal      = regexp.MustCompile(`^[0-9]{7}-[0-9]$`)
	// Legacy registered association form (rekisteröity yhdistys), e.g.
	// 123.456. No checksum applies to it.
	fiAssociation = regexp.MustCompile(`^[0-9]{3}\.[0-9]{3}$`)
)

// Finland validates Finnish Business IDs (Y-tunnus): seven digits, a
// hyphen, and a mod 11 check digit, or the legacy association form.
type Finland struct{}

// Normalize inserts the hyphen into a bare 8-digit ID (12345671 becomes
// 1234567-1). Any other shape is returned unchanged for Validate to judge.
func (Finland) Normalize(raw string) string {
	if fiEightDigits.MatchString(raw) {
		return raw[:7] + "-" + raw[7:]
	}
	return raw
}

// Validate checks the canonical form and its check digit.
func (Finland) Validate(canonical string) error {
	if fiAssociation.MatchString(canonical) {
		return nil
	}

	if !fiFormal.MatchString(canonical) {
		return fmt.Errorf("business id %q: expected format 1234567-1: %w", canonical, common.ErrFormat)
	}

	digits := strings.ReplaceAll(canonical, "-", "")
	expected, err := checksum.BusinessIDCheckDigit(digits[:7])
	if err != nil {
		return err
	}
	if int(digits[7]-'0') != expected {
		return fmt.Errorf("business id %q: expected check digit %d: %w", canonical, expected, common.ErrCheckDigitMismatch)
	}
	return nil
}

// OVTIdentifier derives the Finnish OVT/EDI identifier from a validated
// Business ID: the country prefix 0037 followed by the ID's digits, plus
// an optional organization unit suffix of up to five characters. The
// association form has no OVT identifier.
func OVTIdentifier(businessID, orgUnit string) (string, error) {
	fi := Finland{}
	canonical := fi.Normalize(businessID)
	if fiAssociation.MatchString(canonical) {
		return "", fmt.Errorf("business id %q: association form has no OVT identifier: %w", canonical, common.ErrFormat)
	}
	if err := fi.Validate(canonical); err != nil {
		return "", err
	}

	if len(orgUnit) > 5 {
		return "", fmt.Errorf("organization unit %q: at most 5 characters: %w", orgUnit, common.ErrFormat)
	}

	return "0037" + strings.ReplaceAll(canonical, "-", "") + orgUnit, nil
}
