// Package checksum implements the check digit arithmetic behind Finnish
// payment references, RF creditor references and Business IDs.
package checksum

import (
	"fmt"
	"strings"

	"github.com/avoinsys/viite/internal/common"
)

// Digit length bounds for a payment reference base number.
const (
	MinDigits = 3
	MaxDigits = 19
)

// finnishWeights is the cyclic weight sequence applied from the rightmost
// digit of the base number.
var finnishWeights = [3]int{7, 3, 1}

// businessIDMultipliers are the fixed per-position multipliers for the
// seven leading digits of a Finnish Business ID.
var businessIDMultipliers = [7]int{7, 9, 10, 5, 8, 4, 2}

// NormalizeDigits strips all non-digit characters from seed and enforces
// the 3..19 digit length window of a reference base number.
//
// Inputs shorter than 3 digits are prefixed with the literal "11" and then
// cut to the last 3 characters. The prefix is applied before the cut, so a
// 2-digit input keeps only one of the prefix characters ("7" becomes
// "117", "42" becomes "142"). This mirrors the established behavior of
// Finnish invoicing systems and must not be replaced with zero padding.
// Inputs longer than 19 digits keep their leading 19 digits.
func NormalizeDigits(seed string) (string, error) {
	var b strings.Builder
	for _, r := range seed {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	digits := b.String()
	if digits == "" {
		return "", fmt.Errorf("seed %q: %w", seed, common.ErrEmptyInput)
	}

	switch {
	case len(digits) < MinDigits:
		digits = "11" + digits
		digits = digits[len(digits)-MinDigits:]
	case len(digits) > MaxDigits:
		digits = digits[:MaxDigits]
	}

	return digits, nil
}

// FinnishCheckDigit computes the national reference check digit for a base
// number: digits are weighted 7, 3, 1 cyclically from the right, and the
// weighted sum is subtracted from the next full ten.
func FinnishCheckDigit(digits string) (string, error) {
	if digits == "" {
		return "", fmt.Errorf("base number: %w", common.ErrEmptyInput)
	}

	sum := 0
	for i := 0; i < len(digits); i++ {
		c := digits[len(digits)-1-i]
		if c < '0' || c > '9' {
			return "", fmt.Errorf("base number %q contains non-digit %q: %w", digits, c, common.ErrFormat)
		}
		sum += finnishWeights[i%3] * int(c-'0')
	}

	check := (10 - sum%10) % 10
	return string(rune('0' + check)), nil
}

// RFCheckDigits computes the two ISO 11649 check digits for a digit string.
// The literal "RF00" is appended, letters are replaced by their two-digit
// codes (A=10 .. Z=35), and the result is taken mod 97 and subtracted
// from 98. The returned string is always exactly two digits.
func RFCheckDigits(digits string) (string, error) {
	if digits == "" {
		return "", fmt.Errorf("base number: %w", common.ErrEmptyInput)
	}

	// Running remainder over the rearranged number. Appending a digit
	// multiplies by 10, appending a letter code by 100; this avoids big
	// integer arithmetic for arbitrarily long references.
	rem := 0
	for i := 0; i < len(digits); i++ {
		c := digits[i]
		if c < '0' || c > '9' {
			return "", fmt.Errorf("base number %q contains non-digit %q: %w", digits, c, common.ErrFormat)
		}
		rem = (rem*10 + int(c-'0')) % 97
	}
	for _, c := range "RF00" {
		if c >= 'A' && c <= 'Z' {
			rem = (rem*100 + int(c-'A') + 10) % 97
		} else {
			rem = (rem*10 + int(c-'0')) % 97
		}
	}

	return fmt.Sprintf("%02d", 98-rem), nil
}

// BusinessIDCheckDigit computes the mod 11 check digit over the seven
// leading digits of a Finnish Business ID. A weighted sum modulo of
// exactly 1 has no valid check digit; such IDs are structurally invalid
// and reported as a check digit mismatch.
func BusinessIDCheckDigit(firstSeven string) (int, error) {
	if len(firstSeven) != 7 {
		return 0, fmt.Errorf("business id base %q: expected 7 digits: %w", firstSeven, common.ErrFormat)
	}

	sum := 0
	for i := 0; i < 7; i++ {
		c := firstSeven[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("business id base %q contains non-digit %q: %w", firstSeven, c, common.ErrFormat)
		}
		sum += businessIDMultipliers[i] * int(c-'0')
	}

	mod := sum % 11
	switch {
	case mod == 0:
		return 0, nil
	case mod == 1:
		// No digit satisfies the checksum for this number space.
		return 0, fmt.Errorf("business id base %q has no valid check digit: %w", firstSeven, common.ErrCheckDigitMismatch)
	default:
		return 11 - mod, nil
	}
}
