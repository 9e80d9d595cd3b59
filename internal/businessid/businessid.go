// Package businessid validates national business registration identifiers.
//
// Validation dispatches on the partner's country code through a registry.
// Countries without a registered validator are accepted as-is: absence of
// validation rules is not an error.
package businessid

import (
	"fmt"
	"strings"

	"github.com/avoinsys/viite/internal/model"
)

// Validator normalizes and validates a business identifier for one
// country. Validate always runs on the normalized form.
type Validator interface {
	Normalize(raw string) string
	Validate(canonical string) error
}

// Registry maps ISO country codes to their validator.
type Registry struct {
	validators map[string]Validator
}

// NewRegistry returns a registry with the built-in country validators.
func NewRegistry() *Registry {
	r := &Registry{validators: make(map[string]Validator)}
	r.Register("FI", Finland{})
	return r
}

// Register adds or replaces the validator for a country code.
func (r *Registry) Register(countryCode string, v Validator) {
	r.validators[strings.ToUpper(countryCode)] = v
}

// Validate normalizes and validates raw for the given country. When no
// validator is registered for the country, the raw value is returned
// unchanged with no error.
func (r *Registry) Validate(countryCode, raw string) (string, error) {
	v, ok := r.validators[strings.ToUpper(countryCode)]
	if !ok {
		return raw, nil
	}

	canonical := v.Normalize(raw)
	if err := v.Validate(canonical); err != nil {
		return canonical, err
	}
	return canonical, nil
}

// ValidatePartner validates the partner's Business ID against the rules of
// the partner's country and writes the canonical form back. It is called
// whenever the Business ID is assigned or the partner's country changes.
// Partners without a Business ID pass validation.
func (r *Registry) ValidatePartner(p *model.Partner) error {
	raw := p.BusinessID()
	if raw == "" {
		return nil
	}

	canonical, err := r.Validate(p.CountryCode, raw)
	if err != nil {
		return fmt.Errorf("partner %q: %w", p.Name, err)
	}
	p.SetBusinessID(canonical)
	return nil
}
