package businessid

import (
	"errors"
	"testing"

	"github.com/avoinsys/viite/internal/common"
	"github.com/avoinsys/viite/internal/model"
)

func TestFinlandNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "eight digits gain a hyphen",
			raw:  "12345671",
			want: "1234567-1",
		},
		{
			name: "canonical form unchanged",
			raw:  "1234567-1",
			want: "1234567-1",
		},
		{
			name: "association form unchanged",
			raw:  "123.456",
			want: "123.456",
		},
		{
			name: "garbage unchanged",
			raw:  "Y-12345",
			want: "Y-12345",
		},
	}

	fi := Finland{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fi.Normalize(tt.raw); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestFinlandValidate(t *testing.T) {
	tests := []struct {
		name      string
		canonical string
		wantErr   error
	}{
		{
			name:      "valid business id",
			canonical: "1234567-1",
		},
		{
			name:      "association form accepted without checksum",
			canonical: "123.456",
		},
		{
			name:      "check digit mismatch",
			canonical: "1234567-2",
			wantErr:   common.ErrCheckDigitMismatch,
		},
		{
			name:      "no valid check digit exists",
			canonical: "1001000-5",
			wantErr:   common.ErrCheckDigitMismatch,
		},
		{
			name:      "missing hyphen",
			canonical: "12345671",
			wantErr:   common.ErrFormat,
		},
		{
			name:      "too short",
			canonical: "123456-1",
			wantErr:   common.ErrFormat,
		},
		{
			name:      "letters rejected",
			canonical: "12345A7-1",
			wantErr:   common.ErrFormat,
		},
	}

	fi := Finland{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fi.Validate(tt.canonical)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Validate(%q) error = %v, want %v", tt.canonical, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate(%q) unexpected error: %v", tt.canonical, err)
			}
		})
	}
}

func TestRegistryValidate(t *testing.T) {
	r := NewRegistry()

	canonical, err := r.Validate("FI", "12345671")
	if err != nil {
		t.Fatalf("Validate(FI, 12345671) unexpected error: %v", err)
	}
	if canonical != "1234567-1" {
		t.Errorf("Validate(FI, 12345671) = %q, want 1234567-1", canonical)
	}

	// Lowercase country codes dispatch too.
	if _, err := r.Validate("fi", "1234567-2"); !errors.Is(err, common.ErrCheckDigitMismatch) {
		t.Errorf("Validate(fi, 1234567-2) error = %v, want ErrCheckDigitMismatch", err)
	}

	// Unregistered country: validation is skipped, not failed.
	canonical, err = r.Validate("SE", "anything goes")
	if err != nil {
		t.Errorf("Validate(SE, ...) unexpected error: %v", err)
	}
	if canonical != "anything goes" {
		t.Errorf("Validate(SE, ...) = %q, want input untouched", canonical)
	}
}

func TestRegistryValidatePartner(t *testing.T) {
	r := NewRegistry()

	p := model.Partner{Name: "Testi Oy", CountryCode: "FI"}
	p.SetBusinessID("12345671")
	if err := r.ValidatePartner(&p); err != nil {
		t.Fatalf("ValidatePartner unexpected error: %v", err)
	}
	if got := p.BusinessID(); got != "1234567-1" {
		t.Errorf("BusinessID after validation = %q, want canonical 1234567-1", got)
	}

	// Country change re-runs validation under the new rules.
	p.CountryCode = "SE"
	if err := r.ValidatePartner(&p); err != nil {
		t.Errorf("ValidatePartner after country change unexpected error: %v", err)
	}

	bad := model.Partner{Name: "Huono Oy", CountryCode: "FI"}
	bad.SetBusinessID("1234567-5")
	if err := r.ValidatePartner(&bad); !errors.Is(err, common.ErrCheckDigitMismatch) {
		t.Errorf("ValidatePartner error = %v, want ErrCheckDigitMismatch", err)
	}

	empty := model.Partner{Name: "Uusi", CountryCode: "FI"}
	if err := r.ValidatePartner(&empty); err != nil {
		t.Errorf("ValidatePartner on empty id unexpected error: %v", err)
	}
}

func TestOVTIdentifier(t *testing.T) {
	tests := []struct {
		name       string
		businessID string
		orgUnit    string
		want       string
		wantErr    error
	}{
		{
			name:       "canonical business id",
			businessID: "1234567-1",
			want:       "003712345671",
		},
		{
			name:       "bare digits normalized first",
			businessID: "12345671",
			want:       "003712345671",
		},
		{
			name:       "organization unit suffix",
			businessID: "1234567-1",
			orgUnit:    "001",
			want:       "003712345671001",
		},
		{
			name:       "invalid check digit",
			businessID: "1234567-2",
			wantErr:    common.ErrCheckDigitMismatch,
		},
		{
			name:       "association form has no ovt",
			businessID: "123.456",
			wantErr:    common.ErrFormat,
		},
		{
			name:       "org unit too long",
			businessID: "1234567-1",
			orgUnit:    "123456",
			wantErr:    common.ErrFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := OVTIdentifier(tt.businessID, tt.orgUnit)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("OVTIdentifier(%q, %q) error = %v, want %v", tt.businessID, tt.orgUnit, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("OVTIdentifier(%q, %q) unexpected error: %v", tt.businessID, tt.orgUnit, err)
			}
			if got != tt.want {
				t.Errorf("OVTIdentifier(%q, %q) = %q, want %q", tt.businessID, tt.orgUnit, got, tt.want)
			}
		})
	}
}
