package reference

import (
	"errors"
	"regexp"
	"testing"

	"github.com/avoinsys/viite/internal/common"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name    string
		scheme  Scheme
		seed    string
		want    string
		wantErr error
	}{
		{
			name:   "national from invoice number",
			scheme: SchemeFinnish,
			seed:   "1234567",
			want:   "12345672",
		},
		{
			name:   "national strips separators",
			scheme: SchemeFinnish,
			seed:   "INV/123456",
			want:   "1234561",
		},
		{
			name:   "national pads short seed",
			scheme: SchemeFinnish,
			seed:   "7",
			want:   "1177",
		},
		{
			name:   "rf wraps national reference",
			scheme: SchemeFinnishRF,
			seed:   "1234567",
			want:   "RF8512345672",
		},
		{
			name:    "empty seed",
			scheme:  SchemeFinnish,
			seed:    "no digits here",
			wantErr: common.ErrEmptyInput,
		},
		{
			name:    "unknown scheme",
			scheme:  Scheme("iban"),
			seed:    "123",
			wantErr: common.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Generate(tt.scheme, tt.seed)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Generate(%v, %q) error = %v, want %v", tt.scheme, tt.seed, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Generate(%v, %q) unexpected error: %v", tt.scheme, tt.seed, err)
			}
			if got != tt.want {
				t.Errorf("Generate(%v, %q) = %q, want %q", tt.scheme, tt.seed, got, tt.want)
			}
		})
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	for _, scheme := range []Scheme{SchemeFinnish, SchemeFinnishRF} {
		first, err := Generate(scheme, "998877")
		if err != nil {
			t.Fatalf("Generate(%v) unexpected error: %v", scheme, err)
		}
		second, err := Generate(scheme, "998877")
		if err != nil {
			t.Fatalf("Generate(%v) unexpected error: %v", scheme, err)
		}
		if first != second {
			t.Errorf("Generate(%v) not deterministic: %q != %q", scheme, first, second)
		}
	}
}

func TestGenerateValidateRoundTrip(t *testing.T) {
	seeds := []string{"1", "42", "123", "1234567", "INV-2024-0042", "9999999999999999999999"}
	for _, scheme := range []Scheme{SchemeFinnish, SchemeFinnishRF} {
		for _, seed := range seeds {
			ref, err := Generate(scheme, seed)
			if err != nil {
				t.Fatalf("Generate(%v, %q) unexpected error: %v", scheme, seed, err)
			}
			if err := Validate(scheme, ref); err != nil {
				t.Errorf("Validate(%v, %q) failed for seed %q: %v", scheme, ref, seed, err)
			}
		}
	}
}

func TestGenerateRFShape(t *testing.T) {
	ref, err := Generate(SchemeFinnishRF, "123456789")
	if err != nil {
		t.Fatalf("Generate unexpected error: %v", err)
	}
	if !regexp.MustCompile(`^RF\d{2}\d+$`).MatchString(ref) {
		t.Errorf("RF reference %q does not match RF\\d{2}\\d+", ref)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		scheme  Scheme
		ref     string
		wantErr error
	}{
		{
			name:   "valid national",
			scheme: SchemeFinnish,
			ref:    "1234561",
		},
		{
			name:    "national check digit mismatch",
			scheme:  SchemeFinnish,
			ref:     "1234562",
			wantErr: common.ErrCheckDigitMismatch,
		},
		{
			name:    "national too short",
			scheme:  SchemeFinnish,
			ref:     "123",
			wantErr: common.ErrFormat,
		},
		{
			name:    "national with separators",
			scheme:  SchemeFinnish,
			ref:     "12 34 561",
			wantErr: common.ErrFormat,
		},
		{
			name:   "valid rf",
			scheme: SchemeFinnishRF,
			ref:    "RF8512345672",
		},
		{
			name:    "rf check digit mismatch",
			scheme:  SchemeFinnishRF,
			ref:     "RF8412345672",
			wantErr: common.ErrCheckDigitMismatch,
		},
		{
			name:    "rf missing prefix",
			scheme:  SchemeFinnishRF,
			ref:     "8512345672",
			wantErr: common.ErrFormat,
		},
		{
			name:    "rf non-digit payload",
			scheme:  SchemeFinnishRF,
			ref:     "RF85123A5672",
			wantErr: common.ErrFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.scheme, tt.ref)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Validate(%v, %q) error = %v, want %v", tt.scheme, tt.ref, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate(%v, %q) unexpected error: %v", tt.scheme, tt.ref, err)
			}
		})
	}
}

func TestSeedFor(t *testing.T) {
	seed, err := SeedFor(SourceInvoice, "INV/2025/0042", 17)
	if err != nil {
		t.Fatalf("SeedFor(invoice) unexpected error: %v", err)
	}
	if seed != "INV/2025/0042" {
		t.Errorf("SeedFor(invoice) = %q, want document number", seed)
	}

	seed, err = SeedFor(SourcePartner, "INV/2025/0042", 17)
	if err != nil {
		t.Fatalf("SeedFor(partner) unexpected error: %v", err)
	}
	if seed != "17" {
		t.Errorf("SeedFor(partner) = %q, want %q", seed, "17")
	}

	if _, err := SeedFor(Source("journal"), "x", 1); !errors.Is(err, common.ErrInvalidConfig) {
		t.Errorf("SeedFor(journal) error = %v, want ErrInvalidConfig", err)
	}
}

func TestParseScheme(t *testing.T) {
	if _, err := ParseScheme("finnish"); err != nil {
		t.Errorf("ParseScheme(finnish) unexpected error: %v", err)
	}
	if _, err := ParseScheme("finnish_rf"); err != nil {
		t.Errorf("ParseScheme(finnish_rf) unexpected error: %v", err)
	}
	if _, err := ParseScheme("bogus"); !errors.Is(err, common.ErrInvalidConfig) {
		t.Errorf("ParseScheme(bogus) error = %v, want ErrInvalidConfig", err)
	}
}
