package match

import (
	"testing"

	"github.com/avoinsys/viite/internal/model"
	"github.com/avoinsys/viite/internal/service"
	"github.com/shopspring/decimal"
)

func eurConfig() Config {
	return Config{FunctionalCurrency: "EUR", DecimalPlaces: 2, AccountIDs: []int64{400, 401}}
}

func TestBuildPlanTiers(t *testing.T) {
	line := model.PaymentLine{
		ID:        "pl-1",
		Ref:       "1234561",
		PartnerID: 42,
		Amount:    decimal.NewFromInt(100),
	}

	plan := BuildPlan(line, eurConfig())
	if len(plan) != 2 {
		t.Fatalf("BuildPlan returned %d tiers, want 2", len(plan))
	}

	first, second := plan[0], plan[1]

	if first.OverlookPartner {
		t.Error("tier 1 must apply the partner constraint")
	}
	if !second.OverlookPartner {
		t.Error("tier 2 must overlook the partner")
	}

	for i, tier := range plan {
		if !tier.MatchAmount {
			t.Errorf("tier %d must match on amount", i+1)
		}
		if tier.Ref != "1234561" {
			t.Errorf("tier %d ref = %q, want 1234561", i+1, tier.Ref)
		}
		if tier.PartnerID != 42 {
			t.Errorf("tier %d partner = %d, want 42", i+1, tier.PartnerID)
		}
		if tier.Order != service.OrderDueDateAsc {
			t.Errorf("tier %d order = %q, want due date ascending", i+1, tier.Order)
		}
		if len(tier.AccountIDs) != 2 {
			t.Errorf("tier %d account restriction missing", i+1)
		}
	}
}

func TestBuildPlanWithoutReferenceIsEmpty(t *testing.T) {
	line := model.PaymentLine{ID: "pl-2", Amount: decimal.NewFromInt(50)}
	if plan := BuildPlan(line, eurConfig()); plan != nil {
		t.Errorf("BuildPlan without reference = %d tiers, want none", len(plan))
	}

	line.Ref = "   "
	if plan := BuildPlan(line, eurConfig()); plan != nil {
		t.Errorf("BuildPlan with blank reference = %d tiers, want none", len(plan))
	}
}

func TestBuildPlanAmountFieldSelection(t *testing.T) {
	tests := []struct {
		name          string
		line          model.PaymentLine
		wantAmount    decimal.Decimal
		wantCurrency  string
		wantAmountCol service.AmountColumn
		wantLiquidity service.LiquidityColumn
	}{
		{
			name: "functional currency positive payment",
			line: model.PaymentLine{
				Ref:    "123",
				Amount: decimal.RequireFromString("100.00"),
			},
			wantAmount:    decimal.RequireFromString("100.00"),
			wantAmountCol: service.AmountResidual,
			wantLiquidity: service.LiquidityDebit,
		},
		{
			name: "functional currency negative payment",
			line: model.PaymentLine{
				Ref:    "123",
				Amount: decimal.RequireFromString("-80.00"),
			},
			wantAmount:    decimal.RequireFromString("-80.00"),
			wantAmountCol: service.AmountResidual,
			wantLiquidity: service.LiquidityCredit,
		},
		{
			name: "foreign currency uses currency residual",
			line: model.PaymentLine{
				Ref:            "123",
				Amount:         decimal.RequireFromString("91.23"),
				AmountCurrency: decimal.RequireFromString("100.00"),
				CurrencyCode:   "USD",
			},
			wantAmount:    decimal.RequireFromString("100.00"),
			wantCurrency:  "USD",
			wantAmountCol: service.AmountResidualCurrency,
			wantLiquidity: service.LiquidityAmountCurrency,
		},
		{
			name: "amount rounded to ledger precision",
			line: model.PaymentLine{
				Ref:    "123",
				Amount: decimal.RequireFromString("99.999999"),
			},
			wantAmount:    decimal.RequireFromString("100.00"),
			wantAmountCol: service.AmountResidual,
			wantLiquidity: service.LiquidityDebit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := BuildPlan(tt.line, eurConfig())
			if len(plan) == 0 {
				t.Fatal("BuildPlan returned empty plan")
			}
			tier := plan[0]
			if !tier.Amount.Equal(tt.wantAmount) {
				t.Errorf("Amount = %s, want %s", tier.Amount, tt.wantAmount)
			}
			if tier.CurrencyCode != tt.wantCurrency {
				t.Errorf("CurrencyCode = %q, want %q", tier.CurrencyCode, tt.wantCurrency)
			}
			if tier.AmountColumn != tt.wantAmountCol {
				t.Errorf("AmountColumn = %q, want %q", tier.AmountColumn, tt.wantAmountCol)
			}
			if tier.LiquidityColumn != tt.wantLiquidity {
				t.Errorf("LiquidityColumn = %q, want %q", tier.LiquidityColumn, tt.wantLiquidity)
			}
		})
	}
}

func TestBuildPropositionPlan(t *testing.T) {
	line := model.PaymentLine{
		ID:        "pl-3",
		Ref:       "1234561",
		PartnerID: 42,
		Amount:    decimal.NewFromInt(100),
	}

	plan := BuildPropositionPlan(line, eurConfig(), []int64{7, 8})
	if len(plan) != 2 {
		t.Fatalf("BuildPropositionPlan returned %d tiers, want 2", len(plan))
	}

	if !plan[0].MatchAmount {
		t.Error("tier 1 must match on amount")
	}
	if plan[1].MatchAmount {
		t.Error("tier 2 must match on reference only")
	}

	for i, tier := range plan {
		if !tier.OverlookPartner {
			t.Errorf("tier %d must overlook the partner", i+1)
		}
		if tier.Order != service.OrderProposition {
			t.Errorf("tier %d order = %q, want proposition ranking", i+1, tier.Order)
		}
		if tier.Limit != 1 {
			t.Errorf("tier %d limit = %d, want 1", i+1, tier.Limit)
		}
		if len(tier.ExcludedIDs) != 2 {
			t.Errorf("tier %d excluded ids missing", i+1)
		}
	}
}

func TestBuildPropositionPlanWithoutReferenceIsEmpty(t *testing.T) {
	line := model.PaymentLine{ID: "pl-4", Amount: decimal.NewFromInt(10)}
	if plan := BuildPropositionPlan(line, eurConfig(), nil); plan != nil {
		t.Errorf("BuildPropositionPlan without reference = %d tiers, want none", len(plan))
	}
}
