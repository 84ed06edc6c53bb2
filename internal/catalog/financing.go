package catalog

import (
	"math"

	"github.com/sells-group/underwrite-cli/internal/model"
)

// Financing: loan sizing, debt service, and exit balance.

func financingConfig() model.BasketConfig {
	return model.BasketConfig{
		ID:          "financing",
		Name:        "The Loan",
		Description: "Debt assumptions",
		Groups: []model.FieldGroup{
			{Key: "sizing", Label: "Loan Sizing", Tier: model.TierNapkin, FieldKeys: []string{
				"loan_amount", "loan_type", "interest_rate_pct", "amortization_years",
			}},
			{Key: "service", Label: "Debt Service", Tier: model.TierNapkin, FieldKeys: []string{
				"monthly_payment", "annual_debt_service", "interest_only",
			}},
			{Key: "terms", Label: "Term & Exit", Tier: model.TierMid, FieldKeys: []string{
				"loan_term_years", "balloon_balance", "loan_points_pct", "loan_fees",
			}},
		},
		Fields: []model.FieldDefinition{
			{
				Key:      "loan_amount",
				Label:    model.Text("Loan Amount"),
				Type:     model.TypeCurrency,
				Tier:     model.TierNapkin,
				Required: true,
				Format:   &model.Format{Prefix: "$", Decimals: 0},
			},
			{
				Key:     "loan_type",
				Label:   model.Text("Loan Type"),
				Type:    model.TypeDropdown,
				Tier:    model.TierMid,
				Options: []string{"agency", "bank", "bridge", "cmbs"},
				Default: def(model.Str("bank")),
			},
			{
				Key:      "interest_rate_pct",
				Label:    model.Text("Interest Rate %"),
				Type:     model.TypePercentage,
				Tier:     model.TierNapkin,
				Required: true,
				Range:    &model.Range{Min: 0, Max: 25},
				Format:   &model.Format{Suffix: "%", Decimals: 3},
			},
			{
				Key:     "amortization_years",
				Label:   model.Text("Amortization (yrs)"),
				Type:    model.TypeNumber,
				Tier:    model.TierNapkin,
				Range:   &model.Range{Min: 1, Max: 40},
				Default: def(model.Number(30)),
			},
			{
				Key:     "interest_only",
				Label:   model.Text("Interest Only"),
				Help:    model.TierText{Napkin: "Pay interest only; principal is due at maturity"},
				Type:    model.TypeToggle,
				Tier:    model.TierNapkin,
				Default: def(model.Bool(false)),
			},
			{
				Key:       "monthly_payment",
				Label:     model.Text("Monthly Payment"),
				Type:      model.TypeCurrency,
				Tier:      model.TierNapkin,
				Format:    &model.Format{Prefix: "$", Decimals: 2},
				DependsOn: []string{"loan_amount", "interest_rate_pct", "amortization_years", "interest_only"},
			},
			{
				Key:       "annual_debt_service",
				Label:     model.Text("Annual Debt Service"),
				Type:      model.TypeCurrency,
				Tier:      model.TierNapkin,
				Format:    &model.Format{Prefix: "$", Decimals: 0},
				DependsOn: []string{"monthly_payment"},
			},
			{
				Key:     "loan_term_years",
				Label:   model.Text("Loan Term (yrs)"),
				Type:    model.TypeNumber,
				Tier:    model.TierMid,
				Range:   &model.Range{Min: 1, Max: 30},
				Default: def(model.Number(10)),
			},
			{
				Key:       "balloon_balance",
				Label:     model.Text("Balloon at Maturity"),
				Help:      model.TierText{Mid: "Remaining principal when the loan term ends"},
				Type:      model.TypeCurrency,
				Tier:      model.TierMid,
				Format:    &model.Format{Prefix: "$", Decimals: 0},
				DependsOn: []string{"loan_amount", "interest_rate_pct", "amortization_years", "loan_term_years", "interest_only"},
			},
			{
				Key:     "loan_points_pct",
				Label:   model.Text("Points %"),
				Type:    model.TypePercentage,
				Tier:    model.TierPro,
				Range:   &model.Range{Min: 0, Max: 5},
				Format:  &model.Format{Suffix: "%", Decimals: 2},
				Default: def(model.Number(1)),
			},
			{
				Key:       "loan_fees",
				Label:     model.Text("Loan Fees"),
				Type:      model.TypeCurrency,
				Tier:      model.TierPro,
				Format:    &model.Format{Prefix: "$", Decimals: 0},
				DependsOn: []string{"loan_amount", "loan_points_pct"},
			},
		},
	}
}

// monthlyRate converts an annual percentage rate to a monthly fraction.
func monthlyRate(annualPct float64) float64 {
	return annualPct / 100 / 12
}

// amortizedPayment is the standard mortgage payment for principal p over n
// months at monthly rate r. A zero rate degrades to straight-line principal.
func amortizedPayment(p, r float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	if r == 0 {
		return p / float64(n)
	}
	factor := math.Pow(1+r, float64(n))
	return p * r * factor / (factor - 1)
}

// remainingBalance is the principal outstanding after k payments of an
// n-month amortization at monthly rate r.
func remainingBalance(p, r float64, n, k int) float64 {
	if k >= n {
		return 0
	}
	if r == 0 {
		return p * float64(n-k) / float64(n)
	}
	fn := math.Pow(1+r, float64(n))
	fk := math.Pow(1+r, float64(k))
	return p * (fn - fk) / (fn - 1)
}

func financingFormulas() map[string]Formula {
	return map[string]Formula{
		"monthly_payment": func(v model.ValueMap) (model.Value, bool) {
			in, ok := nums(v, "loan_amount", "interest_rate_pct", "amortization_years")
			if !ok || in[2] <= 0 {
				return model.Value{}, false
			}
			r := monthlyRate(in[1])
			if io, ok := v["interest_only"]; ok {
				if b, _ := io.BoolValue(); b {
					return model.Number(round2(in[0] * r)), true
				}
			}
			return model.Number(round2(amortizedPayment(in[0], r, int(in[2]*12)))), true
		},
		"annual_debt_service": func(v model.ValueMap) (model.Value, bool) {
			monthly, ok := v.Float64("monthly_payment")
			if !ok {
				return model.Value{}, false
			}
			return model.Number(round2(monthly * 12)), true
		},
		"balloon_balance": func(v model.ValueMap) (model.Value, bool) {
			in, ok := nums(v, "loan_amount", "interest_rate_pct", "amortization_years", "loan_term_years")
			if !ok || in[2] <= 0 || in[3] <= 0 {
				return model.Value{}, false
			}
			if io, ok := v["interest_only"]; ok {
				if b, _ := io.BoolValue(); b {
					return model.Number(round2(in[0])), true
				}
			}
			bal := remainingBalance(in[0], monthlyRate(in[1]), int(in[2]*12), int(in[3]*12))
			return model.Number(round2(bal)), true
		},
		"loan_fees": func(v model.ValueMap) (model.Value, bool) {
			in, ok := nums(v, "loan_amount", "loan_points_pct")
			if !ok {
				return model.Value{}, false
			}
			return model.Number(round2(in[0] * in[1] / 100)), true
		},
	}
}
