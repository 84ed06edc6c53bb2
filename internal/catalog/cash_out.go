package catalog

import "github.com/sells-group/underwrite-cli/internal/model"

// The Cash Out: operating expense assumptions. The napkin view carries a
// single expense number; the mid and pro views itemize it.

func cashOutConfig() model.BasketConfig {
	return model.BasketConfig{
		ID:          "cash_out",
		Name:        "The Cash Out",
		Description: "Operating expense assumptions",
		Groups: []model.FieldGroup{
			{Key: "summary", Label: "Expenses", Tier: model.TierNapkin, FieldKeys: []string{
				"operating_expenses", "expense_growth_pct",
			}},
			{Key: "itemized", Label: "Itemized Expenses", Tier: model.TierMid, FieldKeys: []string{
				"real_estate_taxes", "insurance", "utilities", "repairs_maintenance",
				"management_fee", "payroll", "total_itemized_expenses",
			}},
			{Key: "reserves", Label: "Reserves", Tier: model.TierPro, FieldKeys: []string{
				"replacement_reserves_per_unit", "include_reserves_in_noi",
			}},
		},
		Fields: []model.FieldDefinition{
			{
				Key:      "operating_expenses",
				Label:    model.TierText{Napkin: "Operating Expenses", Mid: "Total Operating Expenses"},
				Help:     model.Text("Annual operating expenses excluding debt service"),
				Type:     model.TypeCurrency,
				Tier:     model.TierNapkin,
				Required: true,
				Format:   &model.Format{Prefix: "$", Decimals: 0},
			},
			{
				Key:     "expense_growth_pct",
				Label:   model.Text("Expense Growth %"),
				Type:    model.TypePercentage,
				Tier:    model.TierMid,
				Range:   &model.Range{Min: -5, Max: 15},
				Format:  &model.Format{Suffix: "%", Decimals: 2},
				Default: def(model.Number(2.5)),
			},
			{
				Key:    "real_estate_taxes",
				Label:  model.Text("Real Estate Taxes"),
				Type:   model.TypeCurrency,
				Tier:   model.TierMid,
				Format: &model.Format{Prefix: "$", Decimals: 0},
			},
			{
				Key:    "insurance",
				Label:  model.Text("Insurance"),
				Type:   model.TypeCurrency,
				Tier:   model.TierMid,
				Format: &model.Format{Prefix: "$", Decimals: 0},
			},
			{
				Key:    "utilities",
				Label:  model.Text("Utilities"),
				Type:   model.TypeCurrency,
				Tier:   model.TierMid,
				Format: &model.Format{Prefix: "$", Decimals: 0},
			},
			{
				Key:    "repairs_maintenance",
				Label:  model.Text("Repairs & Maintenance"),
				Type:   model.TypeCurrency,
				Tier:   model.TierMid,
				Format: &model.Format{Prefix: "$", Decimals: 0},
			},
			{
				Key:    "management_fee",
				Label:  model.Text("Management Fee"),
				Type:   model.TypeCurrency,
				Tier:   model.TierMid,
				Format: &model.Format{Prefix: "$", Decimals: 0},
			},
			{
				Key:    "payroll",
				Label:  model.Text("Payroll"),
				Type:   model.TypeCurrency,
				Tier:   model.TierPro,
				Format: &model.Format{Prefix: "$", Decimals: 0},
			},
			{
				Key:    "total_itemized_expenses",
				Label:  model.Text("Total Itemized"),
				Help:   model.TierText{Mid: "Sum of the itemized lines entered so far"},
				Type:   model.TypeCurrency,
				Tier:   model.TierMid,
				Format: &model.Format{Prefix: "$", Decimals: 0},
				DependsOn: []string{
					"real_estate_taxes", "insurance", "utilities",
					"repairs_maintenance", "management_fee", "payroll",
				},
			},
			{
				Key:     "replacement_reserves_per_unit",
				Label:   model.Text("Reserves / Unit"),
				Type:    model.TypeCurrency,
				Tier:    model.TierPro,
				Range:   &model.Range{Min: 0, Max: 2000},
				Format:  &model.Format{Prefix: "$", Decimals: 0},
				Default: def(model.Number(250)),
			},
			{
				Key:     "include_reserves_in_noi",
				Label:   model.Text("Reserves Above the Line"),
				Help:    model.TierText{Pro: "Deduct replacement reserves before NOI rather than below it"},
				Type:    model.TypeToggle,
				Tier:    model.TierPro,
				Default: def(model.Bool(false)),
			},
		},
	}
}

func cashOutFormulas() map[string]Formula {
	return map[string]Formula{
		// Sums whichever itemized lines are present; stays absent until at
		// least one is entered.
		"total_itemized_expenses": func(v model.ValueMap) (model.Value, bool) {
			keys := []string{
				"real_estate_taxes", "insurance", "utilities",
				"repairs_maintenance", "management_fee", "payroll",
			}
			total := 0.0
			any := false
			for _, key := range keys {
				if f, ok := v.Float64(key); ok {
					total += f
					any = true
				}
			}
			if !any {
				return model.Value{}, false
			}
			return model.Number(round2(total)), true
		},
	}
}
