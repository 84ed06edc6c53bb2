package catalog

import "github.com/sells-group/underwrite-cli/internal/model"

// The Cash In: revenue assumptions down to effective gross income.

func cashInConfig() model.BasketConfig {
	return model.BasketConfig{
		ID:          "cash_in",
		Name:        "The Cash In",
		Description: "Revenue assumptions",
		Groups: []model.FieldGroup{
			{Key: "rent", Label: "Rental Income", Tier: model.TierNapkin, FieldKeys: []string{
				"gross_potential_rent", "rent_growth_pct",
			}},
			{Key: "losses", Label: "Vacancy & Credit Loss", Tier: model.TierNapkin, FieldKeys: []string{
				"vacancy_pct", "vacancy_loss", "credit_loss_pct", "credit_loss",
			}},
			{Key: "other", Label: "Other Income", Tier: model.TierMid, FieldKeys: []string{
				"other_income", "other_income_growth_pct",
			}},
			{Key: "egi", Label: "Effective Gross Income", Tier: model.TierNapkin, FieldKeys: []string{
				"effective_gross_income",
			}},
		},
		Fields: []model.FieldDefinition{
			{
				Key:      "gross_potential_rent",
				Label:    model.TierText{Napkin: "Gross Rent", Mid: "Gross Potential Rent"},
				Help:     model.Text("Annual scheduled rent at full occupancy"),
				Type:     model.TypeCurrency,
				Tier:     model.TierNapkin,
				Required: true,
				Format:   &model.Format{Prefix: "$", Decimals: 0},
			},
			{
				Key:     "rent_growth_pct",
				Label:   model.Text("Rent Growth %"),
				Help:    model.TierText{Mid: "Annual growth applied after year one; a stepped schedule can override this"},
				Type:    model.TypePercentage,
				Tier:    model.TierMid,
				Range:   &model.Range{Min: -10, Max: 25},
				Format:  &model.Format{Suffix: "%", Decimals: 2},
				Default: def(model.Number(3)),
			},
			{
				Key:     "vacancy_pct",
				Label:   model.Text("Vacancy %"),
				Type:    model.TypePercentage,
				Tier:    model.TierNapkin,
				Range:   &model.Range{Min: 0, Max: 100},
				Format:  &model.Format{Suffix: "%", Decimals: 1},
				Default: def(model.Number(5)),
			},
			{
				Key:       "vacancy_loss",
				Label:     model.Text("Vacancy Loss"),
				Type:      model.TypeCurrency,
				Tier:      model.TierMid,
				Format:    &model.Format{Prefix: "$", Decimals: 0},
				DependsOn: []string{"gross_potential_rent", "vacancy_pct"},
			},
			{
				Key:     "credit_loss_pct",
				Label:   model.Text("Credit Loss %"),
				Type:    model.TypePercentage,
				Tier:    model.TierPro,
				Range:   &model.Range{Min: 0, Max: 10},
				Format:  &model.Format{Suffix: "%", Decimals: 2},
				Default: def(model.Number(0.5)),
			},
			{
				Key:       "credit_loss",
				Label:     model.Text("Credit Loss"),
				Type:      model.TypeCurrency,
				Tier:      model.TierPro,
				Format:    &model.Format{Prefix: "$", Decimals: 0},
				DependsOn: []string{"gross_potential_rent", "credit_loss_pct"},
			},
			{
				Key:     "other_income",
				Label:   model.Text("Other Income"),
				Help:    model.TierText{Mid: "Parking, laundry, fees; annual total"},
				Type:    model.TypeCurrency,
				Tier:    model.TierMid,
				Format:  &model.Format{Prefix: "$", Decimals: 0},
				Default: def(model.Number(0)),
			},
			{
				Key:     "other_income_growth_pct",
				Label:   model.Text("Other Income Growth %"),
				Type:    model.TypePercentage,
				Tier:    model.TierPro,
				Range:   &model.Range{Min: -10, Max: 25},
				Format:  &model.Format{Suffix: "%", Decimals: 2},
				Default: def(model.Number(2)),
			},
			{
				Key:       "effective_gross_income",
				Label:     model.TierText{Napkin: "EGI", Mid: "Effective Gross Income"},
				Type:      model.TypeCurrency,
				Tier:      model.TierNapkin,
				Format:    &model.Format{Prefix: "$", Decimals: 0},
				DependsOn: []string{"gross_potential_rent", "vacancy_pct", "credit_loss_pct", "other_income"},
			},
		},
	}
}

func cashInFormulas() map[string]Formula {
	return map[string]Formula{
		"vacancy_loss": func(v model.ValueMap) (model.Value, bool) {
			in, ok := nums(v, "gross_potential_rent", "vacancy_pct")
			if !ok {
				return model.Value{}, false
			}
			return model.Number(round2(in[0] * in[1] / 100)), true
		},
		"credit_loss": func(v model.ValueMap) (model.Value, bool) {
			in, ok := nums(v, "gross_potential_rent", "credit_loss_pct")
			if !ok {
				return model.Value{}, false
			}
			return model.Number(round2(in[0] * in[1] / 100)), true
		},
		// EGI needs rent and vacancy; credit loss and other income default to
		// zero while absent so the napkin view still computes.
		"effective_gross_income": func(v model.ValueMap) (model.Value, bool) {
			in, ok := nums(v, "gross_potential_rent", "vacancy_pct")
			if !ok {
				return model.Value{}, false
			}
			gpr, vac := in[0], in[1]
			credit, _ := v.Float64("credit_loss_pct")
			other, _ := v.Float64("other_income")
			egi := gpr - gpr*vac/100 - gpr*credit/100 + other
			return model.Number(round2(egi)), true
		},
	}
}
