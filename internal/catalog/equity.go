package catalog

import "github.com/sells-group/underwrite-cli/internal/model"

// Equity: the GP/LP split and waterfall headline terms.

func equityConfig() model.BasketConfig {
	return model.BasketConfig{
		ID:          "equity",
		Name:        "The Split",
		Description: "Equity structure assumptions",
		Groups: []model.FieldGroup{
			{Key: "split", Label: "Equity Split", Tier: model.TierNapkin, FieldKeys: []string{
				"total_equity_required", "gp_share_pct", "lp_share_pct", "gp_equity", "lp_equity",
			}},
			{Key: "waterfall", Label: "Waterfall", Tier: model.TierMid, FieldKeys: []string{
				"preferred_return_pct", "annual_preferred", "promote_pct",
			}},
			{Key: "fees", Label: "Sponsor Fees", Tier: model.TierPro, FieldKeys: []string{
				"acquisition_fee_pct", "acquisition_fee", "asset_mgmt_fee_pct",
			}},
		},
		Fields: []model.FieldDefinition{
			{
				Key:      "total_equity_required",
				Label:    model.Text("Total Equity"),
				Help:     model.Text("Cash required at close after loan proceeds"),
				Type:     model.TypeCurrency,
				Tier:     model.TierNapkin,
				Required: true,
				Format:   &model.Format{Prefix: "$", Decimals: 0},
			},
			{
				Key:     "gp_share_pct",
				Label:   model.Text("GP Share %"),
				Type:    model.TypePercentage,
				Tier:    model.TierNapkin,
				Range:   &model.Range{Min: 0, Max: 100},
				Format:  &model.Format{Suffix: "%", Decimals: 1},
				Default: def(model.Number(10)),
			},
			{
				Key:       "lp_share_pct",
				Label:     model.Text("LP Share %"),
				Type:      model.TypePercentage,
				Tier:      model.TierNapkin,
				Format:    &model.Format{Suffix: "%", Decimals: 1},
				DependsOn: []string{"gp_share_pct"},
			},
			{
				Key:       "gp_equity",
				Label:     model.Text("GP Equity"),
				Type:      model.TypeCurrency,
				Tier:      model.TierMid,
				Format:    &model.Format{Prefix: "$", Decimals: 0},
				DependsOn: []string{"total_equity_required", "gp_share_pct"},
			},
			{
				Key:       "lp_equity",
				Label:     model.Text("LP Equity"),
				Type:      model.TypeCurrency,
				Tier:      model.TierMid,
				Format:    &model.Format{Prefix: "$", Decimals: 0},
				DependsOn: []string{"total_equity_required", "lp_share_pct"},
			},
			{
				Key:     "preferred_return_pct",
				Label:   model.Text("Preferred Return %"),
				Type:    model.TypePercentage,
				Tier:    model.TierMid,
				Range:   &model.Range{Min: 0, Max: 20},
				Format:  &model.Format{Suffix: "%", Decimals: 2},
				Default: def(model.Number(8)),
			},
			{
				Key:       "annual_preferred",
				Label:     model.Text("Annual Preferred"),
				Help:      model.TierText{Pro: "LP preferred return accrual per year"},
				Type:      model.TypeCurrency,
				Tier:      model.TierPro,
				Format:    &model.Format{Prefix: "$", Decimals: 0},
				DependsOn: []string{"lp_equity", "preferred_return_pct"},
			},
			{
				Key:     "promote_pct",
				Label:   model.Text("Promote %"),
				Help:    model.TierText{Mid: "GP share of distributions above the preferred return"},
				Type:    model.TypePercentage,
				Tier:    model.TierMid,
				Range:   &model.Range{Min: 0, Max: 50},
				Format:  &model.Format{Suffix: "%", Decimals: 1},
				Default: def(model.Number(20)),
			},
			{
				Key:     "acquisition_fee_pct",
				Label:   model.Text("Acquisition Fee %"),
				Type:    model.TypePercentage,
				Tier:    model.TierPro,
				Range:   &model.Range{Min: 0, Max: 5},
				Format:  &model.Format{Suffix: "%", Decimals: 2},
				Default: def(model.Number(1)),
			},
			{
				Key:       "acquisition_fee",
				Label:     model.Text("Acquisition Fee"),
				Type:      model.TypeCurrency,
				Tier:      model.TierPro,
				Format:    &model.Format{Prefix: "$", Decimals: 0},
				DependsOn: []string{"total_equity_required", "acquisition_fee_pct"},
			},
			{
				Key:     "asset_mgmt_fee_pct",
				Label:   model.Text("Asset Mgmt Fee %"),
				Type:    model.TypePercentage,
				Tier:    model.TierPro,
				Range:   &model.Range{Min: 0, Max: 5},
				Format:  &model.Format{Suffix: "%", Decimals: 2},
				Default: def(model.Number(1.5)),
			},
		},
	}
}

func equityFormulas() map[string]Formula {
	return map[string]Formula{
		"lp_share_pct": func(v model.ValueMap) (model.Value, bool) {
			gp, ok := v.Float64("gp_share_pct")
			if !ok {
				return model.Value{}, false
			}
			return model.Number(100 - gp), true
		},
		"gp_equity": func(v model.ValueMap) (model.Value, bool) {
			in, ok := nums(v, "total_equity_required", "gp_share_pct")
			if !ok {
				return model.Value{}, false
			}
			return model.Number(round2(in[0] * in[1] / 100)), true
		},
		"lp_equity": func(v model.ValueMap) (model.Value, bool) {
			in, ok := nums(v, "total_equity_required", "lp_share_pct")
			if !ok {
				return model.Value{}, false
			}
			return model.Number(round2(in[0] * in[1] / 100)), true
		},
		"annual_preferred": func(v model.ValueMap) (model.Value, bool) {
			in, ok := nums(v, "lp_equity", "preferred_return_pct")
			if !ok {
				return model.Value{}, false
			}
			return model.Number(round2(in[0] * in[1] / 100)), true
		},
		"acquisition_fee": func(v model.ValueMap) (model.Value, bool) {
			in, ok := nums(v, "total_equity_required", "acquisition_fee_pct")
			if !ok {
				return model.Value{}, false
			}
			return model.Number(round2(in[0] * in[1] / 100)), true
		},
	}
}
