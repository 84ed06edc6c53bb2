package catalog

import (
	"math"

	"github.com/sells-group/underwrite-cli/internal/model"
)

// The Deal: purchase terms, timing, and the depreciation basis.

func theDealConfig() model.BasketConfig {
	return model.BasketConfig{
		ID:          "the_deal",
		Name:        "The Deal",
		Description: "Purchase price, timing, and basis assumptions",
		Groups: []model.FieldGroup{
			{Key: "purchase", Label: "Purchase", Tier: model.TierNapkin, FieldKeys: []string{
				"property_name", "property_class", "purchase_price", "unit_count", "price_per_unit",
				"building_sf", "price_per_sf", "closing_costs_pct", "closing_costs", "total_acquisition_cost",
			}},
			{Key: "timing", Label: "Timing", Tier: model.TierNapkin, FieldKeys: []string{
				"acquisition_date", "hold_period_years", "sale_date",
			}},
			{Key: "basis", Label: "Basis & Depreciation", Tier: model.TierMid, FieldKeys: []string{
				"land_pct", "improvement_pct", "depreciation_basis", "depreciation_years", "annual_depreciation",
			}},
		},
		Fields: []model.FieldDefinition{
			{
				Key:   "property_name",
				Label: model.Text("Property Name"),
				Type:  model.TypeText,
				Tier:  model.TierNapkin,
			},
			{
				Key:     "property_class",
				Label:   model.Text("Property Class"),
				Type:    model.TypeDropdown,
				Tier:    model.TierMid,
				Options: []string{"Class A", "Class B", "Class C"},
			},
			{
				Key:      "purchase_price",
				Label:    model.TierText{Napkin: "Purchase Price", Pro: "Gross Purchase Price"},
				Help:     model.Text("Contract price before closing costs"),
				Type:     model.TypeCurrency,
				Tier:     model.TierNapkin,
				Required: true,
				Format:   &model.Format{Prefix: "$", Decimals: 0},
			},
			{
				Key:    "unit_count",
				Label:  model.Text("Units"),
				Type:   model.TypeNumber,
				Tier:   model.TierNapkin,
				Range:  &model.Range{Min: 1, Max: 10000},
				Format: &model.Format{Decimals: 0},
			},
			{
				Key:       "price_per_unit",
				Label:     model.Text("Price / Unit"),
				Type:      model.TypeCurrency,
				Tier:      model.TierNapkin,
				Format:    &model.Format{Prefix: "$", Decimals: 0},
				DependsOn: []string{"purchase_price", "unit_count"},
			},
			{
				Key:    "building_sf",
				Label:  model.Text("Building SF"),
				Type:   model.TypeNumber,
				Tier:   model.TierMid,
				Format: &model.Format{Suffix: " sf", Decimals: 0},
			},
			{
				Key:       "price_per_sf",
				Label:     model.Text("Price / SF"),
				Type:      model.TypeCurrency,
				Tier:      model.TierMid,
				Format:    &model.Format{Prefix: "$", Decimals: 2},
				DependsOn: []string{"purchase_price", "building_sf"},
			},
			{
				Key:     "closing_costs_pct",
				Label:   model.Text("Closing Costs %"),
				Help:    model.TierText{Mid: "Title, legal, transfer tax, lender fees as a % of price"},
				Type:    model.TypePercentage,
				Tier:    model.TierMid,
				Range:   &model.Range{Min: 0, Max: 10},
				Format:  &model.Format{Suffix: "%", Decimals: 2},
				Default: def(model.Number(2)),
			},
			{
				Key:       "closing_costs",
				Label:     model.Text("Closing Costs"),
				Type:      model.TypeCurrency,
				Tier:      model.TierMid,
				Format:    &model.Format{Prefix: "$", Decimals: 0},
				DependsOn: []string{"purchase_price", "closing_costs_pct"},
			},
			{
				Key:       "total_acquisition_cost",
				Label:     model.Text("Total Acquisition Cost"),
				Type:      model.TypeCurrency,
				Tier:      model.TierMid,
				Format:    &model.Format{Prefix: "$", Decimals: 0},
				DependsOn: []string{"purchase_price", "closing_costs"},
			},
			{
				Key:      "acquisition_date",
				Label:    model.Text("Acquisition Date"),
				Type:     model.TypeDate,
				Tier:     model.TierNapkin,
				Required: true,
			},
			{
				Key:      "hold_period_years",
				Label:    model.Text("Hold Period (yrs)"),
				Type:     model.TypeNumber,
				Tier:     model.TierNapkin,
				Required: true,
				Range:    &model.Range{Min: 1, Max: 30},
				Default:  def(model.Number(5)),
			},
			{
				Key:       "sale_date",
				Label:     model.Text("Sale Date"),
				Type:      model.TypeDate,
				Tier:      model.TierNapkin,
				DependsOn: []string{"acquisition_date", "hold_period_years"},
			},
			{
				Key:     "land_pct",
				Label:   model.Text("Land %"),
				Help:    model.TierText{Mid: "Share of price allocated to non-depreciable land"},
				Type:    model.TypePercentage,
				Tier:    model.TierMid,
				Range:   &model.Range{Min: 0, Max: 100},
				Format:  &model.Format{Suffix: "%", Decimals: 1},
				Default: def(model.Number(20)),
			},
			{
				Key:       "improvement_pct",
				Label:     model.Text("Improvements %"),
				Type:      model.TypePercentage,
				Tier:      model.TierMid,
				Format:    &model.Format{Suffix: "%", Decimals: 1},
				DependsOn: []string{"land_pct"},
			},
			{
				Key:       "depreciation_basis",
				Label:     model.Text("Depreciation Basis"),
				Type:      model.TypeCurrency,
				Tier:      model.TierMid,
				Format:    &model.Format{Prefix: "$", Decimals: 0},
				DependsOn: []string{"purchase_price", "improvement_pct"},
			},
			{
				Key:     "depreciation_years",
				Label:   model.Text("Depreciation Period (yrs)"),
				Type:    model.TypeNumber,
				Tier:    model.TierPro,
				Range:   &model.Range{Min: 1, Max: 50},
				Default: def(model.Number(27.5)),
			},
			{
				Key:       "annual_depreciation",
				Label:     model.Text("Annual Depreciation"),
				Type:      model.TypeCurrency,
				Tier:      model.TierPro,
				Format:    &model.Format{Prefix: "$", Decimals: 0},
				DependsOn: []string{"depreciation_basis", "depreciation_years"},
			},
		},
	}
}

func theDealFormulas() map[string]Formula {
	return map[string]Formula{
		"price_per_unit": func(v model.ValueMap) (model.Value, bool) {
			in, ok := nums(v, "purchase_price", "unit_count")
			if !ok || in[1] <= 0 {
				return model.Value{}, false
			}
			return model.Number(round2(in[0] / in[1])), true
		},
		"price_per_sf": func(v model.ValueMap) (model.Value, bool) {
			in, ok := nums(v, "purchase_price", "building_sf")
			if !ok || in[1] <= 0 {
				return model.Value{}, false
			}
			return model.Number(round2(in[0] / in[1])), true
		},
		"closing_costs": func(v model.ValueMap) (model.Value, bool) {
			in, ok := nums(v, "purchase_price", "closing_costs_pct")
			if !ok {
				return model.Value{}, false
			}
			return model.Number(round2(in[0] * in[1] / 100)), true
		},
		"total_acquisition_cost": func(v model.ValueMap) (model.Value, bool) {
			in, ok := nums(v, "purchase_price", "closing_costs")
			if !ok {
				return model.Value{}, false
			}
			return model.Number(round2(in[0] + in[1])), true
		},
		"sale_date": func(v model.ValueMap) (model.Value, bool) {
			acq, ok := v.DateOf("acquisition_date")
			if !ok {
				return model.Value{}, false
			}
			years, ok := v.Float64("hold_period_years")
			if !ok || years <= 0 {
				return model.Value{}, false
			}
			months := int(math.Round(years * 12))
			return model.Date(acq.AddDate(0, months, 0)), true
		},
		"improvement_pct": func(v model.ValueMap) (model.Value, bool) {
			land, ok := v.Float64("land_pct")
			if !ok {
				return model.Value{}, false
			}
			return model.Number(100 - land), true
		},
		"depreciation_basis": func(v model.ValueMap) (model.Value, bool) {
			in, ok := nums(v, "purchase_price", "improvement_pct")
			if !ok {
				return model.Value{}, false
			}
			return model.Number(round2(in[0] * in[1] / 100)), true
		},
		"annual_depreciation": func(v model.ValueMap) (model.Value, bool) {
			in, ok := nums(v, "depreciation_basis", "depreciation_years")
			if !ok || in[1] <= 0 {
				return model.Value{}, false
			}
			return model.Number(round2(in[0] / in[1])), true
		},
	}
}
