// Package export writes basket catalogues and value snapshots to XLSX and
// YAML for sharing outside the application.
package export

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/underwrite-cli/internal/catalog"
	"github.com/sells-group/underwrite-cli/internal/format"
	"github.com/sells-group/underwrite-cli/internal/model"
)

var catalogHeader = []string{
	"Key", "Label", "Tier", "Type", "Required", "Depends On", "Default", "Min", "Max",
}

// CatalogWorkbook builds a workbook with one sheet per basket describing
// every field in declaration order.
func CatalogWorkbook(cats []*catalog.Catalog) (*xlsx.File, error) {
	f := xlsx.NewFile()

	for _, cat := range cats {
		sheet, err := f.AddSheet(cat.Name())
		if err != nil {
			return nil, eris.Wrapf(err, "export: add sheet %s", cat.Name())
		}

		header := sheet.AddRow()
		for _, h := range catalogHeader {
			header.AddCell().Value = h
		}

		for _, field := range cat.Fields() {
			row := sheet.AddRow()
			row.AddCell().Value = field.Key
			row.AddCell().Value = field.Label.At(model.TierPro)
			row.AddCell().Value = field.Tier.String()
			row.AddCell().Value = string(field.Type)
			row.AddCell().SetBool(field.Required)
			row.AddCell().Value = strings.Join(field.DependsOn, ", ")
			if field.Default != nil {
				row.AddCell().Value = format.Value(field, *field.Default)
			} else {
				row.AddCell()
			}
			if field.Range != nil {
				row.AddCell().SetFloat(field.Range.Min)
				row.AddCell().SetFloat(field.Range.Max)
			}
		}
	}

	return f, nil
}

// SnapshotSheet appends one sheet with a basket's current values at a tier,
// rendered with each field's display hints.
func SnapshotSheet(f *xlsx.File, cat *catalog.Catalog, values model.ValueMap, tier model.Tier) error {
	sheet, err := f.AddSheet(cat.Name())
	if err != nil {
		return eris.Wrapf(err, "export: add sheet %s", cat.Name())
	}

	for _, group := range cat.VisibleGroups(tier) {
		title := sheet.AddRow()
		title.AddCell().Value = group.Label

		for _, key := range group.FieldKeys {
			field, err := cat.Field(key)
			if err != nil {
				return err
			}
			row := sheet.AddRow()
			row.AddCell().Value = field.Label.At(tier)
			value, _ := values.Get(key)
			row.AddCell().Value = format.Value(field, value)
		}
		sheet.AddRow()
	}

	return nil
}

// WriteCatalogXLSX writes the catalogue workbook to path.
func WriteCatalogXLSX(path string, cats []*catalog.Catalog) error {
	f, err := CatalogWorkbook(cats)
	if err != nil {
		return err
	}
	return eris.Wrapf(f.Save(path), "export: save %s", path)
}
