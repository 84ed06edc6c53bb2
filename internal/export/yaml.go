package export

import (
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/underwrite-cli/internal/catalog"
	"github.com/sells-group/underwrite-cli/internal/model"
)

// yamlField is the flattened YAML shape of a field definition.
type yamlField struct {
	Key       string   `yaml:"key"`
	Label     string   `yaml:"label"`
	Tier      string   `yaml:"tier"`
	Type      string   `yaml:"type"`
	Required  bool     `yaml:"required,omitempty"`
	DependsOn []string `yaml:"depends_on,omitempty"`
	Options   []string `yaml:"options,omitempty"`
	Min       *float64 `yaml:"min,omitempty"`
	Max       *float64 `yaml:"max,omitempty"`
}

type yamlGroup struct {
	Key    string   `yaml:"key"`
	Label  string   `yaml:"label"`
	Tier   string   `yaml:"tier"`
	Fields []string `yaml:"fields"`
}

type yamlBasket struct {
	ID     string      `yaml:"id"`
	Name   string      `yaml:"name"`
	Groups []yamlGroup `yaml:"groups"`
	Fields []yamlField `yaml:"fields"`
}

// WriteCatalogYAML renders the basket catalogues as a YAML document.
func WriteCatalogYAML(w io.Writer, cats []*catalog.Catalog) error {
	var doc struct {
		Baskets []yamlBasket `yaml:"baskets"`
	}

	for _, cat := range cats {
		b := yamlBasket{ID: cat.ID(), Name: cat.Name()}
		for _, g := range cat.Definition().Groups {
			b.Groups = append(b.Groups, yamlGroup{
				Key: g.Key, Label: g.Label, Tier: g.Tier.String(), Fields: g.FieldKeys,
			})
		}
		for _, f := range cat.Fields() {
			yf := yamlField{
				Key:       f.Key,
				Label:     f.Label.At(model.TierPro),
				Tier:      f.Tier.String(),
				Type:      string(f.Type),
				Required:  f.Required,
				DependsOn: f.DependsOn,
				Options:   f.Options,
			}
			if f.Range != nil {
				min, max := f.Range.Min, f.Range.Max
				yf.Min, yf.Max = &min, &max
			}
			b.Fields = append(b.Fields, yf)
		}
		doc.Baskets = append(doc.Baskets, b)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return eris.Wrap(err, "export: encode yaml")
	}
	return eris.Wrap(enc.Close(), "export: close yaml encoder")
}

// ParseTierFlag maps a --tier flag value to a Tier, defaulting to pro so
// exports include everything.
func ParseTierFlag(s string) (model.Tier, error) {
	if strings.TrimSpace(s) == "" {
		return model.TierPro, nil
	}
	return model.ParseTier(s)
}
