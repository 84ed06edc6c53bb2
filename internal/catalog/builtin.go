package catalog

import "github.com/rotisserie/eris"

// Builtin constructs the five built-in basket catalogues in display order.
// Any catalogue error here is a configuration bug and should abort startup.
func Builtin() ([]*Catalog, error) {
	builders := []func() (*Catalog, error){
		func() (*Catalog, error) { return New(theDealConfig(), theDealFormulas()) },
		func() (*Catalog, error) { return New(cashInConfig(), cashInFormulas()) },
		func() (*Catalog, error) { return New(cashOutConfig(), cashOutFormulas()) },
		func() (*Catalog, error) { return New(financingConfig(), financingFormulas()) },
		func() (*Catalog, error) { return New(equityConfig(), equityFormulas()) },
	}

	out := make([]*Catalog, 0, len(builders))
	for _, build := range builders {
		c, err := build()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// BuiltinByID returns one built-in basket catalogue.
func BuiltinByID(id string) (*Catalog, error) {
	cats, err := Builtin()
	if err != nil {
		return nil, err
	}
	for _, c := range cats {
		if c.ID() == id {
			return c, nil
		}
	}
	return nil, eris.Errorf("catalog: unknown basket %q", id)
}
