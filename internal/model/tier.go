package model

import "github.com/rotisserie/eris"

// Tier is a progressive-disclosure level. Tiers are totally ordered: a field
// visible at TierNapkin is visible at every higher tier.
type Tier int

const (
	TierNapkin Tier = iota
	TierMid
	TierPro
)

var tierNames = map[Tier]string{
	TierNapkin: "napkin",
	TierMid:    "mid",
	TierPro:    "pro",
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseTier converts a tier name to a Tier.
func ParseTier(s string) (Tier, error) {
	for t, name := range tierNames {
		if name == s {
			return t, nil
		}
	}
	return TierNapkin, eris.Errorf("model: unknown tier %q", s)
}

// Includes reports whether a field at tier other is visible at tier t.
func (t Tier) Includes(other Tier) bool {
	return other <= t
}

// TierText holds one string per tier. Tiers below the field's own tier are
// typically left empty.
type TierText struct {
	Napkin string `json:"napkin,omitempty"`
	Mid    string `json:"mid,omitempty"`
	Pro    string `json:"pro,omitempty"`
}

// At returns the text for the given tier, falling back to the nearest lower
// tier with text so that a field labeled once reads the same everywhere.
func (tt TierText) At(t Tier) string {
	switch t {
	case TierPro:
		if tt.Pro != "" {
			return tt.Pro
		}
		fallthrough
	case TierMid:
		if tt.Mid != "" {
			return tt.Mid
		}
		fallthrough
	default:
		return tt.Napkin
	}
}

// Text returns a TierText with the same string at every tier.
func Text(s string) TierText {
	return TierText{Napkin: s}
}
