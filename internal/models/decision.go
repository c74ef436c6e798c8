package models

import (
	"strings"

	"github.com/dyike/hedgehog/consts"
)

// MarketView is the output of one fan-out analysis stage over the aggregated payload.
type MarketView struct {
	Focus           string         `json:"focus" jsonschema_description:"Analytical focus of this view"`
	Timeframe       string         `json:"timeframe" jsonschema:"enum=short-term,enum=medium-term,enum=long-term" jsonschema_description:"Horizon the calls apply to"`
	Recommendations []string       `json:"recommendations" jsonschema_description:"Concrete asset calls, e.g. 'Buy AAPL'"`
	Confidence      float64        `json:"confidence" jsonschema:"minimum=0,maximum=1" jsonschema_description:"Confidence in the calls (0 to 1)"`
	Rating          Rating         `json:"rating" jsonschema:"minimum=1,maximum=10" jsonschema_description:"Overall attractiveness of the assets in focus from 1-10"`
	Recommendation  Recommendation `json:"recommendation" jsonschema:"enum=Buy,enum=Hold,enum=Sell" jsonschema_description:"Net stance for the focus area"`
	Reasoning       string         `json:"reasoning" jsonschema_description:"Reasoning behind the calls"`
	Metadata        map[string]any `json:"metadata,omitempty" jsonschema_description:"Free-form supporting data"`
}

func (v *MarketView) Persona() Persona { return consts.Persona_MarketView }

func (v *MarketView) Validate() error {
	c := newChecker(v.Persona())
	c.required("focus", v.Focus)
	switch v.Timeframe {
	case "short-term", "medium-term", "long-term":
	default:
		c.addf("timeframe must be one of short-term, medium-term, long-term, got %q", v.Timeframe)
	}
	if len(v.Recommendations) == 0 {
		c.addf("recommendations must not be empty")
	}
	c.present("recommendations", v.Recommendations)
	c.between("confidence", v.Confidence, 0, 1)
	c.rating("rating", v.Rating)
	c.recommendation("recommendation", v.Recommendation)
	c.required("reasoning", v.Reasoning)
	return c.err()
}

func (v *MarketView) Score() Rating          { return v.Rating }
func (v *MarketView) Stance() Recommendation { return v.Recommendation }

// InvestmentDecision is the terminal artifact of a workflow run.
type InvestmentDecision struct {
	BuyAssets  []string `json:"buy_assets,omitempty" jsonschema_description:"Assets to buy"`
	SellAssets []string `json:"sell_assets,omitempty" jsonschema_description:"Assets to sell"`
	HoldAssets []string `json:"hold_assets,omitempty" jsonschema_description:"Assets to hold"`
	Rationale  string   `json:"rationale" jsonschema_description:"Rationale for the decision"`
}

func (d *InvestmentDecision) Persona() Persona { return consts.Persona_InvestmentDecision }

// Validate requires the three lists to be pairwise disjoint. Any list may be
// empty or absent as long as one asset is named. Asset names are compared
// case-insensitively after trimming.
func (d *InvestmentDecision) Validate() error {
	c := newChecker(d.Persona())
	owner := make(map[string]string)
	lists := []struct {
		name   string
		assets []string
	}{
		{"buy_assets", d.BuyAssets},
		{"sell_assets", d.SellAssets},
		{"hold_assets", d.HoldAssets},
	}
	for _, l := range lists {
		c.entries(l.name, l.assets)
		for _, asset := range l.assets {
			key := strings.ToLower(strings.TrimSpace(asset))
			if key == "" {
				continue
			}
			if prev, ok := owner[key]; ok {
				if prev == l.name {
					c.addf("%s lists %q more than once", l.name, asset)
				} else {
					c.addf("%q appears in both %s and %s", asset, prev, l.name)
				}
				continue
			}
			owner[key] = l.name
		}
	}
	if len(owner) == 0 {
		c.addf("decision must name at least one asset")
	}
	c.required("rationale", d.Rationale)
	return c.err()
}
