package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/dyike/hedgehog/consts"
)

// Persona names an analytical viewpoint with its own result schema.
type Persona string

func (p Persona) String() string { return string(p) }

// DisplayName turns "warren_buffett" into "Warren Buffett".
func (p Persona) DisplayName() string {
	parts := strings.Split(string(p), "_")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}

// Analysts are the per-ticker personas, in the order they are presented to users.
var Analysts = []Persona{
	consts.Persona_WarrenBuffett,
	consts.Persona_CharlieMunger,
	consts.Persona_BillAckman,
	consts.Persona_BenGraham,
	consts.Persona_CathieWood,
	consts.Persona_Fundamentals,
	consts.Persona_Technicals,
	consts.Persona_Sentiment,
	consts.Persona_Valuation,
	consts.Persona_PortfolioManager,
	consts.Persona_RiskManager,
}

var requiredSections = map[Persona][]string{
	consts.Persona_WarrenBuffett:      {consts.Section_CompanyData},
	consts.Persona_CharlieMunger:      {consts.Section_CompanyData},
	consts.Persona_BillAckman:         {consts.Section_CompanyData},
	consts.Persona_BenGraham:          {consts.Section_CompanyData},
	consts.Persona_CathieWood:         {consts.Section_CompanyData},
	consts.Persona_Fundamentals:       {consts.Section_FinancialData},
	consts.Persona_Technicals:         {consts.Section_PriceData},
	consts.Persona_Sentiment:          {consts.Section_NewsData, consts.Section_SocialData, consts.Section_InsiderData},
	consts.Persona_Valuation:          {consts.Section_FinancialData, consts.Section_MarketData, consts.Section_PeerData},
	consts.Persona_RiskManager:        {consts.Section_CompanyData, consts.Section_PortfolioData},
	consts.Persona_MarketView:         {consts.Section_MarketData, consts.Section_Focus},
	consts.Persona_InvestmentDecision: {consts.Section_MarketData, consts.Section_Analyses},
	consts.Persona_PortfolioManager: {
		consts.Section_PortfolioData,
		consts.Section_AnalystRecommendations,
		consts.Section_RiskAssessment,
		consts.Section_MarketData,
	},
}

// RequiredSections returns the request sections a persona's prompt depends on.
func RequiredSections(p Persona) []string {
	return append([]string(nil), requiredSections[p]...)
}

// ParsePersona accepts the canonical name or its display form.
func ParsePersona(s string) (Persona, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	if _, ok := registry[Persona(key)]; ok {
		return Persona(key), nil
	}
	known := make([]string, 0, len(registry))
	for p := range registry {
		known = append(known, string(p))
	}
	sort.Strings(known)
	return "", fmt.Errorf("unknown persona %q (known: %s)", s, strings.Join(known, ", "))
}

// Rating is an overall score between 1 and 10 inclusive.
type Rating int

const (
	MinRating Rating = 1
	MaxRating Rating = 10
)

// NewRating fails for values outside [1,10]; it never clamps.
func NewRating(v int) (Rating, error) {
	r := Rating(v)
	if !r.Valid() {
		return 0, fmt.Errorf("%w: rating %d outside [%d,%d]", ErrInvalidResult, v, MinRating, MaxRating)
	}
	return r, nil
}

func (r Rating) Valid() bool { return r >= MinRating && r <= MaxRating }

func (r *Rating) UnmarshalJSON(data []byte) error {
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("rating: %w", err)
	}
	parsed, err := NewRating(v)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Recommendation is the Buy/Hold/Sell vocabulary shared by all personas.
type Recommendation string

const (
	Buy  Recommendation = "Buy"
	Hold Recommendation = "Hold"
	Sell Recommendation = "Sell"
)

func (r Recommendation) Valid() bool {
	switch r {
	case Buy, Hold, Sell:
		return true
	}
	return false
}

// Order types used by portfolio allocations.
const (
	OrderBuy  = "BUY"
	OrderSell = "SELL"
	OrderHold = "HOLD"
)
