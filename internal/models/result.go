package models

import (
	"encoding/json"
	"fmt"

	"github.com/dyike/hedgehog/consts"
)

// Result is one variant of the per-persona result family.
type Result interface {
	Persona() Persona
	Validate() error
}

// Rated results carry a bounded overall score.
type Rated interface {
	Result
	Score() Rating
}

// Recommending results carry a Buy/Hold/Sell stance.
type Recommending interface {
	Result
	Stance() Recommendation
}

var registry = map[Persona]func() Result{
	consts.Persona_WarrenBuffett:      func() Result { return &BuffettAnalysis{} },
	consts.Persona_CharlieMunger:      func() Result { return &MungerAnalysis{} },
	consts.Persona_BillAckman:         func() Result { return &AckmanAnalysis{} },
	consts.Persona_BenGraham:          func() Result { return &GrahamAnalysis{} },
	consts.Persona_CathieWood:         func() Result { return &WoodAnalysis{} },
	consts.Persona_Fundamentals:       func() Result { return &FundamentalsAnalysis{} },
	consts.Persona_Technicals:         func() Result { return &TechnicalsAnalysis{} },
	consts.Persona_Sentiment:          func() Result { return &SentimentAnalysis{} },
	consts.Persona_Valuation:          func() Result { return &ValuationAnalysis{} },
	consts.Persona_PortfolioManager:   func() Result { return &PortfolioManagementDecision{} },
	consts.Persona_RiskManager:        func() Result { return &RiskAssessment{} },
	consts.Persona_MarketView:         func() Result { return &MarketView{} },
	consts.Persona_InvestmentDecision: func() Result { return &InvestmentDecision{} },
}

// NewResult returns an empty variant for p, ready to be decoded into.
func NewResult(p Persona) (Result, error) {
	ctor, ok := registry[p]
	if !ok {
		return nil, fmt.Errorf("no result schema for persona %q", p)
	}
	return ctor(), nil
}

// DecodeResult decodes data into p's variant and validates it.
func DecodeResult(p Persona, data []byte) (Result, error) {
	r, err := NewResult(p)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrInvalidResult, p, err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validated is the checked constructor for any variant. It returns a pointer
// to a copy of v, or the validation error.
func Validated[T any, P interface {
	*T
	Result
}](v T) (P, error) {
	p := P(&v)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
