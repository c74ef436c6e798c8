package models

import (
	"fmt"
	"strings"

	"github.com/dyike/hedgehog/consts"
)

type PortfolioAllocation struct {
	Ticker        string  `json:"ticker" jsonschema_description:"Asset the allocation applies to"`
	TargetWeight  float64 `json:"target_weight" jsonschema:"minimum=0,maximum=100" jsonschema_description:"Target weight in the portfolio (%)"`
	CurrentWeight float64 `json:"current_weight" jsonschema:"minimum=0,maximum=100" jsonschema_description:"Current weight in the portfolio (%)"`
	OrderType     string  `json:"order_type" jsonschema:"enum=BUY,enum=SELL,enum=HOLD" jsonschema_description:"Order type"`
	OrderQuantity int     `json:"order_quantity" jsonschema:"minimum=0" jsonschema_description:"Number of shares to trade"`
	PriceLimit    float64 `json:"price_limit" jsonschema_description:"Limit price for the order (if applicable)"`
	StopLoss      float64 `json:"stop_loss" jsonschema_description:"Stop loss level for the position"`
	Justification string  `json:"justification" jsonschema_description:"Justification for the allocation decision"`
}

type AssetPerformance struct {
	Ticker      string  `json:"ticker" jsonschema_description:"Asset symbol"`
	Return1D    float64 `json:"return_1d" jsonschema_description:"1-day return (%)"`
	Return1W    float64 `json:"return_1w" jsonschema_description:"1-week return (%)"`
	Return1M    float64 `json:"return_1m" jsonschema_description:"1-month return (%)"`
	ReturnYTD   float64 `json:"return_ytd" jsonschema_description:"Year-to-date return (%)"`
	SharpeRatio float64 `json:"sharpe_ratio" jsonschema_description:"Sharpe ratio"`
	MaxDrawdown float64 `json:"max_drawdown" jsonschema_description:"Maximum drawdown (%)"`
	Volatility  float64 `json:"volatility" jsonschema_description:"Annualized volatility (%)"`
}

type PortfolioManagementDecision struct {
	CashAllocation   float64               `json:"cash_allocation" jsonschema:"minimum=0,maximum=100" jsonschema_description:"Recommended cash allocation (%)"`
	AssetAllocations []PortfolioAllocation `json:"asset_allocations" jsonschema_description:"Asset allocation recommendations"`
	TopPerformers    []AssetPerformance    `json:"top_performers" jsonschema_description:"Top performing assets"`
	WorstPerformers  []AssetPerformance    `json:"worst_performers" jsonschema_description:"Worst performing assets"`
	PortfolioMetrics map[string]float64    `json:"portfolio_metrics" jsonschema_description:"Overall portfolio metrics"`
	RebalanceNeeded  bool                  `json:"rebalance_needed" jsonschema_description:"Whether portfolio rebalancing is needed"`
	RiskAssessment   string                `json:"risk_assessment" jsonschema_description:"Overall portfolio risk assessment"`
	MarketOutlook    string                `json:"market_outlook" jsonschema_description:"Current market outlook"`
	Rationale        string                `json:"rationale" jsonschema_description:"Rationale for the portfolio decisions"`
}

func (d *PortfolioManagementDecision) Persona() Persona { return consts.Persona_PortfolioManager }

func (d *PortfolioManagementDecision) Validate() error {
	c := newChecker(d.Persona())
	c.between("cash_allocation", d.CashAllocation, 0, 100)
	if d.AssetAllocations == nil {
		c.addf("asset_allocations is required")
	}
	total := d.CashAllocation
	seen := make(map[string]bool, len(d.AssetAllocations))
	for i, a := range d.AssetAllocations {
		field := func(name string) string { return fmt.Sprintf("asset_allocations[%d].%s", i, name) }
		c.required(field("ticker"), a.Ticker)
		key := strings.ToUpper(strings.TrimSpace(a.Ticker))
		if key != "" && seen[key] {
			c.addf("asset_allocations lists %s more than once", a.Ticker)
		}
		seen[key] = true
		c.between(field("target_weight"), a.TargetWeight, 0, 100)
		c.between(field("current_weight"), a.CurrentWeight, 0, 100)
		switch a.OrderType {
		case OrderBuy, OrderSell, OrderHold:
		default:
			c.addf("%s must be one of BUY, SELL, HOLD, got %q", field("order_type"), a.OrderType)
		}
		c.nonNegative(field("order_quantity"), a.OrderQuantity)
		c.required(field("justification"), a.Justification)
		total += a.TargetWeight
	}
	// allow rounding slack in model-produced weights
	if total > 100.5 {
		c.addf("cash_allocation plus target weights is %.2f%%, exceeding 100%%", total)
	}
	c.required("risk_assessment", d.RiskAssessment)
	c.required("market_outlook", d.MarketOutlook)
	c.required("rationale", d.Rationale)
	return c.err()
}

type RiskMetrics struct {
	Volatility       float64 `json:"volatility" jsonschema_description:"Historical price volatility"`
	MaximumDrawdown  float64 `json:"maximum_drawdown" jsonschema_description:"Maximum historical drawdown"`
	ValueAtRisk      float64 `json:"value_at_risk" jsonschema_description:"Value at Risk (95% confidence)"`
	Beta             float64 `json:"beta" jsonschema_description:"Beta relative to market"`
	CorrelationToSPY float64 `json:"correlation_to_spy" jsonschema:"minimum=-1,maximum=1" jsonschema_description:"Correlation to S&P 500"`
	SharpeRatio      float64 `json:"sharpe_ratio" jsonschema_description:"Risk-adjusted return measure"`
	SortinoRatio     float64 `json:"sortino_ratio" jsonschema_description:"Downside risk-adjusted return measure"`
}

type RiskLimits struct {
	PositionLimit        float64 `json:"position_limit" jsonschema:"minimum=0,maximum=100" jsonschema_description:"Maximum position size as percentage of portfolio"`
	StopLossLevel        float64 `json:"stop_loss_level" jsonschema_description:"Recommended stop loss percentage"`
	MaxSectorExposure    float64 `json:"max_sector_exposure" jsonschema:"minimum=0,maximum=100" jsonschema_description:"Maximum sector exposure percentage"`
	MaxBetaExposure      float64 `json:"max_beta_exposure" jsonschema_description:"Maximum portfolio beta target"`
	MaxDrawdownTolerance float64 `json:"max_drawdown_tolerance" jsonschema_description:"Maximum drawdown tolerance"`
}

type RiskAssessment struct {
	Ticker           string      `json:"ticker" jsonschema_description:"Stock ticker symbol"`
	CompanyName      string      `json:"company_name" jsonschema_description:"Full company name"`
	RiskMetrics      RiskMetrics `json:"risk_metrics" jsonschema_description:"Key risk metrics"`
	RiskFactors      []string    `json:"risk_factors" jsonschema_description:"Key identified risk factors"`
	RiskMitigations  []string    `json:"risk_mitigations" jsonschema_description:"Potential risk mitigations"`
	RiskLimits       RiskLimits  `json:"risk_limits" jsonschema_description:"Recommended risk limits"`
	RiskRating       Rating      `json:"risk_rating" jsonschema:"minimum=1,maximum=10" jsonschema_description:"Overall risk rating from 1-10"`
	RiskCommentary   string      `json:"risk_commentary" jsonschema_description:"Commentary on key risks"`
	CurrentPrice     float64     `json:"current_price" jsonschema_description:"Current stock price"`
	MarketConditions string      `json:"market_conditions" jsonschema_description:"Assessment of current market conditions"`
}

func (r *RiskAssessment) Persona() Persona { return consts.Persona_RiskManager }

func (r *RiskAssessment) Validate() error {
	c := newChecker(r.Persona())
	c.required("ticker", r.Ticker)
	c.required("company_name", r.CompanyName)
	c.between("risk_metrics.correlation_to_spy", r.RiskMetrics.CorrelationToSPY, -1, 1)
	c.between("risk_limits.position_limit", r.RiskLimits.PositionLimit, 0, 100)
	c.between("risk_limits.max_sector_exposure", r.RiskLimits.MaxSectorExposure, 0, 100)
	c.present("risk_factors", r.RiskFactors)
	c.present("risk_mitigations", r.RiskMitigations)
	c.rating("risk_rating", r.RiskRating)
	c.required("risk_commentary", r.RiskCommentary)
	c.required("market_conditions", r.MarketConditions)
	return c.err()
}

func (r *RiskAssessment) Score() Rating { return r.RiskRating }
