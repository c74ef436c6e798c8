package models

import "github.com/dyike/hedgehog/consts"

// BuffettCriteria holds the qualitative checks of a Buffett-style review.
type BuffettCriteria struct {
	CircleOfCompetence  string `json:"circle_of_competence" jsonschema_description:"Whether the business is simple and understandable"`
	EconomicMoat        string `json:"economic_moat" jsonschema_description:"Assessment of durable competitive advantage"`
	ManagementQuality   string `json:"management_quality" jsonschema_description:"Assessment of management candor and owner orientation"`
	FinancialStrength   string `json:"financial_strength" jsonschema_description:"Assessment of debt levels and balance sheet"`
	EarningsConsistency string `json:"earnings_consistency" jsonschema_description:"Assessment of earnings predictability over a decade"`
	ReturnOnEquity      string `json:"return_on_equity" jsonschema_description:"Assessment of sustained return on equity without leverage"`
	IntrinsicValue      string `json:"intrinsic_value" jsonschema_description:"Estimate of intrinsic value from owner earnings"`
	MarginOfSafety      string `json:"margin_of_safety" jsonschema_description:"Assessment of price versus intrinsic value"`
}

type BuffettAnalysis struct {
	Ticker         string          `json:"ticker" jsonschema_description:"Stock ticker symbol"`
	CompanyName    string          `json:"company_name" jsonschema_description:"Full company name"`
	Criteria       BuffettCriteria `json:"criteria" jsonschema_description:"Buffett investing criteria applied"`
	Strengths      []string        `json:"strengths" jsonschema_description:"Key strengths from Buffett's perspective"`
	Concerns       []string        `json:"concerns" jsonschema_description:"Key concerns from Buffett's perspective"`
	HoldingPeriod  string          `json:"holding_period" jsonschema_description:"Expected holding period"`
	WouldInvest    bool            `json:"would_invest" jsonschema_description:"Whether Buffett would likely invest"`
	Rating         Rating          `json:"rating" jsonschema:"minimum=1,maximum=10" jsonschema_description:"Overall Buffett rating from 1-10"`
	Recommendation Recommendation  `json:"recommendation" jsonschema:"enum=Buy,enum=Hold,enum=Sell" jsonschema_description:"Investment recommendation"`
	Reasoning      string          `json:"reasoning" jsonschema_description:"Reasoning behind recommendation"`
}

func (a *BuffettAnalysis) Persona() Persona { return consts.Persona_WarrenBuffett }

func (a *BuffettAnalysis) Validate() error {
	c := newChecker(a.Persona())
	c.required("ticker", a.Ticker)
	c.required("company_name", a.CompanyName)
	cr := a.Criteria
	c.fields("criteria",
		"circle_of_competence", cr.CircleOfCompetence,
		"economic_moat", cr.EconomicMoat,
		"management_quality", cr.ManagementQuality,
		"financial_strength", cr.FinancialStrength,
		"earnings_consistency", cr.EarningsConsistency,
		"return_on_equity", cr.ReturnOnEquity,
		"intrinsic_value", cr.IntrinsicValue,
		"margin_of_safety", cr.MarginOfSafety,
	)
	c.present("strengths", a.Strengths)
	c.present("concerns", a.Concerns)
	c.rating("rating", a.Rating)
	c.recommendation("recommendation", a.Recommendation)
	c.required("reasoning", a.Reasoning)
	return c.err()
}

func (a *BuffettAnalysis) Score() Rating          { return a.Rating }
func (a *BuffettAnalysis) Stance() Recommendation { return a.Recommendation }

type MungerPrinciples struct {
	BusinessQuality   string `json:"business_quality" jsonschema_description:"Assessment of business quality and durability"`
	Rationality       string `json:"rationality" jsonschema_description:"Assessment of management rationality and capital allocation"`
	MoatStrength      string `json:"moat_strength" jsonschema_description:"Assessment of competitive advantage/moat"`
	LongTermProspects string `json:"long_term_prospects" jsonschema_description:"Assessment of long-term business prospects"`
	MarginOfSafety    string `json:"margin_of_safety" jsonschema_description:"Assessment of price versus intrinsic value"`
	LatticeworkView   string `json:"latticework_view" jsonschema_description:"Multidisciplinary perspective on the business"`
}

type MungerAnalysis struct {
	Ticker         string           `json:"ticker" jsonschema_description:"Stock ticker symbol"`
	CompanyName    string           `json:"company_name" jsonschema_description:"Full company name"`
	Principles     MungerPrinciples `json:"principles" jsonschema_description:"Munger investment principles applied"`
	Strengths      []string         `json:"strengths" jsonschema_description:"Key strengths from Munger's perspective"`
	Concerns       []string         `json:"concerns" jsonschema_description:"Key concerns from Munger's perspective"`
	MentalModels   []string         `json:"mental_models" jsonschema_description:"Mental models most applicable to this investment"`
	WouldInvest    bool             `json:"would_invest" jsonschema_description:"Whether Munger would likely invest"`
	Rating         Rating           `json:"rating" jsonschema:"minimum=1,maximum=10" jsonschema_description:"Overall Munger rating from 1-10"`
	Recommendation Recommendation   `json:"recommendation" jsonschema:"enum=Buy,enum=Hold,enum=Sell" jsonschema_description:"Investment recommendation"`
	Reasoning      string           `json:"reasoning" jsonschema_description:"Reasoning behind recommendation"`
}

func (a *MungerAnalysis) Persona() Persona { return consts.Persona_CharlieMunger }

func (a *MungerAnalysis) Validate() error {
	c := newChecker(a.Persona())
	c.required("ticker", a.Ticker)
	c.required("company_name", a.CompanyName)
	p := a.Principles
	c.fields("principles",
		"business_quality", p.BusinessQuality,
		"rationality", p.Rationality,
		"moat_strength", p.MoatStrength,
		"long_term_prospects", p.LongTermProspects,
		"margin_of_safety", p.MarginOfSafety,
		"latticework_view", p.LatticeworkView,
	)
	c.present("strengths", a.Strengths)
	c.present("concerns", a.Concerns)
	c.present("mental_models", a.MentalModels)
	c.rating("rating", a.Rating)
	c.recommendation("recommendation", a.Recommendation)
	c.required("reasoning", a.Reasoning)
	return c.err()
}

func (a *MungerAnalysis) Score() Rating          { return a.Rating }
func (a *MungerAnalysis) Stance() Recommendation { return a.Recommendation }

type AckmanCriteria struct {
	BusinessQuality      string `json:"business_quality" jsonschema_description:"Assessment of fundamental business quality"`
	CashFlowGeneration   string `json:"cash_flow_generation" jsonschema_description:"Assessment of cash flow generation capabilities"`
	ManagementCompetence string `json:"management_competence" jsonschema_description:"Assessment of management competence and alignment"`
	CapitalAllocation    string `json:"capital_allocation" jsonschema_description:"Assessment of capital allocation efficiency"`
	CorporateGovernance  string `json:"corporate_governance" jsonschema_description:"Assessment of corporate governance structure"`
	BalanceSheetStrength string `json:"balance_sheet_strength" jsonschema_description:"Assessment of balance sheet strength"`
	ActivistOpportunity  string `json:"activist_opportunity" jsonschema_description:"Assessment of potential for activist intervention"`
}

type AckmanAnalysis struct {
	Ticker            string         `json:"ticker" jsonschema_description:"Stock ticker symbol"`
	CompanyName       string         `json:"company_name" jsonschema_description:"Full company name"`
	Criteria          AckmanCriteria `json:"criteria" jsonschema_description:"Ackman investing criteria applied"`
	Strengths         []string       `json:"strengths" jsonschema_description:"Key strengths from Ackman's perspective"`
	Concerns          []string       `json:"concerns" jsonschema_description:"Key concerns from Ackman's perspective"`
	CatalystPotential []string       `json:"catalyst_potential" jsonschema_description:"Potential catalysts for value realization"`
	WouldInvest       bool           `json:"would_invest" jsonschema_description:"Whether Ackman would likely invest"`
	WouldEngage       bool           `json:"would_engage" jsonschema_description:"Whether Ackman would engage actively with management"`
	Rating            Rating         `json:"rating" jsonschema:"minimum=1,maximum=10" jsonschema_description:"Overall Ackman rating from 1-10"`
	Recommendation    Recommendation `json:"recommendation" jsonschema:"enum=Buy,enum=Hold,enum=Sell" jsonschema_description:"Investment recommendation"`
	Reasoning         string         `json:"reasoning" jsonschema_description:"Reasoning behind recommendation"`
}

func (a *AckmanAnalysis) Persona() Persona { return consts.Persona_BillAckman }

func (a *AckmanAnalysis) Validate() error {
	c := newChecker(a.Persona())
	c.required("ticker", a.Ticker)
	c.required("company_name", a.CompanyName)
	cr := a.Criteria
	c.fields("criteria",
		"business_quality", cr.BusinessQuality,
		"cash_flow_generation", cr.CashFlowGeneration,
		"management_competence", cr.ManagementCompetence,
		"capital_allocation", cr.CapitalAllocation,
		"corporate_governance", cr.CorporateGovernance,
		"balance_sheet_strength", cr.BalanceSheetStrength,
		"activist_opportunity", cr.ActivistOpportunity,
	)
	c.present("strengths", a.Strengths)
	c.present("concerns", a.Concerns)
	c.present("catalyst_potential", a.CatalystPotential)
	c.rating("rating", a.Rating)
	c.recommendation("recommendation", a.Recommendation)
	c.required("reasoning", a.Reasoning)
	return c.err()
}

func (a *AckmanAnalysis) Score() Rating          { return a.Rating }
func (a *AckmanAnalysis) Stance() Recommendation { return a.Recommendation }

type GrahamCriteria struct {
	AdequateSize       string `json:"adequate_size" jsonschema_description:"Assessment of company size and financial strength"`
	FinancialCondition string `json:"financial_condition" jsonschema_description:"Assessment of current assets to liabilities ratio"`
	EarningsStability  string `json:"earnings_stability" jsonschema_description:"Assessment of earnings stability over past decade"`
	DividendRecord     string `json:"dividend_record" jsonschema_description:"Assessment of dividend payment history"`
	EarningsGrowth     string `json:"earnings_growth" jsonschema_description:"Assessment of earnings per share growth"`
	PriceToEarnings    string `json:"price_to_earnings" jsonschema_description:"Assessment of moderate P/E ratio"`
	PriceToBook        string `json:"price_to_book" jsonschema_description:"Assessment of price to book ratio"`
	MarginOfSafety     string `json:"margin_of_safety" jsonschema_description:"Assessment of margin of safety in current price"`
}

type GrahamAnalysis struct {
	Ticker         string         `json:"ticker" jsonschema_description:"Stock ticker symbol"`
	CompanyName    string         `json:"company_name" jsonschema_description:"Full company name"`
	Criteria       GrahamCriteria `json:"criteria" jsonschema_description:"Graham investing criteria applied"`
	Strengths      []string       `json:"strengths" jsonschema_description:"Key strengths from Graham's perspective"`
	Concerns       []string       `json:"concerns" jsonschema_description:"Key concerns from Graham's perspective"`
	PassesCriteria bool           `json:"passes_criteria" jsonschema_description:"Whether company meets Graham's criteria"`
	WouldInvest    bool           `json:"would_invest" jsonschema_description:"Whether Graham would likely invest"`
	Rating         Rating         `json:"rating" jsonschema:"minimum=1,maximum=10" jsonschema_description:"Overall Graham rating from 1-10"`
	Recommendation Recommendation `json:"recommendation" jsonschema:"enum=Buy,enum=Hold,enum=Sell" jsonschema_description:"Investment recommendation"`
	Reasoning      string         `json:"reasoning" jsonschema_description:"Reasoning behind recommendation"`
}

func (a *GrahamAnalysis) Persona() Persona { return consts.Persona_BenGraham }

func (a *GrahamAnalysis) Validate() error {
	c := newChecker(a.Persona())
	c.required("ticker", a.Ticker)
	c.required("company_name", a.CompanyName)
	cr := a.Criteria
	c.fields("criteria",
		"adequate_size", cr.AdequateSize,
		"financial_condition", cr.FinancialCondition,
		"earnings_stability", cr.EarningsStability,
		"dividend_record", cr.DividendRecord,
		"earnings_growth", cr.EarningsGrowth,
		"price_to_earnings", cr.PriceToEarnings,
		"price_to_book", cr.PriceToBook,
		"margin_of_safety", cr.MarginOfSafety,
	)
	c.present("strengths", a.Strengths)
	c.present("concerns", a.Concerns)
	c.rating("rating", a.Rating)
	c.recommendation("recommendation", a.Recommendation)
	c.required("reasoning", a.Reasoning)
	return c.err()
}

func (a *GrahamAnalysis) Score() Rating          { return a.Rating }
func (a *GrahamAnalysis) Stance() Recommendation { return a.Recommendation }

type WoodInnovationCriteria struct {
	DisruptivePotential   string `json:"disruptive_potential" jsonschema_description:"Assessment of disruptive technology potential"`
	MarketOpportunity     string `json:"market_opportunity" jsonschema_description:"Assessment of total addressable market size"`
	InnovationLeadership  string `json:"innovation_leadership" jsonschema_description:"Assessment of leadership in innovation"`
	Scalability           string `json:"scalability" jsonschema_description:"Assessment of business scalability"`
	NetworkEffects        string `json:"network_effects" jsonschema_description:"Assessment of potential network effects"`
	RegulatoryEnvironment string `json:"regulatory_environment" jsonschema_description:"Assessment of regulatory landscape for the innovation"`
	GrowthTrajectory      string `json:"growth_trajectory" jsonschema_description:"Assessment of exponential growth potential"`
}

type WoodAnalysis struct {
	Ticker            string                 `json:"ticker" jsonschema_description:"Stock ticker symbol"`
	CompanyName       string                 `json:"company_name" jsonschema_description:"Full company name"`
	Criteria          WoodInnovationCriteria `json:"criteria" jsonschema_description:"Wood innovation criteria applied"`
	Strengths         []string               `json:"strengths" jsonschema_description:"Key strengths from Wood's perspective"`
	Concerns          []string               `json:"concerns" jsonschema_description:"Key concerns from Wood's perspective"`
	InnovationAreas   []string               `json:"innovation_areas" jsonschema_description:"Key innovation areas company is addressing"`
	FiveYearPotential string                 `json:"five_year_potential" jsonschema_description:"Five-year growth potential assessment"`
	WouldInvest       bool                   `json:"would_invest" jsonschema_description:"Whether Wood would likely invest"`
	Rating            Rating                 `json:"rating" jsonschema:"minimum=1,maximum=10" jsonschema_description:"Overall Wood rating from 1-10"`
	Recommendation    Recommendation         `json:"recommendation" jsonschema:"enum=Buy,enum=Hold,enum=Sell" jsonschema_description:"Investment recommendation"`
	Reasoning         string                 `json:"reasoning" jsonschema_description:"Reasoning behind recommendation"`
}

func (a *WoodAnalysis) Persona() Persona { return consts.Persona_CathieWood }

func (a *WoodAnalysis) Validate() error {
	c := newChecker(a.Persona())
	c.required("ticker", a.Ticker)
	c.required("company_name", a.CompanyName)
	cr := a.Criteria
	c.fields("criteria",
		"disruptive_potential", cr.DisruptivePotential,
		"market_opportunity", cr.MarketOpportunity,
		"innovation_leadership", cr.InnovationLeadership,
		"scalability", cr.Scalability,
		"network_effects", cr.NetworkEffects,
		"regulatory_environment", cr.RegulatoryEnvironment,
		"growth_trajectory", cr.GrowthTrajectory,
	)
	c.present("strengths", a.Strengths)
	c.present("concerns", a.Concerns)
	c.present("innovation_areas", a.InnovationAreas)
	c.required("five_year_potential", a.FiveYearPotential)
	c.rating("rating", a.Rating)
	c.recommendation("recommendation", a.Recommendation)
	c.required("reasoning", a.Reasoning)
	return c.err()
}

func (a *WoodAnalysis) Score() Rating          { return a.Rating }
func (a *WoodAnalysis) Stance() Recommendation { return a.Recommendation }
