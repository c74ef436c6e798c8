package consts

// Persona identifiers
const (
	// Investor personas
	Persona_WarrenBuffett = "warren_buffett"
	Persona_CharlieMunger = "charlie_munger"
	Persona_BillAckman    = "bill_ackman"
	Persona_BenGraham     = "ben_graham"
	Persona_CathieWood    = "cathie_wood"
	// Specialist analysts
	Persona_Fundamentals = "fundamentals"
	Persona_Technicals   = "technicals"
	Persona_Sentiment    = "sentiment"
	Persona_Valuation    = "valuation"
	// Management
	Persona_PortfolioManager = "portfolio_manager"
	Persona_RiskManager      = "risk_manager"
	// Workflow
	Persona_MarketView         = "market_view"
	Persona_InvestmentDecision = "investment_decision"
)

// Request section names
const (
	Section_CompanyData            = "company_data"
	Section_FinancialData          = "financial_data"
	Section_PriceData              = "price_data"
	Section_NewsData               = "news_data"
	Section_SocialData             = "social_data"
	Section_InsiderData            = "insider_data"
	Section_MarketData             = "market_data"
	Section_PeerData               = "peer_data"
	Section_PortfolioData          = "portfolio_data"
	Section_AnalystRecommendations = "analyst_recommendations"
	Section_RiskAssessment         = "risk_assessment"
	Section_Focus                  = "focus"
	Section_Analyses               = "analyses"
)
