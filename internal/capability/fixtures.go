package capability

import (
	"github.com/dyike/hedgehog/consts"
	"github.com/dyike/hedgehog/internal/models"
)

var companyNames = map[string]string{
	"AAPL":  "Apple Inc.",
	"GOOGL": "Alphabet Inc.",
	"MSFT":  "Microsoft Corporation",
	"KO":    "The Coca-Cola Company",
	"TSLA":  "Tesla, Inc.",
}

func companyName(ticker string) string {
	if name, ok := companyNames[ticker]; ok {
		return name
	}
	if ticker == "" {
		return "Unknown Company"
	}
	return ticker + " Holdings"
}

type marketViewFixture struct {
	timeframe       string
	recommendations []string
	confidence      float64
	rating          models.Rating
	recommendation  models.Recommendation
}

// marketViews are the canned views for the four default analysis foci.
var marketViews = map[string]marketViewFixture{
	"tech stocks": {
		timeframe:       "short-term",
		recommendations: []string{"Buy AAPL", "Hold GOOGL"},
		confidence:      0.85,
		rating:          7,
		recommendation:  models.Buy,
	},
	"fixed income and commodities": {
		timeframe:       "medium-term",
		recommendations: []string{"Buy US10Y bonds", "Sell GOLD"},
		confidence:      0.78,
		rating:          6,
		recommendation:  models.Buy,
	},
	"market risk assessment": {
		timeframe:       "long-term",
		recommendations: []string{"Buy defensive stocks", "Hold cash"},
		confidence:      0.92,
		rating:          5,
		recommendation:  models.Hold,
	},
	"portfolio allocation": {
		timeframe:       "medium-term",
		recommendations: []string{"Diversify portfolio", "Reduce exposure to tech"},
		confidence:      0.81,
		rating:          6,
		recommendation:  models.Hold,
	},
}

func defaultFixtures() map[models.Persona]Fixture {
	return map[models.Persona]Fixture{
		consts.Persona_WarrenBuffett:      buffettFixture,
		consts.Persona_CharlieMunger:      mungerFixture,
		consts.Persona_BillAckman:         ackmanFixture,
		consts.Persona_BenGraham:          grahamFixture,
		consts.Persona_CathieWood:         woodFixture,
		consts.Persona_Fundamentals:       fundamentalsFixture,
		consts.Persona_Technicals:         technicalsFixture,
		consts.Persona_Sentiment:          sentimentFixture,
		consts.Persona_Valuation:          valuationFixture,
		consts.Persona_PortfolioManager:   portfolioFixture,
		consts.Persona_RiskManager:        riskFixture,
		consts.Persona_MarketView:         marketViewFixtureFor,
		consts.Persona_InvestmentDecision: decisionFixture,
	}
}

func marketViewFixtureFor(_, focus string) models.Result {
	f, ok := marketViews[focus]
	if !ok {
		f = marketViewFixture{
			timeframe:       "medium-term",
			recommendations: []string{"Hold current positions"},
			confidence:      0.5,
			rating:          5,
			recommendation:  models.Hold,
		}
	}
	if focus == "" {
		focus = "general market"
	}
	return &models.MarketView{
		Focus:           focus,
		Timeframe:       f.timeframe,
		Recommendations: append([]string(nil), f.recommendations...),
		Confidence:      f.confidence,
		Rating:          f.rating,
		Recommendation:  f.recommendation,
		Reasoning:       "Assessment of " + focus + " from the aggregated market data.",
		Metadata:        map[string]any{"focus": focus, "timeframe": f.timeframe},
	}
}

func decisionFixture(_, _ string) models.Result {
	return &models.InvestmentDecision{
		BuyAssets:  []string{"AAPL", "US10Y bonds", "Defensive ETFs"},
		SellAssets: []string{"GOLD", "High-risk tech stocks"},
		HoldAssets: []string{"GOOGL", "Cash reserves"},
		Rationale:  "Based on analysis from multiple agents, a balanced approach with reduced tech exposure is recommended.",
	}
}

func buffettFixture(ticker, _ string) models.Result {
	return &models.BuffettAnalysis{
		Ticker:      ticker,
		CompanyName: companyName(ticker),
		Criteria: models.BuffettCriteria{
			CircleOfCompetence:  "Consumer franchise that is easy to understand",
			EconomicMoat:        "Strong brand and switching costs",
			ManagementQuality:   "Shareholder-oriented capital returns",
			FinancialStrength:   "Net cash position with modest leverage",
			EarningsConsistency: "Consistent earnings through several cycles",
			ReturnOnEquity:      "Sustained high return on equity",
			IntrinsicValue:      "Owner earnings support a value near the current price",
			MarginOfSafety:      "Limited at today's price",
		},
		Strengths:      []string{"Durable brand", "Pricing power"},
		Concerns:       []string{"Full valuation"},
		HoldingPeriod:  "10+ years",
		WouldInvest:    true,
		Rating:         7,
		Recommendation: models.Hold,
		Reasoning:      "A wonderful business, but the price leaves little margin of safety.",
	}
}

func mungerFixture(ticker, _ string) models.Result {
	return &models.MungerAnalysis{
		Ticker:      ticker,
		CompanyName: companyName(ticker),
		Principles: models.MungerPrinciples{
			BusinessQuality:   "High quality with recurring demand",
			Rationality:       "Capital allocation has been rational",
			MoatStrength:      "Wide",
			LongTermProspects: "Favourable",
			MarginOfSafety:    "Thin",
			LatticeworkView:   "Network effects and brand reinforce each other",
		},
		Strengths:      []string{"Ecosystem lock-in"},
		Concerns:       []string{"Regulatory scrutiny"},
		MentalModels:   []string{"Inversion", "Incentives", "Compounding"},
		WouldInvest:    true,
		Rating:         7,
		Recommendation: models.Hold,
		Reasoning:      "Great business at a fair price; wait for a better entry.",
	}
}

func ackmanFixture(ticker, _ string) models.Result {
	return &models.AckmanAnalysis{
		Ticker:      ticker,
		CompanyName: companyName(ticker),
		Criteria: models.AckmanCriteria{
			BusinessQuality:      "Simple, predictable model",
			CashFlowGeneration:   "Strong free cash flow",
			ManagementCompetence: "Capable operators",
			CapitalAllocation:    "Large buybacks",
			CorporateGovernance:  "Adequate",
			BalanceSheetStrength: "Strong",
			ActivistOpportunity:  "Limited",
		},
		Strengths:         []string{"Free cash flow yield"},
		Concerns:          []string{"Few levers for activism"},
		CatalystPotential: []string{"Services growth", "Capital return program"},
		WouldInvest:       true,
		WouldEngage:       false,
		Rating:            7,
		Recommendation:    models.Buy,
		Reasoning:         "High quality compounder; no activist angle needed.",
	}
}

func grahamFixture(ticker, _ string) models.Result {
	return &models.GrahamAnalysis{
		Ticker:      ticker,
		CompanyName: companyName(ticker),
		Criteria: models.GrahamCriteria{
			AdequateSize:       "Large cap",
			FinancialCondition: "Current ratio near 1",
			EarningsStability:  "Positive earnings for ten years",
			DividendRecord:     "Dividend paid without interruption",
			EarningsGrowth:     "Well above one third over the decade",
			PriceToEarnings:    "Above 15x",
			PriceToBook:        "Well above 1.5x",
			MarginOfSafety:     "None at current price",
		},
		Strengths:      []string{"Earnings stability"},
		Concerns:       []string{"Multiples exceed defensive limits"},
		PassesCriteria: false,
		WouldInvest:    false,
		Rating:         4,
		Recommendation: models.Hold,
		Reasoning:      "Fails the price tests for the defensive investor.",
	}
}

func woodFixture(ticker, _ string) models.Result {
	return &models.WoodAnalysis{
		Ticker:      ticker,
		CompanyName: companyName(ticker),
		Criteria: models.WoodInnovationCriteria{
			DisruptivePotential:   "Moderate",
			MarketOpportunity:     "Large installed base for new platforms",
			InnovationLeadership:  "Strong silicon and AI investment",
			Scalability:           "High",
			NetworkEffects:        "Strong",
			RegulatoryEnvironment: "Increasing scrutiny",
			GrowthTrajectory:      "Steady rather than exponential",
		},
		Strengths:         []string{"AI platform reach"},
		Concerns:          []string{"Mature core market"},
		InnovationAreas:   []string{"Artificial intelligence", "Wearables"},
		FiveYearPotential: "Market-level returns with upside from AI",
		WouldInvest:       false,
		Rating:            6,
		Recommendation:    models.Hold,
		Reasoning:         "Innovation is real but growth is not exponential.",
	}
}

func fundamentalsFixture(ticker, _ string) models.Result {
	return &models.FundamentalsAnalysis{
		Ticker:      ticker,
		CompanyName: companyName(ticker),
		Sector:      "Technology",
		Industry:    "Consumer Electronics",
		FinancialRatios: models.FinancialRatios{
			PERatio:         29.5,
			PBRatio:         45.1,
			PSRatio:         7.6,
			PEGRatio:        2.6,
			DebtToEquity:    1.8,
			CurrentRatio:    0.99,
			QuickRatio:      0.94,
			ROE:             1.56,
			ROA:             0.28,
			GrossMargin:     0.44,
			OperatingMargin: 0.30,
			NetMargin:       0.25,
			DividendYield:   0.005,
			PayoutRatio:     0.15,
		},
		GrowthMetrics: models.GrowthMetrics{
			RevenueGrowth3Yr:   0.08,
			EarningsGrowth3Yr:  0.10,
			DividendGrowth3Yr:  0.05,
			BookValueGrowth3Yr: -0.02,
			FCFGrowth3Yr:       0.07,
			RevenueGrowthTTM:   0.02,
			EarningsGrowthTTM:  0.04,
			FCFGrowthTTM:       0.03,
		},
		Strengths:           []string{"Margins", "Cash generation"},
		Weaknesses:          []string{"Slowing revenue growth"},
		Opportunities:       []string{"Services expansion"},
		Threats:             []string{"Regulation of app stores"},
		ValuationAssessment: "Fully valued",
		FinancialHealth:     "Strong",
		GrowthOutlook:       "Moderate",
		Rating:              7,
		Recommendation:      models.Hold,
		Reasoning:           "Excellent profitability offset by a premium multiple.",
	}
}

func technicalsFixture(ticker, _ string) models.Result {
	return &models.TechnicalsAnalysis{
		Ticker:        ticker,
		CurrentPrice:  180.5,
		PreviousClose: 178.9,
		Indicators: models.TechnicalIndicators{
			SMA20:           176.2,
			SMA50:           172.8,
			SMA200:          165.4,
			EMA12:           177.9,
			EMA26:           175.1,
			RSI14:           61.3,
			MACD:            2.8,
			MACDSignal:      2.1,
			MACDHistogram:   0.7,
			BollingerUpper:  184.6,
			BollingerMiddle: 176.2,
			BollingerLower:  167.8,
			StochasticK:     72.4,
			StochasticD:     68.9,
			ATR14:           3.1,
		},
		VolumeMetrics: models.VolumeIndicators{
			VolumeSMA20: 54000000,
			OBV:         1250000000,
			CMF:         0.08,
			VWAP:        179.7,
			VolumeRatio: 1.1,
		},
		Trend:            "Bullish",
		SupportLevels:    []float64{172.5, 165.0},
		ResistanceLevels: []float64{185.0, 190.0},
		Patterns:         []string{"Ascending channel"},
		Signals:          []string{"Price above 50-day SMA", "MACD above signal"},
		Momentum:         "Positive",
		Volatility:       "Moderate",
		EntryPoints:      []float64{176.0},
		ExitPoints:       []float64{189.5},
		StopLoss:         169.9,
		Rating:           7,
		Recommendation:   models.Buy,
		Reasoning:        "Uptrend intact with healthy momentum.",
		Timeframe:        "short-term",
	}
}

func sentimentFixture(ticker, _ string) models.Result {
	return &models.SentimentAnalysis{
		Ticker:      ticker,
		CompanyName: companyName(ticker),
		NewsAnalysis: models.NewsAnalysis{
			RecentArticlesCount: 40,
			PositiveArticles:    22,
			NegativeArticles:    8,
			NeutralArticles:     10,
			NewsSentimentScore:  0.35,
			KeyPositiveTopics:   []string{"Product launch"},
			KeyNegativeTopics:   []string{"Antitrust case"},
			SignificantEvents:   []string{"Quarterly earnings beat"},
		},
		SocialAnalysis: models.SocialMediaAnalysis{
			PlatformDistribution: map[string]int{"reddit": 1200, "x": 3400},
			MentionCount:         4600,
			PositiveMentions:     2500,
			NegativeMentions:     900,
			NeutralMentions:      1200,
			SocialSentimentScore: 0.28,
			TrendingHashtags:     []string{"#" + ticker},
			ViralContent:         []string{},
		},
		InsiderActivity: models.InsiderActivity{
			BuyTransactions:    1,
			SellTransactions:   6,
			NetSharesChange:    -120000,
			SignificantBuyers:  []string{},
			SignificantSellers: []string{"Chief Executive Officer"},
			BuysValue:          150000,
			SellsValue:         21000000,
			InsiderSentiment:   "Mildly negative; routine scheduled sales",
		},
		OverallSentiment:     "Positive",
		SentimentScore:       0.3,
		SentimentMomentum:    "Improving",
		MarketPerception:     "Quality leader",
		KeySentimentDrivers:  []string{"Earnings", "Product cycle"},
		ContrarianIndicators: []string{"Crowded long positioning"},
		Rating:               6,
		Recommendation:       models.Hold,
		Reasoning:            "Positive news and social tone, tempered by insider selling.",
	}
}

func valuationFixture(ticker, _ string) models.Result {
	return &models.ValuationAnalysis{
		Ticker:             ticker,
		CompanyName:        companyName(ticker),
		AnalystTargetPrice: 195,
		ComparableMultiples: models.ComparableMultiples{
			PERatio:           29.5,
			ForwardPE:         27.0,
			PBRatio:           45.1,
			PSRatio:           7.6,
			EVEBITDA:          22.3,
			EVSales:           7.4,
			PEGRatio:          2.6,
			DividendYield:     0.005,
			PeerAveragePE:     26.0,
			PeerAveragePB:     9.5,
			IndustryAveragePE: 24.0,
			IndustryAveragePB: 6.0,
		},
		DCFModel: models.DiscountedCashFlowModel{
			RevenueGrowthRate:  0.06,
			EBITDAMargin:       0.33,
			TaxRate:            0.16,
			WACC:               0.085,
			TerminalGrowthRate: 0.03,
			ProjectionYears:    5,
			PresentValueFCF:    480000000000,
			TerminalValue:      2300000000000,
			EnterpriseValue:    2780000000000,
			EquityValue:        2750000000000,
			SharesOutstanding:  15500000000,
			DCFValuePerShare:   177.4,
		},
		ValuationSummary: models.ValuationSummary{
			CurrentPrice:          180.5,
			CompsImpliedValue:     168.0,
			DCFValue:              177.4,
			PEGValue:              160.0,
			GrahamValue:           95.0,
			DividendDiscountValue: 70.0,
			AverageValue:          134.1,
			MedianValue:           160.0,
			UpsidePotential:       0.08,
			DownsideRisk:          0.15,
			MarginOfSafety:        -0.02,
		},
		Strengths:             []string{"Predictable cash flows"},
		Concerns:              []string{"Premium to peers"},
		CatalystOpportunities: []string{"Margin expansion from services"},
		IntrinsicValueRange:   map[string]float64{"low": 150, "base": 177.4, "high": 200},
		FairValueEstimate:     177.4,
		SensitivityFactors:    []string{"WACC", "Terminal growth"},
		Rating:                6,
		Recommendation:        models.Hold,
		Reasoning:             "Trading close to DCF value with limited upside.",
	}
}

func portfolioFixture(ticker, _ string) models.Result {
	if ticker == "" {
		ticker = "AAPL"
	}
	return &models.PortfolioManagementDecision{
		CashAllocation: 15,
		AssetAllocations: []models.PortfolioAllocation{
			{
				Ticker:        ticker,
				TargetWeight:  25,
				CurrentWeight: 20,
				OrderType:     models.OrderBuy,
				OrderQuantity: 50,
				PriceLimit:    182,
				StopLoss:      165,
				Justification: "Analysts lean positive and risk limits allow a larger position",
			},
			{
				Ticker:        "BND",
				TargetWeight:  60,
				CurrentWeight: 65,
				OrderType:     models.OrderSell,
				OrderQuantity: 40,
				Justification: "Fund the equity increase from fixed income",
			},
		},
		TopPerformers:    []models.AssetPerformance{{Ticker: ticker, Return1M: 0.04, ReturnYTD: 0.12, SharpeRatio: 1.3, MaxDrawdown: -0.11, Volatility: 0.24}},
		WorstPerformers:  []models.AssetPerformance{{Ticker: "BND", Return1M: -0.01, ReturnYTD: 0.01, SharpeRatio: 0.2, MaxDrawdown: -0.05, Volatility: 0.06}},
		PortfolioMetrics: map[string]float64{"beta": 0.8, "expected_volatility": 0.12},
		RebalanceNeeded:  true,
		RiskAssessment:   "Moderate; within limits",
		MarketOutlook:    "Constructive with elevated rate risk",
		Rationale:        "Tilt toward equities where analyst conviction is highest.",
	}
}

func riskFixture(ticker, _ string) models.Result {
	return &models.RiskAssessment{
		Ticker:      ticker,
		CompanyName: companyName(ticker),
		RiskMetrics: models.RiskMetrics{
			Volatility:       0.26,
			MaximumDrawdown:  -0.31,
			ValueAtRisk:      -0.035,
			Beta:             1.2,
			CorrelationToSPY: 0.78,
			SharpeRatio:      1.1,
			SortinoRatio:     1.5,
		},
		RiskFactors:     []string{"Concentration in one product line", "Regulatory action"},
		RiskMitigations: []string{"Cap position at 25%", "Trailing stop"},
		RiskLimits: models.RiskLimits{
			PositionLimit:        25,
			StopLossLevel:        165,
			MaxSectorExposure:    40,
			MaxBetaExposure:      1.3,
			MaxDrawdownTolerance: 0.2,
		},
		RiskRating:       5,
		RiskCommentary:   "Risk is moderate and manageable at the proposed size.",
		CurrentPrice:     180.5,
		MarketConditions: "Elevated rates, stable volatility",
	}
}
