package models

import "github.com/dyike/hedgehog/consts"

type FinancialRatios struct {
	PERatio         float64 `json:"pe_ratio" jsonschema_description:"Price to Earnings ratio"`
	PBRatio         float64 `json:"pb_ratio" jsonschema_description:"Price to Book ratio"`
	PSRatio         float64 `json:"ps_ratio" jsonschema_description:"Price to Sales ratio"`
	PEGRatio        float64 `json:"peg_ratio" jsonschema_description:"Price/Earnings to Growth ratio"`
	DebtToEquity    float64 `json:"debt_to_equity" jsonschema_description:"Debt to Equity ratio"`
	CurrentRatio    float64 `json:"current_ratio" jsonschema_description:"Current ratio"`
	QuickRatio      float64 `json:"quick_ratio" jsonschema_description:"Quick ratio"`
	ROE             float64 `json:"roe" jsonschema_description:"Return on Equity (%)"`
	ROA             float64 `json:"roa" jsonschema_description:"Return on Assets (%)"`
	GrossMargin     float64 `json:"gross_margin" jsonschema_description:"Gross margin (%)"`
	OperatingMargin float64 `json:"operating_margin" jsonschema_description:"Operating margin (%)"`
	NetMargin       float64 `json:"net_margin" jsonschema_description:"Net margin (%)"`
	DividendYield   float64 `json:"dividend_yield" jsonschema_description:"Dividend yield (%)"`
	PayoutRatio     float64 `json:"payout_ratio" jsonschema_description:"Dividend payout ratio"`
}

type GrowthMetrics struct {
	RevenueGrowth3Yr   float64 `json:"revenue_growth_3yr" jsonschema_description:"3-year revenue CAGR (%)"`
	EarningsGrowth3Yr  float64 `json:"earnings_growth_3yr" jsonschema_description:"3-year earnings CAGR (%)"`
	DividendGrowth3Yr  float64 `json:"dividend_growth_3yr" jsonschema_description:"3-year dividend CAGR (%)"`
	BookValueGrowth3Yr float64 `json:"book_value_growth_3yr" jsonschema_description:"3-year book value CAGR (%)"`
	FCFGrowth3Yr       float64 `json:"fcf_growth_3yr" jsonschema_description:"3-year free cash flow CAGR (%)"`
	RevenueGrowthTTM   float64 `json:"revenue_growth_ttm" jsonschema_description:"TTM revenue growth (%)"`
	EarningsGrowthTTM  float64 `json:"earnings_growth_ttm" jsonschema_description:"TTM earnings growth (%)"`
	FCFGrowthTTM       float64 `json:"fcf_growth_ttm" jsonschema_description:"TTM free cash flow growth (%)"`
}

type FundamentalsAnalysis struct {
	Ticker              string          `json:"ticker" jsonschema_description:"Stock ticker symbol"`
	CompanyName         string          `json:"company_name" jsonschema_description:"Full company name"`
	Sector              string          `json:"sector" jsonschema_description:"Industry sector"`
	Industry            string          `json:"industry" jsonschema_description:"Specific industry"`
	FinancialRatios     FinancialRatios `json:"financial_ratios" jsonschema_description:"Key financial ratios"`
	GrowthMetrics       GrowthMetrics   `json:"growth_metrics" jsonschema_description:"Key growth metrics"`
	Strengths           []string        `json:"strengths" jsonschema_description:"Key fundamental strengths"`
	Weaknesses          []string        `json:"weaknesses" jsonschema_description:"Key fundamental weaknesses"`
	Opportunities       []string        `json:"opportunities" jsonschema_description:"Key opportunities"`
	Threats             []string        `json:"threats" jsonschema_description:"Key threats"`
	ValuationAssessment string          `json:"valuation_assessment" jsonschema_description:"Assessment of current valuation"`
	FinancialHealth     string          `json:"financial_health" jsonschema_description:"Assessment of financial health"`
	GrowthOutlook       string          `json:"growth_outlook" jsonschema_description:"Assessment of growth outlook"`
	Rating              Rating          `json:"rating" jsonschema:"minimum=1,maximum=10" jsonschema_description:"Overall fundamental rating from 1-10"`
	Recommendation      Recommendation  `json:"recommendation" jsonschema:"enum=Buy,enum=Hold,enum=Sell" jsonschema_description:"Investment recommendation"`
	Reasoning           string          `json:"reasoning" jsonschema_description:"Reasoning behind recommendation"`
}

func (a *FundamentalsAnalysis) Persona() Persona { return consts.Persona_Fundamentals }

func (a *FundamentalsAnalysis) Validate() error {
	c := newChecker(a.Persona())
	c.required("ticker", a.Ticker)
	c.required("company_name", a.CompanyName)
	c.required("sector", a.Sector)
	c.required("industry", a.Industry)
	c.present("strengths", a.Strengths)
	c.present("weaknesses", a.Weaknesses)
	c.present("opportunities", a.Opportunities)
	c.present("threats", a.Threats)
	c.required("valuation_assessment", a.ValuationAssessment)
	c.required("financial_health", a.FinancialHealth)
	c.required("growth_outlook", a.GrowthOutlook)
	c.rating("rating", a.Rating)
	c.recommendation("recommendation", a.Recommendation)
	c.required("reasoning", a.Reasoning)
	return c.err()
}

func (a *FundamentalsAnalysis) Score() Rating          { return a.Rating }
func (a *FundamentalsAnalysis) Stance() Recommendation { return a.Recommendation }

type TechnicalIndicators struct {
	SMA20           float64 `json:"sma_20" jsonschema_description:"20-day Simple Moving Average"`
	SMA50           float64 `json:"sma_50" jsonschema_description:"50-day Simple Moving Average"`
	SMA200          float64 `json:"sma_200" jsonschema_description:"200-day Simple Moving Average"`
	EMA12           float64 `json:"ema_12" jsonschema_description:"12-day Exponential Moving Average"`
	EMA26           float64 `json:"ema_26" jsonschema_description:"26-day Exponential Moving Average"`
	RSI14           float64 `json:"rsi_14" jsonschema:"minimum=0,maximum=100" jsonschema_description:"14-day Relative Strength Index"`
	MACD            float64 `json:"macd" jsonschema_description:"Moving Average Convergence Divergence"`
	MACDSignal      float64 `json:"macd_signal" jsonschema_description:"MACD Signal line"`
	MACDHistogram   float64 `json:"macd_histogram" jsonschema_description:"MACD Histogram"`
	BollingerUpper  float64 `json:"bollinger_upper" jsonschema_description:"Upper Bollinger Band"`
	BollingerMiddle float64 `json:"bollinger_middle" jsonschema_description:"Middle Bollinger Band"`
	BollingerLower  float64 `json:"bollinger_lower" jsonschema_description:"Lower Bollinger Band"`
	StochasticK     float64 `json:"stochastic_k" jsonschema_description:"Stochastic %K"`
	StochasticD     float64 `json:"stochastic_d" jsonschema_description:"Stochastic %D"`
	ATR14           float64 `json:"atr_14" jsonschema_description:"14-day Average True Range"`
}

type VolumeIndicators struct {
	VolumeSMA20 float64 `json:"volume_sma_20" jsonschema_description:"20-day Volume Simple Moving Average"`
	OBV         float64 `json:"obv" jsonschema_description:"On-Balance Volume"`
	CMF         float64 `json:"cmf" jsonschema_description:"Chaikin Money Flow"`
	VWAP        float64 `json:"vwap" jsonschema_description:"Volume Weighted Average Price"`
	VolumeRatio float64 `json:"volume_ratio" jsonschema_description:"Current volume to average volume ratio"`
}

type TechnicalsAnalysis struct {
	Ticker           string              `json:"ticker" jsonschema_description:"Stock ticker symbol"`
	CurrentPrice     float64             `json:"current_price" jsonschema_description:"Current price of the stock"`
	PreviousClose    float64             `json:"previous_close" jsonschema_description:"Previous day's closing price"`
	Indicators       TechnicalIndicators `json:"indicators" jsonschema_description:"Key technical indicators"`
	VolumeMetrics    VolumeIndicators    `json:"volume_metrics" jsonschema_description:"Volume indicators"`
	Trend            string              `json:"trend" jsonschema:"enum=Bullish,enum=Bearish,enum=Neutral" jsonschema_description:"Current trend identification"`
	SupportLevels    []float64           `json:"support_levels" jsonschema_description:"Key support price levels"`
	ResistanceLevels []float64           `json:"resistance_levels" jsonschema_description:"Key resistance price levels"`
	Patterns         []string            `json:"patterns" jsonschema_description:"Identified chart patterns"`
	Signals          []string            `json:"signals" jsonschema_description:"Specific technical signals"`
	Momentum         string              `json:"momentum" jsonschema_description:"Momentum assessment"`
	Volatility       string              `json:"volatility" jsonschema_description:"Volatility assessment"`
	EntryPoints      []float64           `json:"entry_points" jsonschema_description:"Potential entry price points"`
	ExitPoints       []float64           `json:"exit_points" jsonschema_description:"Potential exit price points"`
	StopLoss         float64             `json:"stop_loss" jsonschema_description:"Recommended stop loss level"`
	Rating           Rating              `json:"rating" jsonschema:"minimum=1,maximum=10" jsonschema_description:"Overall technical rating from 1-10"`
	Recommendation   Recommendation      `json:"recommendation" jsonschema:"enum=Buy,enum=Hold,enum=Sell" jsonschema_description:"Investment recommendation"`
	Reasoning        string              `json:"reasoning" jsonschema_description:"Reasoning behind recommendation"`
	Timeframe        string              `json:"timeframe" jsonschema_description:"Timeframe for the technical analysis"`
}

func (a *TechnicalsAnalysis) Persona() Persona { return consts.Persona_Technicals }

func (a *TechnicalsAnalysis) Validate() error {
	c := newChecker(a.Persona())
	c.required("ticker", a.Ticker)
	if a.CurrentPrice <= 0 {
		c.addf("current_price must be positive, got %g", a.CurrentPrice)
	}
	c.between("indicators.rsi_14", a.Indicators.RSI14, 0, 100)
	switch a.Trend {
	case "Bullish", "Bearish", "Neutral":
	default:
		c.addf("trend must be one of Bullish, Bearish, Neutral, got %q", a.Trend)
	}
	c.present("patterns", a.Patterns)
	c.present("signals", a.Signals)
	c.required("momentum", a.Momentum)
	c.required("volatility", a.Volatility)
	c.rating("rating", a.Rating)
	c.recommendation("recommendation", a.Recommendation)
	c.required("reasoning", a.Reasoning)
	c.required("timeframe", a.Timeframe)
	return c.err()
}

func (a *TechnicalsAnalysis) Score() Rating          { return a.Rating }
func (a *TechnicalsAnalysis) Stance() Recommendation { return a.Recommendation }

type NewsAnalysis struct {
	RecentArticlesCount int      `json:"recent_articles_count" jsonschema_description:"Number of recent news articles analyzed"`
	PositiveArticles    int      `json:"positive_articles" jsonschema_description:"Number of positive news articles"`
	NegativeArticles    int      `json:"negative_articles" jsonschema_description:"Number of negative news articles"`
	NeutralArticles     int      `json:"neutral_articles" jsonschema_description:"Number of neutral news articles"`
	NewsSentimentScore  float64  `json:"news_sentiment_score" jsonschema:"minimum=-1,maximum=1" jsonschema_description:"Overall news sentiment score (-1 to 1)"`
	KeyPositiveTopics   []string `json:"key_positive_topics" jsonschema_description:"Key positive topics in news"`
	KeyNegativeTopics   []string `json:"key_negative_topics" jsonschema_description:"Key negative topics in news"`
	SignificantEvents   []string `json:"significant_events" jsonschema_description:"Significant recent events"`
}

type SocialMediaAnalysis struct {
	PlatformDistribution map[string]int `json:"platform_distribution" jsonschema_description:"Distribution of mentions by platform"`
	MentionCount         int            `json:"mention_count" jsonschema_description:"Total social media mentions analyzed"`
	PositiveMentions     int            `json:"positive_mentions" jsonschema_description:"Number of positive mentions"`
	NegativeMentions     int            `json:"negative_mentions" jsonschema_description:"Number of negative mentions"`
	NeutralMentions      int            `json:"neutral_mentions" jsonschema_description:"Number of neutral mentions"`
	SocialSentimentScore float64        `json:"social_sentiment_score" jsonschema:"minimum=-1,maximum=1" jsonschema_description:"Overall social sentiment score (-1 to 1)"`
	TrendingHashtags     []string       `json:"trending_hashtags" jsonschema_description:"Trending hashtags related to the company"`
	ViralContent         []string       `json:"viral_content" jsonschema_description:"Viral content related to the company"`
}

type InsiderActivity struct {
	BuyTransactions    int      `json:"buy_transactions" jsonschema_description:"Number of insider buy transactions"`
	SellTransactions   int      `json:"sell_transactions" jsonschema_description:"Number of insider sell transactions"`
	NetSharesChange    int      `json:"net_shares_change" jsonschema_description:"Net change in insider-owned shares"`
	SignificantBuyers  []string `json:"significant_buyers" jsonschema_description:"Significant insider buyers"`
	SignificantSellers []string `json:"significant_sellers" jsonschema_description:"Significant insider sellers"`
	BuysValue          float64  `json:"buys_value" jsonschema_description:"Total value of insider buys ($)"`
	SellsValue         float64  `json:"sells_value" jsonschema_description:"Total value of insider sells ($)"`
	InsiderSentiment   string   `json:"insider_sentiment" jsonschema_description:"Overall insider sentiment assessment"`
}

type SentimentAnalysis struct {
	Ticker               string              `json:"ticker" jsonschema_description:"Stock ticker symbol"`
	CompanyName          string              `json:"company_name" jsonschema_description:"Full company name"`
	NewsAnalysis         NewsAnalysis        `json:"news_analysis" jsonschema_description:"News sentiment analysis"`
	SocialAnalysis       SocialMediaAnalysis `json:"social_analysis" jsonschema_description:"Social media sentiment analysis"`
	InsiderActivity      InsiderActivity     `json:"insider_activity" jsonschema_description:"Insider trading activity analysis"`
	OverallSentiment     string              `json:"overall_sentiment" jsonschema:"enum=Positive,enum=Neutral,enum=Negative" jsonschema_description:"Overall sentiment assessment"`
	SentimentScore       float64             `json:"sentiment_score" jsonschema:"minimum=-1,maximum=1" jsonschema_description:"Aggregated sentiment score (-1 to 1)"`
	SentimentMomentum    string              `json:"sentiment_momentum" jsonschema:"enum=Improving,enum=Stable,enum=Deteriorating" jsonschema_description:"Sentiment momentum"`
	MarketPerception     string              `json:"market_perception" jsonschema_description:"Overall market perception assessment"`
	KeySentimentDrivers  []string            `json:"key_sentiment_drivers" jsonschema_description:"Key drivers of current sentiment"`
	ContrarianIndicators []string            `json:"contrarian_indicators" jsonschema_description:"Potential contrarian indicators"`
	Rating               Rating              `json:"rating" jsonschema:"minimum=1,maximum=10" jsonschema_description:"Overall sentiment rating from 1-10"`
	Recommendation       Recommendation      `json:"recommendation" jsonschema:"enum=Buy,enum=Hold,enum=Sell" jsonschema_description:"Sentiment-based recommendation"`
	Reasoning            string              `json:"reasoning" jsonschema_description:"Reasoning behind recommendation"`
}

func (a *SentimentAnalysis) Persona() Persona { return consts.Persona_Sentiment }

func (a *SentimentAnalysis) Validate() error {
	c := newChecker(a.Persona())
	c.required("ticker", a.Ticker)
	c.required("company_name", a.CompanyName)

	n := a.NewsAnalysis
	c.nonNegative("news_analysis.recent_articles_count", n.RecentArticlesCount)
	c.nonNegative("news_analysis.positive_articles", n.PositiveArticles)
	c.nonNegative("news_analysis.negative_articles", n.NegativeArticles)
	c.nonNegative("news_analysis.neutral_articles", n.NeutralArticles)
	if sum := n.PositiveArticles + n.NegativeArticles + n.NeutralArticles; sum > n.RecentArticlesCount {
		c.addf("news_analysis article breakdown (%d) exceeds recent_articles_count (%d)", sum, n.RecentArticlesCount)
	}
	c.between("news_analysis.news_sentiment_score", n.NewsSentimentScore, -1, 1)

	s := a.SocialAnalysis
	c.nonNegative("social_analysis.mention_count", s.MentionCount)
	c.between("social_analysis.social_sentiment_score", s.SocialSentimentScore, -1, 1)

	i := a.InsiderActivity
	c.nonNegative("insider_activity.buy_transactions", i.BuyTransactions)
	c.nonNegative("insider_activity.sell_transactions", i.SellTransactions)
	c.required("insider_activity.insider_sentiment", i.InsiderSentiment)

	switch a.OverallSentiment {
	case "Positive", "Neutral", "Negative":
	default:
		c.addf("overall_sentiment must be one of Positive, Neutral, Negative, got %q", a.OverallSentiment)
	}
	c.between("sentiment_score", a.SentimentScore, -1, 1)
	c.required("sentiment_momentum", a.SentimentMomentum)
	c.required("market_perception", a.MarketPerception)
	c.present("key_sentiment_drivers", a.KeySentimentDrivers)
	c.rating("rating", a.Rating)
	c.recommendation("recommendation", a.Recommendation)
	c.required("reasoning", a.Reasoning)
	return c.err()
}

func (a *SentimentAnalysis) Score() Rating          { return a.Rating }
func (a *SentimentAnalysis) Stance() Recommendation { return a.Recommendation }

type ComparableMultiples struct {
	PERatio           float64 `json:"pe_ratio" jsonschema_description:"Price to Earnings ratio"`
	ForwardPE         float64 `json:"forward_pe" jsonschema_description:"Forward Price to Earnings ratio"`
	PBRatio           float64 `json:"pb_ratio" jsonschema_description:"Price to Book ratio"`
	PSRatio           float64 `json:"ps_ratio" jsonschema_description:"Price to Sales ratio"`
	EVEBITDA          float64 `json:"ev_ebitda" jsonschema_description:"Enterprise Value to EBITDA ratio"`
	EVSales           float64 `json:"ev_sales" jsonschema_description:"Enterprise Value to Sales ratio"`
	PEGRatio          float64 `json:"peg_ratio" jsonschema_description:"Price/Earnings to Growth ratio"`
	DividendYield     float64 `json:"dividend_yield" jsonschema_description:"Dividend yield (%)"`
	PeerAveragePE     float64 `json:"peer_average_pe" jsonschema_description:"Peer average P/E ratio"`
	PeerAveragePB     float64 `json:"peer_average_pb" jsonschema_description:"Peer average P/B ratio"`
	IndustryAveragePE float64 `json:"industry_average_pe" jsonschema_description:"Industry average P/E ratio"`
	IndustryAveragePB float64 `json:"industry_average_pb" jsonschema_description:"Industry average P/B ratio"`
}

type DiscountedCashFlowModel struct {
	RevenueGrowthRate  float64 `json:"revenue_growth_rate" jsonschema_description:"Projected revenue growth rate (%)"`
	EBITDAMargin       float64 `json:"ebitda_margin" jsonschema_description:"Projected EBITDA margin (%)"`
	TaxRate            float64 `json:"tax_rate" jsonschema_description:"Effective tax rate (%)"`
	WACC               float64 `json:"wacc" jsonschema_description:"Weighted Average Cost of Capital (%)"`
	TerminalGrowthRate float64 `json:"terminal_growth_rate" jsonschema_description:"Terminal growth rate (%)"`
	ProjectionYears    int     `json:"projection_years" jsonschema:"minimum=1" jsonschema_description:"Number of years in projection period"`
	PresentValueFCF    float64 `json:"present_value_fcf" jsonschema_description:"Present value of projected cash flows ($)"`
	TerminalValue      float64 `json:"terminal_value" jsonschema_description:"Terminal value ($)"`
	EnterpriseValue    float64 `json:"enterprise_value" jsonschema_description:"Total enterprise value ($)"`
	EquityValue        float64 `json:"equity_value" jsonschema_description:"Total equity value ($)"`
	SharesOutstanding  float64 `json:"shares_outstanding" jsonschema_description:"Shares outstanding (millions)"`
	DCFValuePerShare   float64 `json:"dcf_value_per_share" jsonschema_description:"DCF value per share ($)"`
}

type ValuationSummary struct {
	CurrentPrice          float64 `json:"current_price" jsonschema_description:"Current stock price ($)"`
	CompsImpliedValue     float64 `json:"comps_implied_value" jsonschema_description:"Implied value from comparable analysis ($)"`
	DCFValue              float64 `json:"dcf_value" jsonschema_description:"DCF valuation per share ($)"`
	PEGValue              float64 `json:"peg_value" jsonschema_description:"PEG-based valuation per share ($)"`
	GrahamValue           float64 `json:"graham_value" jsonschema_description:"Graham formula valuation per share ($)"`
	DividendDiscountValue float64 `json:"dividend_discount_value" jsonschema_description:"Dividend discount model value ($)"`
	AverageValue          float64 `json:"average_value" jsonschema_description:"Average valuation across methods ($)"`
	MedianValue           float64 `json:"median_value" jsonschema_description:"Median valuation across methods ($)"`
	UpsidePotential       float64 `json:"upside_potential" jsonschema_description:"Upside potential from current price (%)"`
	DownsideRisk          float64 `json:"downside_risk" jsonschema_description:"Downside risk from current price (%)"`
	MarginOfSafety        float64 `json:"margin_of_safety" jsonschema_description:"Margin of safety at current price (%)"`
}

type ValuationAnalysis struct {
	Ticker                string                  `json:"ticker" jsonschema_description:"Stock ticker symbol"`
	CompanyName           string                  `json:"company_name" jsonschema_description:"Full company name"`
	AnalystTargetPrice    float64                 `json:"analyst_target_price" jsonschema_description:"Average analyst target price ($)"`
	ComparableMultiples   ComparableMultiples     `json:"comparable_multiples" jsonschema_description:"Comparable companies analysis"`
	DCFModel              DiscountedCashFlowModel `json:"dcf_model" jsonschema_description:"Discounted Cash Flow model"`
	ValuationSummary      ValuationSummary        `json:"valuation_summary" jsonschema_description:"Valuation summary across methods"`
	Strengths             []string                `json:"strengths" jsonschema_description:"Key valuation strengths"`
	Concerns              []string                `json:"concerns" jsonschema_description:"Key valuation concerns"`
	CatalystOpportunities []string                `json:"catalyst_opportunities" jsonschema_description:"Potential catalysts for valuation improvement"`
	IntrinsicValueRange   map[string]float64      `json:"intrinsic_value_range" jsonschema_description:"Range of intrinsic value estimates, e.g. low/base/high"`
	FairValueEstimate     float64                 `json:"fair_value_estimate" jsonschema_description:"Fair value estimate per share ($)"`
	SensitivityFactors    []string                `json:"sensitivity_factors" jsonschema_description:"Key factors affecting valuation"`
	Rating                Rating                  `json:"rating" jsonschema:"minimum=1,maximum=10" jsonschema_description:"Overall valuation rating from 1-10"`
	Recommendation        Recommendation          `json:"recommendation" jsonschema:"enum=Buy,enum=Hold,enum=Sell" jsonschema_description:"Valuation-based recommendation"`
	Reasoning             string                  `json:"reasoning" jsonschema_description:"Reasoning behind recommendation"`
}

func (a *ValuationAnalysis) Persona() Persona { return consts.Persona_Valuation }

func (a *ValuationAnalysis) Validate() error {
	c := newChecker(a.Persona())
	c.required("ticker", a.Ticker)
	c.required("company_name", a.CompanyName)
	if a.DCFModel.ProjectionYears < 1 {
		c.addf("dcf_model.projection_years must be at least 1, got %d", a.DCFModel.ProjectionYears)
	}
	if len(a.IntrinsicValueRange) == 0 {
		c.addf("intrinsic_value_range is required")
	}
	if lo, hi := a.IntrinsicValueRange["low"], a.IntrinsicValueRange["high"]; lo > 0 && hi > 0 && lo > hi {
		c.addf("intrinsic_value_range low (%g) exceeds high (%g)", lo, hi)
	}
	c.present("strengths", a.Strengths)
	c.present("concerns", a.Concerns)
	c.present("sensitivity_factors", a.SensitivityFactors)
	c.rating("rating", a.Rating)
	c.recommendation("recommendation", a.Recommendation)
	c.required("reasoning", a.Reasoning)
	return c.err()
}

func (a *ValuationAnalysis) Score() Rating          { return a.Rating }
func (a *ValuationAnalysis) Stance() Recommendation { return a.Recommendation }
