package consts

const (
	// Entry and data fetch
	Start       = "start"
	APICallOne  = "api_call_one"
	APICallTwo  = "api_call_two"
	Aggregation = "data_aggregation"

	// Analysis fan-out
	AgentAnalysisOne   = "agent_analysis_one"
	AgentAnalysisTwo   = "agent_analysis_two"
	AgentAnalysisThree = "agent_analysis_three"
	AgentAnalysisFour  = "agent_analysis_four"

	// Decision
	PortfolioManagerDecision = "portfolio_manager_decision"
)

// Join keys in the run state completion map, one per analysis branch.
const (
	JoinOne   = "one"
	JoinTwo   = "two"
	JoinThree = "three"
	JoinFour  = "four"
)

// AnalysisStages lists the fan-out analysis stages in branch order.
var AnalysisStages = []string{AgentAnalysisOne, AgentAnalysisTwo, AgentAnalysisThree, AgentAnalysisFour}

// JoinKeys maps every analysis stage to its completion flag.
var JoinKeys = map[string]string{
	AgentAnalysisOne:   JoinOne,
	AgentAnalysisTwo:   JoinTwo,
	AgentAnalysisThree: JoinThree,
	AgentAnalysisFour:  JoinFour,
}
