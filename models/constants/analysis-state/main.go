package analysisState

import (
	"denovo/api/models/constants"
)

const (
	Pending  constants.AnalysisState = "Pending"
	Fetching constants.AnalysisState = "Fetching"
	Scoring  constants.AnalysisState = "Scoring"
	Done     constants.AnalysisState = "Done"
	Failed   constants.AnalysisState = "Failed"
)

func IsTerminal(state constants.AnalysisState) bool {
	return state == Done || state == Failed
}
