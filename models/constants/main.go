package constants

/*
	Defines a set of base level
	constants and enums to be used
	throughout Denovo and it's
	associated services.
*/
type AssayChannel string
type HistoneMark string
type ConfidenceLevel string
type AnalysisState string
