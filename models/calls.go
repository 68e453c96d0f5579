package models

import (
	"denovo/api/models/constants"
)

// PeakSummary captures reference vs. alternate local-maxima positions
// for one evidence window, plus the peaks gained or lost by the
// alternate allele. Auxiliary evidence only, never a standalone veto.
type PeakSummary struct {
	RefPeaks    []int `json:"refPeaks"`
	AltPeaks    []int `json:"altPeaks"`
	GainedPeaks []int `json:"gainedPeaks"`
	LostPeaks   []int `json:"lostPeaks"`
}

// ChannelResult is the per-channel outcome of comparing the reference
// and alternate intensity distributions in one evidence window.
type ChannelResult struct {
	Channel constants.AssayChannel `json:"channel"`
	Mark    constants.HistoneMark  `json:"mark,omitempty"`

	Peaks      PeakSummary `json:"peaks"`
	FoldChange float64     `json:"foldChange"`
	PValue     float64     `json:"pValue"`

	// Passes iff FoldChange >= threshold AND PValue < alpha (conjunctive)
	Passes bool `json:"passes"`

	// Set when the statistical test degenerated (e.g. constant window);
	// the channel is then treated as non-passing rather than erroring
	TestFailure string `json:"testFailure,omitempty"`
}

// EnhancerCall is the terminal per-variant artifact. Created once after
// all channels are processed; replaced, never patched, if recomputed.
type EnhancerCall struct {
	Variant  Variant `json:"variant"`
	Contig   string  `json:"contig"`
	Position int     `json:"position"`

	Score      float64                   `json:"score"` // composite, in [0,1]
	Confidence constants.ConfidenceLevel `json:"confidence"`

	Channels []ChannelResult `json:"channels"`

	// Number of channel measurements that passed their threshold,
	// and the distinct evidence types among them
	PassingChannels int                      `json:"passingChannels"`
	EvidenceTypes   []constants.AssayChannel `json:"evidenceTypes"`

	EvidenceSummary string `json:"evidenceSummary"`
}

// FailureEntry records a variant that could not be analyzed; it is
// excluded from hotspot aggregation but reported alongside calls.
type FailureEntry struct {
	Variant   Variant `json:"variant"`
	ErrorKind string  `json:"errorKind"`
	Message   string  `json:"message"`
}

// Hotspot is a cluster of enhancer-call positions whose density is
// unlikely under a uniform-random placement null.
type Hotspot struct {
	Contig        string  `json:"contig"`
	Start         int     `json:"start"`
	End           int     `json:"end"`
	CallCount     int     `json:"callCount"`
	ExpectedCount float64 `json:"expectedCount"`
	PValue        float64 `json:"pValue"`

	Calls []EnhancerCall `json:"calls"`
}

// CohortResult is the terminal artifact for one analysis run, consumed
// read-only by external reporting and visualization collaborators.
type CohortResult struct {
	Calls    []EnhancerCall `json:"calls"`
	Failures []FailureEntry `json:"failures"`
	Hotspots []Hotspot      `json:"hotspots"`
}
