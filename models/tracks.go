package models

import (
	"denovo/api/models/constants"
)

// SignalTrack is an ordered run of per-base-pair predicted intensities
// for one assay channel, in one allele context (reference or alternate).
// Position of Values[i] is Start + i*Step.
type SignalTrack struct {
	Channel constants.AssayChannel `json:"channel"`
	Mark    constants.HistoneMark  `json:"mark,omitempty"` // set only for histone tracks
	Contig  string                 `json:"contig"`
	Start   int                    `json:"start"` // 1-based
	Step    int                    `json:"step"`  // sampling resolution in bp
	Values  []float64              `json:"values"`
}

func (t *SignalTrack) End() int {
	if len(t.Values) == 0 {
		return t.Start
	}
	return t.Start + (len(t.Values)-1)*t.Step
}

// PositionAt returns the genomic position for sample index i.
func (t *SignalTrack) PositionAt(i int) int {
	return t.Start + i*t.Step
}

// TrackPair holds the reference and alternate context predictions for
// one channel. Both tracks are expected to share the same coordinate
// window and sampling resolution; the extractor enforces this.
type TrackPair struct {
	Ref SignalTrack `json:"ref"`
	Alt SignalTrack `json:"alt"`
}

// Aligned reports whether the pair shares coordinate sampling.
func (p *TrackPair) Aligned() bool {
	return p.Ref.Contig == p.Alt.Contig &&
		p.Ref.Start == p.Alt.Start &&
		p.Ref.Step == p.Alt.Step &&
		len(p.Ref.Values) == len(p.Alt.Values)
}

// EvidenceWindow is the sub-region of a TrackPair restricted to a
// fixed-size neighborhood centered on the variant. It is the unit of
// statistical comparison and is read-only downstream of the extractor.
type EvidenceWindow struct {
	Channel constants.AssayChannel `json:"channel"`
	Mark    constants.HistoneMark  `json:"mark,omitempty"`
	Contig  string                 `json:"contig"`
	Start   int                    `json:"start"`
	Step    int                    `json:"step"`

	// Number of base pairs shaved off each side where the requested
	// window ran past the track boundary. Never silently padded.
	ClippedLeft  int `json:"clippedLeft"`
	ClippedRight int `json:"clippedRight"`

	Ref []float64 `json:"ref"`
	Alt []float64 `json:"alt"`
}

func (w *EvidenceWindow) PositionAt(i int) int {
	return w.Start + i*w.Step
}
