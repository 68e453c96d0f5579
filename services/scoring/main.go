package scoring

import (
	"fmt"
	"math"
	"strings"

	"denovo/api/models"
	"denovo/api/models/analysis"
	"denovo/api/models/constants"
	assayChannel "denovo/api/models/constants/assay-channel"
	"denovo/api/models/constants/confidence"
	histoneMark "denovo/api/models/constants/histone-mark"
	"denovo/api/utils"
)

// Parameters is the full, immutable scoring configuration. It is passed
// explicitly to every component that needs it rather than held as
// shared global state, so test runs are reproducible and parameterized.
type Parameters struct {
	// top-level evidence-fusion weights; must sum to 1.0
	AccessibilityWeight float64
	SignificanceWeight  float64
	HistoneWeight       float64
	ExpressionWeight    float64

	// signed per-mark weights inside the histone group; absolute
	// values sum to 1.0. Negative weights encode biological polarity:
	// gain of a promoter mark (H3K4me3) or a repressive mark
	// (H3K27me3) argues against a new enhancer call.
	MarkWeights map[constants.HistoneMark]float64

	// fold-change at or beyond which a channel signal saturates to 1.0
	FoldChangeSaturation float64

	// -log10(p) cap used to rescale p-values into [0,1]
	LogPValueCap float64

	// conjunctive channel pass criterion
	FoldChangeThreshold float64
	Alpha               float64

	// confidence tier score floors
	HighScore     float64
	ModerateScore float64
	LowScore      float64

	// minimum number of independently measured channels required to
	// produce a score at all
	MinChannels int
}

func DefaultParameters() Parameters {
	return Parameters{
		AccessibilityWeight: 0.4,
		SignificanceWeight:  0.2,
		HistoneWeight:       0.3,
		ExpressionWeight:    0.1,

		MarkWeights: map[constants.HistoneMark]float64{
			histoneMark.H3K27ac:  0.35,
			histoneMark.H3K4me1:  0.25,
			histoneMark.H3K4me3:  -0.20,
			histoneMark.H3K9ac:   0.15,
			histoneMark.H3K27me3: -0.15,
		},

		FoldChangeSaturation: 2.0,
		LogPValueCap:         4.0,

		FoldChangeThreshold: 1.5,
		Alpha:               0.05,

		HighScore:     0.7,
		ModerateScore: 0.5,
		LowScore:      0.4,

		MinChannels: 2,
	}
}

// Scorer fuses per-channel evidence into one composite enhancer score:
//
//	score = 0.4*accessibility + 0.2*significance + 0.3*histone + 0.1*expression
//
// with every term normalized to [0,1] and the result clamped to [0,1].
type Scorer struct {
	Params Parameters
}

func NewScorer(params Parameters) *Scorer {
	return &Scorer{Params: params}
}

// FoldChangeSignal rescales a fold-change onto [0,1]; a fold-change of
// 1.0 (no change) maps to 0 and saturation or beyond maps to 1.
func (s *Scorer) FoldChangeSignal(foldChange float64) float64 {
	return utils.Clamp01((foldChange - 1.0) / (s.Params.FoldChangeSaturation - 1.0))
}

// SignificanceSignal maps a p-value monotonically onto [0,1] via
// -log10(p) capped at LogPValueCap.
func (s *Scorer) SignificanceSignal(pValue float64) float64 {
	if pValue <= 0 {
		return 1
	}
	return utils.Clamp01(-math.Log10(pValue) / s.Params.LogPValueCap)
}

// HistoneSignal combines the per-mark fold-change signals using the
// signed mark weights and clamps the result to [0,1].
func (s *Scorer) HistoneSignal(channels []models.ChannelResult) float64 {
	signal := 0.0
	for _, ch := range channels {
		if ch.Channel != assayChannel.Histone {
			continue
		}
		weight, ok := s.Params.MarkWeights[ch.Mark]
		if !ok {
			continue
		}
		signal += weight * s.FoldChangeSignal(ch.FoldChange)
	}
	return utils.Clamp01(signal)
}

// Score computes the composite enhancer score from the full channel
// result set. Fails with InsufficientChannels when fewer than two
// independent channel measurements are available; a single noisy
// channel cannot support a call.
func (s *Scorer) Score(channels []models.ChannelResult) (float64, error) {
	if countMeasuredTypes(channels) < s.Params.MinChannels {
		return 0, analysis.NewError(analysis.InsufficientChannels,
			"only %d of %d required channel measurements available",
			countMeasuredTypes(channels), s.Params.MinChannels)
	}

	accessibilitySignal := 0.0
	expressionSignal := 0.0
	bestPValue := 1.0

	for _, ch := range channels {
		switch ch.Channel {
		case assayChannel.Accessibility:
			accessibilitySignal = s.FoldChangeSignal(ch.FoldChange)
		case assayChannel.Expression:
			expressionSignal = s.FoldChangeSignal(ch.FoldChange)
		}

		// a channel whose test degenerated carries no significance
		if ch.TestFailure == "" && ch.PValue < bestPValue {
			bestPValue = ch.PValue
		}
	}

	score := s.Params.AccessibilityWeight*accessibilitySignal +
		s.Params.SignificanceWeight*s.SignificanceSignal(bestPValue) +
		s.Params.HistoneWeight*s.HistoneSignal(channels) +
		s.Params.ExpressionWeight*expressionSignal

	return utils.Clamp01(score), nil
}

// Classify maps a composite score plus the passing evidence-type count
// onto a discrete confidence tier. Rules are evaluated in order, first
// match wins. Passing the statistical test alone never counts as an
// evidence type; it gates the other three.
func (s *Scorer) Classify(score float64, evidenceTypes int) constants.ConfidenceLevel {
	switch {
	case score >= s.Params.HighScore && evidenceTypes >= 2:
		return confidence.High
	case score >= s.Params.ModerateScore && evidenceTypes >= 2:
		return confidence.Moderate
	case score >= s.Params.LowScore && evidenceTypes >= 1:
		return confidence.Low
	default:
		return confidence.None
	}
}

// PassingEvidenceTypes returns the distinct assay channels
// (accessibility, histone, expression) among passing channel results.
func PassingEvidenceTypes(channels []models.ChannelResult) []constants.AssayChannel {
	seen := map[constants.AssayChannel]bool{}
	types := []constants.AssayChannel{}

	for _, ch := range channels {
		if ch.Passes && !seen[ch.Channel] {
			seen[ch.Channel] = true
			types = append(types, ch.Channel)
		}
	}

	return types
}

func CountPassingChannels(channels []models.ChannelResult) int {
	count := 0
	for _, ch := range channels {
		if ch.Passes {
			count++
		}
	}
	return count
}

// SummarizeEvidence renders the passing channels as a compact summary
// string carried on the call for downstream consumers.
func SummarizeEvidence(channels []models.ChannelResult) string {
	parts := []string{}

	for _, ch := range channels {
		if !ch.Passes {
			continue
		}

		label := string(ch.Channel)
		if ch.Mark != "" {
			label = string(ch.Mark)
		}

		parts = append(parts, fmt.Sprintf("%s fold-change %.2f (p=%.3g)", label, ch.FoldChange, ch.PValue))
	}

	if len(parts) == 0 {
		return "no channel passed its threshold"
	}

	return strings.Join(parts, "; ")
}

func countMeasuredTypes(channels []models.ChannelResult) int {
	seen := map[constants.AssayChannel]bool{}
	for _, ch := range channels {
		seen[ch.Channel] = true
	}
	return len(seen)
}
