package peaks

import (
	"denovo/api/models"
	"denovo/api/utils"
)

// Detector finds local maxima in evidence-window intensity runs using a
// minimum-prominence rule: a sample is a peak when it exceeds both of
// its neighbors by at least the prominence margin. The first and last
// sample of a window can never be peaks.
type Detector struct {
	// Prominence is the minimum margin, in signal units, by which a
	// sample must exceed both neighbors
	Prominence float64

	// MatchTolerance is the maximum distance, in base pairs, at which
	// an alternate peak is considered the same peak as a reference one
	MatchTolerance int
}

func NewDetector(prominence float64, matchTolerance int) *Detector {
	return &Detector{Prominence: prominence, MatchTolerance: matchTolerance}
}

// Summarize detects peaks in both allele contexts of a window and
// derives the gained/lost sets by tolerance matching.
func (d *Detector) Summarize(window *models.EvidenceWindow) models.PeakSummary {
	refPeaks := d.find(window, window.Ref)
	altPeaks := d.find(window, window.Alt)

	return models.PeakSummary{
		RefPeaks:    refPeaks,
		AltPeaks:    altPeaks,
		GainedPeaks: d.unmatched(altPeaks, refPeaks),
		LostPeaks:   d.unmatched(refPeaks, altPeaks),
	}
}

// find returns the genomic positions of prominent local maxima.
func (d *Detector) find(window *models.EvidenceWindow, values []float64) []int {
	found := []int{}

	for i := 1; i < len(values)-1; i++ {
		if values[i]-values[i-1] >= d.Prominence && values[i]-values[i+1] >= d.Prominence {
			found = append(found, window.PositionAt(i))
		}
	}

	return found
}

// unmatched returns positions in 'these' with no counterpart within
// MatchTolerance base pairs in 'those'.
func (d *Detector) unmatched(these []int, those []int) []int {
	leftover := []int{}

	for _, pos := range these {
		matched := false
		for _, other := range those {
			if utils.AbsInt(pos-other) <= d.MatchTolerance {
				matched = true
				break
			}
		}
		if !matched {
			leftover = append(leftover, pos)
		}
	}

	return leftover
}
