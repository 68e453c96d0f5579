package stattest

import (
	"math"
	"sort"

	"denovo/api/models"
	"denovo/api/models/analysis"
	"denovo/api/utils"

	"gonum.org/v1/gonum/stat/distuv"
)

// Epsilon guards the fold-change denominator against a degenerate
// zero-signal reference baseline.
const Epsilon = 1e-6

// Tester compares the reference and alternate intensity distributions
// of an evidence window. The significance test is the Mann-Whitney U
// (rank-based, distribution-free), chosen because predicted signal
// magnitudes are not assumed normal and window sample counts are small.
type Tester struct {
	FoldChangeThreshold float64 // channel pass requires foldChange >= this
	Alpha               float64 // and pValue < this (conjunctive)
}

func NewTester(foldChangeThreshold float64, alpha float64) *Tester {
	return &Tester{FoldChangeThreshold: foldChangeThreshold, Alpha: alpha}
}

// FoldChange returns mean(alt) / max(mean(ref), epsilon).
func (t *Tester) FoldChange(window *models.EvidenceWindow) float64 {
	refMean := utils.Mean(window.Ref)
	altMean := utils.Mean(window.Alt)

	return altMean / math.Max(refMean, Epsilon)
}

// Test computes the fold-change and two-sided Mann-Whitney p-value for
// a window and applies the conjunctive pass criterion. A degenerate
// window (all ties, no rank variance) yields a StatisticalTestFailure;
// callers treat the channel as non-passing rather than erroring.
func (t *Tester) Test(window *models.EvidenceWindow) (foldChange float64, pValue float64, passes bool, err error) {
	foldChange = t.FoldChange(window)

	pValue, err = MannWhitneyU(window.Alt, window.Ref)
	if err != nil {
		return foldChange, 1.0, false, err
	}

	passes = foldChange >= t.FoldChangeThreshold && pValue < t.Alpha
	return foldChange, pValue, passes, nil
}

// MannWhitneyU returns the two-sided p-value of the Mann-Whitney U test
// under the tie-corrected normal approximation (with continuity
// correction). Sample sizes here are fixed by the window width and
// large enough for the approximation to hold.
func MannWhitneyU(x []float64, y []float64) (float64, error) {
	n1 := float64(len(x))
	n2 := float64(len(y))

	if len(x) < 2 || len(y) < 2 {
		return 1, analysis.NewError(analysis.StatisticalTestFailure,
			"too few samples for a rank test (%d vs %d)", len(x), len(y))
	}

	type rankedValue struct {
		value float64
		fromX bool
	}

	combined := make([]rankedValue, 0, len(x)+len(y))
	for _, v := range x {
		combined = append(combined, rankedValue{value: v, fromX: true})
	}
	for _, v := range y {
		combined = append(combined, rankedValue{value: v})
	}

	sort.Slice(combined, func(i, j int) bool {
		return combined[i].value < combined[j].value
	})

	// assign average ranks across ties, accumulating the tie term
	// for the variance correction
	n := n1 + n2
	rankSumX := 0.0
	tieTerm := 0.0

	for i := 0; i < len(combined); {
		j := i
		for j < len(combined) && combined[j].value == combined[i].value {
			j++
		}

		// ranks are 1-based; ties share the average of their span
		averageRank := float64(i+j+1) / 2.0
		tieWidth := float64(j - i)
		if tieWidth > 1 {
			tieTerm += tieWidth*tieWidth*tieWidth - tieWidth
		}

		for k := i; k < j; k++ {
			if combined[k].fromX {
				rankSumX += averageRank
			}
		}

		i = j
	}

	u := rankSumX - n1*(n1+1)/2.0

	meanU := n1 * n2 / 2.0
	varianceU := n1 * n2 / 12.0 * ((n + 1) - tieTerm/(n*(n-1)))

	if varianceU <= 0 {
		// every sample tied with every other; there is no rank
		// information to test
		return 1, analysis.NewError(analysis.StatisticalTestFailure,
			"degenerate window: constant intensities across both alleles")
	}

	// continuity correction toward the mean
	numerator := u - meanU
	if numerator > 0 {
		numerator -= 0.5
	} else if numerator < 0 {
		numerator += 0.5
	}

	z := numerator / math.Sqrt(varianceU)

	standardNormal := distuv.Normal{Mu: 0, Sigma: 1}
	pValue := 2 * standardNormal.Survival(math.Abs(z))
	if pValue > 1 {
		pValue = 1
	}

	return pValue, nil
}
