package hotspots

import (
	"math"
	"sort"

	"denovo/api/models"

	"gonum.org/v1/gonum/stat/distuv"
)

// Detector clusters cohort-wide enhancer-call positions with a
// fixed-radius single linkage and tests each cluster's density against
// a uniform-random placement null over the scanned genomic span.
type Detector struct {
	// Radius is the linkage distance in base pairs: any two calls
	// within Radius of each other share a cluster, transitively
	Radius int

	// Alpha is the reporting threshold on the binomial p-value
	Alpha float64

	// WindowSize widens the scanned span beyond the outermost calls;
	// the union of all per-variant analysis windows is the region the
	// null distributes calls over
	WindowSize int
}

func NewDetector(radius int, alpha float64, windowSize int) *Detector {
	return &Detector{Radius: radius, Alpha: alpha, WindowSize: windowSize}
}

// Detect clusters the given calls per contig and returns the clusters
// that are significant under the binomial null, ranked by ascending
// p-value with ties broken by descending call count.
func (d *Detector) Detect(calls []models.EnhancerCall) []models.Hotspot {
	found := []models.Hotspot{}

	for contig, contigCalls := range groupByContig(calls) {
		found = append(found, d.detectOnContig(contig, contigCalls)...)
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].PValue != found[j].PValue {
			return found[i].PValue < found[j].PValue
		}
		return found[i].CallCount > found[j].CallCount
	})

	return found
}

func (d *Detector) detectOnContig(contig string, calls []models.EnhancerCall) []models.Hotspot {
	if len(calls) < 2 {
		return nil
	}

	sort.SliceStable(calls, func(i, j int) bool {
		return calls[i].Position < calls[j].Position
	})

	// scanned span: union of the per-call analysis windows, i.e. the
	// outermost call positions widened by one window width
	scannedSpan := float64(calls[len(calls)-1].Position - calls[0].Position + d.WindowSize)
	totalCalls := len(calls)

	found := []models.Hotspot{}

	// single-linkage over sorted positions: a gap greater than the
	// radius breaks the chain, anything else extends it transitively
	clusterStart := 0
	for i := 1; i <= len(calls); i++ {
		if i < len(calls) && calls[i].Position-calls[i-1].Position <= d.Radius {
			continue
		}

		cluster := calls[clusterStart:i]
		clusterStart = i

		if len(cluster) < 2 {
			continue
		}

		hotspot := d.testCluster(contig, cluster, totalCalls, scannedSpan)
		if hotspot != nil {
			found = append(found, *hotspot)
		}
	}

	return found
}

// testCluster runs the per-cluster binomial test: observed count vs.
// expected = totalCalls * (clusterSpan / scannedSpan), assuming
// independent uniform placement.
func (d *Detector) testCluster(contig string, cluster []models.EnhancerCall, totalCalls int, scannedSpan float64) *models.Hotspot {
	start := cluster[0].Position
	end := cluster[len(cluster)-1].Position

	// a zero-width cluster (all calls at one position) still occupies
	// one linkage radius of the scanned span under the null
	span := math.Max(float64(end-start), float64(d.Radius))
	probability := math.Min(span/scannedSpan, 1.0)

	observed := len(cluster)
	expected := float64(totalCalls) * probability

	binomial := distuv.Binomial{N: float64(totalCalls), P: probability}

	// P(X >= observed) under the null
	pValue := 1.0
	if observed > 0 {
		pValue = 1.0 - binomial.CDF(float64(observed-1))
	}
	if pValue < 0 {
		pValue = 0
	}

	if pValue >= d.Alpha {
		return nil
	}

	members := make([]models.EnhancerCall, len(cluster))
	copy(members, cluster)

	return &models.Hotspot{
		Contig:        contig,
		Start:         start,
		End:           end,
		CallCount:     observed,
		ExpectedCount: expected,
		PValue:        pValue,
		Calls:         members,
	}
}

func groupByContig(calls []models.EnhancerCall) map[string][]models.EnhancerCall {
	grouped := map[string][]models.EnhancerCall{}
	for _, call := range calls {
		grouped[call.Contig] = append(grouped[call.Contig], call)
	}
	return grouped
}
