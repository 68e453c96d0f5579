package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"denovo/api/models"
	"denovo/api/models/analysis"
	"denovo/api/models/constants"
	analysisState "denovo/api/models/constants/analysis-state"
	assayChannel "denovo/api/models/constants/assay-channel"
	"denovo/api/models/constants/confidence"
	histoneMark "denovo/api/models/constants/histone-mark"

	"github.com/stretchr/testify/assert"
)

// channelFactors drives the synthetic predictor: each channel's
// alternate track is the reference track scaled by the given factor.
type channelFactors struct {
	Accessibility float64
	Marks         map[string]float64
	Expression    float64
}

func uniformEffect(accessibility float64, h3k27ac float64, h3k4me1 float64) channelFactors {
	return channelFactors{
		Accessibility: accessibility,
		Marks: map[string]float64{
			string(histoneMark.H3K27ac):  h3k27ac,
			string(histoneMark.H3K4me1):  h3k4me1,
			string(histoneMark.H3K4me3):  1.0,
			string(histoneMark.H3K9ac):   1.0,
			string(histoneMark.H3K27me3): 1.0,
		},
		Expression: 1.0,
	}
}

// fakePredictor fabricates aligned track pairs around each variant and
// counts invocations per variant key.
type fakePredictor struct {
	mux         sync.Mutex
	invocations map[string]int

	effects       map[string]channelFactors // keyed by variant.Key()
	defaultEffect channelFactors

	failingKeys map[string]bool
	failureKind analysis.ErrorKind

	accessibilityOnly bool
}

func newFakePredictor() *fakePredictor {
	return &fakePredictor{
		invocations:   map[string]int{},
		effects:       map[string]channelFactors{},
		defaultEffect: uniformEffect(2.0, 2.5, 1.8),
		failingKeys:   map[string]bool{},
		failureKind:   analysis.PredictorUnavailable,
	}
}

func (p *fakePredictor) Invocations(key string) int {
	p.mux.Lock()
	defer p.mux.Unlock()
	return p.invocations[key]
}

func (p *fakePredictor) Predict(ctx context.Context, variant *models.Variant, windowSize int, tissueOntology string) ([]models.TrackPair, error) {
	p.mux.Lock()
	p.invocations[variant.Key()]++
	failing := p.failingKeys[variant.Key()]
	effect, known := p.effects[variant.Key()]
	p.mux.Unlock()

	if failing {
		return nil, analysis.NewError(p.failureKind, "synthetic failure for %s", variant.Key())
	}
	if !known {
		effect = p.defaultEffect
	}

	pairs := []models.TrackPair{
		makeScaledPair(variant, assayChannel.Accessibility, "", effect.Accessibility),
	}

	if p.accessibilityOnly {
		return pairs, nil
	}

	for _, mark := range histoneMark.ValidHistoneMarks() {
		pairs = append(pairs, makeScaledPair(variant, assayChannel.Histone, mark, effect.Marks[string(mark)]))
	}
	pairs = append(pairs, makeScaledPair(variant, assayChannel.Expression, "", effect.Expression))

	return pairs, nil
}

func makeScaledPair(variant *models.Variant, channel constants.AssayChannel, mark constants.HistoneMark, factor float64) models.TrackPair {
	start := variant.Position - 500
	length := 1001

	ref := make([]float64, length)
	alt := make([]float64, length)
	for i := 0; i < length; i++ {
		ref[i] = 1.0 + 0.001*float64(i%7)
		alt[i] = factor * ref[i]
	}

	return models.TrackPair{
		Ref: models.SignalTrack{Channel: channel, Mark: mark, Contig: variant.Contig, Start: start, Step: 1, Values: ref},
		Alt: models.SignalTrack{Channel: channel, Mark: mark, Contig: variant.Contig, Start: start, Step: 1, Values: alt},
	}
}

func testConfig() *models.Config {
	cfg := &models.Config{}
	cfg.Predictor.WindowSize = 500
	cfg.Predictor.CallTimeoutSeconds = 5
	cfg.Predictor.MaxRetries = 1
	cfg.Predictor.ConcurrencyLevel = 5
	cfg.Predictor.HotspotRadius = 10000
	return cfg
}

func submitAndWait(az *AnalysisService, variants []models.Variant) *analysis.CohortRequest {
	request := az.SubmitCohort(variants)
	az.Wait(request)
	return az.GetCohortRequest(request.Id.String())
}

func TestStrongEvidenceYieldsHighConfidenceCall(t *testing.T) {
	predictor := newFakePredictor()
	az := NewAnalysisService(predictor, nil, testConfig())

	variant := models.Variant{Id: "v1", Contig: "chr1", Position: 1_250_000, Ref: "C", Alt: "T"}
	predictor.effects[variant.Key()] = uniformEffect(2.0, 3.0, 1.8)

	request := submitAndWait(az, []models.Variant{variant})

	assert.Equal(t, analysisState.Done, request.State)
	assert.True(t, request.AllTerminal())
	assert.NotNil(t, request.Result)
	assert.Len(t, request.Result.Calls, 1)
	assert.Empty(t, request.Result.Failures)

	call := request.Result.Calls[0]
	assert.Equal(t, confidence.High, call.Confidence)
	assert.GreaterOrEqual(t, call.Score, 0.7)
	assert.Equal(t, 3, call.PassingChannels)
	assert.Contains(t, call.EvidenceTypes, assayChannel.Accessibility)
	assert.Contains(t, call.EvidenceTypes, assayChannel.Histone)
	assert.NotContains(t, call.EvidenceTypes, assayChannel.Expression)
	assert.NotEmpty(t, call.EvidenceSummary)
}

func TestIdenticalAllelesYieldZeroScore(t *testing.T) {
	predictor := newFakePredictor()
	predictor.defaultEffect = uniformEffect(1.0, 1.0, 1.0)
	az := NewAnalysisService(predictor, nil, testConfig())

	variant := models.Variant{Id: "v1", Contig: "chr1", Position: 1_250_000, Ref: "C", Alt: "C"}

	request := submitAndWait(az, []models.Variant{variant})

	assert.Len(t, request.Result.Calls, 1)
	call := request.Result.Calls[0]
	assert.Equal(t, 0.0, call.Score)
	assert.Equal(t, confidence.None, call.Confidence)
	assert.Equal(t, 0, call.PassingChannels)
	assert.Empty(t, request.Result.Hotspots)
}

func TestDuplicateVariantsShareOnePredictorInvocation(t *testing.T) {
	predictor := newFakePredictor()
	az := NewAnalysisService(predictor, nil, testConfig())

	shared := models.Variant{Contig: "chr1", Position: 2_000_000, Ref: "G", Alt: "A"}

	variants := []models.Variant{}
	for i := 0; i < 3; i++ {
		duplicate := shared
		duplicate.Id = fmt.Sprintf("sample-%d", i)
		variants = append(variants, duplicate)
	}
	for i := 0; i < 7; i++ {
		variants = append(variants, models.Variant{
			Id:     fmt.Sprintf("v%d", i),
			Contig: "chr2", Position: 1_000_000 + i*200_000, Ref: "C", Alt: "T",
		})
	}

	request := submitAndWait(az, variants)

	assert.Equal(t, 1, predictor.Invocations(shared.Key()))
	assert.Len(t, request.Variants, 8) // 10 submitted, 8 distinct
	assert.Len(t, request.Result.Calls, 10)

	// every duplicate record keeps its own identity but shares the
	// computed outcome
	shareholders := []models.EnhancerCall{}
	for _, call := range request.Result.Calls {
		if call.Variant.Key() == shared.Key() {
			shareholders = append(shareholders, call)
		}
	}
	assert.Len(t, shareholders, 3)
	for _, call := range shareholders {
		assert.Equal(t, shareholders[0].Score, call.Score)
		assert.Equal(t, shareholders[0].Confidence, call.Confidence)
	}
	assert.NotEqual(t, shareholders[0].Variant.Id, shareholders[1].Variant.Id)
}

func TestOneFailingVariantDoesNotAbortTheCohort(t *testing.T) {
	predictor := newFakePredictor()
	az := NewAnalysisService(predictor, nil, testConfig())

	variants := []models.Variant{}
	for i := 0; i < 10; i++ {
		variants = append(variants, models.Variant{
			Id:     fmt.Sprintf("v%d", i),
			Contig: "chr3", Position: 500_000 + i*150_000, Ref: "A", Alt: "G",
		})
	}
	predictor.failingKeys[variants[4].Key()] = true

	request := submitAndWait(az, variants)

	assert.Equal(t, analysisState.Done, request.State)
	assert.Equal(t, 9, request.CountByState(analysisState.Done))
	assert.Equal(t, 1, request.CountByState(analysisState.Failed))

	assert.Len(t, request.Result.Calls, 9)
	assert.Len(t, request.Result.Failures, 1)

	failure := request.Result.Failures[0]
	assert.Equal(t, variants[4].Id, failure.Variant.Id)
	assert.Equal(t, string(analysis.PredictorUnavailable), failure.ErrorKind)

	// the retry budget: one initial attempt plus one retry
	assert.Equal(t, 2, predictor.Invocations(variants[4].Key()))
}

func TestInvalidVariantFailsWithoutRetrying(t *testing.T) {
	predictor := newFakePredictor()
	predictor.failureKind = analysis.InvalidVariant
	az := NewAnalysisService(predictor, nil, testConfig())

	variant := models.Variant{Id: "bad", Contig: "chrUn_KI270757v1", Position: 10, Ref: "N", Alt: "A"}
	predictor.failingKeys[variant.Key()] = true

	request := submitAndWait(az, []models.Variant{variant})

	assert.Len(t, request.Result.Failures, 1)
	assert.Equal(t, string(analysis.InvalidVariant), request.Result.Failures[0].ErrorKind)
	assert.Equal(t, 1, predictor.Invocations(variant.Key()))
}

func TestSingleChannelYieldsNullCallNotFailure(t *testing.T) {
	predictor := newFakePredictor()
	predictor.accessibilityOnly = true
	az := NewAnalysisService(predictor, nil, testConfig())

	variant := models.Variant{Id: "v1", Contig: "chr1", Position: 1_250_000, Ref: "C", Alt: "T"}

	request := submitAndWait(az, []models.Variant{variant})

	assert.Empty(t, request.Result.Failures)
	assert.Len(t, request.Result.Calls, 1)

	call := request.Result.Calls[0]
	assert.Equal(t, 0.0, call.Score)
	assert.Equal(t, confidence.None, call.Confidence)
}

func TestClusteredCohortProducesOneHotspot(t *testing.T) {
	predictor := newFakePredictor()
	az := NewAnalysisService(predictor, nil, testConfig())

	variants := []models.Variant{}

	// 15 variants scattered ~66 kb apart
	for i := 0; i < 15; i++ {
		variants = append(variants, models.Variant{
			Id:     fmt.Sprintf("scatter-%d", i),
			Contig: "chr1", Position: 1_010_000 + i*66_000, Ref: "C", Alt: "T",
		})
	}

	// 5 variants packed into a 2 kb span
	for i := 0; i < 5; i++ {
		variants = append(variants, models.Variant{
			Id:     fmt.Sprintf("cluster-%d", i),
			Contig: "chr1", Position: 1_500_000 + i*500, Ref: "C", Alt: "T",
		})
	}

	request := submitAndWait(az, variants)

	assert.Len(t, request.Result.Calls, 20)
	assert.Len(t, request.Result.Hotspots, 1)

	hotspot := request.Result.Hotspots[0]
	assert.Equal(t, "chr1", hotspot.Contig)
	assert.Equal(t, 5, hotspot.CallCount)
	assert.Equal(t, 1_500_000, hotspot.Start)
	assert.Equal(t, 1_502_000, hotspot.End)
	assert.Less(t, hotspot.PValue, 0.05)
}

func TestCancelCohort(t *testing.T) {
	predictor := newFakePredictor()
	az := NewAnalysisService(predictor, nil, testConfig())

	request := az.SubmitCohort([]models.Variant{
		{Id: "v1", Contig: "chr1", Position: 1_250_000, Ref: "C", Alt: "T"},
	})

	assert.True(t, az.CancelCohort(request.Id.String()))
	assert.False(t, az.CancelCohort("no-such-cohort"))

	// cancellation still drains to a terminal cohort
	az.Wait(request)
	final := az.GetCohortRequest(request.Id.String())
	assert.Equal(t, analysisState.Done, final.State)
	assert.True(t, final.AllTerminal())
}

func timeHoursAgo(hours int) time.Time {
	return time.Now().Add(-time.Duration(hours) * time.Hour)
}

func TestDropTerminalRequestsKeepsLiveOnes(t *testing.T) {
	predictor := newFakePredictor()
	az := NewAnalysisService(predictor, nil, testConfig())

	request := submitAndWait(az, []models.Variant{
		{Id: "v1", Contig: "chr1", Position: 1_250_000, Ref: "C", Alt: "T"},
	})

	// a cutoff in the past keeps the freshly finished request around
	dropped := az.DropTerminalRequestsOlderThan(timeHoursAgo(1))
	assert.Equal(t, 0, dropped)
	assert.NotNil(t, az.GetCohortRequest(request.Id.String()))

	// a future cutoff sweeps it
	dropped = az.DropTerminalRequestsOlderThan(timeHoursAgo(-1))
	assert.Equal(t, 1, dropped)
	assert.Nil(t, az.GetCohortRequest(request.Id.String()))
}
