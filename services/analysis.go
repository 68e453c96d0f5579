package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"denovo/api/models"
	"denovo/api/models/analysis"
	"denovo/api/models/constants"
	analysisState "denovo/api/models/constants/analysis-state"
	"denovo/api/models/indexes"
	"denovo/api/services/extraction"
	"denovo/api/services/hotspots"
	"denovo/api/services/peaks"
	"denovo/api/services/scoring"
	"denovo/api/services/stattest"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esutil"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type (
	// AnalysisService runs whole cohorts end-to-end: dedup, bounded
	// fan-out against the rate-limited predictor, per-variant scoring,
	// failure isolation, and the cohort-level hotspot pass once every
	// variant has reached a terminal state.
	AnalysisService struct {
		Initialized bool
		Config      *models.Config
		Predictor   RegulatoryPredictor

		Extractor       *extraction.Extractor
		PeakDetector    *peaks.Detector
		Tester          *stattest.Tester
		Scorer          *scoring.Scorer
		HotspotDetector *hotspots.Detector

		CohortRequestMap    map[string]*analysis.CohortRequest
		CohortRequestMapMux sync.RWMutex
		cohortCancels       map[string]context.CancelFunc
		cohortDone          map[string]chan struct{}

		ElasticsearchClient *elasticsearch.Client
		CallBulkIndexer     esutil.BulkIndexer
	}
)

func NewAnalysisService(predictor RegulatoryPredictor, es *elasticsearch.Client, cfg *models.Config) *AnalysisService {
	params := scoring.DefaultParameters()

	az := &AnalysisService{
		Config:    cfg,
		Predictor: predictor,

		Extractor:       extraction.NewExtractor(cfg.Predictor.WindowSize),
		PeakDetector:    peaks.NewDetector(0.1, 50),
		Tester:          stattest.NewTester(params.FoldChangeThreshold, params.Alpha),
		Scorer:          scoring.NewScorer(params),
		HotspotDetector: hotspots.NewDetector(cfg.Predictor.HotspotRadius, params.Alpha, cfg.Predictor.WindowSize),

		CohortRequestMap: map[string]*analysis.CohortRequest{},
		cohortCancels:    map[string]context.CancelFunc{},
		cohortDone:       map[string]chan struct{}{},

		ElasticsearchClient: es,
	}

	if es != nil {
		numWorkers := cfg.Predictor.BulkIndexingCap / 100
		if numWorkers < 1 {
			numWorkers = 1
		}

		bi, _ := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
			Index:      "enhancer-calls",
			Client:     es,
			NumWorkers: numWorkers,
		})
		az.CallBulkIndexer = bi
	}

	az.Initialized = true

	return az
}

// SubmitCohort registers a cohort, kicks off background processing and
// returns the request handle immediately. Submitted variants with an
// identical (contig, position, ref, alt) identity collapse onto one
// predictor invocation; all duplicates still receive a call (or
// failure entry) of their own in the final result.
func (az *AnalysisService) SubmitCohort(variants []models.Variant) *analysis.CohortRequest {
	now := time.Now().Format(time.RFC3339)

	request := &analysis.CohortRequest{
		Id:        uuid.New(),
		State:     analysisState.Pending,
		Variants:  map[string]*analysis.VariantRequest{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	for i := range variants {
		variant := variants[i]
		if _, present := request.Variants[variant.Key()]; present {
			continue
		}
		request.Variants[variant.Key()] = &analysis.VariantRequest{
			Variant:   variant,
			State:     analysisState.Pending,
			UpdatedAt: now,
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	az.CohortRequestMapMux.Lock()
	az.CohortRequestMap[request.Id.String()] = request
	az.cohortCancels[request.Id.String()] = cancel
	az.cohortDone[request.Id.String()] = done
	az.CohortRequestMapMux.Unlock()

	go func() {
		defer close(done)
		defer cancel()
		az.processCohort(ctx, request, variants)
	}()

	return request
}

// CancelCohort stops issuing new predictor calls for a cohort;
// in-flight calls finish or time out on their own.
func (az *AnalysisService) CancelCohort(id string) bool {
	az.CohortRequestMapMux.RLock()
	cancel, present := az.cohortCancels[id]
	az.CohortRequestMapMux.RUnlock()

	if present {
		cancel()
	}
	return present
}

// Wait blocks until every variant of the cohort has reached a terminal
// state and the result is assembled.
func (az *AnalysisService) Wait(request *analysis.CohortRequest) {
	az.CohortRequestMapMux.RLock()
	done := az.cohortDone[request.Id.String()]
	az.CohortRequestMapMux.RUnlock()

	if done != nil {
		<-done
	}
}

// GetCohortRequest returns a point-in-time copy of a request; callers
// never see the live, concurrently-updated structure.
func (az *AnalysisService) GetCohortRequest(id string) *analysis.CohortRequest {
	az.CohortRequestMapMux.RLock()
	defer az.CohortRequestMapMux.RUnlock()

	request := az.CohortRequestMap[id]
	if request == nil {
		return nil
	}
	return request.Snapshot()
}

func (az *AnalysisService) ListCohortRequests() []*analysis.CohortRequest {
	az.CohortRequestMapMux.RLock()
	defer az.CohortRequestMapMux.RUnlock()

	requests := make([]*analysis.CohortRequest, 0, len(az.CohortRequestMap))
	for _, request := range az.CohortRequestMap {
		requests = append(requests, request.Snapshot())
	}
	return requests
}

func (az *AnalysisService) ListCohortRequestIds() []string {
	az.CohortRequestMapMux.RLock()
	defer az.CohortRequestMapMux.RUnlock()

	ids := make([]string, 0, len(az.CohortRequestMap))
	for id := range az.CohortRequestMap {
		ids = append(ids, id)
	}
	return ids
}

// DropTerminalRequestsOlderThan removes completed cohort requests from
// the in-memory map; used by the sanitation schedule.
func (az *AnalysisService) DropTerminalRequestsOlderThan(cutoff time.Time) int {
	az.CohortRequestMapMux.Lock()
	defer az.CohortRequestMapMux.Unlock()

	dropped := 0
	for id, request := range az.CohortRequestMap {
		if !analysisState.IsTerminal(request.State) {
			continue
		}
		updatedAt, parseErr := time.Parse(time.RFC3339, request.UpdatedAt)
		if parseErr != nil || updatedAt.After(cutoff) {
			continue
		}

		delete(az.CohortRequestMap, id)
		delete(az.cohortCancels, id)
		delete(az.cohortDone, id)
		dropped++
	}

	return dropped
}

func (az *AnalysisService) processCohort(ctx context.Context, request *analysis.CohortRequest, submitted []models.Variant) {
	fmt.Printf("[%s] - Processing cohort %s : %d submitted, %d distinct variants\n",
		time.Now(), request.Id, len(submitted), len(request.Variants))

	az.updateCohortState(request, analysisState.Fetching)

	// one bounded worker per distinct variant; failures are recorded
	// on the variant request, never returned, so one bad variant can
	// not abort the batch
	g := new(errgroup.Group)
	g.SetLimit(az.Config.Predictor.ConcurrencyLevel)

	for key := range request.Variants {
		variantRequest := request.Variants[key]

		g.Go(func() error {
			az.processVariant(ctx, request, variantRequest)
			return nil
		})
	}

	// barrier: hotspot detection must not start before every variant
	// is terminal
	g.Wait()

	result := az.assembleResult(request, submitted)

	az.CohortRequestMapMux.Lock()
	request.Result = result
	request.State = analysisState.Done
	request.UpdatedAt = time.Now().Format(time.RFC3339)
	az.CohortRequestMapMux.Unlock()

	az.indexCohortResult(request, result, len(submitted))

	fmt.Printf("[%s] - Cohort %s complete : %d calls, %d failures, %d hotspots\n",
		time.Now(), request.Id, len(result.Calls), len(result.Failures), len(result.Hotspots))
}

func (az *AnalysisService) processVariant(ctx context.Context, request *analysis.CohortRequest, variantRequest *analysis.VariantRequest) {
	variant := &variantRequest.Variant

	if ctx.Err() != nil {
		// cohort was cancelled before this variant ever got a worker
		az.failVariant(variantRequest, analysis.PredictorUnavailable, "cohort cancelled before fetch")
		return
	}

	az.updateVariantState(variantRequest, analysisState.Fetching)

	pairs, fetchErr := PredictWithRetry(ctx, az.Predictor, variant, az.Config, az.Config.Predictor.TissueOntology)
	if fetchErr != nil {
		az.failVariant(variantRequest, analysis.KindOf(fetchErr), fetchErr.Error())
		return
	}

	az.updateVariantState(variantRequest, analysisState.Scoring)

	call, scoreErr := az.ScoreVariant(variant, pairs)
	if scoreErr != nil {
		az.failVariant(variantRequest, analysis.KindOf(scoreErr), scoreErr.Error())
		return
	}

	// stash the call on the request; single write per key, guarded by
	// the same mutex as the state transitions
	az.CohortRequestMapMux.Lock()
	variantRequest.State = analysisState.Done
	variantRequest.UpdatedAt = time.Now().Format(time.RFC3339)
	if request.Result == nil {
		request.Result = &models.CohortResult{}
	}
	request.Result.Calls = append(request.Result.Calls, *call)
	az.CohortRequestMapMux.Unlock()
}

// ScoreVariant runs the synchronous, local analysis chain for one
// variant: extraction, peak detection, statistical testing, evidence
// fusion, confidence classification.
func (az *AnalysisService) ScoreVariant(variant *models.Variant, pairs []models.TrackPair) (*models.EnhancerCall, error) {
	windows, extractErr := az.Extractor.Extract(variant, pairs)
	if extractErr != nil {
		return nil, extractErr
	}

	channels := make([]models.ChannelResult, 0, len(windows))
	for i := range windows {
		window := &windows[i]

		channelResult := models.ChannelResult{
			Channel: window.Channel,
			Mark:    window.Mark,
			Peaks:   az.PeakDetector.Summarize(window),
		}

		foldChange, pValue, passes, testErr := az.Tester.Test(window)
		channelResult.FoldChange = foldChange
		channelResult.PValue = pValue
		channelResult.Passes = passes
		if testErr != nil {
			// degenerate test: channel treated as non-passing, not fatal
			channelResult.TestFailure = testErr.Error()
		}

		channels = append(channels, channelResult)
	}

	evidenceTypes := scoring.PassingEvidenceTypes(channels)

	call := &models.EnhancerCall{
		Variant:         *variant,
		Contig:          variant.Contig,
		Position:        variant.Position,
		Channels:        channels,
		PassingChannels: scoring.CountPassingChannels(channels),
		EvidenceTypes:   evidenceTypes,
		EvidenceSummary: scoring.SummarizeEvidence(channels),
	}

	score, scoreErr := az.Scorer.Score(channels)
	if scoreErr != nil {
		if analysis.KindOf(scoreErr) == analysis.InsufficientChannels {
			// cannot score on a single noisy channel; emit a null call
			// rather than failing the variant
			call.Score = 0
			call.Confidence = az.Scorer.Classify(0, 0)
			return call, nil
		}
		return nil, scoreErr
	}

	call.Score = score
	call.Confidence = az.Scorer.Classify(score, len(evidenceTypes))

	return call, nil
}

// assembleResult fans the per-distinct-variant outcomes back out over
// the originally submitted cohort (duplicates included) and runs the
// hotspot pass over the distinct Done calls.
func (az *AnalysisService) assembleResult(request *analysis.CohortRequest, submitted []models.Variant) *models.CohortResult {
	az.CohortRequestMapMux.RLock()

	callsByKey := map[string]models.EnhancerCall{}
	if request.Result != nil {
		for _, call := range request.Result.Calls {
			callsByKey[call.Variant.Key()] = call
		}
	}

	failuresByKey := map[string]*analysis.VariantRequest{}
	for key, variantRequest := range request.Variants {
		if variantRequest.State == analysisState.Failed {
			failuresByKey[key] = variantRequest
		}
	}

	az.CohortRequestMapMux.RUnlock()

	result := &models.CohortResult{
		Calls:    []models.EnhancerCall{},
		Failures: []models.FailureEntry{},
	}

	for i := range submitted {
		variant := submitted[i]

		if failed, present := failuresByKey[variant.Key()]; present {
			result.Failures = append(result.Failures, models.FailureEntry{
				Variant:   variant,
				ErrorKind: string(failed.ErrorKind),
				Message:   failed.Message,
			})
			continue
		}

		if call, present := callsByKey[variant.Key()]; present {
			// duplicates share the computed call; only the record
			// identity differs
			call.Variant = variant
			result.Calls = append(result.Calls, call)
		}
	}

	// hotspots are computed over distinct variants so that cohort
	// duplicates cannot manufacture spatial clustering on their own
	distinctCalls := make([]models.EnhancerCall, 0, len(callsByKey))
	for _, call := range callsByKey {
		distinctCalls = append(distinctCalls, call)
	}
	result.Hotspots = az.HotspotDetector.Detect(distinctCalls)

	return result
}

func (az *AnalysisService) updateCohortState(request *analysis.CohortRequest, state constants.AnalysisState) {
	az.CohortRequestMapMux.Lock()
	request.State = state
	request.UpdatedAt = time.Now().Format(time.RFC3339)
	az.CohortRequestMapMux.Unlock()
}

func (az *AnalysisService) updateVariantState(variantRequest *analysis.VariantRequest, state constants.AnalysisState) {
	az.CohortRequestMapMux.Lock()
	variantRequest.State = state
	variantRequest.UpdatedAt = time.Now().Format(time.RFC3339)
	az.CohortRequestMapMux.Unlock()
}

func (az *AnalysisService) failVariant(variantRequest *analysis.VariantRequest, kind analysis.ErrorKind, message string) {
	az.CohortRequestMapMux.Lock()
	variantRequest.State = analysisState.Failed
	variantRequest.ErrorKind = kind
	variantRequest.Message = message
	variantRequest.UpdatedAt = time.Now().Format(time.RFC3339)
	az.CohortRequestMapMux.Unlock()

	fmt.Printf("[%s] - Variant %s failed : %s\n", time.Now(), variantRequest.Variant.Key(), message)
}

// indexCohortResult persists the completed calls, hotspots and cohort
// summary for later region queries; skipped entirely when the service
// runs without an Elasticsearch connection.
func (az *AnalysisService) indexCohortResult(request *analysis.CohortRequest, result *models.CohortResult, submittedCount int) {
	if az.ElasticsearchClient == nil || az.CallBulkIndexer == nil {
		return
	}

	now := time.Now().Format(time.RFC3339)

	for i := range result.Calls {
		call := &result.Calls[i]

		document := indexes.EnhancerCallDocument{
			Id:              uuid.New().String(),
			CohortId:        request.Id.String(),
			VariantId:       call.Variant.Id,
			Contig:          call.Contig,
			Position:        call.Position,
			Ref:             call.Variant.Ref,
			Alt:             call.Variant.Alt,
			Score:           call.Score,
			Confidence:      call.Confidence,
			PassingChannels: call.PassingChannels,
			EvidenceSummary: call.EvidenceSummary,
			CreatedAt:       now,
		}

		documentData, marshallErr := json.Marshal(document)
		if marshallErr != nil {
			fmt.Printf("Cannot encode call document for %s : %s\n", call.Variant.Key(), marshallErr)
			continue
		}

		az.CallBulkIndexer.Add(
			context.Background(),
			esutil.BulkIndexerItem{
				Action: "index",
				Index:  "enhancer-calls",
				Body:   bytes.NewReader(documentData),
			})
	}

	for i := range result.Hotspots {
		hotspot := &result.Hotspots[i]

		document := indexes.HotspotDocument{
			Id:            uuid.New().String(),
			CohortId:      request.Id.String(),
			Contig:        hotspot.Contig,
			Start:         hotspot.Start,
			End:           hotspot.End,
			CallCount:     hotspot.CallCount,
			ExpectedCount: hotspot.ExpectedCount,
			PValue:        hotspot.PValue,
			CreatedAt:     now,
		}

		documentData, _ := json.Marshal(document)
		az.CallBulkIndexer.Add(
			context.Background(),
			esutil.BulkIndexerItem{
				Action: "index",
				Index:  "hotspots",
				Body:   bytes.NewReader(documentData),
			})
	}

	cohortDocument := indexes.CohortDocument{
		Id:                request.Id.String(),
		VariantsSubmitted: submittedCount,
		DistinctVariants:  len(request.Variants),
		Calls:             len(result.Calls),
		Failures:          len(result.Failures),
		Hotspots:          len(result.Hotspots),
		CreatedAt:         now,
	}

	cohortData, _ := json.Marshal(cohortDocument)
	az.ElasticsearchClient.Index("cohorts", bytes.NewReader(cohortData),
		az.ElasticsearchClient.Index.WithDocumentID(request.Id.String()))
}
