package cohorts

import (
	"fmt"
	"net/http"
	"time"

	"denovo/api/contexts"
	"denovo/api/models/analysis"
	analysisState "denovo/api/models/constants/analysis-state"
	"denovo/api/models/dtos"
	"denovo/api/models/dtos/errors"
	"denovo/api/mvc"
	esRepo "denovo/api/repositories/elasticsearch"

	linq "github.com/ahmetb/go-linq"
	"github.com/labstack/echo"
)

const archiveQuerySize = 1000

// SubmitCohort accepts a batch of variant records, registers a cohort
// analysis request and returns its handle id right away; analysis
// proceeds in the background.
func SubmitCohort(c echo.Context) error {
	fmt.Printf("[%s] - SubmitCohort hit!\n", time.Now())
	gc := c.(*contexts.DenovoContext)

	var submitDto dtos.CohortSubmitRequestDto
	if bindErr := c.Bind(&submitDto); bindErr != nil {
		return c.JSON(http.StatusBadRequest, errors.CreateSimpleBadRequest("Unparseable cohort payload"))
	}

	if len(submitDto.Variants) == 0 {
		return c.JSON(http.StatusBadRequest, errors.CreateSimpleBadRequest("Empty cohort - provide at least one variant"))
	}

	for _, variant := range submitDto.Variants {
		if variant.Contig == "" || variant.Position <= 0 {
			return c.JSON(http.StatusBadRequest, errors.CreateSimpleBadRequest(
				fmt.Sprintf("Variant '%s' is missing a contig or a positive 1-based position", variant.Id)))
		}
	}

	request := gc.AnalysisService.SubmitCohort(submitDto.Variants)

	return c.JSON(http.StatusOK, &dtos.CohortSubmitResponseDto{
		Id:                request.Id,
		VariantsSubmitted: len(submitDto.Variants),
		DistinctVariants:  len(request.Variants),
		Message:           "Cohort analysis queued",
	})
}

// GetCohortRequests lists all cohort requests currently in memory,
// most recent first.
func GetCohortRequests(c echo.Context) error {
	fmt.Printf("[%s] - GetCohortRequests hit!\n", time.Now())
	gc := c.(*contexts.DenovoContext)

	requests := gc.AnalysisService.ListCohortRequests()

	sorted := []*analysis.CohortRequest{}
	linq.From(requests).OrderByDescendingT(func(request *analysis.CohortRequest) string {
		return request.CreatedAt
	}).ToSlice(&sorted)

	return c.JSON(http.StatusOK, sorted)
}

// GetCohortRequestById reports the per-variant state machine for a
// single cohort request (pollable progress view).
func GetCohortRequestById(c echo.Context) error {
	fmt.Printf("[%s] - GetCohortRequestById hit!\n", time.Now())
	gc := c.(*contexts.DenovoContext)

	request := gc.AnalysisService.GetCohortRequest(c.Param("id"))
	if request == nil {
		return c.JSON(http.StatusNotFound, errors.CreateSimpleNotFound("No such cohort request"))
	}

	variants := []analysis.VariantRequest{}
	linq.From(request.Variants).SelectT(func(kv linq.KeyValue) analysis.VariantRequest {
		return *(kv.Value.(*analysis.VariantRequest))
	}).OrderByT(func(vr analysis.VariantRequest) int {
		return vr.Variant.Position
	}).ToSlice(&variants)

	return c.JSON(http.StatusOK, &dtos.CohortStatusDto{
		Id:        request.Id,
		State:     request.State,
		Variants:  variants,
		CreatedAt: request.CreatedAt,
		UpdatedAt: request.UpdatedAt,
	})
}

// GetCohortResult returns the terminal CohortResult once every variant
// is Done or Failed; until then the result is absent. Cohorts already
// dropped from memory are served back from the persisted indexes.
func GetCohortResult(c echo.Context) error {
	fmt.Printf("[%s] - GetCohortResult hit!\n", time.Now())
	gc := c.(*contexts.DenovoContext)

	request := gc.AnalysisService.GetCohortRequest(c.Param("id"))
	if request == nil {
		// the request may have been sanitized out of memory after
		// completion; its persisted result is still readable
		return getArchivedCohortResult(gc, c.Param("id"))
	}

	// the result is only coherent once the cohort-level hotspot pass
	// has run, i.e. once the request itself is Done
	if request.State != analysisState.Done || request.Result == nil {
		return c.JSON(http.StatusAccepted, &dtos.CohortResultResponseDto{
			Id:     request.Id,
			Result: nil,
		})
	}

	return c.JSON(http.StatusOK, &dtos.CohortResultResponseDto{
		Id:     request.Id,
		Result: request.Result,
	})
}

// getArchivedCohortResult reassembles a cohort outcome from the
// persisted cohort, call and hotspot documents.
func getArchivedCohortResult(gc *contexts.DenovoContext, cohortId string) error {
	if gc.Es7Client == nil {
		return gc.JSON(http.StatusNotFound, errors.CreateSimpleNotFound("No such cohort request"))
	}

	cohortResult, cohortErr := esRepo.GetCohortDocumentById(gc.Config, gc.Es7Client, cohortId)
	if cohortErr != nil {
		return gc.JSON(http.StatusInternalServerError, errors.CreateSimpleInternalServerError(cohortErr.Error()))
	}

	cohortDocuments := mvc.GatherCohortDocuments(cohortResult)
	if len(cohortDocuments) == 0 {
		return gc.JSON(http.StatusNotFound, errors.CreateSimpleNotFound("No such cohort request"))
	}

	callsResult, callsErr := esRepo.GetCallDocumentsByCohortId(gc.Config, gc.Es7Client, cohortId, archiveQuerySize)
	if callsErr != nil {
		return gc.JSON(http.StatusInternalServerError, errors.CreateSimpleInternalServerError(callsErr.Error()))
	}

	hotspotsResult, hotspotsErr := esRepo.GetHotspotDocumentsByCohortId(gc.Config, gc.Es7Client, cohortId, archiveQuerySize)
	if hotspotsErr != nil {
		return gc.JSON(http.StatusInternalServerError, errors.CreateSimpleInternalServerError(hotspotsErr.Error()))
	}

	return gc.JSON(http.StatusOK, &dtos.CohortArchiveDto{
		Id:       cohortId,
		Summary:  cohortDocuments[0],
		Calls:    mvc.GatherCallDocuments(callsResult),
		Hotspots: mvc.GatherHotspotDocuments(hotspotsResult),
	})
}

// CancelCohort stops issuing new predictor calls for the cohort;
// in-flight calls drain on their own.
func CancelCohort(c echo.Context) error {
	fmt.Printf("[%s] - CancelCohort hit!\n", time.Now())
	gc := c.(*contexts.DenovoContext)

	if !gc.AnalysisService.CancelCohort(c.Param("id")) {
		return c.JSON(http.StatusNotFound, errors.CreateSimpleNotFound("No such cohort request"))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"id":      c.Param("id"),
		"message": "Cancellation signalled",
	})
}
