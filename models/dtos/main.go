package dtos

import (
	"time"

	"denovo/api/models"
	"denovo/api/models/analysis"
	"denovo/api/models/constants"
	"denovo/api/models/indexes"

	"github.com/google/uuid"
)

type CohortSubmitRequestDto struct {
	Variants []models.Variant `json:"variants"`
}

type CohortSubmitResponseDto struct {
	Id                uuid.UUID `json:"id"`
	VariantsSubmitted int       `json:"variantsSubmitted"`
	DistinctVariants  int       `json:"distinctVariants"`
	Message           string    `json:"message"`
}

type CohortStatusDto struct {
	Id        uuid.UUID                 `json:"id"`
	State     constants.AnalysisState   `json:"state"`
	Variants  []analysis.VariantRequest `json:"variants"`
	CreatedAt string                    `json:"createdAt"`
	UpdatedAt string                    `json:"updatedAt"`
}

type CohortResultResponseDto struct {
	Id     uuid.UUID            `json:"id"`
	Result *models.CohortResult `json:"result"`
}

type CallsResponseDto struct {
	Status  int                            `json:"status"`
	Message string                         `json:"message"`
	Count   int                            `json:"count"`
	Results []indexes.EnhancerCallDocument `json:"results"`
}

type HotspotsResponseDto struct {
	Status  int                       `json:"status"`
	Message string                    `json:"message"`
	Count   int                       `json:"count"`
	Results []indexes.HotspotDocument `json:"results"`
}

// CohortArchiveDto reconstructs a completed cohort's outcome from the
// persisted indexes once the in-memory request has been sanitized away.
type CohortArchiveDto struct {
	Id       string                         `json:"id"`
	Summary  indexes.CohortDocument         `json:"summary"`
	Calls    []indexes.EnhancerCallDocument `json:"calls"`
	Hotspots []indexes.HotspotDocument      `json:"hotspots"`
}

type CallsOverviewResponseDto struct {
	Confidences map[string]interface{} `json:"confidences"`
	Contigs     map[string]interface{} `json:"contigs"`
}

// -- general errors

type GeneralErrorResponseDto struct {
	Code      int            `json:"code"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Errors    []GeneralError `json:"errors"`
}

type GeneralError struct {
	Message string `json:"message"`
}
