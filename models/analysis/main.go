package analysis

import (
	"fmt"

	"denovo/api/models"
	"denovo/api/models/constants"
	analysisState "denovo/api/models/constants/analysis-state"

	"github.com/google/uuid"
)

type ErrorKind string

const (
	TrackMisalignment      ErrorKind = "TrackMisalignment"
	PredictorUnavailable   ErrorKind = "PredictorUnavailable"
	InvalidVariant         ErrorKind = "InvalidVariant"
	InsufficientChannels   ErrorKind = "InsufficientChannels"
	StatisticalTestFailure ErrorKind = "StatisticalTestFailure"
)

// Error is a variant-scoped analysis failure. Failures never cross the
// cohort boundary; the orchestrator records them and moves on.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func WrapError(kind ErrorKind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf classifies an arbitrary error; unrecognized errors are
// treated as transient predictor unavailability.
func KindOf(err error) ErrorKind {
	if analysisErr, ok := err.(*Error); ok {
		return analysisErr.Kind
	}
	return PredictorUnavailable
}

// VariantRequest tracks one distinct variant's progress through the
// analysis state machine:
// Pending -> Fetching -> Scoring -> Done, or Pending -> Fetching -> Failed
type VariantRequest struct {
	Variant   models.Variant          `json:"variant"`
	State     constants.AnalysisState `json:"state"`
	ErrorKind ErrorKind               `json:"errorKind,omitempty"`
	Message   string                  `json:"message,omitempty"`
	UpdatedAt string                  `json:"updatedAt"`
}

// CohortRequest is the handle for one submitted cohort.
type CohortRequest struct {
	Id        uuid.UUID                  `json:"id"`
	State     constants.AnalysisState    `json:"state"`
	Variants  map[string]*VariantRequest `json:"variants"` // keyed by variant.Key()
	CreatedAt string                     `json:"createdAt"`
	UpdatedAt string                     `json:"updatedAt"`

	Result *models.CohortResult `json:"result,omitempty"`
}

// Snapshot deep-copies the request so readers can inspect it without
// holding the orchestrator's lock. Callers must hold that lock for the
// duration of the copy.
func (cr *CohortRequest) Snapshot() *CohortRequest {
	copied := &CohortRequest{
		Id:        cr.Id,
		State:     cr.State,
		Variants:  make(map[string]*VariantRequest, len(cr.Variants)),
		CreatedAt: cr.CreatedAt,
		UpdatedAt: cr.UpdatedAt,
	}

	for key, vr := range cr.Variants {
		copiedVariant := *vr
		copied.Variants[key] = &copiedVariant
	}

	if cr.Result != nil {
		copiedResult := *cr.Result
		copied.Result = &copiedResult
	}

	return copied
}

func (cr *CohortRequest) CountByState(state constants.AnalysisState) int {
	count := 0
	for _, vr := range cr.Variants {
		if vr.State == state {
			count++
		}
	}
	return count
}

func (cr *CohortRequest) AllTerminal() bool {
	for _, vr := range cr.Variants {
		if !analysisState.IsTerminal(vr.State) {
			return false
		}
	}
	return true
}
