package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"denovo/api/contexts"
	gam "denovo/api/middleware"
	"denovo/api/models"
	"denovo/api/models/constants/confidence"
	cohortsMvc "denovo/api/mvc/cohorts"

	"github.com/labstack/echo"
	"github.com/stretchr/testify/assert"
)

func setUpCallsContext(target string) *contexts.DenovoContext {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return &contexts.DenovoContext{
		Context: c,
		Config:  &models.Config{},
	}
}

func TestUnknownConfidenceTierIsRejected(t *testing.T) {
	gc := setUpCallsContext("/calls/by/region?confidence=banana")

	handler := gam.ValidateOptionalConfidenceAttribute(func(c echo.Context) error {
		t.Fatal("handler should not run for an unknown confidence tier")
		return nil
	})

	err := handler(gc)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestKnownConfidenceTierIsCalibratedOntoContext(t *testing.T) {
	gc := setUpCallsContext("/calls/by/region?confidence=moderate")

	handlerRan := false
	handler := gam.ValidateOptionalConfidenceAttribute(func(c echo.Context) error {
		handlerRan = true
		return nil
	})

	assert.Nil(t, handler(gc))
	assert.True(t, handlerRan)
	assert.Equal(t, confidence.Moderate, gc.Confidence)
}

func TestAbsentConfidenceTierMeansNoFilter(t *testing.T) {
	gc := setUpCallsContext("/calls/by/region")

	handler := gam.ValidateOptionalConfidenceAttribute(func(c echo.Context) error {
		return nil
	})

	assert.Nil(t, handler(gc))
	assert.Empty(t, string(gc.Confidence))
}

func TestGetCohortResultUnknownIdWithoutElasticsearch(t *testing.T) {
	// no in-memory request and no cluster to fall back on
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/cohorts/:id/result")
	c.SetParamNames("id")
	c.SetParamValues("c65a5dd5-0fd1-4e38-864b-f52207c8a1f2")

	gc := &contexts.DenovoContext{
		Context:         c,
		Config:          &models.Config{},
		AnalysisService: emptyAnalysisService(),
	}

	cohortsMvc.GetCohortResult(gc)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
