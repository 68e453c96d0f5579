package api

import (
	"bytes"
	"denovo/api/contexts"
	"denovo/api/models"
	serviceInfo "denovo/api/models/constants/service-info"
	"denovo/api/models/dtos"
	cohortsMvc "denovo/api/mvc/cohorts"
	serviceInfoMvc "denovo/api/mvc/service-info"
	"denovo/api/services"
	"encoding/json"
	"io"

	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo"
	"github.com/stretchr/testify/assert"
)

func TestGetServiceInfo(t *testing.T) {
	setUpEcho := func(method string, path string) (*contexts.DenovoContext, *httptest.ResponseRecorder) {
		e := echo.New()
		req := httptest.NewRequest(method, path, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		gc := &contexts.DenovoContext{
			Context:         c,
			Es7Client:       nil, // todo mockup
			Config:          &models.Config{},
			AnalysisService: nil,
		}
		return gc, rec
	}

	getJsonBody := func(rec *httptest.ResponseRecorder) map[string]interface{} {
		// - extract body bytes from response
		body, _ := io.ReadAll(rec.Body)
		// - unmarshal or decode the JSON to a declared empty interface.
		var bodyJson map[string]interface{}
		json.Unmarshal(body, &bodyJson)

		return bodyJson
	}

	t.Run("should return 200 status ok and service identity", func(t *testing.T) {
		//set up
		gc, rec := setUpEcho(http.MethodGet, "/service-info")

		// perform
		serviceInfoMvc.GetServiceInfo(gc)

		// verify response status
		assert.Equal(t, http.StatusOK, rec.Code)

		// verify body
		json := getJsonBody(rec)

		assert.Equal(t, json["id"].(string), string(serviceInfo.SERVICE_ID))
		assert.Equal(t, json["name"].(string), string(serviceInfo.SERVICE_NAME))
		assert.Equal(t, json["description"].(string), string(serviceInfo.SERVICE_DESCRIPTION))
	})
}

func TestSubmitCohortValidation(t *testing.T) {
	setUpEcho := func(payload interface{}) (*contexts.DenovoContext, *httptest.ResponseRecorder) {
		e := echo.New()

		body, _ := json.Marshal(payload)
		req := httptest.NewRequest(http.MethodPost, "/cohorts", bytes.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		gc := &contexts.DenovoContext{
			Context:         c,
			Es7Client:       nil,
			Config:          &models.Config{},
			AnalysisService: nil, // validation fails before the service is touched
		}
		return gc, rec
	}

	t.Run("should reject an empty cohort", func(t *testing.T) {
		gc, rec := setUpEcho(&dtos.CohortSubmitRequestDto{})

		cohortsMvc.SubmitCohort(gc)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("should reject a variant without a contig", func(t *testing.T) {
		gc, rec := setUpEcho(&dtos.CohortSubmitRequestDto{
			Variants: []models.Variant{
				{Id: "v1", Position: 1000, Ref: "A", Alt: "T"},
			},
		})

		cohortsMvc.SubmitCohort(gc)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("should reject a non-positive position", func(t *testing.T) {
		gc, rec := setUpEcho(&dtos.CohortSubmitRequestDto{
			Variants: []models.Variant{
				{Id: "v1", Contig: "chr1", Position: 0, Ref: "A", Alt: "T"},
			},
		})

		cohortsMvc.SubmitCohort(gc)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func emptyAnalysisService() *services.AnalysisService {
	cfg := &models.Config{}
	cfg.Predictor.WindowSize = 500
	cfg.Predictor.ConcurrencyLevel = 1
	return services.NewAnalysisService(nil, nil, cfg)
}

func TestGetCohortRequestByIdUnknownId(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/cohorts/:id")
	c.SetParamNames("id")
	c.SetParamValues("c65a5dd5-0fd1-4e38-864b-f52207c8a1f2")

	gc := &contexts.DenovoContext{
		Context:         c,
		Config:          &models.Config{},
		AnalysisService: emptyAnalysisService(),
	}

	cohortsMvc.GetCohortRequestById(gc)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
