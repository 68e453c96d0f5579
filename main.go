package main

import (
	"denovo/api/contexts"
	gam "denovo/api/middleware"
	"denovo/api/models"
	serviceInfo "denovo/api/models/constants/service-info"
	"denovo/api/mvc/calls"
	"denovo/api/mvc/cohorts"
	"denovo/api/mvc/hotspots"
	serviceInfoMvc "denovo/api/mvc/service-info"
	"denovo/api/services"
	"denovo/api/services/sanitation"
	"denovo/api/utils"
	"denovo/api/workflows"

	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
)

func main() {
	// Gather environment variables
	var cfg models.Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	fmt.Printf("Using : \n"+

		"\tDebug : %t \n\n"+

		"\tPredictor Url : %s \n"+
		"\tPredictor Tissue Ontology : %s \n"+
		"\tPredictor Window Size : %d\n"+
		"\tPredictor Call Timeout (s) : %d\n"+
		"\tPredictor Max Retries : %d\n"+
		"\tPredictor Concurrency Level : %d\n"+
		"\tHotspot Radius (bp) : %d\n\n"+

		"\tElasticsearch Url : %s \n"+
		"\tElasticsearch Username : %s\n\n"+

		"Running on Port : %s\n",

		cfg.Debug,
		cfg.Predictor.Url,
		cfg.Predictor.TissueOntology,
		cfg.Predictor.WindowSize,
		cfg.Predictor.CallTimeoutSeconds,
		cfg.Predictor.MaxRetries,
		cfg.Predictor.ConcurrencyLevel,
		cfg.Predictor.HotspotRadius,
		cfg.Elasticsearch.Url, cfg.Elasticsearch.Username,
		cfg.Api.Port)
	// --

	// Instantiate Server
	e := echo.New()

	// Service Connections:
	// -- Elasticsearch
	es := utils.CreateEsConnection(&cfg)

	// Service Singletons
	predictor := services.NewHttpRegulatoryPredictor(&cfg)
	az := services.NewAnalysisService(predictor, es, &cfg)
	sanitation.NewSanitationService(es, az, &cfg)

	// Configure Server
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.PUT, echo.POST, echo.DELETE},
	}))

	// -- Override handlers with "custom Denovo" context
	//		to be able to provide variables and global singletons
	e.Use(func(h echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &contexts.DenovoContext{
				Context:         c,
				Es7Client:       es,
				Config:          &cfg,
				AnalysisService: az,
			}
			return h(cc)
		}
	})

	// Begin MVC Routes
	// -- Root
	e.GET("/", func(c echo.Context) error {
		fmt.Printf("[%s] - Root hit!\n", time.Now())
		return c.JSON(http.StatusOK, serviceInfo.SERVICE_WELCOME)
	})

	// -- Service Info
	e.GET("/service-info", serviceInfoMvc.GetServiceInfo)

	// -- Workflows
	e.GET("/workflows", func(c echo.Context) error {
		fmt.Printf("[%s] - Workflows hit!\n", time.Now())
		return c.JSON(http.StatusOK, workflows.WORKFLOW_COHORT_SCHEMA)
	})

	// -- Cohorts
	e.POST("/cohorts", cohorts.SubmitCohort)
	e.GET("/cohorts/requests", cohorts.GetCohortRequests)
	e.GET("/cohorts/:id", cohorts.GetCohortRequestById,
		gam.MandateCohortIdAttribute)
	e.GET("/cohorts/:id/result", cohorts.GetCohortResult,
		gam.MandateCohortIdAttribute)
	e.DELETE("/cohorts/:id", cohorts.CancelCohort,
		gam.MandateCohortIdAttribute)

	// -- Calls
	e.GET("/calls/overview", calls.GetCallsOverview)
	e.GET("/calls/by/region", calls.GetCallsByRegion,
		gam.MandateContigAttribute,
		gam.MandateCalibratedBounds,
		gam.ValidateOptionalConfidenceAttribute)
	e.GET("/calls/by/cohort/:id", calls.GetCallsByCohortId,
		gam.MandateCohortIdAttribute)

	// -- Hotspots
	e.GET("/hotspots/by/cohort/:id", hotspots.GetHotspotsByCohortId,
		gam.MandateCohortIdAttribute)

	// Run
	e.Logger.Fatal(e.Start(":" + cfg.Api.Port))
}
