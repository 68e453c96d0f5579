package contexts

import (
	"denovo/api/models"
	"denovo/api/models/constants"
	"denovo/api/services"

	es7 "github.com/elastic/go-elasticsearch/v7"
	"github.com/labstack/echo"
)

type (
	// "Helper" Context to pass into routes that need
	//  an elasticsearch client and other variables
	DenovoContext struct {
		echo.Context
		Es7Client       *es7.Client
		Config          *models.Config
		AnalysisService *services.AnalysisService

		// calibrated query parameters, set by middleware
		Contig     string
		LowerBound int
		UpperBound int
		Confidence constants.ConfidenceLevel
	}
)
