package middleware

import (
	"net/http"
	"strings"

	"denovo/api/contexts"
	"denovo/api/models/constants/confidence"
	"denovo/api/utils"

	"github.com/labstack/echo"
)

/*
	Echo middleware to validate an optional `confidence` HTTP query parameter;
	an unrecognized tier is rejected rather than silently matching nothing
*/
func ValidateOptionalConfidenceAttribute(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		gc := c.(*contexts.DenovoContext)

		confidenceQP := c.QueryParam("confidence")
		if len(confidenceQP) == 0 {
			return next(c)
		}

		if !utils.StringInSlice(strings.ToLower(confidenceQP), confidence.KnownTierNames()) {
			return echo.NewHTTPError(http.StatusBadRequest,
				"Invalid 'confidence' query parameter - expected one of None, Low, Moderate, High!")
		}

		gc.Confidence = confidence.CastToConfidenceLevel(confidenceQP)
		return next(c)
	}
}
