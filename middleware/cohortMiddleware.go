package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo"
)

/*
	Echo middleware to ensure a well-formed cohort request id path parameter
*/
func MandateCohortIdAttribute(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cohortId := c.Param("id")
		if len(cohortId) == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Missing cohort request 'id' path parameter!")
		}

		if _, parseErr := uuid.Parse(cohortId); parseErr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Malformed cohort request 'id' - expected a uuid!")
		}

		return next(c)
	}
}
