package middleware

import (
	"net/http"

	"denovo/api/contexts"

	"github.com/labstack/echo"
)

/*
	Echo middleware to ensure a valid `contig` HTTP query parameter was provided
*/
func MandateContigAttribute(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		gc := c.(*contexts.DenovoContext)

		// check for contig query parameter
		contigQP := c.QueryParam("contig")
		if len(contigQP) == 0 {
			// if no contig was provided return an error
			return echo.NewHTTPError(http.StatusBadRequest, "Missing 'contig' query parameter for querying!")
		}

		gc.Contig = contigQP
		return next(c)
	}
}
