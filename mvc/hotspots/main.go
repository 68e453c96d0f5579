package hotspots

import (
	"fmt"
	"net/http"
	"time"

	"denovo/api/contexts"
	"denovo/api/models/dtos"
	"denovo/api/models/dtos/errors"
	"denovo/api/mvc"
	esRepo "denovo/api/repositories/elasticsearch"

	"github.com/labstack/echo"
)

const defaultQuerySize = 1000

// GetHotspotsByCohortId returns the stored hotspots for one cohort,
// ranked by ascending p-value the way the detector reported them.
func GetHotspotsByCohortId(c echo.Context) error {
	fmt.Printf("[%s] - GetHotspotsByCohortId hit!\n", time.Now())
	gc := c.(*contexts.DenovoContext)

	result, queryErr := esRepo.GetHotspotDocumentsByCohortId(gc.Config, gc.Es7Client, c.Param("id"), defaultQuerySize)
	if queryErr != nil {
		return c.JSON(http.StatusInternalServerError, errors.CreateSimpleInternalServerError(queryErr.Error()))
	}

	documents := mvc.GatherHotspotDocuments(result)

	return c.JSON(http.StatusOK, &dtos.HotspotsResponseDto{
		Status:  200,
		Message: "Success",
		Count:   len(documents),
		Results: documents,
	})
}
