package calls

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
	"github.com/mitchellh/mapstructure"
)

const defaultQuerySize = 1000

// GetCallsByRegion queries stored enhancer calls on a contig within
// calibrated lower/upper bounds, optionally filtered by confidence.
func GetCallsByRegion(c echo.Context) error {
	fmt.Printf("[%s] - GetCallsByRegion hit!\n", time.Now())
	gc := c.(*contexts.DenovoContext)

	es, contig, lowerBound, upperBound, confidenceLevel := mvc.RetrieveCommonElements(c)

	result, queryErr := esRepo.GetCallDocumentsInPositionRange(
		gc.Config, es, contig, lowerBound, upperBound, confidenceLevel, defaultQuerySize)
	if queryErr != nil {
		return c.JSON(http.StatusInternalServerError, errors.CreateSimpleInternalServerError(queryErr.Error()))
	}

	documents := mvc.GatherCallDocuments(result)

	return c.JSON(http.StatusOK, &dtos.CallsResponseDto{
		Status:  200,
		Message: "Success",
		Count:   len(documents),
		Results: documents,
	})
}

// GetCallsByCohortId returns the stored calls for one cohort, ranked
// by descending score.
func GetCallsByCohortId(c echo.Context) error {
	fmt.Printf("[%s] - GetCallsByCohortId hit!\n", time.Now())
	gc := c.(*contexts.DenovoContext)

	result, queryErr := esRepo.GetCallDocumentsByCohortId(gc.Config, gc.Es7Client, c.Param("id"), defaultQuerySize)
	if queryErr != nil {
		return c.JSON(http.StatusInternalServerError, errors.CreateSimpleInternalServerError(queryErr.Error()))
	}

	documents := mvc.GatherCallDocuments(result)

	return c.JSON(http.StatusOK, &dtos.CallsResponseDto{
		Status:  200,
		Message: "Success",
		Count:   len(documents),
		Results: documents,
	})
}

// GetCallsOverview aggregates all stored calls by confidence tier and
// by contig.
func GetCallsOverview(c echo.Context) error {
	fmt.Printf("[%s] - GetCallsOverview hit!\n", time.Now())
	gc := c.(*contexts.DenovoContext)

	result, queryErr := esRepo.GetCallsOverview(gc.Config, gc.Es7Client)
	if queryErr != nil {
		return c.JSON(http.StatusInternalServerError, errors.CreateSimpleInternalServerError(queryErr.Error()))
	}

	overview := &dtos.CallsOverviewResponseDto{
		Confidences: map[string]interface{}{},
		Contigs:     map[string]interface{}{},
	}

	aggregations, ok := result["aggregations"].(map[string]interface{})
	if ok {
		overview.Confidences = gatherBuckets(aggregations, "confidences")
		overview.Contigs = gatherBuckets(aggregations, "contigs")
	}

	return c.JSON(http.StatusOK, overview)
}

func gatherBuckets(aggregations map[string]interface{}, name string) map[string]interface{} {
	buckets := map[string]interface{}{}

	aggregation, ok := aggregations[name].(map[string]interface{})
	if !ok {
		return buckets
	}

	bucketList := []map[string]interface{}{}
	mapstructure.Decode(aggregation["buckets"], &bucketList)

	for _, bucket := range bucketList {
		key, keyOk := bucket["key"].(string)
		if !keyOk {
			continue
		}
		buckets[key] = bucket["doc_count"]
	}

	return buckets
}
