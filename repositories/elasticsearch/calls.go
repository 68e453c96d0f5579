package elasticsearch

import (
	"fmt"
	"time"

	"denovo/api/models"
	"denovo/api/models/constants"
	"denovo/api/models/constants/confidence"

	"github.com/elastic/go-elasticsearch/v7"
)

// GetCallDocumentsInPositionRange queries stored enhancer calls on one
// contig within [lowerBound, upperBound], optionally restricted to a
// minimum confidence tier.
func GetCallDocumentsInPositionRange(cfg *models.Config, es *elasticsearch.Client,
	contig string, lowerBound int, upperBound int,
	confidenceLevel constants.ConfidenceLevel, size int) (map[string]interface{}, error) {

	// begin building the request body.
	mustMap := []map[string]interface{}{{
		"query_string": map[string]interface{}{
			"query": "contig:" + contig,
		}},
	}

	rangeMap := map[string]interface{}{
		"position": map[string]interface{}{
			"gte": lowerBound,
			"lte": upperBound,
		},
	}

	// a tier filter means "at least this confident", not an exact match
	if confidenceLevel != "" {
		tierStrings := []string{}
		for _, tier := range confidence.AtOrAbove(confidenceLevel) {
			tierStrings = append(tierStrings, string(tier))
		}

		mustMap = append(mustMap, map[string]interface{}{
			"terms": map[string]interface{}{
				"confidence.keyword": tierStrings,
			},
		})
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []map[string]interface{}{{
					"bool": map[string]interface{}{
						"must": mustMap,
					}},
					{
						"range": rangeMap,
					},
				},
			},
		},
		"size": size,
		"sort": []map[string]interface{}{{
			"position": map[string]interface{}{
				"order": "asc",
			}},
		},
	}

	fmt.Printf("Call region query start: %s\n", time.Now())
	defer fmt.Printf("Call region query end: %s\n", time.Now())

	return executeSearch(cfg, es, callsIndex, query)
}

// GetCallDocumentsByCohortId fetches every call stored for a cohort.
func GetCallDocumentsByCohortId(cfg *models.Config, es *elasticsearch.Client, cohortId string, size int) (map[string]interface{}, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []map[string]interface{}{{
					"match": map[string]interface{}{
						"cohortId": cohortId,
					}},
				},
			},
		},
		"size": size,
		"sort": []map[string]interface{}{{
			"score": map[string]interface{}{
				"order": "desc",
			}},
		},
	}

	return executeSearch(cfg, es, callsIndex, query)
}

// GetCallsOverview aggregates stored calls by confidence tier and by
// contig, for the overview endpoint.
func GetCallsOverview(cfg *models.Config, es *elasticsearch.Client) (map[string]interface{}, error) {
	query := map[string]interface{}{
		"size": 0,
		"aggs": map[string]interface{}{
			"confidences": map[string]interface{}{
				"terms": map[string]interface{}{
					"field": "confidence.keyword",
					"size":  10,
				},
			},
			"contigs": map[string]interface{}{
				"terms": map[string]interface{}{
					"field": "contig.keyword",
					"size":  50,
				},
			},
		},
	}

	fmt.Printf("Calls overview query start: %s\n", time.Now())
	defer fmt.Printf("Calls overview query end: %s\n", time.Now())

	return executeSearch(cfg, es, callsIndex, query)
}

// GetHotspotDocumentsByCohortId fetches the stored hotspots for a
// cohort, ranked the way the detector reported them.
func GetHotspotDocumentsByCohortId(cfg *models.Config, es *elasticsearch.Client, cohortId string, size int) (map[string]interface{}, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []map[string]interface{}{{
					"match": map[string]interface{}{
						"cohortId": cohortId,
					}},
				},
			},
		},
		"size": size,
		"sort": []map[string]interface{}{{
			"pValue": map[string]interface{}{
				"order": "asc",
			}},
		},
	}

	return executeSearch(cfg, es, hotspotsIndex, query)
}
