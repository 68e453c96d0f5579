package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"denovo/api/models"
	"denovo/api/utils"

	"github.com/elastic/go-elasticsearch/v7"
)

const (
	callsIndex    = "enhancer-calls"
	hotspotsIndex = "hotspots"
	cohortsIndex  = "cohorts"
)

// executeSearch encodes and runs a query map against an index and
// decodes the response envelope.
func executeSearch(cfg *models.Config, es *elasticsearch.Client, index string, query map[string]interface{}) (map[string]interface{}, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		fmt.Printf("Error encoding query: %s\n", err)
		return nil, err
	}

	if cfg.Debug {
		// view the outbound elasticsearch query
		fmt.Println(buf.String())
	}

	res, searchErr := es.Search(
		es.Search.WithContext(context.Background()),
		es.Search.WithIndex(index),
		es.Search.WithBody(&buf),
		es.Search.WithTrackTotalHits(true),
	)
	if searchErr != nil {
		fmt.Printf("Error getting response: %s\n", searchErr)
		return nil, searchErr
	}

	defer res.Body.Close()

	resultString := res.String()
	if cfg.Debug {
		fmt.Println(resultString)
	}

	// Known bug: response comes back with a preceding '[200 OK] ' which needs trimming
	bracketString, jsonBodyString := utils.GetLeadingStringInBetweenSquareBrackets(resultString)
	if !strings.Contains(bracketString, "200") {
		return nil, fmt.Errorf("failed to query index %s : got '%s'", index, bracketString)
	}

	result := make(map[string]interface{})
	if umErr := json.Unmarshal([]byte(jsonBodyString), &result); umErr != nil {
		fmt.Printf("Error unmarshalling response: %s\n", umErr)
		return nil, umErr
	}

	return result, nil
}

// GetCohortDocumentById fetches one cohort summary document.
func GetCohortDocumentById(cfg *models.Config, es *elasticsearch.Client, id string) (map[string]interface{}, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []map[string]interface{}{{
					"query_string": map[string]interface{}{
						"query": fmt.Sprintf("_id:%s", id),
					}},
				},
			},
		},
	}

	fmt.Printf("Cohort query start: %s\n", time.Now())
	defer fmt.Printf("Cohort query end: %s\n", time.Now())

	return executeSearch(cfg, es, cohortsIndex, query)
}
