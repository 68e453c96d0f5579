package mvc

import (
	"encoding/json"
	"fmt"

	"denovo/api/contexts"
	"denovo/api/models/constants"
	"denovo/api/models/indexes"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/labstack/echo"
	"github.com/mitchellh/mapstructure"
)

func RetrieveCommonElements(c echo.Context) (*elasticsearch.Client, string, int, int, constants.ConfidenceLevel) {
	gc := c.(*contexts.DenovoContext)
	es := gc.Es7Client

	contig := gc.Contig
	lowerBound := gc.LowerBound
	upperBound := gc.UpperBound

	// optional minimum confidence tier filter, validated by middleware
	confidenceLevel := gc.Confidence

	return es, contig, lowerBound, upperBound, confidenceLevel
}

// GatherDocumentSources pulls each hit's _source out of an
// elasticsearch response envelope.
func GatherDocumentSources(result map[string]interface{}) []interface{} {
	sources := []interface{}{}

	hitsEnvelope, ok := result["hits"].(map[string]interface{})
	if !ok {
		return sources
	}

	allDocHits := []map[string]interface{}{}
	mapstructure.Decode(hitsEnvelope["hits"], &allDocHits)

	for _, hit := range allDocHits {
		sources = append(sources, hit["_source"])
	}

	return sources
}

// GatherCallDocuments casts each hit in an elasticsearch response
// envelope into a stored enhancer call document.
func GatherCallDocuments(result map[string]interface{}) []indexes.EnhancerCallDocument {
	documents := []indexes.EnhancerCallDocument{}

	for _, source := range GatherDocumentSources(result) {
		var document indexes.EnhancerCallDocument
		if err := recastSource(source, &document); err != nil {
			fmt.Println("failed to unmarshal call document:", err)
			continue
		}
		documents = append(documents, document)
	}

	return documents
}

// GatherHotspotDocuments casts each hit in an elasticsearch response
// envelope into a stored hotspot document.
func GatherHotspotDocuments(result map[string]interface{}) []indexes.HotspotDocument {
	documents := []indexes.HotspotDocument{}

	for _, source := range GatherDocumentSources(result) {
		var document indexes.HotspotDocument
		if err := recastSource(source, &document); err != nil {
			fmt.Println("failed to unmarshal hotspot document:", err)
			continue
		}
		documents = append(documents, document)
	}

	return documents
}

// GatherCohortDocuments casts each hit in an elasticsearch response
// envelope into a stored cohort summary document.
func GatherCohortDocuments(result map[string]interface{}) []indexes.CohortDocument {
	documents := []indexes.CohortDocument{}

	for _, source := range GatherDocumentSources(result) {
		var document indexes.CohortDocument
		if err := recastSource(source, &document); err != nil {
			fmt.Println("failed to unmarshal cohort document:", err)
			continue
		}
		documents = append(documents, document)
	}

	return documents
}

// recastSource round-trips a loose _source map through json into a
// typed document.
func recastSource(source interface{}, document interface{}) error {
	byteSlice, marshallErr := json.Marshal(source)
	if marshallErr != nil {
		return marshallErr
	}
	return json.Unmarshal(byteSlice, document)
}
