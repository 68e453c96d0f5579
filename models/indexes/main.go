package indexes

import (
	"denovo/api/models/constants"
)

// Document shapes as stored in Elasticsearch.

type EnhancerCallDocument struct {
	Id       string `json:"id"`
	CohortId string `json:"cohortId"`

	VariantId string `json:"variantId"`
	Contig    string `json:"contig"`
	Position  int    `json:"position"`
	Ref       string `json:"ref"`
	Alt       string `json:"alt"`

	Score           float64                   `json:"score"`
	Confidence      constants.ConfidenceLevel `json:"confidence"`
	PassingChannels int                       `json:"passingChannels"`
	EvidenceSummary string                    `json:"evidenceSummary"`

	CreatedAt string `json:"createdAt"`
}

type HotspotDocument struct {
	Id       string `json:"id"`
	CohortId string `json:"cohortId"`

	Contig        string  `json:"contig"`
	Start         int     `json:"start"`
	End           int     `json:"end"`
	CallCount     int     `json:"callCount"`
	ExpectedCount float64 `json:"expectedCount"`
	PValue        float64 `json:"pValue"`

	CreatedAt string `json:"createdAt"`
}

type CohortDocument struct {
	Id string `json:"id"`

	VariantsSubmitted int `json:"variantsSubmitted"`
	DistinctVariants  int `json:"distinctVariants"`
	Calls             int `json:"calls"`
	Failures          int `json:"failures"`
	Hotspots          int `json:"hotspots"`

	CreatedAt string `json:"createdAt"`
}
