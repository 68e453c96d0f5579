package workflows

type WorkflowSchema map[string]interface{}

// Descriptor for the cohort analysis workflow, served to external
// orchestration layers that want to drive this service.
var WORKFLOW_COHORT_SCHEMA WorkflowSchema = map[string]interface{}{
	"analysis": map[string]interface{}{
		"cohort_json": map[string]interface{}{
			"name":        "Cohort Enhancer Analysis",
			"description": "This analysis workflow will submit a JSON cohort of variants for de novo enhancer calling.",
			"data_type":   "variant",
			"tags":        []string{"variant", "enhancer"},
			"type":        "analysis",
			"inputs": []map[string]interface{}{
				{
					"id":       "cohort_variants",
					"type":     "json",
					"required": true,
				},
				{
					"id":       "tissue_ontology",
					"type":     "string",
					"required": false,
				},
				{
					"id":       "window_size",
					"type":     "number",
					"required": false,
				},
			},
			"outputs": []map[string]interface{}{
				{
					"id":   "cohort_result",
					"type": "json",
				},
			},
		},
	},
}
