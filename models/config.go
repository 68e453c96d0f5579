package models

type Config struct {
	Debug bool `envconfig:"DENOVO_DEBUG"`

	Api struct {
		Port string `envconfig:"DENOVO_API_INTERNAL_PORT"`
		Url  string `envconfig:"DENOVO_API_URL" yaml:"url"`
	}

	Predictor struct {
		Url                string `envconfig:"DENOVO_PREDICTOR_URL"`
		ApiKey             string `envconfig:"DENOVO_PREDICTOR_API_KEY"`
		TissueOntology     string `envconfig:"DENOVO_PREDICTOR_TISSUE_ONTOLOGY" default:"UBERON:0000479"`
		WindowSize         int    `envconfig:"DENOVO_PREDICTOR_WINDOW_SIZE" default:"500"`
		CallTimeoutSeconds int    `envconfig:"DENOVO_PREDICTOR_CALL_TIMEOUT" default:"30"`
		MaxRetries         int    `envconfig:"DENOVO_PREDICTOR_MAX_RETRIES" default:"3"`
		ConcurrencyLevel   int    `envconfig:"DENOVO_PREDICTOR_CONCURRENCY_LEVEL" default:"5"`
		RequestExpiryHours int    `envconfig:"DENOVO_COHORT_REQUEST_EXPIRY_HOURS" default:"24"`
		BulkIndexingCap    int    `envconfig:"DENOVO_CALL_BULK_INDEXING_CAP" default:"500"`
		HotspotRadius      int    `envconfig:"DENOVO_HOTSPOT_RADIUS" default:"10000"`
	}

	Elasticsearch struct {
		Url      string `envconfig:"DENOVO_ES_URL" yaml:"url"`
		Username string `envconfig:"DENOVO_ES_USERNAME" yaml:"username"`
		Password string `envconfig:"DENOVO_ES_PASSWORD" yaml:"password"`
	}
}
