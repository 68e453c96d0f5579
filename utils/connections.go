package utils

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"denovo/api/models"

	"github.com/cenkalti/backoff"
	es7 "github.com/elastic/go-elasticsearch/v7"
)

func CreateEsConnection(cfg *models.Config) *es7.Client {
	var (
		clusterURLs  = []string{cfg.Elasticsearch.Url}
		retryBackoff = backoff.NewExponentialBackOff()
	)

	esCfg := es7.Config{
		Addresses: clusterURLs,
		Username:  cfg.Elasticsearch.Username,
		Password:  cfg.Elasticsearch.Password,

		RetryOnStatus: []int{502, 503, 504, 429},

		// Configure the backoff function
		RetryBackoff: func(i int) time.Duration {
			if i == 1 {
				retryBackoff.Reset()
			}
			return retryBackoff.NextBackOff()
		},

		// Retry up to 5 attempts
		MaxRetries: 5,

		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.Debug},
		},
	}

	es7Client, connectionErr := es7.NewClient(esCfg)
	if connectionErr != nil {
		fmt.Printf("Failed to connect to Elasticsearch at %s : %v\n", cfg.Elasticsearch.Url, connectionErr)
		return nil
	}

	fmt.Printf("Connected to Elasticsearch at %s\n", cfg.Elasticsearch.Url)

	return es7Client
}
