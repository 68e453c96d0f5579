package sanitation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	es7 "github.com/elastic/go-elasticsearch/v7"
	"github.com/go-co-op/gocron"

	"denovo/api/models"
	"denovo/api/services"
)

type (
	SanitationService struct {
		Initialized     bool
		Es7Client       *es7.Client
		Config          *models.Config
		AnalysisService *services.AnalysisService
	}
)

func NewSanitationService(es *es7.Client, az *services.AnalysisService, cfg *models.Config) *SanitationService {
	ss := &SanitationService{
		Initialized:     false,
		Es7Client:       es,
		Config:          cfg,
		AnalysisService: az,
	}

	ss.Init()

	return ss
}

func (ss *SanitationService) Init() {
	// initialization if necessary
	if !ss.Initialized {
		// - spin up a go routine that will periodically
		//   run through a series of steps to keep the system
		//   "sanitary"; here that means dropping completed cohort
		//   requests that nobody will poll again, and removing
		//   call/hotspot documents whose cohort no longer exists
		go func() {
			s := gocron.NewScheduler(time.UTC)

			s.Every(1).Days().At("04:00:00").Do(func() {
				fmt.Printf("[%s] - Running cohort request cleanup..\n", time.Now())

				cutoff := time.Now().Add(-time.Duration(ss.Config.Predictor.RequestExpiryHours) * time.Hour)
				dropped := ss.AnalysisService.DropTerminalRequestsOlderThan(cutoff)

				fmt.Printf("[%s] - Dropped %d stale cohort requests\n", time.Now(), dropped)

				ss.cleanOrphanedDocuments()
			})

			s.StartBlocking()
		}()

		ss.Initialized = true
	}
}

// cleanOrphanedDocuments deletes enhancer-call and hotspot documents
// indexed under cohort ids that have since expired out of memory.
func (ss *SanitationService) cleanOrphanedDocuments() {
	if ss.Es7Client == nil {
		return
	}

	liveCohortIds := ss.AnalysisService.ListCohortRequestIds()

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must_not": []map[string]interface{}{{
					"terms": map[string]interface{}{
						"cohortId": liveCohortIds,
					}},
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		fmt.Printf("[%s] - Error encoding orphan cleanup query : %v\n", time.Now(), err)
		return
	}

	deleteRes, deleteErr := ss.Es7Client.DeleteByQuery(
		[]string{"enhancer-calls", "hotspots"},
		bytes.NewReader(buf.Bytes()),
		ss.Es7Client.DeleteByQuery.WithContext(context.Background()),
	)
	if deleteErr != nil {
		fmt.Printf("[%s] - Error cleaning orphaned documents : %v\n", time.Now(), deleteErr)
		return
	}
	defer deleteRes.Body.Close()

	fmt.Printf("[%s] - Orphaned document cleanup complete\n", time.Now())
}
