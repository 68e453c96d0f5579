package common

import (
	"bytes"
	"crypto/tls"
	"denovo/api/models"
	"denovo/api/models/dtos"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"os"
	"path"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	yaml "gopkg.in/yaml.v2"
)

const (
	ServiceInfoPath      string = "%s/service-info"
	CohortsPath          string = "%s/cohorts"
	CohortRequestsPath   string = "%s/cohorts/requests"
	CohortByIdPath       string = "%s/cohorts/%s"
	CohortResultPath     string = "%s/cohorts/%s/result"
	CallsOverviewPath    string = "%s/calls/overview"
	CallsByRegionPath    string = "%s/calls/by/region?contig=%s&lowerBound=%d&upperBound=%d"
	CallsByCohortPath    string = "%s/calls/by/cohort/%s"
	HotspotsByCohortPath string = "%s/hotspots/by/cohort/%s"
)

func InitConfig() *models.Config {
	var cfg models.Config

	// get this file's path
	_, filename, _, _ := runtime.Caller(0)
	folderpath := path.Dir(filename)

	// retrieve common's test.config
	f, err := os.Open(fmt.Sprintf("%s/test.config.yml", folderpath))
	if err != nil {
		processError(err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	err = decoder.Decode(&cfg)
	if err != nil {
		processError(err)
	}

	if cfg.Debug {
		http.DefaultTransport.(*http.Transport).TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &cfg
}

func processError(err error) {
	fmt.Println(err)
	os.Exit(2)
}

func SubmitCohort(_t *testing.T, _cfg *models.Config, variants []models.Variant) dtos.CohortSubmitResponseDto {
	payload, _ := json.Marshal(&dtos.CohortSubmitRequestDto{Variants: variants})

	request, _ := http.NewRequest("POST", fmt.Sprintf(CohortsPath, _cfg.Api.Url), bytes.NewReader(payload))
	request.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	response, responseErr := client.Do(request)
	assert.Nil(_t, responseErr)

	defer response.Body.Close()

	shouldBe := 200
	assert.Equal(_t, shouldBe, response.StatusCode, fmt.Sprintf("Error -- Api POST /cohorts Status: %s ; Should be %d", response.Status, shouldBe))

	respBody, respBodyErr := ioutil.ReadAll(response.Body)
	assert.Nil(_t, respBodyErr)

	var respDto dtos.CohortSubmitResponseDto
	jsonUnmarshallingError := json.Unmarshal(respBody, &respDto)
	assert.Nil(_t, jsonUnmarshallingError)

	return respDto
}

func GetCohortStatus(_t *testing.T, _cfg *models.Config, cohortId string) dtos.CohortStatusDto {
	url := fmt.Sprintf(CohortByIdPath, _cfg.Api.Url, cohortId)

	request, _ := http.NewRequest("GET", url, nil)

	client := &http.Client{}
	response, responseErr := client.Do(request)
	assert.Nil(_t, responseErr)

	defer response.Body.Close()

	shouldBe := 200
	assert.Equal(_t, shouldBe, response.StatusCode, fmt.Sprintf("Error -- Api GET %s Status: %s ; Should be %d", url, response.Status, shouldBe))

	respBody, respBodyErr := ioutil.ReadAll(response.Body)
	assert.Nil(_t, respBodyErr)

	var respDto dtos.CohortStatusDto
	jsonUnmarshallingError := json.Unmarshal(respBody, &respDto)
	assert.Nil(_t, jsonUnmarshallingError)

	return respDto
}

func GetCallsByCohortId(_t *testing.T, _cfg *models.Config, cohortId string) dtos.CallsResponseDto {
	url := fmt.Sprintf(CallsByCohortPath, _cfg.Api.Url, cohortId)

	request, _ := http.NewRequest("GET", url, nil)

	client := &http.Client{}
	response, responseErr := client.Do(request)
	assert.Nil(_t, responseErr)

	defer response.Body.Close()

	shouldBe := 200
	assert.Equal(_t, shouldBe, response.StatusCode, fmt.Sprintf("Error -- Api GET %s Status: %s ; Should be %d", url, response.Status, shouldBe))

	respBody, respBodyErr := ioutil.ReadAll(response.Body)
	assert.Nil(_t, respBodyErr)

	var respDto dtos.CallsResponseDto
	jsonUnmarshallingError := json.Unmarshal(respBody, &respDto)
	assert.Nil(_t, jsonUnmarshallingError)

	return respDto
}

func GetHotspotsByCohortId(_t *testing.T, _cfg *models.Config, cohortId string) dtos.HotspotsResponseDto {
	url := fmt.Sprintf(HotspotsByCohortPath, _cfg.Api.Url, cohortId)

	request, _ := http.NewRequest("GET", url, nil)

	client := &http.Client{}
	response, responseErr := client.Do(request)
	assert.Nil(_t, responseErr)

	defer response.Body.Close()

	shouldBe := 200
	assert.Equal(_t, shouldBe, response.StatusCode, fmt.Sprintf("Error -- Api GET %s Status: %s ; Should be %d", url, response.Status, shouldBe))

	respBody, respBodyErr := ioutil.ReadAll(response.Body)
	assert.Nil(_t, respBodyErr)

	var respDto dtos.HotspotsResponseDto
	jsonUnmarshallingError := json.Unmarshal(respBody, &respDto)
	assert.Nil(_t, jsonUnmarshallingError)

	return respDto
}

func GetCohortResult(_t *testing.T, _cfg *models.Config, cohortId string) (int, dtos.CohortResultResponseDto) {
	url := fmt.Sprintf(CohortResultPath, _cfg.Api.Url, cohortId)

	request, _ := http.NewRequest("GET", url, nil)

	client := &http.Client{}
	response, responseErr := client.Do(request)
	assert.Nil(_t, responseErr)

	defer response.Body.Close()

	respBody, respBodyErr := ioutil.ReadAll(response.Body)
	assert.Nil(_t, respBodyErr)

	var respDto dtos.CohortResultResponseDto
	jsonUnmarshallingError := json.Unmarshal(respBody, &respDto)
	assert.Nil(_t, jsonUnmarshallingError)

	return response.StatusCode, respDto
}
