package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	"denovo/api/models"
	"denovo/api/models/analysis"
	assayChannel "denovo/api/models/constants/assay-channel"
	histoneMark "denovo/api/models/constants/histone-mark"

	"github.com/Jeffail/gabs"
	"github.com/cenkalti/backoff"
	"github.com/mitchellh/mapstructure"
)

// RegulatoryPredictor produces predicted reference/alternate signal
// track pairs around a variant, one pair per assay channel, for a
// given tissue context. The deep-learning model behind it is external;
// this is the only suspension point in the whole analysis.
type RegulatoryPredictor interface {
	Predict(ctx context.Context, variant *models.Variant, windowSize int, tissueOntology string) ([]models.TrackPair, error)
}

type HttpRegulatoryPredictor struct {
	Config *models.Config
	Client *http.Client
}

func NewHttpRegulatoryPredictor(cfg *models.Config) *HttpRegulatoryPredictor {
	return &HttpRegulatoryPredictor{
		Config: cfg,
		Client: &http.Client{},
	}
}

type predictRequest struct {
	Contig         string   `json:"contig"`
	Position       int      `json:"position"`
	Ref            string   `json:"ref"`
	Alt            string   `json:"alt"`
	WindowSize     int      `json:"windowSize"`
	TissueOntology string   `json:"tissueOntology"`
	Channels       []string `json:"channels"`
}

type trackPayload struct {
	Channel string    `mapstructure:"channel"`
	Mark    string    `mapstructure:"mark"`
	Contig  string    `mapstructure:"contig"`
	Start   int       `mapstructure:"start"`
	Step    int       `mapstructure:"step"`
	Ref     []float64 `mapstructure:"ref"`
	Alt     []float64 `mapstructure:"alt"`
}

func (p *HttpRegulatoryPredictor) Predict(ctx context.Context, variant *models.Variant, windowSize int, tissueOntology string) ([]models.TrackPair, error) {
	requestedChannels := []string{string(assayChannel.Accessibility), string(assayChannel.Expression)}
	for _, mark := range histoneMark.ValidHistoneMarks() {
		requestedChannels = append(requestedChannels, string(mark))
	}

	body, _ := json.Marshal(&predictRequest{
		Contig:         variant.Contig,
		Position:       variant.Position,
		Ref:            variant.Ref,
		Alt:            variant.Alt,
		WindowSize:     windowSize,
		TissueOntology: tissueOntology,
		Channels:       requestedChannels,
	})

	request, requestErr := http.NewRequestWithContext(ctx, "POST",
		fmt.Sprintf("%s/predict", p.Config.Predictor.Url), bytes.NewReader(body))
	if requestErr != nil {
		return nil, analysis.WrapError(analysis.PredictorUnavailable, requestErr,
			"failed to build predictor request for %s", variant.Key())
	}
	request.Header.Set("Content-Type", "application/json")
	if p.Config.Predictor.ApiKey != "" {
		request.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.Config.Predictor.ApiKey))
	}

	response, responseErr := p.Client.Do(request)
	if responseErr != nil {
		return nil, analysis.WrapError(analysis.PredictorUnavailable, responseErr,
			"predictor call failed for %s", variant.Key())
	}
	defer response.Body.Close()

	responseBody, _ := ioutil.ReadAll(response.Body)

	// a 4xx means the predictor rejected the variant itself
	// (malformed coordinates, unknown contig); retrying cannot help
	if response.StatusCode >= 400 && response.StatusCode < 500 && response.StatusCode != 429 {
		return nil, analysis.NewError(analysis.InvalidVariant,
			"predictor rejected %s : %d %s", variant.Key(), response.StatusCode, string(responseBody))
	}
	if response.StatusCode != 200 {
		return nil, analysis.NewError(analysis.PredictorUnavailable,
			"predictor returned %d for %s", response.StatusCode, variant.Key())
	}

	return parsePredictorResponse(variant, responseBody)
}

func parsePredictorResponse(variant *models.Variant, responseBody []byte) ([]models.TrackPair, error) {
	parsed, parseErr := gabs.ParseJSON(responseBody)
	if parseErr != nil {
		return nil, analysis.WrapError(analysis.PredictorUnavailable, parseErr,
			"unparseable predictor response for %s", variant.Key())
	}

	trackChildren, childrenErr := parsed.Path("tracks").Children()
	if childrenErr != nil || len(trackChildren) == 0 {
		return nil, analysis.NewError(analysis.PredictorUnavailable,
			"predictor response for %s carries no tracks", variant.Key())
	}

	pairs := make([]models.TrackPair, 0, len(trackChildren))
	for _, child := range trackChildren {
		var payload trackPayload

		decoder, _ := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &payload,
		})
		if decodeErr := decoder.Decode(child.Data()); decodeErr != nil {
			return nil, analysis.WrapError(analysis.PredictorUnavailable, decodeErr,
				"undecodable track in predictor response for %s", variant.Key())
		}

		channel := assayChannel.CastToAssayChannel(payload.Channel)
		mark := histoneMark.CastToHistoneMark(payload.Mark)
		if channel == assayChannel.Unknown && mark != histoneMark.Unknown {
			channel = assayChannel.Histone
		}

		step := payload.Step
		if step == 0 {
			step = 1
		}

		pairs = append(pairs, models.TrackPair{
			Ref: models.SignalTrack{
				Channel: channel, Mark: mark,
				Contig: payload.Contig, Start: payload.Start, Step: step,
				Values: payload.Ref,
			},
			Alt: models.SignalTrack{
				Channel: channel, Mark: mark,
				Contig: payload.Contig, Start: payload.Start, Step: step,
				Values: payload.Alt,
			},
		})
	}

	return pairs, nil
}

// PredictWithRetry wraps a predictor with a per-call timeout and a
// bounded exponential backoff. InvalidVariant failures are permanent
// and short-circuit the retry loop.
func PredictWithRetry(ctx context.Context, predictor RegulatoryPredictor, variant *models.Variant, cfg *models.Config, tissueOntology string) ([]models.TrackPair, error) {
	var pairs []models.TrackPair

	operation := func() error {
		callCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Predictor.CallTimeoutSeconds)*time.Second)
		defer cancel()

		result, callErr := predictor.Predict(callCtx, variant, cfg.Predictor.WindowSize, tissueOntology)
		if callErr != nil {
			if analysis.KindOf(callErr) == analysis.InvalidVariant {
				return backoff.Permanent(callErr)
			}
			return callErr
		}

		pairs = result
		return nil
	}

	retryPolicy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(cfg.Predictor.MaxRetries)),
		ctx)

	if retryErr := backoff.Retry(operation, retryPolicy); retryErr != nil {
		// backoff.Permanent unwraps to the original error
		if permanent, ok := retryErr.(*backoff.PermanentError); ok {
			return nil, permanent.Err
		}
		return nil, retryErr
	}

	return pairs, nil
}
