package extraction

import (
	"denovo/api/models"
	"denovo/api/models/analysis"
	"denovo/api/utils"
)

// Extractor slices fixed-size evidence windows out of full-length
// predictor track pairs, centered on a variant's position.
type Extractor struct {
	// WindowSize is the full window width in base pairs;
	// the window spans [position - WindowSize/2, position + WindowSize/2]
	WindowSize int
}

func NewExtractor(windowSize int) *Extractor {
	return &Extractor{WindowSize: windowSize}
}

// Extract returns one EvidenceWindow per provided track pair. Each pair
// must be positionally aligned between reference and alternate; all
// downstream comparisons assume index i refers to the same base pair in
// both tracks, so misalignment is a hard precondition failure.
func (ex *Extractor) Extract(variant *models.Variant, pairs []models.TrackPair) ([]models.EvidenceWindow, error) {
	windows := make([]models.EvidenceWindow, 0, len(pairs))

	for idx := range pairs {
		pair := &pairs[idx]

		if !pair.Aligned() {
			return nil, analysis.NewError(analysis.TrackMisalignment,
				"reference and alternate tracks differ in coordinate sampling for channel '%s' (%s) on variant %s",
				pair.Ref.Channel, pair.Ref.Mark, variant.Key())
		}

		window, windowErr := ex.extractOne(variant, pair)
		if windowErr != nil {
			return nil, windowErr
		}

		windows = append(windows, *window)
	}

	return windows, nil
}

func (ex *Extractor) extractOne(variant *models.Variant, pair *models.TrackPair) (*models.EvidenceWindow, error) {
	track := &pair.Ref

	if len(track.Values) == 0 {
		return nil, analysis.NewError(analysis.InvalidVariant,
			"empty '%s' track for variant %s", track.Channel, variant.Key())
	}

	if variant.Contig != track.Contig {
		return nil, analysis.NewError(analysis.InvalidVariant,
			"variant %s does not lie on track contig %s", variant.Key(), track.Contig)
	}

	half := ex.WindowSize / 2
	wantedStart := variant.Position - half
	wantedEnd := variant.Position + half

	// clip at contig/track boundaries, recording how much was lost;
	// fabricating signal past the boundary would bias the comparison
	clippedStart := utils.MaxInt(wantedStart, track.Start)
	clippedEnd := utils.MinInt(wantedEnd, track.End())

	if clippedStart > clippedEnd {
		return nil, analysis.NewError(analysis.InvalidVariant,
			"variant %s position lies outside the predicted track span [%d, %d]",
			variant.Key(), track.Start, track.End())
	}

	// the clip boundaries need not land on the sampling grid; round the
	// start index up and the end index down so every sample the window
	// carries lies inside [clippedStart, clippedEnd]
	startIdx := (clippedStart - track.Start + track.Step - 1) / track.Step
	endIdx := (clippedEnd - track.Start) / track.Step

	if startIdx > endIdx {
		return nil, analysis.NewError(analysis.InvalidVariant,
			"variant %s window is narrower than the track sampling step %d",
			variant.Key(), track.Step)
	}

	return &models.EvidenceWindow{
		Channel:      track.Channel,
		Mark:         track.Mark,
		Contig:       track.Contig,
		Start:        track.PositionAt(startIdx),
		Step:         track.Step,
		ClippedLeft:  clippedStart - wantedStart,
		ClippedRight: wantedEnd - clippedEnd,
		Ref:          pair.Ref.Values[startIdx : endIdx+1],
		Alt:          pair.Alt.Values[startIdx : endIdx+1],
	}, nil
}
