package extraction

import (
	"testing"

	"denovo/api/models"
	"denovo/api/models/analysis"
	assayChannel "denovo/api/models/constants/assay-channel"
	histoneMark "denovo/api/models/constants/histone-mark"

	"github.com/stretchr/testify/assert"
)

func makeAlignedPair(contig string, start int, length int) models.TrackPair {
	ref := make([]float64, length)
	alt := make([]float64, length)
	for i := 0; i < length; i++ {
		ref[i] = 1.0 + 0.001*float64(i%7)
		alt[i] = 2.0 + 0.001*float64(i%5)
	}

	return models.TrackPair{
		Ref: models.SignalTrack{
			Channel: assayChannel.Accessibility,
			Contig:  contig, Start: start, Step: 1,
			Values: ref,
		},
		Alt: models.SignalTrack{
			Channel: assayChannel.Accessibility,
			Contig:  contig, Start: start, Step: 1,
			Values: alt,
		},
	}
}

func makeSteppedPair(contig string, start int, step int, length int) models.TrackPair {
	pair := makeAlignedPair(contig, start, length)
	pair.Ref.Step = step
	pair.Alt.Step = step
	return pair
}

func TestExtractCenteredWindow(t *testing.T) {
	ex := NewExtractor(500)
	variant := &models.Variant{Id: "v1", Contig: "chr1", Position: 600, Ref: "A", Alt: "T"}

	windows, err := ex.Extract(variant, []models.TrackPair{makeAlignedPair("chr1", 100, 1001)})
	assert.Nil(t, err)
	assert.Len(t, windows, 1)

	window := windows[0]
	assert.Equal(t, 350, window.Start)
	assert.Equal(t, 501, len(window.Ref))
	assert.Equal(t, 501, len(window.Alt))
	assert.Equal(t, 0, window.ClippedLeft)
	assert.Equal(t, 0, window.ClippedRight)
	assert.Equal(t, assayChannel.Accessibility, window.Channel)

	// sample 250 of the window is the variant position itself
	assert.Equal(t, variant.Position, window.PositionAt(250))
}

func TestExtractClipsAtTrackBoundary(t *testing.T) {
	ex := NewExtractor(500)

	// wanted window [-100, 400] against a track starting at 100
	variant := &models.Variant{Id: "v1", Contig: "chr1", Position: 150, Ref: "A", Alt: "T"}

	windows, err := ex.Extract(variant, []models.TrackPair{makeAlignedPair("chr1", 100, 1001)})
	assert.Nil(t, err)
	assert.Len(t, windows, 1)

	window := windows[0]
	assert.Equal(t, 100, window.Start)
	assert.Equal(t, 200, window.ClippedLeft)
	assert.Equal(t, 0, window.ClippedRight)
	assert.Equal(t, 301, len(window.Ref))
}

func TestExtractOneWindowPerPair(t *testing.T) {
	ex := NewExtractor(500)
	variant := &models.Variant{Id: "v1", Contig: "chr1", Position: 600, Ref: "A", Alt: "T"}

	accessibility := makeAlignedPair("chr1", 100, 1001)

	histone := makeAlignedPair("chr1", 100, 1001)
	histone.Ref.Channel = assayChannel.Histone
	histone.Ref.Mark = histoneMark.H3K27ac
	histone.Alt.Channel = assayChannel.Histone
	histone.Alt.Mark = histoneMark.H3K27ac

	windows, err := ex.Extract(variant, []models.TrackPair{accessibility, histone})
	assert.Nil(t, err)
	assert.Len(t, windows, 2)
	assert.Equal(t, histoneMark.H3K27ac, windows[1].Mark)
}

func TestExtractKeepsStride2WindowsInsideClipBoundaries(t *testing.T) {
	ex := NewExtractor(500)

	// 5bp sampling stride, positions 100..1100; wanted window [102, 602]
	// starts off-grid, so the first on-grid sample is 105
	pair := makeSteppedPair("chr1", 100, 5, 201)
	variant := &models.Variant{Id: "v1", Contig: "chr1", Position: 352, Ref: "A", Alt: "T"}

	windows, err := ex.Extract(variant, []models.TrackPair{pair})
	assert.Nil(t, err)
	assert.Len(t, windows, 1)

	window := windows[0]
	assert.Equal(t, 105, window.Start)
	assert.Equal(t, 5, window.Step)
	assert.Equal(t, 100, len(window.Ref))

	assert.GreaterOrEqual(t, window.Start, 102)
	assert.LessOrEqual(t, window.PositionAt(len(window.Ref)-1), 602)
}

func TestExtractRejectsWindowNarrowerThanStride(t *testing.T) {
	// no on-grid sample falls inside [107, 147] when the stride is 50
	ex := NewExtractor(40)
	pair := makeSteppedPair("chr1", 100, 50, 30)
	variant := &models.Variant{Id: "v1", Contig: "chr1", Position: 127, Ref: "A", Alt: "T"}

	_, err := ex.Extract(variant, []models.TrackPair{pair})
	assert.NotNil(t, err)
	assert.Equal(t, analysis.InvalidVariant, analysis.KindOf(err))
}

func TestExtractRejectsMisalignedPair(t *testing.T) {
	ex := NewExtractor(500)
	variant := &models.Variant{Id: "v1", Contig: "chr1", Position: 600, Ref: "A", Alt: "T"}

	pair := makeAlignedPair("chr1", 100, 1001)
	pair.Alt.Start = 101 // shifted by one base pair

	windows, err := ex.Extract(variant, []models.TrackPair{pair})
	assert.Nil(t, windows)
	assert.NotNil(t, err)
	assert.Equal(t, analysis.TrackMisalignment, analysis.KindOf(err))
}

func TestExtractRejectsWrongContig(t *testing.T) {
	ex := NewExtractor(500)
	variant := &models.Variant{Id: "v1", Contig: "chr2", Position: 600, Ref: "A", Alt: "T"}

	_, err := ex.Extract(variant, []models.TrackPair{makeAlignedPair("chr1", 100, 1001)})
	assert.NotNil(t, err)
	assert.Equal(t, analysis.InvalidVariant, analysis.KindOf(err))
}

func TestExtractRejectsPositionOutsideTrackSpan(t *testing.T) {
	ex := NewExtractor(500)
	variant := &models.Variant{Id: "v1", Contig: "chr1", Position: 5000, Ref: "A", Alt: "T"}

	_, err := ex.Extract(variant, []models.TrackPair{makeAlignedPair("chr1", 100, 1001)})
	assert.NotNil(t, err)
	assert.Equal(t, analysis.InvalidVariant, analysis.KindOf(err))
}

func TestExtractRejectsEmptyTrack(t *testing.T) {
	ex := NewExtractor(500)
	variant := &models.Variant{Id: "v1", Contig: "chr1", Position: 600, Ref: "A", Alt: "T"}

	pair := makeAlignedPair("chr1", 100, 1001)
	pair.Ref.Values = []float64{}
	pair.Alt.Values = []float64{}

	_, err := ex.Extract(variant, []models.TrackPair{pair})
	assert.NotNil(t, err)
	assert.Equal(t, analysis.InvalidVariant, analysis.KindOf(err))
}
