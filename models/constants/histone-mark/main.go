package histoneMark

import (
	"denovo/api/models/constants"
	"strings"
)

const (
	Unknown  constants.HistoneMark = ""
	H3K27ac  constants.HistoneMark = "H3K27ac"
	H3K4me1  constants.HistoneMark = "H3K4me1"
	H3K4me3  constants.HistoneMark = "H3K4me3"
	H3K9ac   constants.HistoneMark = "H3K9ac"
	H3K27me3 constants.HistoneMark = "H3K27me3"
)

func ValidHistoneMarks() []constants.HistoneMark {
	return []constants.HistoneMark{H3K27ac, H3K4me1, H3K4me3, H3K9ac, H3K27me3}
}

// Marks whose gain argues against a new enhancer
// (promoter identity or repression)
func IsCounterIndicative(mark constants.HistoneMark) bool {
	switch mark {
	case H3K4me3, H3K27me3:
		return true
	default:
		return false
	}
}

func CastToHistoneMark(text string) constants.HistoneMark {
	for _, mark := range ValidHistoneMarks() {
		if strings.EqualFold(text, string(mark)) {
			return mark
		}
	}
	return Unknown
}
