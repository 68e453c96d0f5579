package assayChannel

import (
	"denovo/api/models/constants"
	"strings"
)

const (
	Unknown       constants.AssayChannel = ""
	Accessibility constants.AssayChannel = "accessibility"
	Histone       constants.AssayChannel = "histone"
	Expression    constants.AssayChannel = "expression"
)

func ValidAssayChannels() []constants.AssayChannel {
	return []constants.AssayChannel{Accessibility, Histone, Expression}
}

func CastToAssayChannel(text string) constants.AssayChannel {
	switch strings.ToLower(text) {
	case "accessibility", "dnase", "atac":
		return Accessibility
	case "histone", "chip_histone":
		return Histone
	case "expression", "rna", "rna_seq":
		return Expression
	default:
		return Unknown
	}
}
