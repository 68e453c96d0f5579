package confidence

import (
	"denovo/api/models/constants"
	"strings"
)

const (
	None     constants.ConfidenceLevel = "None"
	Low      constants.ConfidenceLevel = "Low"
	Moderate constants.ConfidenceLevel = "Moderate"
	High     constants.ConfidenceLevel = "High"
)

// Rank orders confidence levels for sorting purposes (higher is stronger)
func Rank(level constants.ConfidenceLevel) int {
	switch level {
	case High:
		return 3
	case Moderate:
		return 2
	case Low:
		return 1
	default:
		return 0
	}
}

// KnownTierNames lists the accepted query spellings, lowercased.
func KnownTierNames() []string {
	return []string{"none", "low", "moderate", "high"}
}

// AtOrAbove returns every tier ranking at least as strong as level,
// weakest first.
func AtOrAbove(level constants.ConfidenceLevel) []constants.ConfidenceLevel {
	tiers := []constants.ConfidenceLevel{}
	for _, tier := range []constants.ConfidenceLevel{None, Low, Moderate, High} {
		if Rank(tier) >= Rank(level) {
			tiers = append(tiers, tier)
		}
	}
	return tiers
}

func CastToConfidenceLevel(text string) constants.ConfidenceLevel {
	switch strings.ToLower(text) {
	case "high":
		return High
	case "moderate":
		return Moderate
	case "low":
		return Low
	default:
		return None
	}
}
