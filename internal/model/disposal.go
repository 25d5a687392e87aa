package model

import "strings"

// DefaultDisposalTip applies to categories without a specific tip.
const DefaultDisposalTip = "Dispose according to local waste management guidelines."

var disposalTips = map[string]string{
	"plastic":   "Rinse the plastic container before recycling to avoid contamination.",
	"organic":   "Compost this organic waste to create nutrient-rich soil for plants.",
	"paper":     "Keep paper dry and clean for better recycling quality.",
	"metal":     "Remove any non-metal parts before recycling metal items.",
	"glass":     "Rinse glass containers and remove lids before placing in recycling.",
	"cardboard": "Flatten cardboard boxes to save space and keep them dry for recycling.",
	"battery":   "Take batteries to designated collection points. Never throw in regular trash.",
}

// DisposalTip returns the disposal advice for a material category.
func DisposalTip(category string) string {
	if tip, ok := disposalTips[strings.ToLower(strings.TrimSpace(category))]; ok {
		return tip
	}
	return DefaultDisposalTip
}
