package surface

import "webview-cli/pkg/models"

var (
	focusLabels = map[string]string{"auto": "Auto", "manual": "Manual", "infinity": "Infinity"}
	expLabels   = map[string]string{"auto": "Auto", "flickerfree": "Flicker Free", "tv": "Shutter Priority", "manual": "Manual"}
	photoLabels = map[string]string{"center": "Center", "average": "Average", "spot": "Spot"}
	wbLabels    = map[string]string{
		"auto": "Auto", "manual": "Manual", "one_shot": "One Shot",
		"sodium": "Sodium", "halogen": "Halogen", "mercury": "Mercury",
		"fluorescent_w": "Fluorescent W", "fluorescent_l": "Fluorescent L", "fluorescent_h": "Fluorescent H",
	}
)

// ChoiceSet holds dropdown choices per control. Nil means the device did
// not report a list.
type ChoiceSet struct {
	Focus        []Choice `json:"focus,omitempty"`
	Exposure     []Choice `json:"exposure,omitempty"`
	Photometry   []Choice `json:"photometry,omitempty"`
	WhiteBalance []Choice `json:"whitebalance,omitempty"`
	AEBrightness []Choice `json:"aeBrightness,omitempty"`
	Shutter      []Choice `json:"shutter,omitempty"`
}

func makeChoices(codes []string, labels map[string]string) []Choice {
	if len(codes) == 0 {
		return nil
	}
	out := make([]Choice, 0, len(codes))
	for _, id := range codes {
		label, ok := labels[id]
		if !ok {
			label = id
		}
		out = append(out, Choice{ID: id, Label: label})
	}
	return out
}

// Choices derives dropdown choices from the device lists. Shutter prefers
// the manual-exposure list over the AE list.
func Choices(lists models.EnumerationLists) ChoiceSet {
	shutter := lists[models.ListShutter]
	if len(shutter) == 0 {
		shutter = lists[models.ListAEShutter]
	}
	return ChoiceSet{
		Focus:        makeChoices(lists[models.ListFocus], focusLabels),
		Exposure:     makeChoices(lists[models.ListExposure], expLabels),
		Photometry:   makeChoices(lists[models.ListPhotometry], photoLabels),
		WhiteBalance: makeChoices(lists[models.ListWhiteBalance], wbLabels),
		AEBrightness: makeChoices(lists[models.ListAEBrightness], nil),
		Shutter:      makeChoices(shutter, nil),
	}
}
