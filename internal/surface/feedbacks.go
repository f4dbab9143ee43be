package surface

import "webview-cli/pkg/models"

func buildFeedbacks(lists models.EnumerationLists) []Feedback {
	focus := makeChoices(lists[models.ListFocus], focusLabels)
	if len(focus) == 0 {
		focus = []Choice{{ID: "auto", Label: "Auto"}, {ID: "manual", Label: "Manual"}}
	}
	return []Feedback{
		{
			ID:          "power_state",
			Name:        "Power State",
			Description: "Change style when power state matches",
			Options:     []Option{powerOption()},
		},
		{
			ID:          "focus_mode",
			Name:        "Focus Mode",
			Description: "Change style when focus mode matches",
			Options: []Option{
				{ID: "mode", Type: "dropdown", Label: "Mode", Default: "auto", Choices: focus},
			},
		},
	}
}

// EvaluateFeedback reports whether feedback id is active for st.
// Unknown feedbacks are never active.
func EvaluateFeedback(id string, options map[string]string, st models.TypedState) bool {
	switch id {
	case "power_state":
		return st.PowerState != "" && st.PowerState == options["state"]
	case "focus_mode":
		return st.AutoFocusMode != "" && st.AutoFocusMode == options["mode"]
	}
	return false
}
