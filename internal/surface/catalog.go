// Package surface builds the externally exposed control catalog (actions,
// feedbacks, variables, button presets) from a session's capabilities and
// state, and serves it over HTTP.
package surface

import (
	"strconv"

	"webview-cli/pkg/models"
)

type Choice struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Option is one input of an action or feedback.
type Option struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"` // dropdown, number, textinput, checkbox
	Label   string   `json:"label"`
	Default string   `json:"default,omitempty"`
	Choices []Choice `json:"choices,omitempty"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
}

type Action struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Options []Option `json:"options,omitempty"`
}

type Feedback struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Options     []Option `json:"options,omitempty"`
}

type Variable struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ActionRef is an action invocation bound to a button edge.
type ActionRef struct {
	ActionID string            `json:"actionId"`
	Options  map[string]string `json:"options,omitempty"`
}

// Button is a ready-made button: Down fires on press, Up on release.
type Button struct {
	ID       string     `json:"id"`
	Category string     `json:"category"`
	Name     string     `json:"name"`
	Text     string     `json:"text"`
	Down     ActionRef  `json:"down"`
	Up       *ActionRef `json:"up,omitempty"`
}

type Catalog struct {
	Actions   []Action   `json:"actions"`
	Feedbacks []Feedback `json:"feedbacks"`
	Variables []Variable `json:"variables"`
	Presets   []Button   `json:"presets"`
}

// Source is what the catalog is built from.
type Source interface {
	Capabilities() models.Capabilities
	Lists() models.EnumerationLists
	Range(id models.RangeID) models.Range
	Variables() []models.VariableSpec
}

// Build assembles the full catalog for the current capabilities and lists.
func Build(src Source) Catalog {
	caps := src.Capabilities()
	c := Catalog{
		Actions:   buildActions(src, caps),
		Feedbacks: buildFeedbacks(src.Lists()),
		Presets:   buildPresets(caps),
	}
	for _, v := range src.Variables() {
		c.Variables = append(c.Variables, Variable{ID: v.ID, Name: v.Name})
	}
	return c
}

func f64(v float64) *float64 { return &v }

func slotOption(slots int) Option {
	return Option{ID: "slot", Type: "number", Label: "Slot", Default: "1", Min: f64(1), Max: f64(float64(slots))}
}

// valueOption offers a dropdown when the device reported a list and falls
// back to a number (with range) or free text otherwise.
func valueOption(label string, choices []Choice, r *models.Range) Option {
	if len(choices) > 0 {
		return Option{ID: "value", Type: "dropdown", Label: label, Default: choices[0].ID, Choices: choices}
	}
	if r != nil && (r.Min != nil || r.Max != nil) {
		o := Option{ID: "value", Type: "number", Label: label, Min: r.Min, Max: r.Max}
		if r.Default != nil {
			o.Default = strconv.FormatFloat(*r.Default, 'f', -1, 64)
		}
		return o
	}
	return Option{ID: "value", Type: "textinput", Label: label}
}

func buildActions(src Source, caps models.Capabilities) []Action {
	ch := Choices(src.Lists())
	aeRange := src.Range(models.RangeAEBrightness)
	irisRange := src.Range(models.RangeIris)
	gainRange := src.Range(models.RangeGain)

	actions := []Action{
		{ID: "refresh_info", Name: "Refresh info (poll now)"},
		{ID: "raw_cgi_get", Name: "Send raw CGI (GET)", Options: []Option{
			{ID: "cmd", Type: "textinput", Label: "Command (e.g. info.cgi or control.cgi?exp=auto)", Default: "info.cgi"},
			{ID: "refresh", Type: "checkbox", Label: "Refresh info after call", Default: "true"},
		}},
		{ID: "power", Name: "Power", Options: []Option{powerOption()}},
		{ID: "set_exposure_mode", Name: "Exposure mode", Options: []Option{valueOption("Mode", ch.Exposure, nil)}},
		{ID: "set_photometry", Name: "Photometry", Options: []Option{valueOption("Mode", ch.Photometry, nil)}},
		{ID: "set_ae_brightness", Name: "AE brightness", Options: []Option{valueOption("Level", ch.AEBrightness, &aeRange)}},
		{ID: "set_shutter", Name: "Shutter", Options: []Option{valueOption("Speed", ch.Shutter, nil)}},
		{ID: "set_iris", Name: "Iris", Options: []Option{valueOption("Aperture", nil, &irisRange)}},
		{ID: "set_gain", Name: "Gain", Options: []Option{valueOption("Gain", nil, &gainRange)}},
		{ID: "set_wb_mode", Name: "White balance mode", Options: []Option{valueOption("Mode", ch.WhiteBalance, nil)}},
		{ID: "set_focus_mode", Name: "Focus mode", Options: []Option{valueOption("Mode", ch.Focus, nil)}},
	}

	if caps.SupportsPTZ {
		for _, d := range []struct{ id, name string }{
			{"pt_up", "Pan/Tilt - Up"}, {"pt_down", "Pan/Tilt - Down"},
			{"pt_left", "Pan/Tilt - Left"}, {"pt_right", "Pan/Tilt - Right"},
			{"pt_up_left", "Pan/Tilt - Up Left"}, {"pt_up_right", "Pan/Tilt - Up Right"},
			{"pt_down_left", "Pan/Tilt - Down Left"}, {"pt_down_right", "Pan/Tilt - Down Right"},
			{"pt_stop", "Pan/Tilt - Stop"}, {"pt_stop_pan", "Pan - Stop"}, {"pt_stop_tilt", "Tilt - Stop"},
			{"pt_home", "Pan/Tilt - Home"},
		} {
			actions = append(actions, Action{ID: d.id, Name: d.name})
		}
	}
	if caps.SupportsZoom {
		actions = append(actions,
			Action{ID: "zoom_in", Name: "Zoom - In"},
			Action{ID: "zoom_out", Name: "Zoom - Out"},
			Action{ID: "zoom_stop", Name: "Zoom - Stop"},
		)
	}
	if caps.SupportsZoom || caps.SupportsPTZ {
		actions = append(actions,
			Action{ID: "focus_near", Name: "Focus - Near"},
			Action{ID: "focus_far", Name: "Focus - Far"},
			Action{ID: "focus_stop", Name: "Focus - Stop"},
			Action{ID: "autofocus_one_shot", Name: "One Shot AF"},
		)
	}
	if caps.SupportsPTZ && caps.SupportsNativePresets {
		actions = append(actions,
			Action{ID: "native_preset_recall", Name: "Preset - Recall", Options: []Option{slotOption(20)}},
			Action{ID: "native_preset_save", Name: "Preset - Save", Options: []Option{
				slotOption(20),
				{ID: "name", Type: "textinput", Label: "Name"},
			}},
		)
	}
	if caps.SupportsPositionPresets {
		actions = append(actions,
			Action{ID: "pos_preset_save", Name: "Position preset - Save", Options: []Option{slotOption(10)}},
			Action{ID: "pos_preset_recall", Name: "Position preset - Recall", Options: []Option{slotOption(10)}},
		)
	}
	return actions
}

func powerOption() Option {
	return Option{ID: "state", Type: "dropdown", Label: "State", Default: "idle", Choices: []Choice{
		{ID: "idle", Label: "On (idle)"},
		{ID: "standby", Label: "Standby"},
	}}
}
