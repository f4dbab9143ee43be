package models

// Tri is a capability flag that a series table may leave undetermined.
type Tri int

const (
	Undetermined Tri = iota
	No
	Yes
)

func (t Tri) String() string {
	switch t {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "undetermined"
	}
}

// Bool reports whether the flag is explicitly Yes.
func (t Tri) Bool() bool { return t == Yes }

// VariableSpec names a typed field surfaced as a variable and the info.cgi key it mirrors.
type VariableSpec struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	FromKey string `json:"fromKey"`
}

// Series describes what a family of cameras can do.
type Series struct {
	ID                      string         `json:"id"`
	Label                   string         `json:"label"`
	SupportsPTZ             Tri            `json:"supportsPTZ"`
	SupportsZoom            Tri            `json:"supportsZoom"`
	SupportsNativePresets   Tri            `json:"supportsNativePresets"`
	SupportsPositionPresets Tri            `json:"supportsPositionPresets"`
	Variables               []VariableSpec `json:"variables"`
}

// Model is a selectable camera model.
type Model struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Series string `json:"series"`
}

var commonVariables = []VariableSpec{
	{ID: "cameraName", Name: "Camera name", FromKey: "c.1.name.utf8"},
	{ID: "firmwareVersion", Name: "Firmware version", FromKey: "s.firmware"},
	{ID: "protocolVersion", Name: "Protocol version", FromKey: "s.protocol"},
	{ID: "exposureMode", Name: "Exposure mode", FromKey: "c.1.exp"},
	{ID: "photometry", Name: "Photometry", FromKey: "c.1.ae.photometry"},
	{ID: "aeBrightness", Name: "AE brightness", FromKey: "c.1.ae.brightness"},
	{ID: "shutterValue", Name: "Shutter", FromKey: "c.1.me.shutter"},
	{ID: "irisValue", Name: "Iris", FromKey: "c.1.me.diaphragm"},
	{ID: "gainValue", Name: "Gain", FromKey: "c.1.me.gain"},
	{ID: "whitebalanceMode", Name: "White balance mode", FromKey: "c.1.wb"},
	{ID: "autoFocusMode", Name: "AF mode", FromKey: "c.1.focus"},
	{ID: "focusValue", Name: "Focus value", FromKey: "c.1.focus.value"},
	{ID: "powerState", Name: "Power state", FromKey: "f.standby"},
	{ID: "presetLastUsed", Name: "Preset last used", FromKey: "p"},
}

// PositionVariables are surfaced only when the camera can move.
var PositionVariables = []VariableSpec{
	{ID: "panValue", Name: "Pan value", FromKey: "c.1.pan"},
	{ID: "tiltValue", Name: "Tilt value", FromKey: "c.1.tilt"},
	{ID: "zoomValue", Name: "Zoom value", FromKey: "c.1.zoom"},
}

// Models lists the selectable cameras. The first entry is the default.
var Models = []Model{
	{ID: "VB-H41", Label: "VB-H41 (PTZ)", Series: "legacy-http-ptz"},
	{ID: "VB-H730F", Label: "VB-H730F (Static)", Series: "legacy-http-static"},
	{ID: "generic", Label: "Generic WebView (auto-detect)", Series: "legacy-http-auto"},
}

// SeriesSpecs is the static capability table.
var SeriesSpecs = []Series{
	{
		ID:                    "legacy-http-ptz",
		Label:                 "Legacy HTTP PTZ Series",
		SupportsPTZ:           Yes,
		SupportsZoom:          Yes,
		SupportsNativePresets: Yes,
		// native presets replace session-local PTZF presets on this series
		SupportsPositionPresets: No,
		Variables:               append(append([]VariableSpec{}, commonVariables...), PositionVariables...),
	},
	{
		ID:                      "legacy-http-static",
		Label:                   "Legacy HTTP Static Series",
		SupportsPTZ:             No,
		SupportsZoom:            No,
		SupportsNativePresets:   No,
		SupportsPositionPresets: No,
		Variables:               commonVariables,
	},
	{
		ID:        "legacy-http-auto",
		Label:     "Legacy HTTP Series (capabilities detected from info.cgi)",
		Variables: commonVariables,
	},
}

// LookupModel returns the model with the given id, or the default model.
func LookupModel(id string) Model {
	for _, m := range Models {
		if m.ID == id {
			return m
		}
	}
	return Models[0]
}

// LookupSeries resolves the series for a model id.
func LookupSeries(modelID string) Series {
	m := LookupModel(modelID)
	for _, s := range SeriesSpecs {
		if s.ID == m.Series {
			return s
		}
	}
	return SeriesSpecs[0]
}
