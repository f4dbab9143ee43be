package models

// TypedState mirrors the recognised info.cgi keys. An empty string means the
// device has not reported the field (unknown or unsupported).
type TypedState struct {
	ModelDetected   string `json:"modelDetected,omitempty"`
	CameraName      string `json:"cameraName,omitempty"`
	PowerState      string `json:"powerState,omitempty"`
	TallyState      string `json:"tallyState,omitempty"`
	FirmwareVersion string `json:"firmwareVersion,omitempty"`
	ProtocolVersion string `json:"protocolVersion,omitempty"`

	PanValue      string `json:"panValue,omitempty"`
	TiltValue     string `json:"tiltValue,omitempty"`
	ZoomValue     string `json:"zoomValue,omitempty"`
	FocusValue    string `json:"focusValue,omitempty"`
	AutoFocusMode string `json:"autoFocusMode,omitempty"`

	ExposureShootingMode string `json:"exposureShootingMode,omitempty"`
	ExposureMode         string `json:"exposureMode,omitempty"`
	Photometry           string `json:"photometry,omitempty"`
	AEBrightness         string `json:"aeBrightness,omitempty"`
	ShutterMode          string `json:"shutterMode,omitempty"`
	ShutterValue         string `json:"shutterValue,omitempty"`
	IrisMode             string `json:"irisMode,omitempty"`
	IrisValue            string `json:"irisValue,omitempty"`
	GainMode             string `json:"gainMode,omitempty"`
	GainValue            string `json:"gainValue,omitempty"`

	WhiteBalanceMode string `json:"whitebalanceMode,omitempty"`
	KelvinValue      string `json:"kelvinValue,omitempty"`
	RGainValue       string `json:"rGainValue,omitempty"`
	BGainValue       string `json:"bGainValue,omitempty"`

	Shade      string `json:"shade,omitempty"`
	ShadeParam string `json:"shadeParam,omitempty"`

	PresetLastUsed *int `json:"presetLastUsed,omitempty"`
}

// Capabilities is the resolved view of a CapabilitySet.
type Capabilities struct {
	SupportsPTZ             bool `json:"supportsPTZ"`
	SupportsZoom            bool `json:"supportsZoom"`
	SupportsNativePresets   bool `json:"supportsNativePresets"`
	SupportsPositionPresets bool `json:"supportsPositionPresets"`
}

// ListID names an enumeration list reported by the device.
type ListID string

const (
	ListFocus        ListID = "focus"
	ListExposure     ListID = "exposure"
	ListPhotometry   ListID = "photometry"
	ListWhiteBalance ListID = "whitebalance"
	ListShutter      ListID = "shutter"
	ListAEShutter    ListID = "aeShutter"
	ListAEBrightness ListID = "aeBrightness"
)

// EnumerationLists holds the option codes per control, in device order.
type EnumerationLists map[ListID][]string

// RangeID names a numeric control with device-reported bounds.
type RangeID string

const (
	RangeAEBrightness RangeID = "aeBrightness"
	RangeIris         RangeID = "iris"
	RangeGain         RangeID = "gain"
)

// Range is a numeric control range. Nil members are unknown.
type Range struct {
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Default *float64 `json:"default,omitempty"`
}

// PositionPreset is a session-local pan/tilt/zoom/focus snapshot.
type PositionPreset struct {
	Pan   string `json:"pan"`
	Tilt  string `json:"tilt"`
	Zoom  string `json:"zoom"`
	Focus string `json:"focus"`
}

// Health is the session status shown to the control surface.
type Health string

const (
	HealthUnknown Health = "unknown"
	HealthOK      Health = "ok"
	HealthError   Health = "error"
)
