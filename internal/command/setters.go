package command

import (
	"strings"

	"webview-cli/internal/fault"
)

// Setting is an absolute control with a single value.
type Setting struct {
	Name     string // command name
	Param    string // control.cgi parameter
	StateKey string // info.cgi key mirroring the value
}

var (
	ExposureMode = Setting{"set_exposure_mode", "exp", "c.1.exp"}
	WhiteBalance = Setting{"set_wb_mode", "wb", "c.1.wb"}
	Photometry   = Setting{"set_photometry", "ae.photometry", "c.1.ae.photometry"}
	AEBrightness = Setting{"set_ae_brightness", "ae.brightness", "c.1.ae.brightness"}
	Shutter      = Setting{"set_shutter", "me.shutter", "c.1.me.shutter"}
	Iris         = Setting{"set_iris", "me.diaphragm", "c.1.me.diaphragm"}
	Gain         = Setting{"set_gain", "me.gain", "c.1.me.gain"}
	FocusMode    = Setting{"set_focus_mode", "focus", "c.1.focus"}
)

// Settings lists every absolute setter.
var Settings = []Setting{ExposureMode, WhiteBalance, Photometry, AEBrightness, Shutter, Iris, Gain, FocusMode}

// LookupSetting finds a setter by command name.
func LookupSetting(name string) (Setting, bool) {
	for _, s := range Settings {
		if s.Name == name {
			return s, true
		}
	}
	return Setting{}, false
}

// Set builds `control.cgi?<param>=<value>`. An empty value is rejected
// before anything is sent.
func Set(s Setting, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fault.Newf(fault.KindValidation, s.Name, "value is required")
	}
	var q query
	q.add(s.Param, value)
	return control(q), nil
}
