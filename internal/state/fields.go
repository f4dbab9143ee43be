package state

import (
	"strconv"

	"webview-cli/pkg/models"
)

// field binds an info.cgi key to a TypedState member.
type field struct {
	get func(*models.TypedState) string
	set func(*models.TypedState, string) bool
}

func str(p func(*models.TypedState) *string) field {
	return field{
		get: func(s *models.TypedState) string { return *p(s) },
		set: func(s *models.TypedState, v string) bool { *p(s) = v; return true },
	}
}

// fields is the fixed key → TypedState mapping. Keys not listed here are
// kept in the raw snapshot only.
var fields = map[string]field{
	"c.1.type":      str(func(s *models.TypedState) *string { return &s.ModelDetected }),
	"c.1.name.utf8": str(func(s *models.TypedState) *string { return &s.CameraName }),
	"f.standby":     str(func(s *models.TypedState) *string { return &s.PowerState }),
	"f.tally":       str(func(s *models.TypedState) *string { return &s.TallyState }),
	"s.firmware":    str(func(s *models.TypedState) *string { return &s.FirmwareVersion }),
	"s.protocol":    str(func(s *models.TypedState) *string { return &s.ProtocolVersion }),

	"c.1.zoom":        str(func(s *models.TypedState) *string { return &s.ZoomValue }),
	"c.1.focus.value": str(func(s *models.TypedState) *string { return &s.FocusValue }),
	"c.1.focus":       str(func(s *models.TypedState) *string { return &s.AutoFocusMode }),
	"c.1.pan":         str(func(s *models.TypedState) *string { return &s.PanValue }),
	"c.1.tilt":        str(func(s *models.TypedState) *string { return &s.TiltValue }),

	"c.1.shooting":          str(func(s *models.TypedState) *string { return &s.ExposureShootingMode }),
	"c.1.exp":               str(func(s *models.TypedState) *string { return &s.ExposureMode }),
	"c.1.ae.photometry":     str(func(s *models.TypedState) *string { return &s.Photometry }),
	"c.1.ae.brightness":     str(func(s *models.TypedState) *string { return &s.AEBrightness }),
	"c.1.me.shutter.mode":   str(func(s *models.TypedState) *string { return &s.ShutterMode }),
	"c.1.me.shutter":        str(func(s *models.TypedState) *string { return &s.ShutterValue }),
	"c.1.me.diaphragm.mode": str(func(s *models.TypedState) *string { return &s.IrisMode }),
	"c.1.me.diaphragm":      str(func(s *models.TypedState) *string { return &s.IrisValue }),
	"c.1.me.gain.mode":      str(func(s *models.TypedState) *string { return &s.GainMode }),
	"c.1.me.gain":           str(func(s *models.TypedState) *string { return &s.GainValue }),

	"c.1.wb":             str(func(s *models.TypedState) *string { return &s.WhiteBalanceMode }),
	"c.1.wb.kelvin":      str(func(s *models.TypedState) *string { return &s.KelvinValue }),
	"c.1.wb.shift.rgain": str(func(s *models.TypedState) *string { return &s.RGainValue }),
	"c.1.wb.shift.bgain": str(func(s *models.TypedState) *string { return &s.BGainValue }),

	"c.1.shade":       str(func(s *models.TypedState) *string { return &s.Shade }),
	"c.1.shade.param": str(func(s *models.TypedState) *string { return &s.ShadeParam }),

	"p": {
		get: func(s *models.TypedState) string {
			if s.PresetLastUsed == nil {
				return ""
			}
			return strconv.Itoa(*s.PresetLastUsed)
		},
		set: func(s *models.TypedState, v string) bool {
			n, err := strconv.Atoi(v)
			if err != nil {
				return false
			}
			s.PresetLastUsed = &n
			return true
		},
	},
}

// lists maps `.list` keys to the enumeration they carry.
var lists = map[string]models.ListID{
	"c.1.focus.list":         models.ListFocus,
	"c.1.exp.list":           models.ListExposure,
	"c.1.ae.photometry.list": models.ListPhotometry,
	"c.1.wb.list":            models.ListWhiteBalance,
	"c.1.me.shutter.list":    models.ListShutter,
	"c.1.ae.shutter.list":    models.ListAEShutter,
	"c.1.ae.brightness.list": models.ListAEBrightness,
}

type bound struct {
	id  models.RangeID
	max bool
}

var ranges = map[string]bound{
	"c.1.ae.brightness.min": {models.RangeAEBrightness, false},
	"c.1.ae.brightness.max": {models.RangeAEBrightness, true},
	"c.1.me.diaphragm.min":  {models.RangeIris, false},
	"c.1.me.diaphragm.max":  {models.RangeIris, true},
	"c.1.me.gain.min":       {models.RangeGain, false},
	"c.1.me.gain.max":       {models.RangeGain, true},
}

// rangeValueKey is the key holding the current value for a range.
var rangeValueKey = map[models.RangeID]string{
	models.RangeAEBrightness: "c.1.ae.brightness",
	models.RangeIris:         "c.1.me.diaphragm",
	models.RangeGain:         "c.1.me.gain",
}

// rangeDefaults apply when the device reports no bounds.
var rangeDefaults = map[models.RangeID][2]float64{
	models.RangeAEBrightness: {-8, 8},
}

// Known reports whether key maps to a TypedState field.
func Known(key string) bool {
	_, ok := fields[key]
	return ok
}
