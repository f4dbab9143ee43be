package command

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"webview-cli/internal/fault"
	"webview-cli/pkg/models"
)

// NativeSlots is the number of device-resident presets.
const NativeSlots = 20

// FocusManual is the focus mode in which a stored focus value applies.
const FocusManual = "manual"

// Settings protocol endpoints.
const (
	settingsPath  = "/admin/-set-"
	CommitCommand = settingsPath + "?pt=4"
	commitMarker  = "Status=0"
)

// Snapshot reads raw info.cgi keys.
type Snapshot interface {
	Raw(key string) string
}

// MapSnapshot is a Snapshot over a plain map.
type MapSnapshot map[string]string

func (m MapSnapshot) Raw(key string) string { return m[key] }

// RecallPosition builds the recall query for a session-local preset. The
// focus value is sent only while focus is manual.
func RecallPosition(p models.PositionPreset, focusMode string) (string, error) {
	var q query
	q.add("pan", p.Pan)
	q.add("tilt", p.Tilt)
	q.add("zoom", p.Zoom)
	if focusMode == FocusManual {
		q.add("focus.value", p.Focus)
	}
	if q.empty() {
		return "", fault.New(fault.KindEmptyPreset, "pos_preset_recall", nil)
	}
	return control(q), nil
}

func checkNativeSlot(op string, slot int) error {
	if slot < 1 || slot > NativeSlots {
		return fault.Newf(fault.KindValidation, op, "slot %d out of range 1..%d", slot, NativeSlots)
	}
	return nil
}

// RecallNative builds the recall query for device preset slot (1-based),
// reading the stored p.<slot>.* values. With manual focus the preset's own
// focus value wins over the live one.
func RecallNative(snap Snapshot, slot int) (string, error) {
	if err := checkNativeSlot("native_preset_recall", slot); err != nil {
		return "", err
	}
	key := func(name string) string { return snap.Raw(fmt.Sprintf("p.%d.%s", slot, name)) }

	var q query
	q.add("pan", key("pan"))
	q.add("tilt", key("tilt"))
	q.add("zoom", key("zoom"))

	mode := key("focus")
	q.add("focus", mode)
	if mode == FocusManual {
		value := key("focus.value")
		if value == "" {
			value = snap.Raw("c.1.focus.value")
		}
		q.add("focus.value", value)
	}

	q.add("ae.brightness", key("ae.brightness"))
	q.add("shade", key("shade"))
	q.add("shade.param", key("shade.param"))
	q.add("wb", key("wb"))

	if q.empty() {
		return "", fault.New(fault.KindEmptyPreset, fmt.Sprintf("native_preset_recall %d", slot), nil)
	}
	return control(q), nil
}

// NativeSave is the command sequence that stores a device preset.
type NativeSave struct {
	Write  string
	Commit string
}

// SaveNative builds the settings-protocol write for slot (1-based) from the
// live c.1.* values. The settings protocol is zero-based, so slot 5 writes
// index 4. Pan, tilt and zoom become fixed-point with two decimals, AE
// brightness is halved and the shade parameter is shifted by one.
func SaveNative(snap Snapshot, slot int, name string) (NativeSave, error) {
	if err := checkNativeSlot("native_preset_save", slot); err != nil {
		return NativeSave{}, err
	}
	if strings.TrimSpace(name) == "" {
		name = fmt.Sprintf("Preset %d", slot)
	}
	idx := slot - 1
	field := func(n int) string { return fmt.Sprintf("ea%02d-%d", n, idx) }

	encoded := strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
	parts := []string{
		field(0) + "=1",
		field(1) + "=" + encoded,
		field(2) + "=" + encoded,
	}
	put := func(n int, value string) {
		if value != "" {
			parts = append(parts, field(n)+"="+url.QueryEscape(value))
		}
	}

	put(4, fixedPoint(snap.Raw("c.1.pan")))
	put(5, fixedPoint(snap.Raw("c.1.tilt")))
	put(6, fixedPoint(snap.Raw("c.1.zoom")))
	put(7, snap.Raw("c.1.focus"))
	put(8, snap.Raw("c.1.focus.value"))
	put(9, halve(snap.Raw("c.1.ae.brightness")))
	put(10, snap.Raw("c.1.shade"))
	put(11, plusOne(snap.Raw("c.1.shade.param")))
	put(12, snap.Raw("c.1.wb"))

	return NativeSave{
		Write:  settingsPath + "?" + strings.Join(parts, "&"),
		Commit: CommitCommand,
	}, nil
}

// CommitConfirmed reports whether a commit response carries the success marker.
func CommitConfirmed(body string) bool {
	return strings.Contains(body, commitMarker)
}

// fixedPoint converts raw hundredths to a two-decimal string.
func fixedPoint(v string) string {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return ""
	}
	return strconv.FormatFloat(f/100, 'f', 2, 64)
}

func halve(v string) string {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return ""
	}
	return strconv.Itoa(n / 2)
}

func plusOne(v string) string {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return ""
	}
	return strconv.Itoa(n + 1)
}
