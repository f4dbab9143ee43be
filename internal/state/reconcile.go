package state

import (
	"strings"

	"webview-cli/pkg/models"
)

// CapabilitySet holds the tri-state capability flags of a session.
type CapabilitySet struct {
	PTZ             models.Tri
	Zoom            models.Tri
	NativePresets   models.Tri
	PositionPresets models.Tri
}

// Resolve reads the capability flags from the static series table.
func Resolve(series models.Series) CapabilitySet {
	return CapabilitySet{
		PTZ:             series.SupportsPTZ,
		Zoom:            series.SupportsZoom,
		NativePresets:   series.SupportsNativePresets,
		PositionPresets: series.SupportsPositionPresets,
	}
}

// Resolved collapses the flags; only Yes counts as supported.
func (c CapabilitySet) Resolved() models.Capabilities {
	return models.Capabilities{
		SupportsPTZ:             c.PTZ.Bool(),
		SupportsZoom:            c.Zoom.Bool(),
		SupportsNativePresets:   c.NativePresets.Bool(),
		SupportsPositionPresets: c.PositionPresets.Bool(),
	}
}

type presence struct {
	panTilt bool
	zoom    bool
}

// Reconciliation is the outcome of a poll pass.
type Reconciliation struct {
	// Rebuild is set when the control surface must be republished.
	Rebuild bool
	// Promoted names capabilities promoted from undetermined to yes.
	Promoted []string
}

// Reconcile runs after a full poll pass. It promotes undetermined
// capabilities that the snapshot proves, folds list changes, first-seen
// fields and PTZ/zoom presence changes into one rebuild signal, and clears
// that signal. Concurrent callers coalesce: only one observes Rebuild.
func (s *Store) Reconcile() Reconciliation {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out Reconciliation

	now := presence{
		panTilt: s.state.PanValue != "" || s.state.TiltValue != "",
		zoom:    s.state.ZoomValue != "",
	}

	if s.caps.PTZ == models.Undetermined && now.panTilt {
		s.caps.PTZ = models.Yes
		out.Promoted = append(out.Promoted, "ptz")
	}
	if s.caps.Zoom == models.Undetermined && now.zoom {
		s.caps.Zoom = models.Yes
		out.Promoted = append(out.Promoted, "zoom")
	}
	if s.caps.NativePresets == models.Undetermined && s.hasNativePresetKeys() {
		s.caps.NativePresets = models.Yes
		out.Promoted = append(out.Promoted, "native_presets")
	}
	if s.caps.PositionPresets == models.Undetermined && s.caps.PTZ == models.Yes {
		s.caps.PositionPresets = models.Yes
		out.Promoted = append(out.Promoted, "position_presets")
	}

	if now != s.presence {
		s.presence = now
		s.dirty = true
	}
	if len(out.Promoted) > 0 {
		s.dirty = true
	}

	out.Rebuild = s.dirty
	s.dirty = false
	return out
}

func (s *Store) hasNativePresetKeys() bool {
	for k := range s.raw {
		rest, ok := strings.CutPrefix(k, "p.")
		if ok && rest != "" && rest[0] >= '0' && rest[0] <= '9' {
			return true
		}
	}
	return false
}

// Capabilities returns the resolved capability view.
func (s *Store) Capabilities() models.Capabilities {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.caps.Resolved()
}

// CapabilitySet returns the raw tri-state flags.
func (s *Store) CapabilitySet() CapabilitySet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.caps
}

// ResetCapabilities re-resolves flags after the model changes. Promotions
// made under the previous model are discarded and dependents are rebuilt.
func (s *Store) ResetCapabilities(series models.Series) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.caps = Resolve(series)
	s.dirty = true
}
