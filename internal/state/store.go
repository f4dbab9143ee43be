// Package state owns the raw info.cgi snapshot of one camera and the typed
// view derived from it.
//
// Polls may overlap. Each key is assigned independently and the last write
// wins, so interleaved polls converge on the device's state. The mutex only
// keeps map access memory-safe; it does not serialise poll cycles.
package state

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	"webview-cli/internal/fault"
	"webview-cli/pkg/models"
)

// PositionSlots is the number of session-local PTZF presets.
const PositionSlots = 10

type Store struct {
	mu sync.RWMutex

	raw    map[string]string
	state  models.TypedState
	lists  models.EnumerationLists
	bounds map[models.RangeID][2]string
	seen   map[string]bool

	positions [PositionSlots]*models.PositionPreset

	caps     CapabilitySet
	presence presence
	dirty    bool
}

// New creates an empty store with capabilities resolved from series.
func New(series models.Series) *Store {
	return &Store{
		raw:    make(map[string]string),
		lists:  make(models.EnumerationLists),
		bounds: make(map[models.RangeID][2]string),
		seen:   make(map[string]bool),
		caps:   Resolve(series),
	}
}

// ParseLine splits an info.cgi line on the first '='. A trailing ':' on the
// key is dropped. Empty and key-less lines report false.
func ParseLine(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", "", false
	}
	key, value, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}
	key = strings.TrimSuffix(strings.TrimSpace(key), ":")
	if key == "" {
		return "", "", false
	}
	return key, value, true
}

// ApplyLine stores value under key and updates the typed field it maps to.
// It reports whether the key is registered (a typed field, list or range).
func (s *Store) ApplyLine(key, value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(key, value)
}

func (s *Store) applyLocked(key, value string) bool {
	s.raw[key] = value

	if f, ok := fields[key]; ok {
		if !f.set(&s.state, value) {
			return false
		}
		if !s.seen[key] {
			s.seen[key] = true
			s.dirty = true
		}
		return true
	}

	if id, ok := lists[key]; ok {
		next := splitList(value)
		prev, had := s.lists[id]
		if !had || !slices.Equal(prev, next) {
			s.lists[id] = next
			s.dirty = true
		}
		return true
	}

	if b, ok := ranges[key]; ok {
		pair := s.bounds[b.id]
		if b.max {
			pair[1] = value
		} else {
			pair[0] = value
		}
		s.bounds[b.id] = pair
		return true
	}

	return false
}

func splitList(v string) []string {
	out := []string{}
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ApplyBody folds every line of an info.cgi body into the store. It returns
// the number of registered keys applied. A body with no key=value line at all
// is reported as malformed; lines already folded stay applied.
func (s *Store) ApplyBody(body string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	applied, parsed := 0, 0
	for _, line := range strings.Split(body, "\n") {
		key, value, ok := ParseLine(line)
		if !ok {
			continue
		}
		parsed++
		if s.applyLocked(key, value) {
			applied++
		}
	}
	if parsed == 0 && strings.TrimSpace(body) != "" {
		return 0, fmt.Errorf("parse info.cgi: %w", fault.ErrMalformedBody)
	}
	return applied, nil
}

// Raw returns the snapshot value for key, or "".
func (s *Store) Raw(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.raw[key]
}

// RawSnapshot returns a copy of the raw snapshot.
func (s *Store) RawSnapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.raw)
}

// Value returns the typed value mirrored from key, or "".
func (s *Store) Value(key string) string {
	f, ok := fields[key]
	if !ok {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return f.get(&s.state)
}

// TypedState returns a copy of the typed state.
func (s *Store) TypedState() models.TypedState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	if st.PresetLastUsed != nil {
		n := *st.PresetLastUsed
		st.PresetLastUsed = &n
	}
	return st
}

// Lists returns a copy of every enumeration list seen so far.
func (s *Store) Lists() models.EnumerationLists {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(models.EnumerationLists, len(s.lists))
	for id, l := range s.lists {
		out[id] = slices.Clone(l)
	}
	return out
}

// Range returns the numeric bounds for id with the current value as default.
func (s *Store) Range(id models.RangeID) models.Range {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var r models.Range
	pair := s.bounds[id]
	r.Min = parseFloat(pair[0])
	r.Max = parseFloat(pair[1])
	if def, ok := rangeDefaults[id]; ok {
		if r.Min == nil {
			r.Min = &def[0]
		}
		if r.Max == nil {
			r.Max = &def[1]
		}
	}
	if key, ok := rangeValueKey[id]; ok {
		r.Default = parseFloat(fields[key].get(&s.state))
	}
	return r
}

func parseFloat(v string) *float64 {
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

// CompareAndSwap sets the typed field for key to next if it currently holds
// prev. Used to apply and roll back optimistic writes; the raw snapshot keeps
// the last value the device reported.
func (s *Store) CompareAndSwap(key, prev, next string) bool {
	f, ok := fields[key]
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.get(&s.state) != prev {
		return false
	}
	return f.set(&s.state, next)
}

func checkSlot(slot int) error {
	if slot < 1 || slot > PositionSlots {
		return fault.Newf(fault.KindValidation, "position preset", "slot %d out of range 1..%d", slot, PositionSlots)
	}
	return nil
}

// SavePosition snapshots pan/tilt/zoom/focus into slot (1-indexed).
func (s *Store) SavePosition(slot int) (models.PositionPreset, error) {
	if err := checkSlot(slot); err != nil {
		return models.PositionPreset{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := models.PositionPreset{
		Pan:   s.state.PanValue,
		Tilt:  s.state.TiltValue,
		Zoom:  s.state.ZoomValue,
		Focus: s.state.FocusValue,
	}
	s.positions[slot-1] = &p
	return p, nil
}

// Position returns the preset stored in slot (1-indexed).
func (s *Store) Position(slot int) (models.PositionPreset, error) {
	if err := checkSlot(slot); err != nil {
		return models.PositionPreset{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.positions[slot-1]
	if p == nil {
		return models.PositionPreset{}, fault.New(fault.KindEmptyPreset, fmt.Sprintf("position preset %d", slot), nil)
	}
	return *p, nil
}

// Seen reports whether the typed field for key has ever received a value.
func (s *Store) Seen(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seen[key]
}
