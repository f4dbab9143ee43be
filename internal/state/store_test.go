package state

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webview-cli/internal/fault"
	"webview-cli/pkg/models"
)

func ptzStore() *Store   { return New(models.LookupSeries("VB-H41")) }
func autoStore() *Store  { return New(models.LookupSeries("generic")) }
func fixedStore() *Store { return New(models.LookupSeries("VB-H730F")) }

func TestParseLine(t *testing.T) {
	tests := []struct {
		line     string
		key, val string
		ok       bool
	}{
		{"c.1.pan=1500", "c.1.pan", "1500", true},
		{"c.1.tilt:=-200", "c.1.tilt", "-200", true},
		{"  s.firmware=Ver. 1.2=b  \r", "s.firmware", "Ver. 1.2=b", true},
		{"c.1.name.utf8=", "c.1.name.utf8", "", true},
		{"", "", "", false},
		{"no equals sign", "", "", false},
		{"=value", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			key, val, ok := ParseLine(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.key, key)
			assert.Equal(t, tt.val, val)
		})
	}
}

func TestApplyBodyEndToEnd(t *testing.T) {
	s := ptzStore()
	n, err := s.ApplyBody("c.1.pan=1500\nc.1.tilt=-200\nc.1.zoom=300\n")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	st := s.TypedState()
	assert.Equal(t, "1500", st.PanValue)
	assert.Equal(t, "-200", st.TiltValue)
	assert.Equal(t, "300", st.ZoomValue)
}

func TestFieldRoundTrip(t *testing.T) {
	s := ptzStore()
	for key := range fields {
		value := "v-" + key
		if key == "p" {
			value = "7"
		}
		require.True(t, s.ApplyLine(key, value), key)

		// re-serialise the typed field and parse it back
		line := fmt.Sprintf("%s=%s", key, s.Value(key))
		k, v, ok := ParseLine(line)
		require.True(t, ok)
		other := ptzStore()
		other.ApplyLine(k, v)
		assert.Equal(t, value, other.Value(key), key)
	}
}

func TestPresetLastUsedSkipsNonInteger(t *testing.T) {
	s := ptzStore()
	assert.False(t, s.ApplyLine("p", "none"))
	assert.Nil(t, s.TypedState().PresetLastUsed)
	assert.Equal(t, "none", s.Raw("p"))

	assert.True(t, s.ApplyLine("p", "3"))
	require.NotNil(t, s.TypedState().PresetLastUsed)
	assert.Equal(t, 3, *s.TypedState().PresetLastUsed)
}

func TestRawSnapshotMergesKeyByKey(t *testing.T) {
	s := ptzStore()
	_, err := s.ApplyBody("c.1.pan=1\nc.1.tilt=2\np.3.pan=4\n")
	require.NoError(t, err)
	_, err = s.ApplyBody("c.1.pan=9\n")
	require.NoError(t, err)

	raw := s.RawSnapshot()
	assert.Equal(t, "9", raw["c.1.pan"])
	assert.Equal(t, "2", raw["c.1.tilt"], "absent keys keep their prior value")
	assert.Equal(t, "4", raw["p.3.pan"])
}

func TestMalformedBody(t *testing.T) {
	s := ptzStore()
	_, err := s.ApplyBody("<html><body>500</body></html>")
	assert.ErrorIs(t, err, fault.ErrMalformedBody)

	n, err := s.ApplyBody("garbage\nc.1.exp=auto\nmore garbage")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "auto", s.TypedState().ExposureMode)
}

func TestListChangeDetection(t *testing.T) {
	s := ptzStore()
	s.Reconcile()

	s.ApplyLine("c.1.focus.list", "auto,manual")
	assert.True(t, s.Reconcile().Rebuild, "absent to present is a change")

	s.ApplyLine("c.1.focus.list", "auto,manual")
	assert.False(t, s.Reconcile().Rebuild, "same list twice is not a change")

	s.ApplyLine("c.1.focus.list", "manual,auto")
	assert.True(t, s.Reconcile().Rebuild, "reordered list is a change")

	s.ApplyLine("c.1.focus.list", "manual,auto,infinity")
	assert.True(t, s.Reconcile().Rebuild, "resized list is a change")

	assert.Equal(t, []string{"manual", "auto", "infinity"}, s.Lists()[models.ListFocus])
}

func TestFirstSeenFieldTriggersRebuild(t *testing.T) {
	s := fixedStore()
	s.ApplyLine("c.1.exp", "auto")
	assert.True(t, s.Reconcile().Rebuild)

	s.ApplyLine("c.1.exp", "manual")
	assert.False(t, s.Reconcile().Rebuild, "value changes alone do not rebuild")

	s.ApplyLine("c.1.wb", "auto")
	assert.True(t, s.Reconcile().Rebuild)
}

func TestCapabilityPromotion(t *testing.T) {
	s := autoStore()
	assert.False(t, s.Capabilities().SupportsPTZ)
	s.Reconcile()

	s.ApplyLine("c.1.pan", "0")
	rec := s.Reconcile()
	assert.True(t, rec.Rebuild)
	assert.Contains(t, rec.Promoted, "ptz")
	assert.Contains(t, rec.Promoted, "position_presets")
	assert.True(t, s.Capabilities().SupportsPTZ)
	assert.True(t, s.Capabilities().SupportsPositionPresets)
	assert.False(t, s.Capabilities().SupportsZoom)

	s.ApplyLine("c.1.zoom", "100")
	s.ApplyLine("p.1.pan", "0")
	rec = s.Reconcile()
	assert.ElementsMatch(t, []string{"zoom", "native_presets"}, rec.Promoted)
}

func TestCapabilityPromotionIsMonotonic(t *testing.T) {
	s := autoStore()
	s.ApplyLine("c.1.pan", "10")
	s.Reconcile()
	require.True(t, s.Capabilities().SupportsPTZ)

	for _, body := range []string{"c.1.pan=\nc.1.tilt=\n", "s.firmware=2\n", ""} {
		_, _ = s.ApplyBody(body)
		s.Reconcile()
		assert.True(t, s.Capabilities().SupportsPTZ)
	}
}

func TestExplicitNoIsNeverPromoted(t *testing.T) {
	s := fixedStore()
	s.ApplyLine("c.1.pan", "10")
	s.ApplyLine("c.1.zoom", "10")
	rec := s.Reconcile()
	assert.Empty(t, rec.Promoted)
	assert.False(t, s.Capabilities().SupportsPTZ)
	assert.True(t, rec.Rebuild, "presence change still rebuilds dependents")
}

func TestConcurrentReconcileCoalesces(t *testing.T) {
	s := ptzStore()
	s.ApplyLine("c.1.wb.list", "auto,manual")

	var wg sync.WaitGroup
	var mu sync.Mutex
	rebuilds := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Reconcile().Rebuild {
				mu.Lock()
				rebuilds++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, rebuilds)
}

func TestRanges(t *testing.T) {
	s := ptzStore()
	r := s.Range(models.RangeAEBrightness)
	require.NotNil(t, r.Min)
	assert.Equal(t, -8.0, *r.Min)
	assert.Equal(t, 8.0, *r.Max)
	assert.Nil(t, r.Default)

	s.ApplyLine("c.1.me.gain.min", "0")
	s.ApplyLine("c.1.me.gain.max", "48")
	s.ApplyLine("c.1.me.gain", "12")
	g := s.Range(models.RangeGain)
	assert.Equal(t, 0.0, *g.Min)
	assert.Equal(t, 48.0, *g.Max)
	assert.Equal(t, 12.0, *g.Default)

	assert.Nil(t, s.Range(models.RangeIris).Min)
}

func TestPositionPresets(t *testing.T) {
	s := ptzStore()
	_, err := s.ApplyBody("c.1.pan=1500\nc.1.tilt=-200\nc.1.zoom=300\nc.1.focus.value=55\n")
	require.NoError(t, err)

	_, err = s.Position(4)
	assert.ErrorIs(t, err, fault.ErrEmptyPreset)

	saved, err := s.SavePosition(4)
	require.NoError(t, err)
	assert.Equal(t, models.PositionPreset{Pan: "1500", Tilt: "-200", Zoom: "300", Focus: "55"}, saved)

	s.ApplyLine("c.1.pan", "0")
	got, err := s.Position(4)
	require.NoError(t, err)
	assert.Equal(t, saved, got)

	_, err = s.SavePosition(11)
	assert.ErrorIs(t, err, fault.ErrValidation)
	_, err = s.Position(0)
	assert.ErrorIs(t, err, fault.ErrValidation)
}

func TestCompareAndSwap(t *testing.T) {
	s := ptzStore()
	s.ApplyLine("c.1.exp", "auto")

	assert.True(t, s.CompareAndSwap("c.1.exp", "auto", "manual"))
	assert.Equal(t, "manual", s.TypedState().ExposureMode)
	assert.Equal(t, "auto", s.Raw("c.1.exp"), "raw snapshot only changes on poll")
	assert.False(t, s.CompareAndSwap("c.1.exp", "auto", "tv"))
	assert.False(t, s.CompareAndSwap("c.1.unknown", "", "x"))
}
