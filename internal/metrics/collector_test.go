package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webview-cli/internal/session"
	"webview-cli/pkg/models"
)

type fakeSource struct {
	state  models.TypedState
	caps   models.Capabilities
	health models.Health
	stats  session.Stats
}

func (f fakeSource) TypedState() models.TypedState     { return f.state }
func (f fakeSource) Capabilities() models.Capabilities { return f.caps }
func (f fakeSource) Health() models.Health             { return f.health }
func (f fakeSource) Stats() session.Stats              { return f.stats }

func TestCollector(t *testing.T) {
	preset := 3
	c := NewCollector(fakeSource{
		state: models.TypedState{
			PanValue:       "1500",
			TiltValue:      "-200",
			ZoomValue:      "bogus",
			PowerState:     "standby",
			PresetLastUsed: &preset,
		},
		caps:   models.Capabilities{SupportsPTZ: true},
		health: models.HealthOK,
		stats:  session.Stats{PollsOK: 7, PollsFailed: 2, CommandsOK: 1},
	})

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c))

	expected := `
# HELP webview_polls_total info.cgi polls grouped by result.
# TYPE webview_polls_total counter
webview_polls_total{result="failed"} 2
webview_polls_total{result="ok"} 7
# HELP webview_position Raw pan/tilt/zoom position reported by the camera.
# TYPE webview_position gauge
webview_position{axis="pan"} 1500
webview_position{axis="tilt"} -200
# HELP webview_preset_last_used Last native preset recalled on the camera.
# TYPE webview_preset_last_used gauge
webview_preset_last_used 3
# HELP webview_standby Camera power state (1=standby, 0=idle).
# TYPE webview_standby gauge
webview_standby 1
# HELP webview_up Was the last poll of the camera successful.
# TYPE webview_up gauge
webview_up 1
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"webview_up", "webview_polls_total", "webview_position", "webview_standby", "webview_preset_last_used")
	assert.NoError(t, err)
	assert.Equal(t, 4, testutil.CollectAndCount(c, "webview_capability"))
}

func TestCollectorDown(t *testing.T) {
	c := NewCollector(fakeSource{health: models.HealthError})

	expected := `
# HELP webview_up Was the last poll of the camera successful.
# TYPE webview_up gauge
webview_up 0
`
	assert.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected), "webview_up"))
	assert.Zero(t, testutil.CollectAndCount(c, "webview_position"))
	assert.Zero(t, testutil.CollectAndCount(c, "webview_last_poll_timestamp_seconds"))
}
