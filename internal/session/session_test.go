package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webview-cli/internal/config"
	"webview-cli/internal/fault"
	"webview-cli/internal/state"
	"webview-cli/internal/surface"
	"webview-cli/pkg/models"
)

// fakeCamera serves info.cgi from a mutable body and records every request.
type fakeCamera struct {
	mu       sync.Mutex
	info     string
	down     bool
	commits  []string
	requests []string
}

func (f *fakeCamera) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.URL.RequestURI())
	if f.down {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	switch {
	case r.URL.Path == "/-wvhttp-01-/info.cgi":
		_, _ = w.Write([]byte(f.info))
	case r.URL.Path == "/admin/-set-" && r.URL.RawQuery == "pt=4":
		reply := "Status=0"
		if len(f.commits) > 0 {
			reply, f.commits = f.commits[0], f.commits[1:]
		}
		_, _ = w.Write([]byte(reply))
	default:
		_, _ = w.Write([]byte("OK"))
	}
}

func (f *fakeCamera) setInfo(body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.info = body
}

func (f *fakeCamera) setDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

func (f *fakeCamera) setCommits(replies ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commits = replies
}

func (f *fakeCamera) writes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, r := range f.requests {
		if !strings.HasSuffix(r, "/info.cgi") {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeCamera) count(uri string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if r == uri {
			n++
		}
	}
	return n
}

// recordingSink counts full republishes.
type recordingSink struct {
	NopSink
	mu        sync.Mutex
	publishes int
	actions   []surface.Action
	values    map[string]string
	status    []models.Health
}

func (r *recordingSink) PublishActions(a []surface.Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.publishes++
	r.actions = a
}

func (r *recordingSink) SetVariableValues(v map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = v
}

func (r *recordingSink) SetStatus(h models.Health, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = append(r.status, h)
}

func (r *recordingSink) snapshot() (int, map[string]string, []models.Health) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.publishes, r.values, append([]models.Health{}, r.status...)
}

func newTestSession(t *testing.T, model string, cam *fakeCamera, sink HostSink) *Session {
	t.Helper()
	srv := httptest.NewServer(cam)
	t.Cleanup(srv.Close)

	s := New(config.Settings{
		Host:      srv.URL,
		Port:      80,
		TimeoutMS: 1000,
		Model:     model,
		PTZSpeed:  40,
	}, Options{
		Sink:             sink,
		Logger:           zerolog.Nop(),
		RefreshDelay:     time.Hour,
		SaveRefreshDelay: time.Hour,
		CommitDelays:     []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond},
	})
	t.Cleanup(s.Close)
	return s
}

func TestPollEndToEnd(t *testing.T) {
	cam := &fakeCamera{info: "c.1.pan=1500\nc.1.tilt=-200\nc.1.zoom=300\n"}
	s := newTestSession(t, "VB-H41", cam, nil)
	ctx := context.Background()

	require.NoError(t, s.Poll(ctx))
	st := s.TypedState()
	assert.Equal(t, "1500", st.PanValue)
	assert.Equal(t, "-200", st.TiltValue)
	assert.Equal(t, "300", st.ZoomValue)
	assert.Equal(t, models.HealthOK, s.Health())

	require.NoError(t, s.IssueCommand(ctx, "pos_preset_save", map[string]string{"slot": "1"}))
	require.NoError(t, s.IssueCommand(ctx, "pos_preset_recall", map[string]string{"slot": "1"}))
	assert.Equal(t, []string{"/-wvhttp-01-/control.cgi?pan=1500&tilt=-200&zoom=300"}, cam.writes())
}

func TestRecallEmptyPositionSendsNothing(t *testing.T) {
	cam := &fakeCamera{}
	s := newTestSession(t, "VB-H41", cam, nil)

	err := s.IssueCommand(context.Background(), "pos_preset_recall", map[string]string{"slot": "3"})
	assert.ErrorIs(t, err, fault.ErrEmptyPreset)
	assert.Empty(t, cam.writes())
	assert.Equal(t, uint64(1), s.Stats().CommandsFailed)
}

func TestPollFailureKeepsState(t *testing.T) {
	cam := &fakeCamera{info: "c.1.pan=10\n"}
	sink := &recordingSink{}
	s := newTestSession(t, "VB-H41", cam, sink)
	ctx := context.Background()

	require.NoError(t, s.Poll(ctx))
	cam.setDown(true)
	err := s.Poll(ctx)
	assert.ErrorIs(t, err, fault.ErrTransport)
	assert.Equal(t, models.HealthError, s.Health())
	assert.Equal(t, "10", s.TypedState().PanValue)

	cam.setDown(false)
	require.NoError(t, s.Poll(ctx))
	assert.Equal(t, models.HealthOK, s.Health())

	_, _, status := sink.snapshot()
	assert.Equal(t, []models.Health{models.HealthOK, models.HealthError, models.HealthOK}, status)
	stats := s.Stats()
	assert.Equal(t, uint64(2), stats.PollsOK)
	assert.Equal(t, uint64(1), stats.PollsFailed)
}

func TestMalformedBodyDegradesHealth(t *testing.T) {
	cam := &fakeCamera{info: "garbage without separators\n"}
	s := newTestSession(t, "VB-H41", cam, nil)

	err := s.Poll(context.Background())
	assert.ErrorIs(t, err, fault.ErrMalformedBody)
	assert.Equal(t, models.HealthError, s.Health())
}

func TestPromotionRepublishes(t *testing.T) {
	cam := &fakeCamera{info: "c.1.exp=auto\n"}
	sink := &recordingSink{}
	s := newTestSession(t, "generic", cam, sink)
	ctx := context.Background()

	var changes []state.Reconciliation
	s.OnChange(func(r state.Reconciliation) { changes = append(changes, r) })

	require.NoError(t, s.Poll(ctx))
	assert.False(t, s.Capabilities().SupportsPTZ)
	assert.NotContains(t, s.Variables(), models.PositionVariables[0])

	cam.setInfo("c.1.exp=auto\nc.1.pan=100\nc.1.tilt=5\n")
	require.NoError(t, s.Poll(ctx))
	assert.True(t, s.Capabilities().SupportsPTZ)
	assert.True(t, s.Capabilities().SupportsPositionPresets)
	assert.Contains(t, s.Variables(), models.PositionVariables[0])

	publishes, values, _ := sink.snapshot()
	assert.Equal(t, 2, publishes)
	assert.Equal(t, "100", values["panValue"])
	require.Len(t, changes, 2)
	assert.Contains(t, changes[1].Promoted, "ptz")

	require.NoError(t, s.Poll(ctx))
	publishes, _, _ = sink.snapshot()
	assert.Equal(t, 2, publishes, "unchanged snapshot must not republish")
}

func TestSetterIsOptimistic(t *testing.T) {
	cam := &fakeCamera{info: "c.1.exp=auto\n"}
	s := newTestSession(t, "VB-H41", cam, nil)
	ctx := context.Background()
	require.NoError(t, s.Poll(ctx))

	require.NoError(t, s.IssueCommand(ctx, "set_exposure_mode", map[string]string{"value": "manual"}))
	assert.Equal(t, "manual", s.TypedState().ExposureMode)
	assert.Equal(t, []string{"/-wvhttp-01-/control.cgi?exp=manual"}, cam.writes())
}

func TestSetterRollsBackOnTransportFailure(t *testing.T) {
	cam := &fakeCamera{info: "c.1.wb=auto\n"}
	s := newTestSession(t, "VB-H41", cam, nil)
	ctx := context.Background()
	require.NoError(t, s.Poll(ctx))

	cam.setDown(true)
	err := s.IssueCommand(ctx, "set_wb_mode", map[string]string{"value": "daylight"})
	assert.ErrorIs(t, err, fault.ErrTransport)
	assert.Equal(t, "auto", s.TypedState().WhiteBalanceMode)
}

func TestSetterRejectsEmptyValue(t *testing.T) {
	cam := &fakeCamera{info: "c.1.exp=auto\n"}
	s := newTestSession(t, "VB-H41", cam, nil)
	require.NoError(t, s.Poll(context.Background()))

	err := s.IssueCommand(context.Background(), "set_exposure_mode", map[string]string{"value": " "})
	assert.ErrorIs(t, err, fault.ErrValidation)
	assert.Equal(t, "auto", s.TypedState().ExposureMode)
	assert.Empty(t, cam.writes())
}

func TestUnknownCommand(t *testing.T) {
	s := newTestSession(t, "VB-H41", &fakeCamera{}, nil)
	err := s.IssueCommand(context.Background(), "self_destruct", nil)
	assert.ErrorIs(t, err, fault.ErrValidation)
}

func TestPanTiltUsesConfiguredSpeed(t *testing.T) {
	cam := &fakeCamera{}
	s := newTestSession(t, "VB-H41", cam, nil)
	ctx := context.Background()

	require.NoError(t, s.IssueCommand(ctx, "pt_up_left", nil))
	require.NoError(t, s.IssueCommand(ctx, "pt_stop", nil))
	assert.Equal(t, []string{
		"/-wvhttp-01-/control.cgi?pan.speed.dir=-1&tilt.speed.dir=1&speed=40",
		"/-wvhttp-01-/control.cgi?pan.speed.dir=0&tilt.speed.dir=0",
	}, cam.writes())
}

func TestNativeSaveCommits(t *testing.T) {
	cam := &fakeCamera{info: "c.1.pan=1500\nc.1.tilt=-250\nc.1.zoom=4005\n"}
	s := newTestSession(t, "VB-H41", cam, nil)
	ctx := context.Background()
	require.NoError(t, s.Poll(ctx))

	cam.setCommits("Status=1", "Status=0")
	require.NoError(t, s.IssueCommand(ctx, "native_preset_save", map[string]string{"slot": "5", "name": "Wide"}))

	writes := cam.writes()
	require.Len(t, writes, 3)
	assert.Equal(t, "/admin/-set-?ea00-4=1&ea01-4=Wide&ea02-4=Wide&ea04-4=15.00&ea05-4=-2.50&ea06-4=40.05", writes[0])
	assert.Equal(t, "/admin/-set-?pt=4", writes[1])
	assert.Equal(t, "/admin/-set-?pt=4", writes[2])
}

func TestNativeSaveCommitNotConfirmed(t *testing.T) {
	cam := &fakeCamera{info: "c.1.pan=100\n"}
	s := newTestSession(t, "VB-H41", cam, nil)
	s.opts.SaveRefreshDelay = 5 * time.Millisecond
	ctx := context.Background()
	require.NoError(t, s.Poll(ctx))

	cam.setCommits("Status=9", "Status=9", "Status=9", "Status=9")
	err := s.IssueCommand(ctx, "native_preset_save", map[string]string{"slot": "1"})
	require.NoError(t, err)
	assert.Equal(t, 3, cam.count("/admin/-set-?pt=4"))

	polls := cam.count("/-wvhttp-01-/info.cgi")
	assert.Eventually(t, func() bool {
		return cam.count("/-wvhttp-01-/info.cgi") > polls
	}, time.Second, 5*time.Millisecond, "save must still schedule a refresh")
}

func TestCommitWaitsConfiguredDelays(t *testing.T) {
	cam := &fakeCamera{}
	s := newTestSession(t, "VB-H41", cam, nil)
	s.opts.CommitDelays = []time.Duration{20 * time.Millisecond, 40 * time.Millisecond, 80 * time.Millisecond}
	cam.setCommits("x", "x", "x")

	start := time.Now()
	err := s.commit(context.Background(), "/admin/-set-?pt=4")
	assert.ErrorIs(t, err, fault.ErrCommitNotConfirmed)
	assert.GreaterOrEqual(t, time.Since(start), 140*time.Millisecond)
	assert.Equal(t, 3, cam.count("/admin/-set-?pt=4"))
}

func TestStopSchedulesRefresh(t *testing.T) {
	cam := &fakeCamera{info: "c.1.pan=1\n"}
	s := newTestSession(t, "VB-H41", cam, nil)
	s.opts.RefreshDelay = 5 * time.Millisecond

	require.NoError(t, s.IssueCommand(context.Background(), "zoom_stop", nil))
	assert.Eventually(t, func() bool {
		return cam.count("/-wvhttp-01-/info.cgi") == 1
	}, time.Second, 5*time.Millisecond)
}

func TestCloseCancelsRefresh(t *testing.T) {
	cam := &fakeCamera{info: "c.1.pan=1\n"}
	s := newTestSession(t, "VB-H41", cam, nil)
	s.opts.RefreshDelay = 50 * time.Millisecond

	require.NoError(t, s.IssueCommand(context.Background(), "pt_home", nil))
	s.Close()
	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, cam.count("/-wvhttp-01-/info.cgi"))
}

func TestReconfigureResetsCapabilities(t *testing.T) {
	cam := &fakeCamera{info: "c.1.pan=1\n"}
	s := newTestSession(t, "VB-H41", cam, nil)
	require.NoError(t, s.Poll(context.Background()))
	require.True(t, s.Capabilities().SupportsPTZ)

	cfg := s.settings()
	cfg.Model = "VB-H730F"
	s.Reconfigure(cfg)

	assert.False(t, s.Capabilities().SupportsPTZ)
	assert.Equal(t, "legacy-http-static", s.Series().ID)
}

func TestReconfigureEnablesAndDisablesPolling(t *testing.T) {
	cam := &fakeCamera{info: "c.1.pan=1\n"}
	s := newTestSession(t, "VB-H41", cam, nil)
	require.NoError(t, s.Start(context.Background()))

	infos := func() int { return cam.count("/-wvhttp-01-/info.cgi") }
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, 1, infos(), "only the initial poll runs while polling is disabled")

	cfg := s.settings()
	cfg.PollMS = 10
	s.Reconfigure(cfg)
	assert.Eventually(t, func() bool { return infos() >= 5 }, time.Second, 5*time.Millisecond)

	cfg.PollMS = 0
	s.Reconfigure(cfg)
	time.Sleep(30 * time.Millisecond)
	settled := infos()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, infos())
}

func TestRawRefreshDefaultsOn(t *testing.T) {
	cam := &fakeCamera{info: "c.1.pan=1\n"}
	s := newTestSession(t, "VB-H41", cam, nil)
	s.opts.RefreshDelay = 5 * time.Millisecond
	ctx := context.Background()

	require.NoError(t, s.IssueCommand(ctx, "raw_cgi_get", map[string]string{"cmd": "control.cgi?exp=auto"}))
	assert.Eventually(t, func() bool {
		return cam.count("/-wvhttp-01-/info.cgi") == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, s.IssueCommand(ctx, "raw_cgi_get", map[string]string{"cmd": "control.cgi?exp=auto", "refresh": "false"}))
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, cam.count("/-wvhttp-01-/info.cgi"))
}

func TestNativeSaveIgnoresUnconfirmedSetterValue(t *testing.T) {
	cam := &fakeCamera{info: "c.1.wb=auto\n"}
	s := newTestSession(t, "VB-H41", cam, nil)
	ctx := context.Background()
	require.NoError(t, s.Poll(ctx))

	require.NoError(t, s.IssueCommand(ctx, "set_wb_mode", map[string]string{"value": "daylight"}))
	assert.Equal(t, "daylight", s.TypedState().WhiteBalanceMode)
	assert.Equal(t, "auto", s.Raw("c.1.wb"))

	require.NoError(t, s.IssueCommand(ctx, "native_preset_save", map[string]string{"slot": "2", "name": "A"}))
	writes := cam.writes()
	require.Len(t, writes, 3)
	assert.Equal(t, "/admin/-set-?ea00-1=1&ea01-1=A&ea02-1=A&ea12-1=auto", writes[1])
}
