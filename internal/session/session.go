// Package session runs one camera: it polls info.cgi into a state store,
// republishes the control surface when capabilities or option lists change,
// and dispatches control commands.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"webview-cli/internal/client"
	"webview-cli/internal/config"
	"webview-cli/internal/fault"
	"webview-cli/internal/poller"
	"webview-cli/internal/state"
	"webview-cli/internal/surface"
	"webview-cli/pkg/models"
)

// Default post-write refresh delays and commit backoff.
const (
	DefaultRefreshDelay     = 300 * time.Millisecond
	DefaultSaveRefreshDelay = 1500 * time.Millisecond
)

// DefaultCommitDelays is the wait before each native preset commit attempt.
var DefaultCommitDelays = []time.Duration{200 * time.Millisecond, 400 * time.Millisecond, 800 * time.Millisecond}

// HostSink receives control-surface updates.
type HostSink interface {
	PublishActions([]surface.Action)
	PublishFeedbacks([]surface.Feedback)
	PublishVariables([]surface.Variable)
	PublishPresets([]surface.Button)
	SetVariableValues(map[string]string)
	CheckFeedbacks()
	SetStatus(status models.Health, message string)
}

// NopSink discards every update.
type NopSink struct{}

func (NopSink) PublishActions([]surface.Action)     {}
func (NopSink) PublishFeedbacks([]surface.Feedback) {}
func (NopSink) PublishVariables([]surface.Variable) {}
func (NopSink) PublishPresets([]surface.Button)     {}
func (NopSink) SetVariableValues(map[string]string) {}
func (NopSink) CheckFeedbacks()                     {}
func (NopSink) SetStatus(models.Health, string)     {}

// Options tunes a session. Zero values select the defaults.
type Options struct {
	Sink             HostSink
	Logger           zerolog.Logger
	RefreshDelay     time.Duration
	SaveRefreshDelay time.Duration
	CommitDelays     []time.Duration
}

// Stats counts poll and command outcomes.
type Stats struct {
	PollsOK        uint64
	PollsFailed    uint64
	CommandsOK     uint64
	CommandsFailed uint64
	LastPoll       time.Time
}

type Session struct {
	mu       sync.RWMutex
	cfg      config.Settings
	series   models.Series
	client   *client.WebViewClient
	health   models.Health
	message  string
	lastPoll time.Time
	onChange []func(state.Reconciliation)
	ctx      context.Context

	store *state.Store
	sched *poller.Scheduler
	sink  HostSink
	log   zerolog.Logger
	opts  Options

	pollsOK, pollsFailed       atomic.Uint64
	commandsOK, commandsFailed atomic.Uint64
}

// New builds a session for cfg. Nothing is sent until Start or a command.
func New(cfg config.Settings, opts Options) *Session {
	if opts.Sink == nil {
		opts.Sink = NopSink{}
	}
	if opts.RefreshDelay <= 0 {
		opts.RefreshDelay = DefaultRefreshDelay
	}
	if opts.SaveRefreshDelay <= 0 {
		opts.SaveRefreshDelay = DefaultSaveRefreshDelay
	}
	if len(opts.CommitDelays) == 0 {
		opts.CommitDelays = DefaultCommitDelays
	}

	series := models.LookupSeries(cfg.Model)
	s := &Session{
		cfg:    cfg,
		series: series,
		health: models.HealthUnknown,
		ctx:    context.Background(),
		store:  state.New(series),
		sink:   opts.Sink,
		log:    opts.Logger.With().Str("host", cfg.Host).Logger(),
		opts:   opts,
	}
	s.client = newClient(cfg, s.log)
	s.sched = poller.New(cfg.PollInterval(), s.tick)
	return s
}

func newClient(cfg config.Settings, log zerolog.Logger) *client.WebViewClient {
	return client.New(client.ClientConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		Timeout:  cfg.Timeout(),
	}, log)
}

// Start publishes the initial surface, runs the first poll and starts the
// periodic scheduler. A failed first poll only degrades health.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.publish()
	if err := s.Poll(ctx); err != nil {
		s.log.Warn().Err(err).Msg("initial poll failed")
	}
	s.sched.Start()
	return nil
}

// Close stops the scheduler and pending refreshes. Requests already in
// flight are left to finish.
func (s *Session) Close() {
	s.sched.Stop()
}

// Reconfigure swaps in new settings: the transport is rebuilt, capabilities
// are re-resolved when the model changed, and the poll timer restarts.
func (s *Session) Reconfigure(cfg config.Settings) {
	s.mu.Lock()
	prev := s.cfg
	s.cfg = cfg
	s.client = newClient(cfg, s.log)
	modelChanged := prev.Model != cfg.Model
	if modelChanged {
		s.series = models.LookupSeries(cfg.Model)
	}
	series := s.series
	s.mu.Unlock()

	if modelChanged {
		s.store.ResetCapabilities(series)
		s.publish()
	}
	s.sched.SetInterval(cfg.PollInterval())
	s.log.Info().Str("model", cfg.Model).Dur("interval", cfg.PollInterval()).Msg("session reconfigured")
	s.refreshAfter(0)
}

// OnChange registers fn to run after a poll that required a surface rebuild.
func (s *Session) OnChange(fn func(state.Reconciliation)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

func (s *Session) tick() {
	_ = s.Poll(s.baseContext())
}

func (s *Session) baseContext() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctx
}

func (s *Session) transport() *client.WebViewClient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}

func (s *Session) settings() config.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Poll fetches info.cgi once and folds it into the store. Transport and
// parse failures flip health to error and leave the last known state alone.
func (s *Session) Poll(ctx context.Context) error {
	res := s.transport().GetInfo(ctx)
	if !res.OK() {
		s.pollFailed(res.Err)
		return res.Err
	}

	applied, err := s.store.ApplyBody(res.Body)
	if err != nil {
		s.pollFailed(err)
		return err
	}
	s.log.Debug().Int("applied", applied).Msg("poll applied")

	rec := s.store.Reconcile()
	if rec.Rebuild {
		if len(rec.Promoted) > 0 {
			s.log.Info().Strs("promoted", rec.Promoted).Msg("capabilities promoted")
		}
		s.publish()
		s.mu.RLock()
		listeners := append([]func(state.Reconciliation){}, s.onChange...)
		s.mu.RUnlock()
		for _, fn := range listeners {
			fn(rec)
		}
	}

	s.pushValues()
	s.pollsOK.Add(1)
	s.mu.Lock()
	s.lastPoll = time.Now()
	s.mu.Unlock()
	s.setHealth(models.HealthOK, "")
	return nil
}

func (s *Session) pollFailed(err error) {
	s.pollsFailed.Add(1)
	s.log.Error().Err(err).Str("kind", fault.KindOf(err).String()).Msg("poll failed")
	s.setHealth(models.HealthError, err.Error())
}

func (s *Session) setHealth(h models.Health, msg string) {
	s.mu.Lock()
	changed := s.health != h || s.message != msg
	s.health, s.message = h, msg
	s.mu.Unlock()
	if changed {
		s.sink.SetStatus(h, msg)
	}
}

// publish rebuilds the full catalog and hands it to the sink.
func (s *Session) publish() {
	c := surface.Build(s)
	s.sink.PublishActions(c.Actions)
	s.sink.PublishFeedbacks(c.Feedbacks)
	s.sink.PublishVariables(c.Variables)
	s.sink.PublishPresets(c.Presets)
}

func (s *Session) pushValues() {
	values := make(map[string]string)
	for _, v := range s.Variables() {
		values[v.ID] = s.store.Value(v.FromKey)
	}
	s.sink.SetVariableValues(values)
	s.sink.CheckFeedbacks()
}

func (s *Session) refreshAfter(delay time.Duration) {
	s.sched.After(delay, s.tick)
}

func (s *Session) TypedState() models.TypedState        { return s.store.TypedState() }
func (s *Session) Capabilities() models.Capabilities    { return s.store.Capabilities() }
func (s *Session) Lists() models.EnumerationLists       { return s.store.Lists() }
func (s *Session) Range(id models.RangeID) models.Range { return s.store.Range(id) }

// Raw returns the latest info.cgi value for key.
func (s *Session) Raw(key string) string { return s.store.Raw(key) }

// RawSnapshot returns a copy of every info.cgi key seen so far.
func (s *Session) RawSnapshot() map[string]string { return s.store.RawSnapshot() }

// Series returns the series resolved for the configured model.
func (s *Session) Series() models.Series {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.series
}

// Variables is the series variable list, extended with pan/tilt/zoom once
// movement has been promoted on a series that does not list them.
func (s *Session) Variables() []models.VariableSpec {
	series := s.Series()
	vars := append([]models.VariableSpec{}, series.Variables...)
	caps := s.store.Capabilities()
	if !caps.SupportsPTZ && !caps.SupportsZoom {
		return vars
	}
	have := make(map[string]bool, len(vars))
	for _, v := range vars {
		have[v.ID] = true
	}
	for _, v := range models.PositionVariables {
		if !have[v.ID] {
			vars = append(vars, v)
		}
	}
	return vars
}

// Health returns the current session status.
func (s *Session) Health() models.Health {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.health
}

// Stats returns poll and command counters.
func (s *Session) Stats() Stats {
	s.mu.RLock()
	last := s.lastPoll
	s.mu.RUnlock()
	return Stats{
		PollsOK:        s.pollsOK.Load(),
		PollsFailed:    s.pollsFailed.Load(),
		CommandsOK:     s.commandsOK.Load(),
		CommandsFailed: s.commandsFailed.Load(),
		LastPoll:       last,
	}
}
