package session

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"webview-cli/internal/command"
	"webview-cli/internal/fault"
)

type handler func(s *Session, ctx context.Context, opts map[string]string) error

var handlers = map[string]handler{
	"refresh_info":         (*Session).cmdRefresh,
	"raw_cgi_get":          (*Session).cmdRaw,
	"pt_stop":              stopHandler(command.Stop(command.StopBoth)),
	"pt_stop_pan":          stopHandler(command.Stop(command.StopPan)),
	"pt_stop_tilt":         stopHandler(command.Stop(command.StopTilt)),
	"pt_home":              stopHandler(command.Home()),
	"zoom_in":              startHandler(func(speed int) string { return command.Zoom(true, speed).Start }),
	"zoom_out":             startHandler(func(speed int) string { return command.Zoom(false, speed).Start }),
	"zoom_stop":            stopHandler(command.ZoomStop()),
	"focus_near":           startHandler(func(int) string { return command.Focus(true).Start }),
	"focus_far":            startHandler(func(int) string { return command.Focus(false).Start }),
	"focus_stop":           stopHandler(command.FocusStop()),
	"autofocus_one_shot":   stopHandler(command.OneShotAF()),
	"power":                (*Session).cmdPower,
	"pos_preset_save":      (*Session).cmdPositionSave,
	"pos_preset_recall":    (*Session).cmdPositionRecall,
	"native_preset_recall": (*Session).cmdNativeRecall,
	"native_preset_save":   (*Session).cmdNativeSave,
}

func init() {
	for _, d := range command.Directions {
		handlers["pt_"+string(d)] = panTiltHandler(d)
	}
	for _, st := range command.Settings {
		handlers[st.Name] = setHandler(st)
	}
}

// Commands lists every command name IssueCommand accepts.
func Commands() []string {
	names := make([]string, 0, len(handlers))
	for name := range handlers {
		names = append(names, name)
	}
	return names
}

// IssueCommand runs the named command with its options. Validation and
// empty-preset failures are raised before anything is sent. Every failure
// is logged and also returned so callers can report it.
func (s *Session) IssueCommand(ctx context.Context, name string, opts map[string]string) error {
	h, ok := handlers[name]
	if !ok {
		err := fault.Newf(fault.KindValidation, name, "unknown command")
		s.commandFailed(name, err)
		return err
	}
	if err := h(s, ctx, opts); err != nil {
		s.commandFailed(name, err)
		return err
	}
	s.commandsOK.Add(1)
	s.log.Debug().Str("cmd", name).Msg("command issued")
	return nil
}

func (s *Session) commandFailed(name string, err error) {
	s.commandsFailed.Add(1)
	ev := s.log.Error()
	if fault.IsLocal(err) {
		ev = s.log.Warn()
	}
	ev.Err(err).Str("cmd", name).Str("kind", fault.KindOf(err).String()).Msg("command failed")
}

func (s *Session) send(ctx context.Context, cmd string) error {
	s.log.Debug().Str("request", cmd).Msg("send")
	res := s.transport().Send(ctx, cmd)
	return res.Err
}

func startHandler(build func(speed int) string) handler {
	return func(s *Session, ctx context.Context, opts map[string]string) error {
		speed, err := optInt(opts, "speed", s.settings().PTZSpeed)
		if err != nil {
			return err
		}
		return s.send(ctx, build(speed))
	}
}

// stopHandler sends a fixed command and schedules a refresh whatever the
// outcome.
func stopHandler(cmd string) handler {
	return func(s *Session, ctx context.Context, _ map[string]string) error {
		defer s.refreshAfter(s.opts.RefreshDelay)
		return s.send(ctx, cmd)
	}
}

func panTiltHandler(d command.Direction) handler {
	return func(s *Session, ctx context.Context, opts map[string]string) error {
		speed, err := optInt(opts, "speed", s.settings().PTZSpeed)
		if err != nil {
			return err
		}
		m, err := command.PanTilt(d, speed)
		if err != nil {
			return err
		}
		return s.send(ctx, m.Start)
	}
}

// setHandler applies the value to the typed state before the request
// completes and rolls it back if the request fails.
func setHandler(st command.Setting) handler {
	return func(s *Session, ctx context.Context, opts map[string]string) error {
		cmd, err := command.Set(st, opts["value"])
		if err != nil {
			return err
		}
		value := strings.TrimSpace(opts["value"])
		prev := s.store.Value(st.StateKey)
		applied := s.store.CompareAndSwap(st.StateKey, prev, value)
		if applied {
			s.pushValues()
		}

		defer s.refreshAfter(s.opts.RefreshDelay)
		if err := s.send(ctx, cmd); err != nil {
			if applied && s.store.CompareAndSwap(st.StateKey, value, prev) {
				s.pushValues()
			}
			return err
		}
		return nil
	}
}

func (s *Session) cmdRefresh(ctx context.Context, _ map[string]string) error {
	return s.Poll(ctx)
}

func (s *Session) cmdRaw(ctx context.Context, opts map[string]string) error {
	cmd := strings.TrimSpace(opts["cmd"])
	if cmd == "" {
		return fault.Newf(fault.KindValidation, "raw_cgi_get", "cmd is required")
	}
	if optBool(opts, "refresh", true) {
		defer s.refreshAfter(s.opts.RefreshDelay)
	}
	return s.send(ctx, cmd)
}

func (s *Session) cmdPower(ctx context.Context, opts map[string]string) error {
	cmd, err := command.Power(opts["state"])
	if err != nil {
		return err
	}
	defer s.refreshAfter(s.opts.RefreshDelay)
	return s.send(ctx, cmd)
}

func (s *Session) cmdPositionSave(_ context.Context, opts map[string]string) error {
	slot, err := optSlot(opts, "pos_preset_save")
	if err != nil {
		return err
	}
	p, err := s.store.SavePosition(slot)
	if err != nil {
		return err
	}
	s.log.Info().Int("slot", slot).Str("pan", p.Pan).Str("tilt", p.Tilt).Str("zoom", p.Zoom).Msg("position preset saved")
	return nil
}

func (s *Session) cmdPositionRecall(ctx context.Context, opts map[string]string) error {
	slot, err := optSlot(opts, "pos_preset_recall")
	if err != nil {
		return err
	}
	p, err := s.store.Position(slot)
	if err != nil {
		return err
	}
	cmd, err := command.RecallPosition(p, s.store.Value("c.1.focus"))
	if err != nil {
		return err
	}
	defer s.refreshAfter(s.opts.RefreshDelay)
	return s.send(ctx, cmd)
}

func (s *Session) cmdNativeRecall(ctx context.Context, opts map[string]string) error {
	slot, err := optSlot(opts, "native_preset_recall")
	if err != nil {
		return err
	}
	cmd, err := command.RecallNative(s.store, slot)
	if err != nil {
		return err
	}
	defer s.refreshAfter(s.opts.RefreshDelay)
	return s.send(ctx, cmd)
}

// cmdNativeSave writes the preset fields, then commits. An unconfirmed
// commit is logged and does not fail the save.
func (s *Session) cmdNativeSave(ctx context.Context, opts map[string]string) error {
	slot, err := optSlot(opts, "native_preset_save")
	if err != nil {
		return err
	}
	save, err := command.SaveNative(s.store, slot, opts["name"])
	if err != nil {
		return err
	}

	defer s.refreshAfter(s.opts.SaveRefreshDelay)
	if err := s.send(ctx, save.Write); err != nil {
		return err
	}
	if err := s.commit(ctx, save.Commit); err != nil {
		s.log.Warn().Err(err).Int("slot", slot).Msg("native preset commit not confirmed")
		return nil
	}
	s.log.Info().Int("slot", slot).Msg("native preset saved")
	return nil
}

var errNotConfirmed = errors.New("commit response without success marker")

// commit issues the settings commit until the device confirms it, waiting
// CommitDelays[i] before attempt i.
func (s *Session) commit(ctx context.Context, cmd string) error {
	delays := s.opts.CommitDelays
	select {
	case <-ctx.Done():
		return fault.New(fault.KindCommitNotConfirmed, "commit", ctx.Err())
	case <-time.After(delays[0]):
	}

	attempt := 0
	_, err := backoff.Retry(ctx, func() (string, error) {
		attempt++
		res := s.transport().Send(ctx, cmd)
		if !res.OK() {
			return "", res.Err
		}
		if !command.CommitConfirmed(res.Body) {
			return "", errNotConfirmed
		}
		return res.Body, nil
	},
		backoff.WithBackOff(&stepBackOff{steps: delays[1:]}),
		backoff.WithMaxTries(uint(len(delays))),
		backoff.WithNotify(func(err error, next time.Duration) {
			s.log.Debug().Err(err).Int("attempt", attempt).Dur("next", next).Msg("commit retry")
		}),
	)
	if err != nil {
		return fault.New(fault.KindCommitNotConfirmed, "commit", err)
	}
	return nil
}

// stepBackOff waits each step in turn, then stops.
type stepBackOff struct {
	steps []time.Duration
	i     int
}

func (b *stepBackOff) NextBackOff() time.Duration {
	if b.i >= len(b.steps) {
		return backoff.Stop
	}
	d := b.steps[b.i]
	b.i++
	return d
}

func (b *stepBackOff) Reset() { b.i = 0 }

func optSlot(opts map[string]string, op string) (int, error) {
	v := strings.TrimSpace(opts["slot"])
	if v == "" {
		return 0, fault.Newf(fault.KindValidation, op, "slot is required")
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fault.Newf(fault.KindValidation, op, "slot %q is not a number", v)
	}
	return n, nil
}

func optInt(opts map[string]string, key string, def int) (int, error) {
	v := strings.TrimSpace(opts[key])
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fault.Newf(fault.KindValidation, key, "%q is not a number", v)
	}
	return n, nil
}

// optBool parses a boolean option; absent or unparsable values yield def.
func optBool(opts map[string]string, key string, def bool) bool {
	v, ok := opts[key]
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}
