// Package metrics exposes a camera session as Prometheus metrics.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"webview-cli/internal/session"
	"webview-cli/pkg/models"
)

// Source is the session view the collector reads on every scrape.
type Source interface {
	TypedState() models.TypedState
	Capabilities() models.Capabilities
	Health() models.Health
	Stats() session.Stats
}

var (
	upDesc = prometheus.NewDesc(
		"webview_up", "Was the last poll of the camera successful.", nil, nil,
	)
	pollsDesc = prometheus.NewDesc(
		"webview_polls_total", "info.cgi polls grouped by result.", []string{"result"}, nil,
	)
	commandsDesc = prometheus.NewDesc(
		"webview_commands_total", "Issued commands grouped by result.", []string{"result"}, nil,
	)
	lastPollDesc = prometheus.NewDesc(
		"webview_last_poll_timestamp_seconds", "Time of the last successful poll.", nil, nil,
	)
	positionDesc = prometheus.NewDesc(
		"webview_position", "Raw pan/tilt/zoom position reported by the camera.", []string{"axis"}, nil,
	)
	standbyDesc = prometheus.NewDesc(
		"webview_standby", "Camera power state (1=standby, 0=idle).", nil, nil,
	)
	capabilityDesc = prometheus.NewDesc(
		"webview_capability", "Resolved capability flags.", []string{"name"}, nil,
	)
	presetDesc = prometheus.NewDesc(
		"webview_preset_last_used", "Last native preset recalled on the camera.", nil, nil,
	)
)

type Collector struct {
	Source Source
}

func NewCollector(src Source) *Collector {
	return &Collector{Source: src}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- upDesc
	ch <- pollsDesc
	ch <- commandsDesc
	ch <- lastPollDesc
	ch <- positionDesc
	ch <- standbyDesc
	ch <- capabilityDesc
	ch <- presetDesc
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	up := 0.0
	if c.Source.Health() == models.HealthOK {
		up = 1
	}
	ch <- prometheus.MustNewConstMetric(upDesc, prometheus.GaugeValue, up)

	stats := c.Source.Stats()
	ch <- prometheus.MustNewConstMetric(pollsDesc, prometheus.CounterValue, float64(stats.PollsOK), "ok")
	ch <- prometheus.MustNewConstMetric(pollsDesc, prometheus.CounterValue, float64(stats.PollsFailed), "failed")
	ch <- prometheus.MustNewConstMetric(commandsDesc, prometheus.CounterValue, float64(stats.CommandsOK), "ok")
	ch <- prometheus.MustNewConstMetric(commandsDesc, prometheus.CounterValue, float64(stats.CommandsFailed), "failed")
	if !stats.LastPoll.IsZero() {
		ch <- prometheus.MustNewConstMetric(lastPollDesc, prometheus.GaugeValue, float64(stats.LastPoll.Unix()))
	}

	st := c.Source.TypedState()
	for axis, raw := range map[string]string{"pan": st.PanValue, "tilt": st.TiltValue, "zoom": st.ZoomValue} {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			ch <- prometheus.MustNewConstMetric(positionDesc, prometheus.GaugeValue, v, axis)
		}
	}

	switch st.PowerState {
	case "standby":
		ch <- prometheus.MustNewConstMetric(standbyDesc, prometheus.GaugeValue, 1)
	case "idle":
		ch <- prometheus.MustNewConstMetric(standbyDesc, prometheus.GaugeValue, 0)
	}

	caps := c.Source.Capabilities()
	for name, on := range map[string]bool{
		"ptz":              caps.SupportsPTZ,
		"zoom":             caps.SupportsZoom,
		"native_presets":   caps.SupportsNativePresets,
		"position_presets": caps.SupportsPositionPresets,
	} {
		ch <- prometheus.MustNewConstMetric(capabilityDesc, prometheus.GaugeValue, boolValue(on), name)
	}

	if st.PresetLastUsed != nil {
		ch <- prometheus.MustNewConstMetric(presetDesc, prometheus.GaugeValue, float64(*st.PresetLastUsed))
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
