package command

import (
	"webview-cli/internal/client"
	"webview-cli/internal/fault"
)

// DefaultSpeed is used when no positive speed is configured.
const DefaultSpeed = 50

// Direction is a pan/tilt movement direction.
type Direction string

const (
	Up        Direction = "up"
	Down      Direction = "down"
	Left      Direction = "left"
	Right     Direction = "right"
	UpLeft    Direction = "up_left"
	UpRight   Direction = "up_right"
	DownLeft  Direction = "down_left"
	DownRight Direction = "down_right"
)

// Directions lists every supported direction.
var Directions = []Direction{Up, Down, Left, Right, UpLeft, UpRight, DownLeft, DownRight}

func (d Direction) vector() (pan, tilt int, ok bool) {
	switch d {
	case Up:
		return 0, 1, true
	case Down:
		return 0, -1, true
	case Left:
		return -1, 0, true
	case Right:
		return 1, 0, true
	case UpLeft:
		return -1, 1, true
	case UpRight:
		return 1, 1, true
	case DownLeft:
		return -1, -1, true
	case DownRight:
		return 1, -1, true
	}
	return 0, 0, false
}

// Momentary pairs the command sent on press with the one sent on release.
type Momentary struct {
	Start string
	Stop  string
}

// StopAxis selects which movement a stop command halts.
type StopAxis int

const (
	StopBoth StopAxis = iota
	StopPan
	StopTilt
)

// Stop builds a pan/tilt stop. Stops carry no speed.
func Stop(axis StopAxis) string {
	var q query
	switch axis {
	case StopPan:
		q.addInt("pan.speed.dir", 0)
	case StopTilt:
		q.addInt("tilt.speed.dir", 0)
	default:
		q.addInt("pan.speed.dir", 0)
		q.addInt("tilt.speed.dir", 0)
	}
	return control(q)
}

func speedOrDefault(speed int) int {
	if speed <= 0 {
		return DefaultSpeed
	}
	return speed
}

// PanTilt builds the start/stop pair for a direction. Cardinal moves stop
// only their own axis; diagonals stop both.
func PanTilt(dir Direction, speed int) (Momentary, error) {
	pan, tilt, ok := dir.vector()
	if !ok {
		return Momentary{}, fault.Newf(fault.KindValidation, "pan/tilt", "unknown direction %q", dir)
	}

	var q query
	if pan != 0 {
		q.addInt("pan.speed.dir", pan)
	}
	if tilt != 0 {
		q.addInt("tilt.speed.dir", tilt)
	}
	q.addInt("speed", speedOrDefault(speed))

	axis := StopBoth
	switch {
	case tilt == 0:
		axis = StopPan
	case pan == 0:
		axis = StopTilt
	}
	return Momentary{Start: control(q), Stop: Stop(axis)}, nil
}

// Home recentres pan and tilt.
func Home() string {
	var q query
	q.addInt("pan", 0)
	q.addInt("tilt", 0)
	return control(q)
}

// Zoom builds the start/stop pair for zooming in (tele) or out (wide).
func Zoom(in bool, speed int) Momentary {
	dir := -1
	if in {
		dir = 1
	}
	var q query
	q.addInt("zoom.speed.dir", dir)
	q.addInt("speed", speedOrDefault(speed))
	return Momentary{Start: control(q), Stop: ZoomStop()}
}

// ZoomStop halts zoom movement.
func ZoomStop() string {
	var q query
	q.addInt("zoom.speed.dir", 0)
	return control(q)
}

// Focus builds the start/stop pair for driving focus near or far.
func Focus(near bool) Momentary {
	action := "far"
	if near {
		action = "near"
	}
	var q query
	q.add("focus.action", action)
	return Momentary{Start: control(q), Stop: FocusStop()}
}

// FocusStop halts focus movement.
func FocusStop() string {
	var q query
	q.add("focus.action", "stop")
	return control(q)
}

// OneShotAF triggers a single autofocus pass.
func OneShotAF() string {
	var q query
	q.add("focus", "one_shot")
	return control(q)
}

// Power states accepted by standby.cgi.
const (
	PowerIdle    = "idle"
	PowerStandby = "standby"
)

// Power switches the camera between idle (on) and standby.
func Power(state string) (string, error) {
	switch state {
	case "on":
		state = PowerIdle
	case "off":
		state = PowerStandby
	}
	if state != PowerIdle && state != PowerStandby {
		return "", fault.Newf(fault.KindValidation, "power", "unknown power state %q", state)
	}
	return client.StandbyCGI + "?cmd=" + state, nil
}
