// Package fault classifies the failures a device session can produce.
// Every failure is returned as a value; none cross the poll or command
// boundary as a panic.
package fault

import (
	"errors"
	"fmt"
)

// Kind is the classification of a failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindTransport covers network errors, timeouts and non-2xx responses.
	KindTransport
	// KindAuth means a challenge arrived but no usable credentials were configured.
	KindAuth
	// KindParseSkip marks an info.cgi line that maps to no known field.
	KindParseSkip
	// KindValidation is a missing or empty command option. Never reaches the network.
	KindValidation
	// KindEmptyPreset is a recall of a slot that holds nothing.
	KindEmptyPreset
	// KindCommitNotConfirmed is a native preset commit that never reported success.
	KindCommitNotConfirmed
	// KindConfig is an invalid configuration value.
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindAuth:
		return "auth"
	case KindParseSkip:
		return "parse_skip"
	case KindValidation:
		return "validation"
	case KindEmptyPreset:
		return "empty_preset"
	case KindCommitNotConfirmed:
		return "commit_not_confirmed"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Standard error variables, one per kind.
var (
	ErrTransport          = errors.New("transport failure")
	ErrAuth               = errors.New("authentication failure")
	ErrParseSkip          = errors.New("line not recognised")
	ErrValidation         = errors.New("invalid command option")
	ErrEmptyPreset        = errors.New("preset is empty")
	ErrCommitNotConfirmed = errors.New("preset commit not confirmed")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrMalformedBody      = errors.New("malformed info body")
)

var sentinels = map[Kind]error{
	KindTransport:          ErrTransport,
	KindAuth:               ErrAuth,
	KindParseSkip:          ErrParseSkip,
	KindValidation:         ErrValidation,
	KindEmptyPreset:        ErrEmptyPreset,
	KindCommitNotConfirmed: ErrCommitNotConfirmed,
	KindConfig:             ErrInvalidConfig,
}

// Error wraps an underlying error with its kind and the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, sentinels[e.Kind])
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind so callers can use errors.Is.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// New builds a kinded error.
func New(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Newf builds a kinded error from a format string.
func Newf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf classifies err. Unclassified errors report KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	for k, s := range sentinels {
		if errors.Is(err, s) {
			return k
		}
	}
	return KindUnknown
}

// IsLocal reports whether err was raised before any network call was made.
func IsLocal(err error) bool {
	switch KindOf(err) {
	case KindValidation, KindEmptyPreset:
		return true
	}
	return false
}
