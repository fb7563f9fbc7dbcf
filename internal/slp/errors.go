package slp

import "fmt"

// Kind enumerates the failure taxonomy from spec.md §4.2. Callers
// collapse any Kind to "not reachable"; the Kind itself exists for
// diagnostics/logging only.
type Kind int

const (
	ConnectRefused Kind = iota
	ConnectTimeout
	ReadTimeout
	EOFDuringFrame
	MalformedFrame
	InvalidJSON
	ProtocolViolation
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case ConnectRefused:
		return "connect_refused"
	case ConnectTimeout:
		return "connect_timeout"
	case ReadTimeout:
		return "read_timeout"
	case EOFDuringFrame:
		return "eof_during_frame"
	case MalformedFrame:
		return "malformed_frame"
	case InvalidJSON:
		return "invalid_json"
	case ProtocolViolation:
		return "protocol_violation"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Failure is the typed error returned by a failed status query.
type Failure struct {
	Kind Kind
	Msg  string
	Err  error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("slp: %s: %s: %v", f.Kind, f.Msg, f.Err)
	}
	return fmt.Sprintf("slp: %s: %s", f.Kind, f.Msg)
}

func (f *Failure) Unwrap() error { return f.Err }

func newFailure(kind Kind, msg string) *Failure {
	return &Failure{Kind: kind, Msg: msg}
}

func wrapFailure(kind Kind, msg string, err error) *Failure {
	return &Failure{Kind: kind, Msg: msg, Err: err}
}
