package zhbus

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed query.
type ErrorKind int

const (
	// KindNetwork is a transport failure: DNS, refused connection, timeout.
	KindNetwork ErrorKind = iota + 1
	// KindHTTPStatus is a response with a non-2xx status.
	KindHTTPStatus
	// KindDecode is a body that is not JSON of the expected shape.
	KindDecode
	// KindCancelled is a call aborted by its caller.
	KindCancelled
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTPStatus:
		return "http status"
	case KindDecode:
		return "decode"
	case KindCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Sentinels for errors.Is against a *QueryError.
var (
	ErrNetwork    = &QueryError{Kind: KindNetwork}
	ErrHTTPStatus = &QueryError{Kind: KindHTTPStatus}
	ErrDecode     = &QueryError{Kind: KindDecode}
	ErrCancelled  = &QueryError{Kind: KindCancelled}
)

// QueryError is returned by every Client query that reached the point of
// issuing a request.
type QueryError struct {
	Kind       ErrorKind
	Op         string
	URL        string
	StatusCode int // set for KindHTTPStatus
	Timeout    bool
	Err        error
}

func (e *QueryError) Error() string {
	msg := e.Op
	if msg == "" {
		msg = "zhbus"
	}
	switch e.Kind {
	case KindHTTPStatus:
		msg = fmt.Sprintf("%s: HTTP %d from %s", msg, e.StatusCode, e.URL)
	default:
		msg = fmt.Sprintf("%s: %s error", msg, e.Kind)
		if e.URL != "" {
			msg += " for " + e.URL
		}
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *QueryError) Unwrap() error { return e.Err }

// Is matches any *QueryError of the same kind, so the package sentinels can be
// used with errors.Is.
func (e *QueryError) Is(target error) bool {
	t, ok := target.(*QueryError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of err, or 0 if err is not a *QueryError.
func KindOf(err error) ErrorKind {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Kind
	}
	return 0
}
