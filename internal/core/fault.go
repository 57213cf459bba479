package core

import (
	"fmt"
	"net/http"
)

type FaultKind int

const (
	// RemoteUnavailable: the endpoint could not be reached (dial, TLS, timeout).
	RemoteUnavailable FaultKind = iota + 1
	// RemoteRejected: the endpoint answered with a non-2xx status.
	RemoteRejected
	// RemoteMalformedResponse: the body was not valid JSON.
	RemoteMalformedResponse
	// RemoteInternalError: anything else that went wrong around the call.
	RemoteInternalError
)

func (k FaultKind) String() string {
	switch k {
	case RemoteUnavailable:
		return "remote_unavailable"
	case RemoteRejected:
		return "remote_rejected"
	case RemoteMalformedResponse:
		return "remote_malformed_response"
	case RemoteInternalError:
		return "remote_internal_error"
	default:
		return fmt.Sprintf("fault(%d)", int(k))
	}
}

// Fault is a recoverable executor failure. The gateway renders it as reply
// text; it never ends a session.
type Fault struct {
	Kind FaultKind
	// StatusCode is set for RemoteRejected.
	StatusCode int
	// Body carries the raw or rendered response body when one was received.
	Body string
	Err  error
}

func (f *Fault) Error() string {
	switch f.Kind {
	case RemoteRejected:
		return fmt.Sprintf("%s: http %d: %s", f.Kind, f.StatusCode, f.Body)
	case RemoteMalformedResponse:
		return fmt.Sprintf("%s: %v: %s", f.Kind, f.Err, f.Body)
	default:
		return fmt.Sprintf("%s: %v", f.Kind, f.Err)
	}
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// AuthFailed reports whether the endpoint rejected the credentials.
func (f *Fault) AuthFailed() bool {
	return f.Kind == RemoteRejected && f.StatusCode == http.StatusUnauthorized
}
