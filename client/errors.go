package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetwork wraps transport failures: no response was received.
	ErrNetwork = errors.New("backend unreachable")
	// ErrDecode wraps a 2xx response whose body could not be decoded.
	ErrDecode = errors.New("unreadable backend response")
)

// Error is a non-2xx answer from the backend. Body is kept raw so the
// caller can pull the message out of it.
type Error struct {
	StatusCode int
	Body       []byte
	Path       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Path, e.StatusCode, string(e.Body))
}

// Kind groups backend failures the way the UI reacts to them.
type Kind int

const (
	KindNone Kind = iota
	KindAuthExpired
	KindValidationRejected
	KindNetworkUnavailable
	KindServerFault
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindAuthExpired:
		return "auth_expired"
	case KindValidationRejected:
		return "validation_rejected"
	case KindNetworkUnavailable:
		return "network_unavailable"
	case KindServerFault:
		return "server_fault"
	default:
		return "unknown"
	}
}

// IsAuthExpired reports the statuses that mean the token is no longer
// accepted. 422 is what the backend's JWT layer answers for malformed or
// expired tokens.
func IsAuthExpired(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusUnprocessableEntity
}

// KindOf classifies an error returned by Client.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, ErrNetwork) {
		return KindNetworkUnavailable
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		switch {
		case IsAuthExpired(apiErr.StatusCode):
			return KindAuthExpired
		case apiErr.StatusCode >= 500:
			return KindServerFault
		case apiErr.StatusCode >= 400:
			return KindValidationRejected
		}
	}
	return KindUnknown
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
