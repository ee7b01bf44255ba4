package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies how a request failed.
type Kind int

const (
	// KindNetwork covers connection failures; Status is 0.
	KindNetwork Kind = iota
	// KindTimeout is a request cancelled by its own timeout; Status is 408.
	KindTimeout
	// KindHTTP is a non-2xx response; Status is the response status.
	KindHTTP
	// KindDecode is a 2xx response whose JSON body could not be decoded.
	KindDecode
	// KindCanceled is a request abandoned because the caller's context ended.
	KindCanceled
	// KindRequest is a request that could not be built or encoded.
	KindRequest
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindHTTP:
		return "http"
	case KindDecode:
		return "decode"
	case KindCanceled:
		return "canceled"
	case KindRequest:
		return "request"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// StatusTimeout is reported for requests that hit their timeout.
const StatusTimeout = http.StatusRequestTimeout

// APIError describes a failed request. It is returned inside a Response, never panicked.
type APIError struct {
	Kind    Kind
	Status  int
	Message string
	Body    string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("[%s] HTTP %d: %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Retryable reports whether another attempt may succeed. Network failures, timeouts,
// 401 (after the credential is cleared) and 5xx are retried; other 4xx are not.
func (e *APIError) Retryable() bool {
	switch e.Kind {
	case KindNetwork, KindTimeout:
		return true
	case KindHTTP:
		return e.Status == http.StatusUnauthorized || e.Status >= 500
	}
	return false
}

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func networkError(endpoint string, err error) *APIError {
	return &APIError{Kind: KindNetwork, Message: endpoint + " network error", Err: err}
}

func timeoutError(endpoint string, err error) *APIError {
	return &APIError{Kind: KindTimeout, Status: StatusTimeout, Message: endpoint + " timed out", Err: err}
}

func canceledError(endpoint string, err error) *APIError {
	return &APIError{Kind: KindCanceled, Message: endpoint + " canceled", Err: err}
}

func requestError(endpoint string, err error) *APIError {
	return &APIError{Kind: KindRequest, Message: endpoint + " invalid request", Err: err}
}

func httpError(endpoint string, status int, body string) *APIError {
	msg := body
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{
		Kind:    KindHTTP,
		Status:  status,
		Message: msg,
		Body:    body,
		Err:     fmt.Errorf("%s failed: HTTP %d", endpoint, status),
	}
}
