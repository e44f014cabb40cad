package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

var (
	// ErrUnableToDecode the response body did not match the expected shape
	ErrUnableToDecode = errors.New("unable to decode response")
	// ErrUnableToEncode the request body could not be encoded
	ErrUnableToEncode = errors.New("unable to encode body")
	// ErrProtocol the backend answered with a non-2xx status
	ErrProtocol = errors.New("protocol error")
)

// HTTPError captures the state of a failed backend call.
type HTTPError struct {
	Status int
	Method string
	Path   string
	Body   []byte
	cause  error
}

func (e *HTTPError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.cause)
	}
	return fmt.Sprintf("%s %s: status %d: %v", e.Method, e.Path, e.Status, e.cause)
}

func (e *HTTPError) Unwrap() error { return e.cause }

// ServerMessage returns the `msg` field of the error body, if any.
func (e *HTTPError) ServerMessage() string {
	if len(e.Body) == 0 {
		return ""
	}
	var m struct {
		Msg    string `json:"msg"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(e.Body, &m); err != nil {
		return ""
	}
	if m.Msg != "" {
		return m.Msg
	}
	return m.Detail
}

// UserMessage turns any error from this package into text fit for a toast.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrUnableToDecode) {
		return "Unexpected response from the server"
	}
	var he *HTTPError
	if errors.As(err, &he) {
		if msg := strings.TrimSpace(he.ServerMessage()); msg != "" {
			return msg
		}
		switch {
		case he.Status == http.StatusUnauthorized || he.Status == http.StatusForbidden:
			return "Your session has expired, please log in again"
		case he.Status >= 500:
			return "The server could not process the request, try again later"
		case he.Status >= 300:
			return http.StatusText(he.Status)
		}
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out, check your connection"
	case errors.Is(err, context.Canceled):
		return "The request was cancelled"
	}
	if he != nil {
		return "Network error, check your connection"
	}
	return err.Error()
}

// regular expression mapped to the replacement
var redactHeaders = map[*regexp.Regexp][]byte{
	regexp.MustCompile(`(?i)authorization: (?i)bearer.+\n`): []byte("Authorization: Bearer <token>\n"),
	regexp.MustCompile(`(?i)authorization: (?i)token.+\n`):  []byte("Authorization: Token <token>\n"),
}

// RedactSensitiveHeaders from http request dumps
func RedactSensitiveHeaders(corpus []byte) []byte {
	for k, v := range redactHeaders {
		corpus = k.ReplaceAll(corpus, v)
	}
	return corpus
}
