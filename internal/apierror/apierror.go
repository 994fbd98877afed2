// Package apierror provides standardized error structures for the terminal API
// and for failures reported by the backend collaborator.
// All errors returned to the local UI go through this package so that internal
// details (stack traces, transport errors) never leak into responses.
package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// APIError is the canonical error envelope for all 4xx/5xx terminal responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// ── Backend collaborator errors ──────────────────────────────────────────────

// Kind classifies a failure reported while talking to the backend.
type Kind int

const (
	// KindTransport: network failure, timeout, open circuit or 5xx. Retryable.
	KindTransport Kind = iota
	// KindValidation: 4xx with a structured message, surfaced verbatim.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// RemoteError is returned by the backend client for every failed call.
type RemoteError struct {
	Kind     Kind
	Status   int
	Messages []string
	Err      error
}

func (e *RemoteError) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("backend %d: %s", e.Status, strings.Join(e.Messages, ", "))
	}
	if e.Err != nil {
		return fmt.Sprintf("backend %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("backend %s: status %d", e.Kind, e.Status)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Retryable reports whether the failure is worth retrying unchanged.
func (e *RemoteError) Retryable() bool { return e.Kind == KindTransport }

// Transport wraps a network-level failure.
func Transport(err error) *RemoteError {
	return &RemoteError{Kind: KindTransport, Err: err}
}

// FromResponse builds a RemoteError from a non-2xx status and its body.
// The backend answers `{ "message": string | string[] }`; anything else is kept
// without messages so callers fall back to their generic text.
func FromResponse(status int, body []byte) *RemoteError {
	kind := KindValidation
	if status >= 500 {
		kind = KindTransport
	}
	return &RemoteError{Kind: kind, Status: status, Messages: decodeMessages(body)}
}

func decodeMessages(body []byte) []string {
	var envelope struct {
		Message json.RawMessage `json:"message"`
	}
	if len(body) == 0 || json.Unmarshal(body, &envelope) != nil || len(envelope.Message) == 0 {
		return nil
	}

	var single string
	if err := json.Unmarshal(envelope.Message, &single); err == nil {
		if single == "" {
			return nil
		}
		return []string{single}
	}

	var many []string
	if err := json.Unmarshal(envelope.Message, &many); err == nil {
		out := many[:0]
		for _, m := range many {
			if m != "" {
				out = append(out, m)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	}
	return nil
}

// Message renders err for the user: the backend message verbatim (an array is
// joined with ", ") or fallback when the failure carries no structured message.
func Message(err error, fallback string) string {
	var re *RemoteError
	if errors.As(err, &re) && len(re.Messages) > 0 {
		return strings.Join(re.Messages, ", ")
	}
	return fallback
}

// IsTransport reports whether err is a retryable backend failure.
func IsTransport(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Kind == KindTransport
}
