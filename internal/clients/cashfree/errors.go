package cashfree

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// GatewayError is returned for any non-2xx gateway response.
type GatewayError struct {
	StatusCode int
	Code       string
	Type       string
	Message    string
	Body       []byte
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error (%d): %s", e.StatusCode, e.Message)
}

func newGatewayError(status int, body []byte) *GatewayError {
	ge := &GatewayError{StatusCode: status, Body: body}

	var parsed struct {
		Message string `json:"message"`
		Code    string `json:"code"`
		Type    string `json:"type"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		ge.Message = parsed.Message
		ge.Code = parsed.Code
		ge.Type = parsed.Type
	} else {
		ge.Message = fmt.Sprintf("gateway request failed with status %d", status)
	}
	return ge
}

type transportError struct {
	err error
}

func (e *transportError) Error() string { return "cashfree: transport: " + e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var te *transportError
	if errors.As(err, &te) {
		return true
	}
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.StatusCode == http.StatusTooManyRequests || ge.StatusCode >= 500
	}
	return false
}

// IsNotFound reports whether the gateway does not know the requested resource.
func IsNotFound(err error) bool {
	var ge *GatewayError
	return errors.As(err, &ge) && ge.StatusCode == http.StatusNotFound
}

var alreadyPhrases = map[SubscriptionAction][]string{
	ActionCancel:   {"already cancelled", "already canceled"},
	ActionPause:    {"already paused", "already on hold"},
	ActionActivate: {"already active", "already activated"},
}

// IsAlreadyInState reports whether err says the subscription is already where action would take it.
func IsAlreadyInState(err error, action SubscriptionAction) bool {
	var ge *GatewayError
	if !errors.As(err, &ge) {
		return false
	}
	msg := strings.ToLower(ge.Message)
	for _, phrase := range alreadyPhrases[action] {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
