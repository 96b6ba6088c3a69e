package sdk

import (
	"fmt"
	"strings"
)

// FormatError reports a malformed compact token encountered during
// claims decoding. It is fatal to that decode call and never silently
// defaulted.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "sdk: malformed token: " + e.Reason
}

// AuthError reports a failed CIAM call: a non-200 response from the
// sign-in or refresh endpoints. The client performs no local recovery;
// retry and backoff policy belongs to the caller.
type AuthError struct {
	Op     string
	Status int
	Body   string
}

func (e *AuthError) Error() string {
	msg := "sdk/auth: " + e.Op
	if e.Status != 0 {
		msg = fmt.Sprintf("%s: http %d", msg, e.Status)
	}
	if body := strings.TrimSpace(e.Body); body != "" {
		msg += ": " + body
	}
	return msg
}

// APIError captures a diagram-generation failure with the user-facing
// message mapped from the response status.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("sdk: http %d", e.Status)
	}
	return "sdk: " + e.Message
}

// PromptSizeError reports a prompt outside the allowed length range for
// the current session's quota.
type PromptSizeError struct {
	Min    int
	Max    int
	Length int
}

func (e *PromptSizeError) Error() string {
	return fmt.Sprintf("sdk: the prompt must be between %d and %d characters long, got %d", e.Min, e.Max, e.Length)
}
