package llm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrFatalAPI marks provider failures that will not succeed on retry:
// authentication, billing, and rate-limit conditions.
var ErrFatalAPI = errors.New("fatal LLM API error")

// fatalPatterns are substrings of provider error messages that indicate a
// non-transient failure.
var fatalPatterns = []string{
	"credit balance",
	"rate limit",
	"quota exceeded",
	"billing",
	"invalid api key",
	"authentication failed",
	"unauthorized",
	"401",
	"403",
}

func isFatalAPIError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range fatalPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// WrapFatalError tags fatal API errors with ErrFatalAPI so callers can
// distinguish them via errors.Is. Non-fatal errors pass through unchanged.
func WrapFatalError(err error) error {
	if err == nil {
		return nil
	}
	if isFatalAPIError(err) {
		return fmt.Errorf("%w: %v", ErrFatalAPI, err)
	}
	return err
}
