package gateway

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/sandevgo/devterm/internal/core"
)

const errorMarker = "% "

// Format builds the reply written back to the client: output framed by
// newlines and followed by the prompt. Blank output yields the bare prompt.
func Format(result, prompt string) string {
	if strings.TrimSpace(result) == "" {
		return prompt
	}
	return "\n" + strings.TrimRightFunc(result, unicode.IsSpace) + "\n" + prompt
}

func Greeting(deviceID, prompt string) string {
	return fmt.Sprintf("Successfully connected to device: %s\n%s", deviceID, prompt)
}

func notice(cause error, prompt string) string {
	return fmt.Sprintf("An error occurred: %v\n%s", cause, prompt)
}

// renderFault converts an executor error into a marked error line.
func renderFault(err error) string {
	var fault *core.Fault
	if !errors.As(err, &fault) {
		return errorMarker + "An error occurred: " + err.Error()
	}

	switch fault.Kind {
	case core.RemoteUnavailable:
		return fmt.Sprintf("%sNX-API Request Error: Could not connect or SSL issue. Details: %v", errorMarker, fault.Err)
	case core.RemoteRejected:
		if fault.AuthFailed() {
			return fmt.Sprintf("%sNX-API HTTP Error: %d - Authentication failed. Review credentials. Response: %s",
				errorMarker, fault.StatusCode, fault.Body)
		}
		return fmt.Sprintf("%sNX-API HTTP Error: %d - Review credentials and server response. Response: %s",
			errorMarker, fault.StatusCode, fault.Body)
	case core.RemoteMalformedResponse:
		return fmt.Sprintf("%sNX-API Error: Failed to decode JSON response from device. Raw response: %s",
			errorMarker, fault.Body)
	default:
		return fmt.Sprintf("%sNX-API Unhandled Exception: %v", errorMarker, fault.Err)
	}
}

// SplitPrompt separates a reply into its body and the trailing prompt line,
// for line-editing transports that draw the prompt themselves.
func SplitPrompt(text string) (body, prompt string) {
	i := strings.LastIndexByte(text, '\n')
	return text[:i+1], text[i+1:]
}
