package gateway

import "strings"

const (
	sandboxPrompt  = "nx-sandbox# "
	fallbackPrompt = "switch# "
	promptSuffix   = "# "
)

// Prompt derives the synthetic shell prompt for a device. The reserved
// device gets the sandbox prompt, hyphenated identifiers use their lowered
// first segment as host name, anything else falls back to "switch".
func Prompt(deviceID, reservedID string) string {
	if deviceID == reservedID {
		return sandboxPrompt
	}
	if host, _, found := strings.Cut(deviceID, "-"); found {
		return strings.ToLower(host) + promptSuffix
	}
	return fallbackPrompt
}
