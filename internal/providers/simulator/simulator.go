// Package simulator answers device commands with deterministic canned text.
package simulator

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/devterm/internal/core"
)

var _ core.Executor = (*Simulator)(nil)

// Simulator stands in for a device that has no management endpoint.
type Simulator struct {
	deviceID string
}

func New(deviceID string) *Simulator {
	return &Simulator{deviceID: deviceID}
}

func (s *Simulator) Execute(ctx context.Context, command string) (string, error) {
	trimmed := strings.TrimSpace(command)
	switch {
	case trimmed == "":
		return "", nil
	case strings.EqualFold(trimmed, "show version"):
		return fmt.Sprintf("Mock 'show version' for %s", s.deviceID), nil
	default:
		return fmt.Sprintf("Command '%s' executed (simulated for %s).", command, s.deviceID), nil
	}
}
