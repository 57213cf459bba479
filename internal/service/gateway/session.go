package gateway

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/devterm/internal/core"
	"github.com/sandevgo/devterm/pkg/log"
)

// Session is owned by the goroutine serving its connection.
type Session struct {
	ID       uuid.UUID
	DeviceID string

	prompt   string
	executor core.Executor
}

func newSession(deviceID, prompt string, executor core.Executor) *Session {
	return &Session{
		ID:       uuid.New(),
		DeviceID: deviceID,
		prompt:   prompt,
		executor: executor,
	}
}

func (s *Session) Prompt() string {
	return s.prompt
}

func (s *Session) Greeting() string {
	return Greeting(s.DeviceID, s.prompt)
}

// Respond executes one command line and returns the reply text. Executor
// faults become part of the reply; an error is returned only when ctx was
// cancelled and nothing should be written.
func (s *Session) Respond(ctx context.Context, line string) (string, error) {
	if strings.TrimSpace(line) == "" {
		return s.prompt, nil
	}

	logger := log.FromCtx(ctx)
	start := time.Now()

	out, err := s.executor.Execute(ctx, line)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		var fault *core.Fault
		if errors.As(err, &fault) {
			logger.Warn().Err(err).Str("kind", fault.Kind.String()).Msg("command failed")
		} else {
			logger.Error().Err(err).Msg("command failed")
		}
		return Format(renderFault(err), s.prompt), nil
	}

	logger.Debug().Str("command", line).Dur("took", time.Since(start)).Msg("command executed")
	return Format(out, s.prompt), nil
}
