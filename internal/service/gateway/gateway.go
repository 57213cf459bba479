// Package gateway runs interactive device command sessions over any
// core.Channel.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sandevgo/devterm/internal/config"
	"github.com/sandevgo/devterm/internal/core"
	"github.com/sandevgo/devterm/internal/providers/simulator"
	"github.com/sandevgo/devterm/pkg/log"
)

type Gateway struct {
	reservedID string
	remote     core.Executor
}

func New(cfg *config.AppConfig, remote core.Executor) *Gateway {
	return &Gateway{
		reservedID: cfg.ReservedDeviceID,
		remote:     remote,
	}
}

// Select picks the executor for a device. Only the reserved identifier
// reaches the real switch.
func (g *Gateway) Select(deviceID string) core.Executor {
	if deviceID == g.reservedID {
		return g.remote
	}
	return simulator.New(deviceID)
}

// Open binds a new session to deviceID. The prompt and executor are fixed
// for the session lifetime.
func (g *Gateway) Open(deviceID string) *Session {
	return newSession(deviceID, Prompt(deviceID, g.reservedID), g.Select(deviceID))
}

// Serve runs one session until the peer disconnects or ctx is cancelled.
// Commands are handled strictly in order. The channel is always closed on
// return.
func (g *Gateway) Serve(ctx context.Context, deviceID string, ch core.Channel) error {
	defer ch.Close()

	sess := g.Open(deviceID)
	ctx = log.WithFields(ctx, "session", sess.ID.String(), "device", deviceID)
	logger := log.FromCtx(ctx)

	sctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := ch.WriteText(sctx, sess.Greeting()); err != nil {
		return fmt.Errorf("send greeting: %w", err)
	}
	logger.Info().Msg("session opened")

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		for {
			line, err := ch.ReadLine(sctx)
			if err != nil {
				// Publish before cancelling so the loop can tell a
				// transport close from a shutdown.
				readErr <- err
				cancel()
				return
			}
			select {
			case lines <- line:
			case <-sctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-sctx.Done():
			if ctx.Err() != nil {
				logger.Info().Msg("session cancelled")
				return nil
			}
			return g.finish(ctx, sess, ch, <-readErr)
		case err := <-readErr:
			if ctx.Err() != nil {
				logger.Info().Msg("session cancelled")
				return nil
			}
			return g.finish(ctx, sess, ch, err)
		case line := <-lines:
			reply, err := sess.Respond(sctx, line)
			if err != nil || sctx.Err() != nil {
				continue
			}
			if err := ch.WriteText(sctx, reply); err != nil {
				if sctx.Err() != nil {
					continue
				}
				logger.Warn().Err(err).Msg("failed to write reply")
				return fmt.Errorf("write reply: %w", err)
			}
		}
	}
}

func (g *Gateway) finish(ctx context.Context, sess *Session, ch core.Channel, err error) error {
	logger := log.FromCtx(ctx)

	if errors.Is(err, io.EOF) {
		logger.Info().Msg("client disconnected")
		return nil
	}

	logger.Error().Err(err).Msg("session transport failed")
	if werr := ch.WriteText(ctx, notice(err, sess.Prompt())); werr != nil {
		logger.Debug().Err(werr).Msg("could not notify client")
	}
	return fmt.Errorf("read command: %w", err)
}
