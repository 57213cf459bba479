package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/sandevgo/devterm/internal/config"
	"github.com/sandevgo/devterm/internal/core"
	"github.com/sandevgo/devterm/internal/service/gateway"
	"github.com/sandevgo/devterm/pkg/log"
)

var _ core.Channel = (*ReadLine)(nil)

// ReadLine is a local terminal session. The prompt of each reply is handed
// to readline so history navigation redraws it.
type ReadLine struct {
	cfg      *config.AppConfig
	gateway  *gateway.Gateway
	deviceID string
	rl       *readline.Instance
}

func NewReadLine(gw *gateway.Gateway, cfg *config.AppConfig, deviceID string) (*ReadLine, error) {
	// Ensure runtime directory exists
	if err := os.MkdirAll(cfg.RuntimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "",
		HistoryFile:     filepath.Join(cfg.RuntimePath, "input_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		cfg:      cfg,
		gateway:  gw,
		deviceID: deviceID,
		rl:       rl,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	log.FromCtx(ctx).Debug().Str("device", r.deviceID).Msg("console session started. Type 'exit' to quit.")
	return r.gateway.Serve(ctx, r.deviceID, r)
}

// ReadLine maps Ctrl+C on an empty line, Ctrl+D and "exit" to io.EOF.
func (r *ReadLine) ReadLine(ctx context.Context) (string, error) {
	for {
		line, err := r.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					return "", io.EOF
				}
				continue
			}
			return "", err
		}

		if strings.TrimSpace(line) == "exit" {
			return "", io.EOF
		}
		return line, nil
	}
}

func (r *ReadLine) WriteText(ctx context.Context, text string) error {
	body, prompt := gateway.SplitPrompt(text)
	r.rl.SetPrompt(prompt)
	if body == "" {
		return nil
	}
	_, err := io.WriteString(r.rl.Stdout(), body)
	return err
}

func (r *ReadLine) Close() error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	return r.Close()
}
