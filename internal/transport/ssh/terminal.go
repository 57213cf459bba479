package ssh

import (
	"context"
	"sync"

	"github.com/sandevgo/devterm/internal/core"
	"github.com/sandevgo/devterm/internal/service/gateway"
	"golang.org/x/crypto/ssh"
	"golang.org/x/term"
)

var _ core.Channel = (*terminal)(nil)

// terminal runs line editing over an SSH session channel. The prompt of
// each reply becomes the terminal prompt so it is redrawn while typing.
type terminal struct {
	ch        ssh.Channel
	term      *term.Terminal
	closeOnce sync.Once
}

func newTerminal(ch ssh.Channel) *terminal {
	return &terminal{
		ch:   ch,
		term: term.NewTerminal(ch, ""),
	}
}

// ReadLine returns io.EOF on Ctrl-D or when the client closes the channel.
func (t *terminal) ReadLine(ctx context.Context) (string, error) {
	return t.term.ReadLine()
}

func (t *terminal) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, prompt := gateway.SplitPrompt(text)
	t.term.SetPrompt(prompt)
	if body == "" {
		return nil
	}
	_, err := t.term.Write([]byte(body))
	return err
}

func (t *terminal) resize(width, height int) {
	_ = t.term.SetSize(width, height)
}

func (t *terminal) Close() error {
	var err error
	t.closeOnce.Do(func() {
		_, _ = t.ch.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{0}))
		err = t.ch.Close()
	})
	return err
}
