package core

import "context"

// Executor turns one command line into device output. Implementations return
// either the complete output text or an error; partial output is never
// returned alongside an error.
type Executor interface {
	Execute(ctx context.Context, command string) (string, error)
}

// ExecutorFunc adapts a plain function to Executor.
type ExecutorFunc func(ctx context.Context, command string) (string, error)

func (f ExecutorFunc) Execute(ctx context.Context, command string) (string, error) {
	return f(ctx, command)
}

// Channel is one client connection as seen by the session gateway.
// ReadLine returns io.EOF once the peer has closed the connection cleanly.
type Channel interface {
	ReadLine(ctx context.Context) (string, error)
	WriteText(ctx context.Context, text string) error
	Close() error
}
