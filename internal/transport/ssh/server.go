// Package ssh serves gateway sessions to SSH clients. The login user name
// selects the device.
package ssh

import (
	"context"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/sandevgo/devterm/internal/config"
	"github.com/sandevgo/devterm/internal/core"
	"github.com/sandevgo/devterm/internal/service/gateway"
	"github.com/sandevgo/devterm/pkg/log"
	"golang.org/x/crypto/ssh"
)

type Server struct {
	cfg     *config.SSHConfig
	gateway *gateway.Gateway
	sshCfg  *ssh.ServerConfig

	mu    sync.Mutex
	ln    net.Listener
	conns sync.WaitGroup
}

func NewServer(cfg *config.SSHConfig, gw *gateway.Gateway) (*Server, error) {
	signer, err := loadHostKey(cfg.HostKeyPath)
	if err != nil {
		return nil, err
	}

	sshCfg := &ssh.ServerConfig{
		ServerVersion: "SSH-2.0-" + core.DevtermName + "_" + core.DevtermVersion,
	}
	if cfg.Password == "" {
		sshCfg.NoClientAuth = true
	} else {
		sshCfg.PasswordCallback = func(meta ssh.ConnMetadata, password []byte) (*ssh.Permissions, error) {
			if subtle.ConstantTimeCompare(password, []byte(cfg.Password)) == 1 {
				return nil, nil
			}
			return nil, errors.New("password rejected")
		}
	}
	sshCfg.AddHostKey(signer)

	return &Server{
		cfg:     cfg,
		gateway: gw,
		sshCfg:  sshCfg,
	}, nil
}

func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.ListenAddr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until it is closed.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	logger := log.FromCtx(ctx)

	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	logger.Info().Str("addr", ln.Addr().String()).Msg("ssh gateway listening")

	for {
		nc, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handleConn(ctx, nc)
		}()
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()

	if ln == nil {
		return nil
	}
	if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("close listener: %w", err)
	}

	done := make(chan struct{})
	go func() {
		s.conns.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("ssh connections still open: %w", ctx.Err())
	}
}

func (s *Server) handleConn(ctx context.Context, nc net.Conn) {
	logger := log.FromCtx(ctx).With().Str("remote", nc.RemoteAddr().String()).Logger()

	sconn, chans, reqs, err := ssh.NewServerConn(nc, s.sshCfg)
	if err != nil {
		logger.Warn().Err(err).Msg("ssh handshake failed")
		_ = nc.Close()
		return
	}
	defer sconn.Close()

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-connCtx.Done()
		_ = sconn.Close()
	}()
	go ssh.DiscardRequests(reqs)

	deviceID := sconn.User()
	logger.Info().Str("device", deviceID).Msg("ssh client connected")

	var sessions sync.WaitGroup
	for newCh := range chans {
		if newCh.ChannelType() != "session" {
			_ = newCh.Reject(ssh.UnknownChannelType, "unsupported channel type")
			continue
		}
		ch, requests, err := newCh.Accept()
		if err != nil {
			logger.Warn().Err(err).Msg("failed to accept channel")
			continue
		}

		sessions.Add(1)
		go func() {
			defer sessions.Done()
			s.handleSession(connCtx, deviceID, ch, requests)
		}()
	}
	sessions.Wait()
	logger.Info().Str("device", deviceID).Msg("ssh client disconnected")
}

func (s *Server) handleSession(ctx context.Context, deviceID string, ch ssh.Channel, requests <-chan *ssh.Request) {
	logger := log.FromCtx(ctx)
	t := newTerminal(ch)

	shell := make(chan struct{})
	reqDone := make(chan struct{})
	go func() {
		defer close(reqDone)
		started := false
		for req := range requests {
			ok := false
			switch req.Type {
			case "shell":
				if !started {
					started = true
					ok = true
					close(shell)
				}
			case "pty-req":
				if w, h, parsed := parsePtyRequest(req.Payload); parsed {
					t.resize(w, h)
				}
				ok = true
			case "window-change":
				if w, h, parsed := parseDims(req.Payload); parsed {
					t.resize(w, h)
				}
				ok = true
			case "env":
				ok = true
			case "exec", "subsystem":
				// Only interactive shells are served.
				if req.WantReply {
					_ = req.Reply(false, nil)
				}
				if !started {
					_ = ch.Close()
				}
				continue
			}
			if req.WantReply {
				_ = req.Reply(ok, nil)
			}
		}
	}()

	select {
	case <-shell:
	case <-reqDone:
		// Channel closed before a shell was requested.
		_ = ch.Close()
		return
	case <-ctx.Done():
		_ = ch.Close()
		return
	}

	if err := s.gateway.Serve(ctx, deviceID, t); err != nil {
		logger.Warn().Err(err).Str("device", deviceID).Msg("session ended with error")
	}
}

// parsePtyRequest reads the terminal size from a pty-req payload:
// string TERM, uint32 cols, uint32 rows, ...
func parsePtyRequest(payload []byte) (width, height int, ok bool) {
	if len(payload) < 4 {
		return 0, 0, false
	}
	n := binary.BigEndian.Uint32(payload)
	if uint64(len(payload)) < 4+uint64(n) {
		return 0, 0, false
	}
	return parseDims(payload[4+n:])
}

func parseDims(payload []byte) (width, height int, ok bool) {
	if len(payload) < 8 {
		return 0, 0, false
	}
	w := binary.BigEndian.Uint32(payload)
	h := binary.BigEndian.Uint32(payload[4:])
	return int(w), int(h), true
}
