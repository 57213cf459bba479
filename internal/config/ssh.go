package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/devterm/pkg/log"
)

type SSHConfig struct {
	ListenAddr string `env:"SSH_LISTEN_ADDR" envDefault:":2222"`
	// Empty means clients are accepted without authentication.
	Password    string `env:"SSH_PASSWORD"`
	HostKeyPath string `env:"SSH_HOST_KEY"`
}

func LoadSSHConfig(runtimePath string) (*SSHConfig, error) {
	c := &SSHConfig{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse ssh config: %w", err)
	}
	if c.HostKeyPath == "" {
		c.HostKeyPath = filepath.Join(runtimePath, "ssh_host_ed25519")
	}
	return c, nil
}

func NewSSHConfig(ctx context.Context, runtimePath string) *SSHConfig {
	c, err := LoadSSHConfig(runtimePath)
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse SSH config")
	}
	return c
}
