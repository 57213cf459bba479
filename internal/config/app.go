package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/devterm/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"DEVTERM_RUNTIME_PATH" envDefault:".devterm"`
	ListenAddr  string `env:"DEVTERM_LISTEN_ADDR" envDefault:":8000"`

	// Sessions opened for this identifier are served by NX-API,
	// every other identifier by the simulator.
	ReservedDeviceID string `env:"DEVTERM_RESERVED_DEVICE" envDefault:"real-san-device"`

	AllowedOrigins []string `env:"DEVTERM_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// Transport Flags
	EnableSSH bool `env:"DEVTERM_ENABLE_SSH" envDefault:"false"`
}

func LoadAppConfig() (*AppConfig, error) {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse app config: %w", err)
	}
	c.RuntimePath = resolveRuntimePath(c.RuntimePath)
	return c, nil
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c, err := LoadAppConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetEnvPath() string {
	return filepath.Join(c.RuntimePath, ".env")
}

func (c AppConfig) IsSSHSelected() bool {
	return c.EnableSSH
}
