package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/devterm/pkg/log"
)

type NXAPIConfig struct {
	Endpoint string        `env:"NXAPI_ENDPOINT" envDefault:"https://sbx-nxos-mgmt.cisco.com/ins"`
	Username string        `env:"NXAPI_USERNAME" envDefault:"admin"`
	Password string        `env:"NXAPI_PASSWORD"`
	Timeout  time.Duration `env:"NXAPI_TIMEOUT" envDefault:"15s"`
	Insecure bool          `env:"NXAPI_INSECURE" envDefault:"true"`
}

func LoadNXAPIConfig() (*NXAPIConfig, error) {
	c := &NXAPIConfig{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse nxapi config: %w", err)
	}
	if c.Timeout <= 0 {
		return nil, fmt.Errorf("parse nxapi config: NXAPI_TIMEOUT must be positive, got %s", c.Timeout)
	}
	return c, nil
}

func NewNXAPIConfig(ctx context.Context) *NXAPIConfig {
	c, err := LoadNXAPIConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse NX-API config")
	}
	return c
}
