package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/devterm/internal/config"
	"github.com/sandevgo/devterm/internal/providers/nxapi"
	"github.com/sandevgo/devterm/internal/service/gateway"
	"github.com/sandevgo/devterm/internal/transport/ssh"
	"github.com/sandevgo/devterm/internal/transport/websocket"
	"github.com/sandevgo/devterm/pkg/log"
	"github.com/sandevgo/devterm/pkg/srv"
)

// NewGateway loads configuration and builds the gateway with its shared
// NX-API client. The returned service releases the client on shutdown.
func NewGateway(ctx context.Context) (*config.AppConfig, *gateway.Gateway, srv.Service) {
	logger := log.FromCtx(ctx)

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	nxCfg := config.NewNXAPIConfig(ctx)

	// 2. Remote executor
	client := nxapi.NewClient(nxCfg)
	logger.Debug().
		Str("endpoint", nxCfg.Endpoint).
		Str("reserved_device", appCfg.ReservedDeviceID).
		Dur("timeout", nxCfg.Timeout).
		Msg("nx-api client ready")

	// 3. Gateway
	return appCfg, gateway.New(appCfg, client), srv.NewCleanup(client.Close)
}

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)

	appCfg, gw, cleanup := NewGateway(ctx)
	services := []srv.Service{cleanup}

	// 4. Transports
	transports, err := initTransports(ctx, appCfg, gw)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize transports")
	}
	return append(services, transports...)
}

func initTransports(ctx context.Context, cfg *config.AppConfig, gw *gateway.Gateway) ([]srv.Service, error) {
	services := []srv.Service{websocket.NewServer(cfg, gw)}

	if cfg.IsSSHSelected() {
		sshCfg := config.NewSSHConfig(ctx, cfg.GetRuntimePath())
		server, err := ssh.NewServer(sshCfg, gw)
		if err != nil {
			return nil, err
		}
		services = append(services, server)
	}

	return services, nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
