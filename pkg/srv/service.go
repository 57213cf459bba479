package srv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sandevgo/devterm/pkg/log"
)

type Service interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Run starts every service in its own goroutine and blocks until ctx is
// cancelled or one of them fails to start. All services are then shut down
// in reverse order, each shutdown bounded by timeout.
func Run(ctx context.Context, services []Service, timeout time.Duration) error {
	logger := log.FromCtx(ctx)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	startErr := make(chan error, len(services))
	for _, service := range services {
		go func(service Service) {
			if err := service.Start(runCtx); err != nil {
				startErr <- fmt.Errorf("%T: %w", service, err)
			}
		}(service)
	}

	var failure error
	select {
	case <-runCtx.Done():
	case failure = <-startErr:
		logger.Error().Err(failure).Msg("service failed, shutting down")
	}
	cancel()

	var errs []error
	for i := len(services) - 1; i >= 0; i-- {
		shutdownCtx, done := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		if err := services[i].Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msgf("%T failed to shutdown", services[i])
			errs = append(errs, err)
		}
		done()
	}

	if failure != nil {
		return failure
	}
	return errors.Join(errs...)
}
