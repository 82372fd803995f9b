package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/spacevoyager/config"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 5 * time.Second

// Background runs alongside the HTTP server until ctx is cancelled.
type Background func(ctx context.Context)

// Run serves handler on cfg.HTTP.Address and blocks until ctx is cancelled or
// the server fails. Background jobs share the server's lifetime.
func Run(ctx context.Context, cfg *config.Config, handler http.Handler, logger logrus.FieldLogger, jobs ...Background) error {
	lis, err := net.Listen("tcp", cfg.HTTP.Address)
	if err != nil {
		return fmt.Errorf("listen http %s: %w", cfg.HTTP.Address, err)
	}
	return serve(ctx, lis, handler, logger, jobs...)
}

func serve(ctx context.Context, lis net.Listener, handler http.Handler, logger logrus.FieldLogger, jobs ...Background) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	jobCtx, cancelJobs := context.WithCancel(ctx)
	defer cancelJobs()
	for _, job := range jobs {
		go job(jobCtx)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(lis) }()
	logger.WithField("address", lis.Addr().String()).Info("http server started")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down http server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}
