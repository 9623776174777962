// Package supervisor generalizes the teacher's per-service shutdown
// sequence (payments/app.go's App.Shutdown, kitchen/main.go's signal wait)
// into a reusable N-resource, reverse-order closer used by every cmd/.
package supervisor

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Closer is a named shutdown step. Name is used only for logging.
type Closer struct {
	Name  string
	Close func(ctx context.Context) error
}

// Supervisor owns an ordered list of resources to close, in reverse
// registration order, each bounded by Timeout.
type Supervisor struct {
	logger  *zap.Logger
	Timeout time.Duration
	closers []Closer
}

// New creates a Supervisor that logs through logger and bounds each
// resource's shutdown to timeout (default 5s if zero).
func New(logger *zap.Logger, timeout time.Duration) *Supervisor {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Supervisor{logger: logger, Timeout: timeout}
}

// Register appends a resource to be closed on Shutdown, reverse of
// registration order.
func (s *Supervisor) Register(name string, close func(ctx context.Context) error) {
	s.closers = append(s.closers, Closer{Name: name, Close: close})
}

// WaitForSignal blocks until SIGINT or SIGTERM arrives.
func (s *Supervisor) WaitForSignal() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}

// Shutdown closes every registered resource in reverse registration order,
// each bounded by s.Timeout. It never stops early on an individual error;
// all registered resources get a chance to close, and errors are logged.
func (s *Supervisor) Shutdown() {
	s.logger.Info("shutting down")
	for i := len(s.closers) - 1; i >= 0; i-- {
		c := s.closers[i]
		ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
		if err := c.Close(ctx); err != nil {
			s.logger.Error("error closing resource", zap.String("resource", c.Name), zap.Error(err))
		} else {
			s.logger.Info("resource closed", zap.String("resource", c.Name))
		}
		cancel()
	}
	s.logger.Info("shutdown complete")
}
