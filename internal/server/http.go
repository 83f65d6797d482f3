package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DefaultShutdownTimeout bounds how long Stop waits for in-flight requests.
const DefaultShutdownTimeout = 10 * time.Second

// HTTPService serves an http.Handler as a lifecycle Service.
type HTTPService struct {
	srv     *http.Server
	timeout time.Duration
	logger  *zap.Logger
	ready   chan struct{}
	addr    net.Addr
}

// NewHTTPService creates a Service listening on addr.
//
// Precondition: handler and logger must be non-nil.
func NewHTTPService(addr string, handler http.Handler, logger *zap.Logger) *HTTPService {
	return &HTTPService{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		timeout: DefaultShutdownTimeout,
		logger:  logger,
		ready:   make(chan struct{}),
	}
}

// Start listens and serves until Stop is called.
//
// Postcondition: Returns nil after a graceful Stop; any other listener failure is returned.
func (h *HTTPService) Start() error {
	ln, err := net.Listen("tcp", h.srv.Addr)
	if err != nil {
		return err
	}
	h.addr = ln.Addr()
	close(h.ready)
	h.logger.Info("http listening", zap.String("addr", h.addr.String()))
	if err := h.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr blocks until the listener is bound and returns its address.
func (h *HTTPService) Addr(ctx context.Context) (net.Addr, error) {
	select {
	case <-h.ready:
		return h.addr, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stop drains in-flight requests for up to the shutdown timeout.
func (h *HTTPService) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	if err := h.srv.Shutdown(ctx); err != nil {
		h.logger.Warn("http shutdown", zap.Error(err))
	}
}
