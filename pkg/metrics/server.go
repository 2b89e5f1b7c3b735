package metrics

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"vigil/pkg/log"
)

// Serve runs the metrics and health endpoint until ctx is cancelled.
// It returns once the listener is closed and in-flight requests have
// drained, or immediately if the address cannot be bound.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.HandleFunc("/healthz", HealthHandler())
	mux.HandleFunc("/readyz", ReadyHandler())
	mux.HandleFunc("/livez", LivenessHandler())

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	log.Info(fmt.Sprintf("Metrics endpoint listening on %s", addr))

	// Serve in goroutine
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error(fmt.Sprintf("Metrics server error: %v", err))
		}
	}()

	// Wait for context cancellation
	<-ctx.Done()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
