package health

import (
	"context"
	"fmt"
	"net"
	"time"

	"vigil/pkg/types"
)

// TCPChecker probes a TCP address for reachability
type TCPChecker struct {
	// Address is the TCP address to connect to (e.g., "127.0.0.1:8000")
	Address string

	// Timeout is the connection timeout (default: 5 seconds)
	Timeout time.Duration
}

// NewTCPChecker creates a new TCP reachability checker
func NewTCPChecker(address string) *TCPChecker {
	return &TCPChecker{
		Address: address,
		Timeout: types.DefaultProbeTimeout,
	}
}

// Check dials the address once. The boolean is the reachability signal;
// the string carries detail for operators.
func (t *TCPChecker) Check(ctx context.Context) (bool, string) {
	dialer := &net.Dialer{
		Timeout: t.Timeout,
	}

	conn, err := dialer.DialContext(ctx, "tcp", t.Address)
	if err != nil {
		return false, fmt.Sprintf("connection failed: %v", err)
	}
	_ = conn.Close()

	return true, fmt.Sprintf("tcp connect to %s ok", t.Address)
}

// WithTimeout sets the connection timeout
func (t *TCPChecker) WithTimeout(timeout time.Duration) *TCPChecker {
	t.Timeout = timeout
	return t
}
