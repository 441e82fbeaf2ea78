package utils

import (
	"fmt"
	"net"
	"time"
)

// PingHostPort checks that a TCP listener answers at host:port within the
// timeout. Used by the health check to probe the SMTP relay without sending
// mail.
func PingHostPort(host, port string, timeout time.Duration) error {
	address := net.JoinHostPort(host, port)

	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	defer conn.Close()

	return nil
}
