package sensor

import (
	"context"
	"io"
	"net"
	"time"
)

// Default bridge endpoint.
const (
	DefaultHost        = "127.0.0.1"
	DefaultPort        = 13854
	DefaultDialTimeout = 5 * time.Second
)

// Dialer opens the byte stream carrying bridge records.
type Dialer interface {
	Dial(ctx context.Context) (io.ReadWriteCloser, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context) (io.ReadWriteCloser, error)

// Dial calls f.
func (f DialerFunc) Dial(ctx context.Context) (io.ReadWriteCloser, error) {
	return f(ctx)
}

// TCPDialer connects to the bridge over TCP.
type TCPDialer struct {
	Addr    string
	Timeout time.Duration
}

// Dial connects to d.Addr.
func (d TCPDialer) Dial(ctx context.Context) (io.ReadWriteCloser, error) {
	nd := net.Dialer{Timeout: d.Timeout}
	return nd.DialContext(ctx, "tcp", d.Addr)
}
