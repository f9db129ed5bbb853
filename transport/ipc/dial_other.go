//go:build !windows

package ipc

import (
	"context"
	"net"
)

func dialEndpoint(ctx context.Context, path string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "unix", path)
}
