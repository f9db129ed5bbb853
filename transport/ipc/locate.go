package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"runtime"
	"strconv"
)

const (
	endpointName  = "discord-ipc-"
	maxCandidates = 10
	fallbackBase  = "/tmp"
)

// ErrNotFound means no candidate endpoint accepted a connection.
var ErrNotFound = errors.New("ipc: no endpoint accepted a connection")

var runtimeDirEnv = []string{"XDG_RUNTIME_DIR", "TMPDIR", "TMP", "TEMP"}

// CandidatePaths returns the ordered endpoints for goos.
func CandidatePaths(goos string, getenv func(string) string) []string {
	paths := make([]string, 0, maxCandidates)
	if goos == "windows" {
		for i := 0; i < maxCandidates; i++ {
			paths = append(paths, `\\.\pipe\`+endpointName+strconv.Itoa(i))
		}
		return paths
	}

	base := fallbackBase
	for _, key := range runtimeDirEnv {
		if v := getenv(key); v != "" {
			base = v
			break
		}
	}
	for i := 0; i < maxCandidates; i++ {
		paths = append(paths, base+"/"+endpointName+strconv.Itoa(i))
	}
	return paths
}

// DialFunc opens the raw transport at path.
type DialFunc func(ctx context.Context, path string) (net.Conn, error)

// Locator resolves and opens the first reachable endpoint.
type Locator struct {
	Paths func() []string
	Dial  DialFunc
}

func DefaultLocator() *Locator {
	return &Locator{
		Paths: func() []string { return CandidatePaths(runtime.GOOS, os.Getenv) },
		Dial:  dialEndpoint,
	}
}

// Connect tries every candidate in order. The list is recomputed per call.
func (l *Locator) Connect(ctx context.Context) (*Conn, error) {
	var lastErr error
	for _, path := range l.Paths() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, err := l.Dial(ctx, path)
		if err != nil {
			lastErr = err
			continue
		}
		return NewConn(c, path), nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, lastErr)
	}
	return nil, ErrNotFound
}

// Dial opens the first reachable endpoint for the running platform.
func Dial(ctx context.Context) (*Conn, error) {
	return DefaultLocator().Connect(ctx)
}
