package ipc

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
)

func TestCandidatePathsWindows(t *testing.T) {
	paths := CandidatePaths("windows", func(string) string { return "ignored" })
	if len(paths) != 10 {
		t.Fatalf("len = %d", len(paths))
	}
	if paths[0] != `\\.\pipe\discord-ipc-0` || paths[9] != `\\.\pipe\discord-ipc-9` {
		t.Fatalf("unexpected paths: %v", paths)
	}
}

func TestCandidatePathsUnixBaseOrder(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"xdg wins", map[string]string{"XDG_RUNTIME_DIR": "/run/user/1000", "TMPDIR": "/var/tmp"}, "/run/user/1000"},
		{"tmpdir", map[string]string{"TMPDIR": "/var/tmp", "TEMP": "/temp"}, "/var/tmp"},
		{"tmp", map[string]string{"TMP": "/t", "TEMP": "/temp"}, "/t"},
		{"temp", map[string]string{"TEMP": "/temp"}, "/temp"},
		{"empty values skipped", map[string]string{"XDG_RUNTIME_DIR": "", "TEMP": "/temp"}, "/temp"},
		{"fallback", nil, "/tmp"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			paths := CandidatePaths("linux", func(k string) string { return tc.env[k] })
			if len(paths) != 10 {
				t.Fatalf("len = %d", len(paths))
			}
			for i, p := range paths {
				want := tc.want + "/discord-ipc-" + string(rune('0'+i))
				if p != want {
					t.Fatalf("paths[%d] = %q, want %q", i, p, want)
				}
			}
		})
	}
}

func TestLocatorNotFound(t *testing.T) {
	tried := 0
	l := &Locator{
		Paths: func() []string { return CandidatePaths("linux", func(string) string { return "" }) },
		Dial: func(ctx context.Context, path string) (net.Conn, error) {
			tried++
			return nil, errors.New("connection refused")
		},
	}
	conn, err := l.Connect(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if conn != nil {
		t.Fatalf("expected no handle")
	}
	if tried != 10 {
		t.Fatalf("tried %d candidates, want 10", tried)
	}
}

func TestLocatorFirstReachableWins(t *testing.T) {
	var tried []string
	l := &Locator{
		Paths: func() []string { return CandidatePaths("linux", func(string) string { return "/run" }) },
		Dial: func(ctx context.Context, path string) (net.Conn, error) {
			tried = append(tried, path)
			if strings.HasSuffix(path, "-3") || strings.HasSuffix(path, "-5") {
				c, peer := net.Pipe()
				t.Cleanup(func() { peer.Close() })
				return c, nil
			}
			return nil, errors.New("no such file")
		},
	}
	conn, err := l.Connect(context.Background())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer conn.Close()
	if conn.Path() != "/run/discord-ipc-3" {
		t.Fatalf("path = %q", conn.Path())
	}
	if len(tried) != 4 {
		t.Fatalf("tried = %v", tried)
	}
}
