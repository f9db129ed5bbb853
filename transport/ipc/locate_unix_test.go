//go:build !windows

package ipc

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"testing"
)

func TestDialUnixSocketEndpoint(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", dir)

	if _, err := Dial(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound with no listener, got %v", err)
	}

	ln, err := net.Listen("unix", filepath.Join(dir, "discord-ipc-2"))
	if err != nil {
		t.Skipf("unix sockets unavailable: %v", err)
	}
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err == nil {
			accepted <- c
		}
	}()

	conn, err := Dial(context.Background())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if conn.Path() != filepath.Join(dir, "discord-ipc-2") {
		t.Fatalf("path = %q", conn.Path())
	}

	peer := <-accepted
	defer peer.Close()
	if err := conn.SendOp(OpHandshake, Handshake{Version: 1, ClientID: "7"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	f, err := ReadFrame(peer)
	if err != nil {
		t.Fatalf("peer read: %v", err)
	}
	if f.Op != OpHandshake || string(f.Payload) != `{"v":1,"client_id":"7"}` {
		t.Fatalf("peer got (%v, %s)", f.Op, f.Payload)
	}
}
