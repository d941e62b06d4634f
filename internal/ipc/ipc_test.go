//go:build !windows

package ipc

import (
	"path/filepath"
	"testing"
)

func TestListenDial(t *testing.T) {
	// Unix socket paths are length-limited; t.TempDir can be long on macOS.
	path := filepath.Join(t.TempDir(), "a.sock")
	t.Setenv("ALEPHCLIP_SOCKET", path)

	if SocketPath() != path {
		t.Fatalf("SocketPath = %q, want %q", SocketPath(), path)
	}
	if IsRunning() {
		t.Fatal("IsRunning before Listen")
	}

	ln, err := Listen()
	if err != nil {
		t.Fatal(err)
	}
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			_ = c.Close()
		}
	}()

	if !IsRunning() {
		t.Error("IsRunning = false while listening")
	}
	_ = ln.Close()
}

func TestSocketPathXDG(t *testing.T) {
	t.Setenv("ALEPHCLIP_SOCKET", "")
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	if got := SocketPath(); got != "/run/user/1000/alephclip.sock" {
		t.Errorf("SocketPath = %q", got)
	}
}
