//go:build !windows

package ipc

import (
	"net"
	"os"
	"path/filepath"
)

func socketPath() string {
	// Linux: prefer XDG_RUNTIME_DIR
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "alephclip.sock")
	}
	// macOS / fallback
	return filepath.Join(os.TempDir(), "alephclip.sock")
}

func listenIPC(path string) (net.Listener, error) {
	// Remove stale socket from a previous (crashed) run.
	if c, err := dialIPC(path); err == nil {
		_ = c.Close()
	} else {
		_ = os.Remove(path)
	}
	return net.Listen("unix", path)
}

func dialIPC(path string) (net.Conn, error) {
	return net.DialTimeout("unix", path, dialTimeout)
}
