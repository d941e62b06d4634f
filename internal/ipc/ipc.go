// Package ipc provides the local endpoint the running daemon answers status
// queries on: a Unix socket on Linux/macOS, a named pipe on Windows.
package ipc

import (
	"net"
	"os"
	"time"
)

const dialTimeout = 2 * time.Second

// SocketPath returns the platform-appropriate endpoint path.
//
//   - Linux / macOS: $XDG_RUNTIME_DIR/alephclip.sock, else $TMPDIR/alephclip.sock
//   - Windows:       \\.\pipe\alephclip
//
// $ALEPHCLIP_SOCKET overrides both.
func SocketPath() string {
	if s := os.Getenv("ALEPHCLIP_SOCKET"); s != "" {
		return s
	}
	return socketPath()
}

// Listen creates a listener on the endpoint.
func Listen() (net.Listener, error) {
	return listenIPC(SocketPath())
}

// Dial connects to the endpoint.
func Dial() (net.Conn, error) {
	return dialIPC(SocketPath())
}

// IsRunning reports whether a daemon appears to be listening. It does a
// cheap dial-and-close; no data is exchanged.
func IsRunning() bool {
	c, err := Dial()
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}
