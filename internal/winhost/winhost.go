// Package winhost runs the hidden window whose message loop delivers
// clipboard-viewer notifications to a chain.Link.
//
// The host is the only place that touches window handles. It creates the
// window, hands the handle to the caller's hook factory, joins the chain,
// pumps messages until the context is cancelled, and leaves the chain before
// the window handle is destroyed.
package winhost

import "errors"

// ErrAlreadyRunning is returned when another instance holds the
// single-instance mutex.
var ErrAlreadyRunning = errors.New("application is already running")

// Config configures the host window.
type Config struct {
	// Title is the window title and notice caption.
	Title string

	// MutexName names the single-instance mutex; empty disables the check.
	MutexName string

	// NewHook is called on the message-loop thread once the window exists.
	// It receives the window handle and returns the function run on every
	// clipboard change.
	NewHook func(owner uintptr) (func(), error)
}

// DefaultMutexName is the session-local single-instance mutex.
const DefaultMutexName = `Local\AlephClipboardMutex`
