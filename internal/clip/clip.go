// Package clip is the clipboard as seen by the transcoder: a text snapshot
// on the way in, a registered format and an owned memory block on the way
// out. Build constraints select the implementation:
//
//	clip_windows.go  — user32/kernel32 via golang.org/x/sys/windows
//	clip_other.go    — unsupported stub
//	memory.go        — in-process board for dry runs and tests
package clip

import (
	"errors"
	"fmt"
)

// Format is a registered clipboard format identifier.
type Format uint32

func (f Format) String() string { return fmt.Sprintf("%#04x", uint32(f)) }

var (
	// ErrUnavailable means the clipboard is held by another process.
	ErrUnavailable = errors.New("clipboard unavailable")

	// ErrUnsupported is returned where no system clipboard backend exists.
	ErrUnsupported = errors.New("clipboard backend not supported on this platform")
)

// Board is the interface that clipboard implementations satisfy.
type Board interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// ReadText copies the current plain-text contents out of the clipboard.
	// ok is false when no text is present. The clipboard is held only for the
	// duration of the copy.
	ReadText() (text string, ok bool, err error)

	// Alloc copies data into a freshly allocated block owned by the caller.
	Alloc(data []byte) (*Buffer, error)

	// RegisterFormat returns the identifier for a named format, registering
	// it if needed.
	RegisterFormat(name string) (Format, error)

	// Open acquires the clipboard for writing. It never waits: if another
	// process holds the clipboard it fails with ErrUnavailable.
	Open() (Writer, error)
}

// Writer is an open clipboard.
type Writer interface {
	// Set publishes buf under f, leaving other formats in place. It must go
	// through buf.Transfer so ownership is decided in one place.
	Set(f Format, buf *Buffer) error

	// Close releases the clipboard.
	Close() error
}
