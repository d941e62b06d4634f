package clip

import (
	"errors"
	"fmt"
)

// ErrTransferred is returned when a buffer that now belongs to the system is
// touched again.
var ErrTransferred = errors.New("buffer ownership already transferred")

type bufferState int

const (
	stateOwned bufferState = iota
	stateTransferred
	stateReleased
)

// Buffer is a block of memory holding a payload. It starts out owned by this
// process and ends either transferred to the clipboard or released, never
// both.
type Buffer struct {
	handle uintptr
	size   int
	free   func(uintptr) error
	state  bufferState
}

// NewBuffer wraps an allocated block. free is called at most once, and only
// while the block is still owned.
func NewBuffer(handle uintptr, size int, free func(uintptr) error) *Buffer {
	return &Buffer{handle: handle, size: size, free: free}
}

// Handle returns the system handle of the block.
func (b *Buffer) Handle() uintptr { return b.handle }

// Len returns the payload size in bytes.
func (b *Buffer) Len() int { return b.size }

// Owned reports whether the block still belongs to this process.
func (b *Buffer) Owned() bool { return b.state == stateOwned }

// Transferred reports whether the system accepted the block.
func (b *Buffer) Transferred() bool { return b.state == stateTransferred }

// Transfer offers the block to the system through give. If give succeeds the
// block belongs to the system and must not be touched again; if it fails the
// block is released here and give's error returned.
func (b *Buffer) Transfer(give func(handle uintptr) error) error {
	switch b.state {
	case stateTransferred:
		return ErrTransferred
	case stateReleased:
		return errors.New("buffer already released")
	}
	if err := give(b.handle); err != nil {
		if ferr := b.Release(); ferr != nil {
			return errors.Join(err, ferr)
		}
		return err
	}
	b.state = stateTransferred
	return nil
}

// Release frees a block that is still owned. Releasing twice is a no-op;
// releasing a transferred block returns ErrTransferred.
func (b *Buffer) Release() error {
	switch b.state {
	case stateTransferred:
		return ErrTransferred
	case stateReleased:
		return nil
	}
	b.state = stateReleased
	if b.free == nil {
		return nil
	}
	if err := b.free(b.handle); err != nil {
		return fmt.Errorf("free buffer: %w", err)
	}
	return nil
}
