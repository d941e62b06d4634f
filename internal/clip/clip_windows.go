//go:build windows

package clip

import (
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	cfUnicodeText = 13
	gmemMoveable  = 0x0002
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procOpenClipboard              = user32.NewProc("OpenClipboard")
	procCloseClipboard             = user32.NewProc("CloseClipboard")
	procIsClipboardFormatAvailable = user32.NewProc("IsClipboardFormatAvailable")
	procGetClipboardData           = user32.NewProc("GetClipboardData")
	procSetClipboardData           = user32.NewProc("SetClipboardData")
	procRegisterClipboardFormatW   = user32.NewProc("RegisterClipboardFormatW")

	procGlobalAlloc  = kernel32.NewProc("GlobalAlloc")
	procGlobalFree   = kernel32.NewProc("GlobalFree")
	procGlobalLock   = kernel32.NewProc("GlobalLock")
	procGlobalUnlock = kernel32.NewProc("GlobalUnlock")
	procGlobalSize   = kernel32.NewProc("GlobalSize")
)

type windowsBoard struct {
	owner uintptr
}

// New returns the Windows clipboard board. owner is the window that opens
// the clipboard; zero opens it on behalf of the current task. Calls must come
// from the thread that runs owner's message loop.
func New(owner uintptr) (Board, error) {
	if err := user32.Load(); err != nil {
		return nil, fmt.Errorf("load user32: %w", err)
	}
	return &windowsBoard{owner: owner}, nil
}

func (b *windowsBoard) Name() string { return "Windows Clipboard" }

func (b *windowsBoard) ReadText() (string, bool, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if r, _, _ := procIsClipboardFormatAvailable.Call(cfUnicodeText); r == 0 {
		return "", false, nil
	}
	if r, _, err := procOpenClipboard.Call(b.owner); r == 0 {
		return "", false, fmt.Errorf("read: %w (%v)", ErrUnavailable, err)
	}
	defer procCloseClipboard.Call()

	h, _, err := procGetClipboardData.Call(cfUnicodeText)
	if h == 0 {
		// Text vanished between the availability check and the open.
		return "", false, nil
	}
	p, _, err := procGlobalLock.Call(h)
	if p == 0 {
		return "", false, fmt.Errorf("GlobalLock: %w", err)
	}
	defer procGlobalUnlock.Call(h)

	size, _, _ := procGlobalSize.Call(h)
	raw := unsafe.Slice((*byte)(unsafe.Pointer(p)), size)
	text, err := DecodeUTF16(raw)
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

func (b *windowsBoard) Alloc(data []byte) (*Buffer, error) {
	h, _, err := procGlobalAlloc.Call(gmemMoveable, uintptr(len(data)))
	if h == 0 {
		return nil, fmt.Errorf("GlobalAlloc(%d): %w", len(data), err)
	}
	buf := NewBuffer(h, len(data), globalFree)

	p, _, err := procGlobalLock.Call(h)
	if p == 0 {
		_ = buf.Release()
		return nil, fmt.Errorf("GlobalLock: %w", err)
	}
	copy(unsafe.Slice((*byte)(unsafe.Pointer(p)), len(data)), data)
	procGlobalUnlock.Call(h)
	return buf, nil
}

func globalFree(h uintptr) error {
	if r, _, err := procGlobalFree.Call(h); r != 0 {
		return fmt.Errorf("GlobalFree: %w", err)
	}
	return nil
}

func (b *windowsBoard) RegisterFormat(name string) (Format, error) {
	p, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return 0, fmt.Errorf("register format %q: %w", name, err)
	}
	r, _, err := procRegisterClipboardFormatW.Call(uintptr(unsafe.Pointer(p)))
	if r == 0 {
		return 0, fmt.Errorf("RegisterClipboardFormatW(%q): %w", name, err)
	}
	return Format(r), nil
}

func (b *windowsBoard) Open() (Writer, error) {
	runtime.LockOSThread()
	if r, _, err := procOpenClipboard.Call(b.owner); r == 0 {
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("%w (%v)", ErrUnavailable, err)
	}
	return &windowsWriter{}, nil
}

type windowsWriter struct {
	closed bool
}

func (w *windowsWriter) Set(f Format, buf *Buffer) error {
	return buf.Transfer(func(h uintptr) error {
		if r, _, err := procSetClipboardData.Call(uintptr(f), h); r == 0 {
			return fmt.Errorf("SetClipboardData(%s): %w", f, err)
		}
		return nil
	})
}

func (w *windowsWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	defer runtime.UnlockOSThread()
	if r, _, err := procCloseClipboard.Call(); r == 0 {
		return fmt.Errorf("CloseClipboard: %w", err)
	}
	return nil
}
