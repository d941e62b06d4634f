//go:build windows

package winhost

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"go.klb.dev/alephclip/internal/chain"
)

// ErrUnsupported is only returned by the non-Windows build.
var ErrUnsupported = errors.New("the clipboard viewer chain requires Windows")

const (
	wmDestroy    = 0x0002
	wmClose      = 0x0010
	wmEndSession = 0x0016

	className = "AlephClipboardHost"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procRegisterClassExW = user32.NewProc("RegisterClassExW")
	procUnregisterClassW = user32.NewProc("UnregisterClassW")
	procCreateWindowExW  = user32.NewProc("CreateWindowExW")
	procDestroyWindow    = user32.NewProc("DestroyWindow")
	procIsWindow         = user32.NewProc("IsWindow")
	procDefWindowProcW   = user32.NewProc("DefWindowProcW")
	procGetMessageW      = user32.NewProc("GetMessageW")
	procTranslateMessage = user32.NewProc("TranslateMessage")
	procDispatchMessageW = user32.NewProc("DispatchMessageW")
	procPostMessageW     = user32.NewProc("PostMessageW")
	procPostQuitMessage  = user32.NewProc("PostQuitMessage")
)

type wndClassEx struct {
	Size       uint32
	Style      uint32
	WndProc    uintptr
	ClsExtra   int32
	WndExtra   int32
	Instance   windows.Handle
	Icon       windows.Handle
	Cursor     windows.Handle
	Background windows.Handle
	MenuName   *uint16
	ClassName  *uint16
	IconSm     windows.Handle
}

type point struct{ X, Y int32 }

type winMsg struct {
	Hwnd     uintptr
	Message  uint32
	WParam   uintptr
	LParam   uintptr
	Time     uint32
	Pt       point
	LPrivate uint32
}

var (
	wndProcOnce sync.Once
	wndProcPtr  uintptr

	// current is the host the window procedure talks to. Only the
	// message-loop thread reads or writes it.
	current *host
)

type host struct {
	hwnd uintptr
	link *chain.Link
	log  *slog.Logger
}

// Run creates the host window, joins the viewer chain and pumps messages
// until ctx is cancelled or the window is closed. It leaves the chain before
// returning, including when the loop panics.
func Run(ctx context.Context, cfg Config) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if cfg.MutexName != "" {
		release, err := acquireMutex(cfg.MutexName)
		if err != nil {
			if errors.Is(err, ErrAlreadyRunning) {
				NewNotifier(cfg.Title).Alert(cfg.Title, "Application is already running.")
			}
			return err
		}
		defer release()
	}

	h := &host{log: slog.With("component", "winhost")}
	current = h
	defer func() { current = nil }()

	hwnd, cleanup, err := createWindow(cfg.Title)
	if err != nil {
		return err
	}
	defer cleanup()
	h.hwnd = hwnd

	hook, err := cfg.NewHook(hwnd)
	if err != nil {
		return fmt.Errorf("content hook: %w", err)
	}

	h.link = chain.New(viewerChain{}, hook)
	h.link.Register(chain.Handle(hwnd))
	defer h.leave()

	stop := context.AfterFunc(ctx, func() {
		procPostMessageW.Call(hwnd, wmClose, 0, 0)
	})
	defer stop()

	h.log.Info("host window ready", "hwnd", chain.Handle(hwnd))
	return loop()
}

func loop() error {
	var m winMsg
	for {
		r, _, err := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		switch int32(r) {
		case -1:
			return fmt.Errorf("GetMessageW: %w", err)
		case 0:
			return nil
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}
}

func createWindow(title string) (uintptr, func(), error) {
	var inst windows.Handle
	if err := windows.GetModuleHandleEx(0, nil, &inst); err != nil {
		return 0, nil, fmt.Errorf("GetModuleHandleEx: %w", err)
	}
	cls, err := windows.UTF16PtrFromString(className)
	if err != nil {
		return 0, nil, err
	}
	ttl, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return 0, nil, fmt.Errorf("window title: %w", err)
	}

	wndProcOnce.Do(func() { wndProcPtr = windows.NewCallback(wndProc) })
	wc := wndClassEx{WndProc: wndProcPtr, Instance: inst, ClassName: cls}
	wc.Size = uint32(unsafe.Sizeof(wc))
	if r, _, err := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc))); r == 0 {
		return 0, nil, fmt.Errorf("RegisterClassExW: %w", err)
	}
	unregister := func() {
		procUnregisterClassW.Call(uintptr(unsafe.Pointer(cls)), uintptr(inst))
	}

	// Style 0: a top-level window that is never shown.
	hwnd, _, err := procCreateWindowExW.Call(
		0,
		uintptr(unsafe.Pointer(cls)),
		uintptr(unsafe.Pointer(ttl)),
		0,
		0, 0, 0, 0,
		0, 0, uintptr(inst), 0,
	)
	if hwnd == 0 {
		unregister()
		return 0, nil, fmt.Errorf("CreateWindowExW: %w", err)
	}

	cleanup := func() {
		if r, _, _ := procIsWindow.Call(hwnd); r != 0 {
			procDestroyWindow.Call(hwnd)
		}
		unregister()
	}
	return hwnd, cleanup, nil
}

func wndProc(hwnd, umsg, wparam, lparam uintptr) uintptr {
	h := current
	switch umsg {
	case wmClose:
		procDestroyWindow.Call(hwnd)
		return 0
	case wmDestroy:
		// The handle is still valid here; this is the last chance to unlink.
		if h != nil {
			h.leave()
		}
		procPostQuitMessage.Call(0)
		return 0
	case wmEndSession:
		if wparam != 0 && h != nil {
			h.leave()
		}
		return 0
	}

	if h != nil && h.link != nil {
		n := chain.Notification{Msg: uint32(umsg), WParam: wparam, LParam: lparam}
		if h.dispatch(n) {
			return 0
		}
	}
	r, _, _ := procDefWindowProcW.Call(hwnd, umsg, wparam, lparam)
	return r
}

// dispatch hands n to the link. A panic must not unwind through the
// window procedure; the link has already relayed the notification by then.
func (h *host) dispatch(n chain.Notification) (handled bool) {
	defer func() {
		if p := recover(); p != nil {
			h.log.Error("notification handler panicked", "kind", n.Kind(), "panic", p)
			handled = true
		}
	}()
	return h.link.Handle(n)
}

func (h *host) leave() {
	if h.link == nil || !h.link.Registered() {
		return
	}
	if err := h.link.Deregister(); err != nil {
		h.log.Warn("deregister failed", "err", err)
	}
}

func acquireMutex(name string) (func(), error) {
	p, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, err
	}
	m, err := windows.CreateMutex(nil, false, p)
	if err != nil {
		if errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
			_ = windows.CloseHandle(m)
			return nil, ErrAlreadyRunning
		}
		return nil, fmt.Errorf("CreateMutex: %w", err)
	}
	return func() { _ = windows.CloseHandle(m) }, nil
}
