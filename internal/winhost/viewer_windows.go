//go:build windows

package winhost

import (
	"fmt"
	"log/slog"

	"golang.org/x/sys/windows"

	"go.klb.dev/alephclip/internal/chain"
	"go.klb.dev/alephclip/internal/status"
)

const (
	mbOK            = 0x00000000
	mbIconError     = 0x00000010
	mbSetForeground = 0x00010000
	mbTopmost       = 0x00040000
)

var (
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procSetClipboardViewer   = user32.NewProc("SetClipboardViewer")
	procChangeClipboardChain = user32.NewProc("ChangeClipboardChain")
	procSendMessageW         = user32.NewProc("SendMessageW")
	procSetLastError         = kernel32.NewProc("SetLastError")
)

// viewerChain is the user32 clipboard-viewer chain.
type viewerChain struct{}

func (viewerChain) Join(self chain.Handle) (chain.Handle, error) {
	// SetClipboardViewer returns NULL both for "first viewer" and for
	// failure; only the last-error code tells them apart.
	procSetLastError.Call(0)
	r, _, err := procSetClipboardViewer.Call(uintptr(self))
	if r == 0 {
		if errno, ok := err.(windows.Errno); ok && errno != 0 {
			return 0, fmt.Errorf("SetClipboardViewer: %w", errno)
		}
	}
	return chain.Handle(r), nil
}

func (viewerChain) Leave(self, next chain.Handle) error {
	// The return value is whatever the chain's WM_CHANGECBCHAIN handlers
	// returned, usually FALSE; it does not signal failure.
	r, _, _ := procChangeClipboardChain.Call(uintptr(self), uintptr(next))
	slog.Debug("ChangeClipboardChain", "self", self, "next", next, "result", r)
	return nil
}

func (viewerChain) Send(to chain.Handle, n chain.Notification) {
	procSendMessageW.Call(uintptr(to), uintptr(n.Msg), n.WParam, n.LParam)
}

type messageBox struct {
	title string
}

// NewNotifier returns a notifier that shows a system-modal message box.
func NewNotifier(title string) status.Notifier {
	return messageBox{title: title}
}

func (m messageBox) Alert(title, text string) {
	if title == "" {
		title = m.title
	}
	t, err := windows.UTF16PtrFromString(text)
	if err != nil {
		t, _ = windows.UTF16PtrFromString("unprintable error")
	}
	c, _ := windows.UTF16PtrFromString(title)
	if _, err := windows.MessageBox(0, t, c, mbOK|mbIconError|mbSetForeground|mbTopmost); err != nil {
		slog.Error(title, "notice", text, "err", err)
	}
}
