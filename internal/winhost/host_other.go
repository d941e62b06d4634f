//go:build !windows

package winhost

import (
	"context"
	"errors"

	"go.klb.dev/alephclip/internal/status"
)

// ErrUnsupported is returned by Run on platforms without a clipboard-viewer
// chain.
var ErrUnsupported = errors.New("the clipboard viewer chain requires Windows")

// Run is not available on this platform.
func Run(_ context.Context, _ Config) error { return ErrUnsupported }

// NewNotifier returns a notifier that logs.
func NewNotifier(string) status.Notifier { return status.LogNotifier{} }
