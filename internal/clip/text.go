package clip

import (
	"fmt"
	"sync"

	"golang.design/x/clipboard"
	"golang.org/x/text/encoding/unicode"
)

// DecodeUTF16 converts a CF_UNICODETEXT block (UTF-16LE, NUL-terminated,
// possibly padded past the terminator) to a Go string. Unpaired surrogates
// become U+FFFD.
func DecodeUTF16(raw []byte) (string, error) {
	n := len(raw) &^ 1
	for i := 0; i+1 < n; i += 2 {
		if raw[i] == 0 && raw[i+1] == 0 {
			n = i
			break
		}
	}
	out, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(raw[:n])
	if err != nil {
		return "", fmt.Errorf("decode UTF-16: %w", err)
	}
	return string(out), nil
}

var (
	initOnce sync.Once
	initErr  error
)

// ReadSystemText returns the text currently on the desktop clipboard using
// golang.design/x/clipboard. It works wherever that package does (Windows,
// macOS, X11) and is used for dry runs outside the viewer chain.
// clipboard.Init is called lazily so commands that never read the system
// clipboard don't trip over a missing display.
func ReadSystemText() (string, bool, error) {
	initOnce.Do(func() { initErr = clipboard.Init() })
	if initErr != nil {
		return "", false, fmt.Errorf("clipboard init: %w", initErr)
	}
	b := clipboard.Read(clipboard.FmtText)
	if b == nil {
		return "", false, nil
	}
	return string(b), true, nil
}
