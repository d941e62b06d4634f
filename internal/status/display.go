package status

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/fatih/color"
)

// Console writes each report to w as a coloured summary line followed, on
// success, by the normalized text.
type Console struct {
	mu    sync.Mutex
	w     io.Writer
	green *color.Color
	red   *color.Color
	plain *color.Color
}

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{
		w:     w,
		green: color.New(color.FgGreen),
		red:   color.New(color.FgRed, color.Bold),
		plain: color.New(color.Reset),
	}
}

func (c *Console) Show(r Report) {
	c.mu.Lock()
	defer c.mu.Unlock()

	col := c.plain
	switch r.Category() {
	case Green:
		col = c.green
	case Red:
		col = c.red
	}
	_, _ = col.Fprintln(c.w, r.Summary())
	if r.Outcome == Success && r.Text != "" {
		// Text is CRLF-terminated; print it with the terminal's own line endings.
		_, _ = fmt.Fprintln(c.w, strings.TrimRight(strings.ReplaceAll(r.Text, "\r\n", "\n"), "\n"))
	}
}

// Logger records reports with slog: success at info, failures at warn or
// error, misses at debug.
type Logger struct {
	log *slog.Logger
}

// NewLogger returns a Logger; nil uses slog.Default.
func NewLogger(l *slog.Logger) *Logger {
	if l == nil {
		l = slog.Default()
	}
	return &Logger{log: l}
}

func (l *Logger) Show(r Report) {
	attrs := []any{"outcome", r.Outcome}
	if r.Format != "" {
		attrs = append(attrs, "format", r.Format)
	}
	switch r.Outcome {
	case Success:
		l.log.Info("clipboard republished", append(attrs, "bytes", len(r.Text))...)
		if l.log.Enabled(context.Background(), slog.LevelDebug) {
			l.log.Debug("republished text", "format", r.Format, "preview", preview(r.Text))
		}
	case PublishFailure:
		l.log.Warn("clipboard publish failed", append(attrs, "err", r.Err)...)
	case Fault:
		l.log.Error("clipboard processing fault", append(attrs, "err", r.Err)...)
	default:
		l.log.Debug(r.Message(), attrs...)
	}
}

const previewLen = 120

func preview(s string) string {
	if len(s) <= previewLen {
		return s
	}
	cut := previewLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}

// Latest remembers the most recent report. It is safe for concurrent use so
// the status endpoint can read it while the message loop writes.
type Latest struct {
	mu    sync.RWMutex
	last  Report
	count uint64
}

func (l *Latest) Show(r Report) {
	l.mu.Lock()
	l.last = r
	l.count++
	l.mu.Unlock()
}

// Get returns the latest report, how many reports have been seen, and
// whether there has been any.
func (l *Latest) Get() (Report, uint64, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.last, l.count, l.count > 0
}
