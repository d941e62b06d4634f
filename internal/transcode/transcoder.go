package transcode

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"go.klb.dev/alephclip/internal/clip"
	"go.klb.dev/alephclip/internal/status"
)

// NoticeTitle is the caption of the fault notice.
const NoticeTitle = "ALEPH Clipboard"

// Transcoder classifies the clipboard text on each change and republishes
// recognised exports. It is meant to be driven from the message-loop thread
// and is not safe for concurrent use.
type Transcoder struct {
	board   clip.Board
	notice  status.Notifier
	now     func() time.Time
	log     *slog.Logger
	formats map[string]clip.Format
}

// Option configures a Transcoder.
type Option func(*Transcoder)

// WithNotifier sets the notifier used for unexpected faults.
func WithNotifier(n status.Notifier) Option {
	return func(t *Transcoder) { t.notice = n }
}

// WithClock overrides the report timestamp source.
func WithClock(now func() time.Time) Option {
	return func(t *Transcoder) { t.now = now }
}

// New returns a Transcoder working on board.
func New(board clip.Board, opts ...Option) *Transcoder {
	t := &Transcoder{
		board:   board,
		notice:  status.LogNotifier{},
		now:     time.Now,
		log:     slog.With("component", "transcode", "backend", board.Name()),
		formats: make(map[string]clip.Format),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Process handles one clipboard change. Every failure is turned into the
// returned report; Process never panics and never leaves the clipboard open.
func (t *Transcoder) Process() (rep status.Report) {
	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("panic: %v", p)
			t.log.Error("clipboard processing panicked", "err", err, "stack", string(debug.Stack()))
			t.notice.Alert(NoticeTitle, err.Error())
			rep = t.report(status.Fault, "", "", err)
		}
	}()

	text, ok, err := t.board.ReadText()
	if err != nil {
		return t.report(status.Fault, "", "", fmt.Errorf("read clipboard: %w", err))
	}
	if !ok {
		return t.report(status.Empty, "", "", nil)
	}

	class := Classify(text)
	if class == Unclassified {
		return t.report(status.NotApplicable, "", "", nil)
	}

	text = Normalize(text)
	name := class.FormatName()
	if err := t.publish(name, Encode(text)); err != nil {
		return t.report(status.PublishFailure, name, "", err)
	}
	return t.report(status.Success, name, text, nil)
}

// publish copies payload into a new block and hands it to the clipboard
// under the named format. The block is freed here unless the clipboard
// accepted it.
func (t *Transcoder) publish(name string, payload []byte) error {
	buf, err := t.board.Alloc(payload)
	if err != nil {
		return fmt.Errorf("allocate %d bytes: %w", len(payload), err)
	}
	defer func() {
		if buf.Owned() {
			if err := buf.Release(); err != nil {
				t.log.Warn("releasing unpublished buffer failed", "err", err)
			}
		}
	}()

	f, err := t.format(name)
	if err != nil {
		return err
	}

	w, err := t.board.Open()
	if err != nil {
		return fmt.Errorf("open clipboard: %w", err)
	}
	defer func() {
		if err := w.Close(); err != nil {
			t.log.Warn("closing clipboard failed", "err", err)
		}
	}()

	if err := w.Set(f, buf); err != nil {
		return fmt.Errorf("publish %s: %w", name, err)
	}
	t.log.Debug("payload published", "format", name, "id", f, "bytes", buf.Len())
	return nil
}

// format returns the identifier for name, registering it on first use.
func (t *Transcoder) format(name string) (clip.Format, error) {
	if f, ok := t.formats[name]; ok {
		return f, nil
	}
	f, err := t.board.RegisterFormat(name)
	if err != nil {
		return 0, fmt.Errorf("register format %s: %w", name, err)
	}
	t.formats[name] = f
	return f, nil
}

func (t *Transcoder) report(o status.Outcome, format, text string, err error) status.Report {
	return status.Report{
		At:      t.now(),
		Outcome: o,
		Format:  format,
		Text:    text,
		Err:     err,
	}
}
