package clip

import (
	"fmt"
	"sync"
)

// firstRegisteredFormat matches the range Windows hands out for
// RegisterClipboardFormat.
const firstRegisteredFormat Format = 0xC000

// Memory is an in-process Board. It keeps text, registered formats and
// published payloads in maps and can simulate another process holding the
// clipboard.
type Memory struct {
	mu sync.Mutex

	text    string
	hasText bool

	formats   map[string]Format
	published map[Format][]byte
	blocks    map[uintptr][]byte
	nextBlock uintptr

	held   bool
	setErr error
	open   bool
	opens  int
	writes int
}

// NewMemory returns an empty board.
func NewMemory() *Memory {
	return &Memory{
		formats:   make(map[string]Format),
		published: make(map[Format][]byte),
		blocks:    make(map[uintptr][]byte),
		nextBlock: 1,
	}
}

func (m *Memory) Name() string { return "in-memory" }

// SetText replaces the clipboard with plain text, dropping published formats
// the way a fresh copy in another application would.
func (m *Memory) SetText(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text, m.hasText = text, true
	m.published = make(map[Format][]byte)
}

// Clear empties the clipboard.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text, m.hasText = "", false
	m.published = make(map[Format][]byte)
}

// Hold simulates another process keeping the clipboard open.
func (m *Memory) Hold(held bool) {
	m.mu.Lock()
	m.held = held
	m.mu.Unlock()
}

// FailSet makes every subsequent Set fail with err; nil restores success.
func (m *Memory) FailSet(err error) {
	m.mu.Lock()
	m.setErr = err
	m.mu.Unlock()
}

func (m *Memory) ReadText() (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, m.hasText, nil
}

func (m *Memory) Alloc(data []byte) (*Buffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := m.nextBlock
	m.nextBlock++
	m.blocks[h] = append([]byte(nil), data...)
	return NewBuffer(h, len(data), m.free), nil
}

func (m *Memory) free(h uintptr) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blocks[h]; !ok {
		return fmt.Errorf("free: unknown block %d", h)
	}
	delete(m.blocks, h)
	return nil
}

func (m *Memory) RegisterFormat(name string) (Format, error) {
	if name == "" {
		return 0, fmt.Errorf("register format: empty name")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.formats[name]; ok {
		return f, nil
	}
	f := firstRegisteredFormat + Format(len(m.formats))
	m.formats[name] = f
	return f, nil
}

func (m *Memory) Open() (Writer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held || m.open {
		return nil, ErrUnavailable
	}
	m.open = true
	m.opens++
	return &memoryWriter{m: m}, nil
}

// Published returns the payload stored under the named format.
func (m *Memory) Published(name string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.formats[name]
	if !ok {
		return nil, false
	}
	b, ok := m.published[f]
	return b, ok
}

// Formats returns a copy of the registered format table.
func (m *Memory) Formats() map[string]Format {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]Format, len(m.formats))
	for k, v := range m.formats {
		out[k] = v
	}
	return out
}

// LiveBlocks returns the number of allocated blocks still owned by callers.
func (m *Memory) LiveBlocks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blocks)
}

// Opens returns how many times the clipboard was opened for writing.
func (m *Memory) Opens() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opens
}

// Writes returns how many Set calls were accepted.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// IsOpen reports whether a writer is still open.
func (m *Memory) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

type memoryWriter struct {
	m      *Memory
	closed bool
}

func (w *memoryWriter) Set(f Format, buf *Buffer) error {
	if w.closed {
		return fmt.Errorf("set: clipboard closed")
	}
	return buf.Transfer(func(h uintptr) error {
		w.m.mu.Lock()
		defer w.m.mu.Unlock()
		if w.m.setErr != nil {
			return w.m.setErr
		}
		data, ok := w.m.blocks[h]
		if !ok {
			return fmt.Errorf("set: unknown block %d", h)
		}
		delete(w.m.blocks, h)
		w.m.published[f] = data
		w.m.writes++
		return nil
	})
}

func (w *memoryWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.m.mu.Lock()
	w.m.open = false
	w.m.mu.Unlock()
	return nil
}
