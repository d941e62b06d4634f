package clip

import (
	"errors"
	"testing"
)

func TestBufferTransferSuccess(t *testing.T) {
	freed := 0
	b := NewBuffer(7, 3, func(uintptr) error { freed++; return nil })

	var got uintptr
	if err := b.Transfer(func(h uintptr) error { got = h; return nil }); err != nil {
		t.Fatal(err)
	}
	if got != 7 || !b.Transferred() || b.Owned() {
		t.Fatalf("handle = %d transferred = %v owned = %v", got, b.Transferred(), b.Owned())
	}
	if err := b.Release(); !errors.Is(err, ErrTransferred) {
		t.Errorf("Release after transfer = %v, want ErrTransferred", err)
	}
	if err := b.Transfer(func(uintptr) error { return nil }); !errors.Is(err, ErrTransferred) {
		t.Errorf("second Transfer = %v, want ErrTransferred", err)
	}
	if freed != 0 {
		t.Errorf("transferred buffer freed %d times", freed)
	}
}

func TestBufferTransferFailureReleases(t *testing.T) {
	freed := 0
	b := NewBuffer(7, 3, func(uintptr) error { freed++; return nil })

	boom := errors.New("boom")
	if err := b.Transfer(func(uintptr) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("Transfer = %v, want boom", err)
	}
	if freed != 1 || b.Owned() || b.Transferred() {
		t.Fatalf("freed = %d owned = %v transferred = %v", freed, b.Owned(), b.Transferred())
	}
	if err := b.Release(); err != nil || freed != 1 {
		t.Errorf("second Release = %v, freed = %d", err, freed)
	}
}

func TestMemoryPublish(t *testing.T) {
	m := NewMemory()
	f, err := m.RegisterFormat("ALEPH_TAG")
	if err != nil {
		t.Fatal(err)
	}
	if again, _ := m.RegisterFormat("ALEPH_TAG"); again != f {
		t.Errorf("re-register = %s, want %s", again, f)
	}
	if f < firstRegisteredFormat {
		t.Errorf("format %s below registered range", f)
	}

	buf, _ := m.Alloc([]byte("abc"))
	w, err := m.Open()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Open(); !errors.Is(err, ErrUnavailable) {
		t.Errorf("second Open = %v, want ErrUnavailable", err)
	}
	if err := w.Set(f, buf); err != nil {
		t.Fatal(err)
	}
	_ = w.Close()

	got, ok := m.Published("ALEPH_TAG")
	if !ok || string(got) != "abc" {
		t.Errorf("published = %q, %v", got, ok)
	}
	if m.LiveBlocks() != 0 || m.IsOpen() {
		t.Errorf("live = %d open = %v", m.LiveBlocks(), m.IsOpen())
	}
}

func TestMemoryHeld(t *testing.T) {
	m := NewMemory()
	m.Hold(true)
	if _, err := m.Open(); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Open while held = %v", err)
	}
	m.Hold(false)
	w, err := m.Open()
	if err != nil {
		t.Fatal(err)
	}
	_ = w.Close()
}

func TestMemoryFailedSetFreesBlock(t *testing.T) {
	m := NewMemory()
	m.FailSet(errors.New("rejected"))
	f, _ := m.RegisterFormat("ALEPH_DOC")
	buf, _ := m.Alloc([]byte("x"))
	w, _ := m.Open()
	defer w.Close()
	if err := w.Set(f, buf); err == nil {
		t.Fatal("Set succeeded")
	}
	if m.LiveBlocks() != 0 {
		t.Errorf("live blocks = %d after failed set", m.LiveBlocks())
	}
}

func TestDecodeUTF16(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want string
	}{
		{"terminated", []byte{'F', 0, 'M', 0, 'T', 0, 0, 0}, "FMT"},
		{"padded", []byte{'a', 0, 0, 0, 'z', 0, 0, 0}, "a"},
		{"unterminated", []byte{'h', 0, 'i', 0}, "hi"},
		{"odd length", []byte{'h', 0, 'i'}, "h"},
		{"non-ascii", []byte{0xe9, 0x00, 0x0d, 0x00, 0x0a, 0x00, 0, 0}, "é\r\n"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeUTF16(tt.raw)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("DecodeUTF16 = %q, want %q", got, tt.want)
			}
		})
	}
}
