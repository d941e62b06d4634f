package chain

import (
	"errors"
	"testing"
)

type sent struct {
	to Handle
	n  Notification
}

// recorder is a System that only records calls.
type recorder struct {
	joinNext Handle
	joinErr  error
	leaveErr error
	sent     []sent
	leaves   [][2]Handle
}

func (r *recorder) Join(Handle) (Handle, error) { return r.joinNext, r.joinErr }

func (r *recorder) Leave(self, next Handle) error {
	r.leaves = append(r.leaves, [2]Handle{self, next})
	return r.leaveErr
}

func (r *recorder) Send(to Handle, n Notification) { r.sent = append(r.sent, sent{to, n}) }

func TestDecide(t *testing.T) {
	tests := []struct {
		name string
		n    Notification
		next Handle
		want Action
	}{
		{"content", ContentChanged(), 7, ActionProcessAndForward},
		{"content at tail", ContentChanged(), 0, ActionProcessAndForward},
		{"neighbour removed", ChainChanged(7, 9), 7, ActionAdoptNext},
		{"other removed", ChainChanged(5, 9), 7, ActionForward},
		{"unrelated", Notification{Msg: 0x0010}, 7, ActionDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.n, tt.next); got != tt.want {
				t.Errorf("Decide = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegister(t *testing.T) {
	t.Run("returns previous head", func(t *testing.T) {
		l := New(&recorder{joinNext: 42}, nil)
		if got := l.Register(1); got != 42 {
			t.Fatalf("Register = %v, want 0x2a", got)
		}
		if l.Next() != 42 || !l.Registered() {
			t.Errorf("next = %v registered = %v", l.Next(), l.Registered())
		}
	})
	t.Run("failure acts as tail", func(t *testing.T) {
		l := New(&recorder{joinNext: 42, joinErr: errors.New("boom")}, nil)
		if got := l.Register(1); got != 0 {
			t.Fatalf("Register = %v, want 0", got)
		}
	})
}

func TestContentChangedForwardsAfterProcessing(t *testing.T) {
	rec := &recorder{joinNext: 9}
	var processedBeforeSend bool
	l := New(rec, func() { processedBeforeSend = len(rec.sent) == 0 })
	l.Register(1)

	n := Notification{Msg: MsgDrawClipboard, WParam: 3, LParam: 4}
	if !l.Handle(n) {
		t.Fatal("Handle returned false for content change")
	}
	if !processedBeforeSend {
		t.Error("hook ran after forwarding")
	}
	if len(rec.sent) != 1 || rec.sent[0].to != 9 || rec.sent[0].n != n {
		t.Fatalf("sent = %+v, want one identical notification to 0x9", rec.sent)
	}
}

func TestContentChangedForwardsWhenHookPanics(t *testing.T) {
	rec := &recorder{joinNext: 9}
	l := New(rec, func() { panic("boom") })
	l.Register(1)

	func() {
		defer func() { _ = recover() }()
		l.OnContentChanged(ContentChanged())
	}()
	if len(rec.sent) != 1 {
		t.Fatalf("sent %d notifications, want 1", len(rec.sent))
	}
}

func TestContentChangedAtTailSendsNothing(t *testing.T) {
	rec := &recorder{}
	calls := 0
	l := New(rec, func() { calls++ })
	l.Register(1)
	l.OnContentChanged(ContentChanged())
	if calls != 1 || len(rec.sent) != 0 {
		t.Errorf("calls = %d sent = %d", calls, len(rec.sent))
	}
}

func TestChainChanged(t *testing.T) {
	t.Run("adopts replacement without forwarding", func(t *testing.T) {
		rec := &recorder{joinNext: 9}
		l := New(rec, nil)
		l.Register(1)
		l.Handle(ChainChanged(9, 11))
		if l.Next() != 11 {
			t.Errorf("next = %v, want 0xb", l.Next())
		}
		if len(rec.sent) != 0 {
			t.Errorf("forwarded %d notifications, want 0", len(rec.sent))
		}
	})
	t.Run("forwards without updating", func(t *testing.T) {
		rec := &recorder{joinNext: 9}
		l := New(rec, nil)
		l.Register(1)
		n := ChainChanged(20, 21)
		l.Handle(n)
		if l.Next() != 9 {
			t.Errorf("next = %v, want 0x9", l.Next())
		}
		if len(rec.sent) != 1 || rec.sent[0].to != 9 || rec.sent[0].n != n {
			t.Errorf("sent = %+v", rec.sent)
		}
	})
}

func TestHandleIgnoresOtherMessages(t *testing.T) {
	rec := &recorder{joinNext: 9}
	l := New(rec, nil)
	l.Register(1)
	if l.Handle(Notification{Msg: 0x0112}) {
		t.Error("Handle claimed an unrelated message")
	}
	if len(rec.sent) != 0 {
		t.Error("unrelated message forwarded")
	}
}

func TestDeregister(t *testing.T) {
	if err := New(&recorder{}, nil).Deregister(); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("Deregister before Register = %v", err)
	}

	rec := &recorder{joinNext: 9}
	l := New(rec, nil)
	l.Register(1)
	l.Handle(ChainChanged(9, 12))
	if err := l.Deregister(); err != nil {
		t.Fatal(err)
	}
	if err := l.Deregister(); err != nil {
		t.Fatal(err)
	}
	if len(rec.leaves) != 1 || rec.leaves[0] != [2]Handle{1, 12} {
		t.Fatalf("leaves = %v, want [[0x1 0xc]]", rec.leaves)
	}
}

// system simulates the OS side of the chain: a head pointer plus members
// that each know only their successor.
type system struct {
	head    Handle
	members map[Handle]*Link
	seen    map[Handle]int
}

func newSystem() *system {
	return &system{members: make(map[Handle]*Link), seen: make(map[Handle]int)}
}

func (s *system) Join(self Handle) (Handle, error) {
	prev := s.head
	s.head = self
	return prev, nil
}

func (s *system) Leave(self, next Handle) error {
	if s.head == self {
		s.head = next
		return nil
	}
	s.Send(s.head, ChainChanged(self, next))
	return nil
}

func (s *system) Send(to Handle, n Notification) {
	if l, ok := s.members[to]; ok {
		l.Handle(n)
	}
}

func (s *system) add(h Handle) *Link {
	l := New(s, func() { s.seen[h]++ })
	s.members[h] = l
	l.Register(h)
	return l
}

// walk follows next pointers from the head.
func (s *system) walk() []Handle {
	var out []Handle
	for h := s.head; h != 0 && len(out) <= len(s.members); h = s.members[h].Next() {
		out = append(out, h)
	}
	return out
}

func equal(a, b []Handle) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSimulatedChain(t *testing.T) {
	s := newSystem()
	s.add(1)
	mid := s.add(2)
	s.add(3)

	if got := s.walk(); !equal(got, []Handle{3, 2, 1}) {
		t.Fatalf("chain = %v, want [3 2 1]", got)
	}

	s.Send(s.head, ContentChanged())
	for _, h := range []Handle{1, 2, 3} {
		if s.seen[h] != 1 {
			t.Errorf("member %v saw %d notifications, want 1", h, s.seen[h])
		}
	}

	if err := mid.Deregister(); err != nil {
		t.Fatal(err)
	}
	delete(s.members, 2)
	if got := s.walk(); !equal(got, []Handle{3, 1}) {
		t.Fatalf("chain after leave = %v, want [3 1]", got)
	}

	s.Send(s.head, ContentChanged())
	if s.seen[1] != 2 || s.seen[3] != 2 || s.seen[2] != 1 {
		t.Errorf("seen = %v after second change", s.seen)
	}
}

func TestSimulatedChainHeadLeaves(t *testing.T) {
	s := newSystem()
	s.add(1)
	s.add(2)
	head := s.add(3)

	if err := head.Deregister(); err != nil {
		t.Fatal(err)
	}
	delete(s.members, 3)
	if got := s.walk(); !equal(got, []Handle{2, 1}) {
		t.Fatalf("chain = %v, want [2 1]", got)
	}
}

func TestSimulatedChainTailLeaves(t *testing.T) {
	s := newSystem()
	tail := s.add(1)
	s.add(2)
	s.add(3)

	if err := tail.Deregister(); err != nil {
		t.Fatal(err)
	}
	delete(s.members, 1)
	if got := s.walk(); !equal(got, []Handle{3, 2}) {
		t.Fatalf("chain = %v, want [3 2]", got)
	}
}
