// Package chain keeps this process linked into the system clipboard-viewer
// chain.
//
// The chain is a singly-linked list maintained by the OS. Each member holds
// only the handle of the member after it and must pass on every notification
// it receives, so a member that drops or duplicates a message breaks
// clipboard notification for every window behind it. Link owns that single
// handle and implements the relay rules; System is the OS side, injected so
// the protocol can run against a simulated chain.
package chain

import (
	"errors"
	"fmt"
	"log/slog"
)

// Handle identifies a chain member. Zero means "no next member".
type Handle uintptr

func (h Handle) String() string { return fmt.Sprintf("%#x", uintptr(h)) }

// Message identifiers defined in winuser.h.
const (
	MsgDrawClipboard uint32 = 0x0308
	MsgChangeCBChain uint32 = 0x030D
)

// Kind classifies a notification.
type Kind int

const (
	KindOther Kind = iota
	KindContentChanged
	KindChainChanged
)

func (k Kind) String() string {
	switch k {
	case KindContentChanged:
		return "content-changed"
	case KindChainChanged:
		return "chain-changed"
	default:
		return "other"
	}
}

// KindOf maps a window message to a notification kind.
func KindOf(msg uint32) Kind {
	switch msg {
	case MsgDrawClipboard:
		return KindContentChanged
	case MsgChangeCBChain:
		return KindChainChanged
	default:
		return KindOther
	}
}

// Notification is a window message as delivered by the message loop.
// For chain-changed notifications WParam is the removed member and LParam
// the member that follows it.
type Notification struct {
	Msg    uint32
	WParam uintptr
	LParam uintptr
}

// Kind returns the notification's kind.
func (n Notification) Kind() Kind { return KindOf(n.Msg) }

// ContentChanged builds a WM_DRAWCLIPBOARD notification.
func ContentChanged() Notification {
	return Notification{Msg: MsgDrawClipboard}
}

// ChainChanged builds a WM_CHANGECBCHAIN notification.
func ChainChanged(removed, next Handle) Notification {
	return Notification{Msg: MsgChangeCBChain, WParam: uintptr(removed), LParam: uintptr(next)}
}

// System is the OS clipboard-viewer chain.
type System interface {
	// Join inserts self at the head of the chain and returns the previous
	// head. A zero handle with a nil error means self is the only member.
	Join(self Handle) (Handle, error)

	// Leave removes self, linking its predecessor directly to next.
	Leave(self, next Handle) error

	// Send delivers n synchronously to the member to.
	Send(to Handle, n Notification)
}

// Action is what a member does with a notification.
type Action int

const (
	// ActionDefault leaves the message to default platform handling.
	ActionDefault Action = iota
	// ActionProcessAndForward runs the content hook, then relays.
	ActionProcessAndForward
	// ActionAdoptNext replaces the owned next handle and does not relay.
	ActionAdoptNext
	// ActionForward relays the notification unchanged.
	ActionForward
)

func (a Action) String() string {
	switch a {
	case ActionProcessAndForward:
		return "process+forward"
	case ActionAdoptNext:
		return "adopt-next"
	case ActionForward:
		return "forward"
	default:
		return "default"
	}
}

// Decide maps a notification to an action given the currently owned next
// handle. It has no side effects.
func Decide(n Notification, next Handle) Action {
	switch n.Kind() {
	case KindContentChanged:
		return ActionProcessAndForward
	case KindChainChanged:
		if Handle(n.WParam) == next {
			return ActionAdoptNext
		}
		return ActionForward
	default:
		return ActionDefault
	}
}

// ErrNotRegistered is returned by Deregister before Register.
var ErrNotRegistered = errors.New("chain: not registered")

// Link is this process's membership in the chain.
//
// Link is not safe for concurrent use; all calls belong on the thread that
// runs the message loop.
type Link struct {
	sys       System
	onContent func()
	log       *slog.Logger

	self       Handle
	next       Handle
	registered bool
}

// New returns a Link that calls onContent for every content change.
// onContent may be nil.
func New(sys System, onContent func()) *Link {
	if onContent == nil {
		onContent = func() {}
	}
	return &Link{
		sys:       sys,
		onContent: onContent,
		log:       slog.With("component", "chain"),
	}
}

// Register joins the chain as self and returns the handle of the next member.
// It must be called once.
func (l *Link) Register(self Handle) Handle {
	if l.registered {
		l.log.Warn("register called twice, ignoring", "self", self)
		return l.next
	}
	next, err := l.sys.Join(self)
	l.self = self
	l.registered = true
	switch {
	case err != nil:
		next = 0
		l.log.Warn("viewer chain registration failed", "self", self, "err", err)
	case next == 0:
		l.log.Warn("viewer chain returned no next member, acting as tail", "self", self)
	default:
		l.log.Info("joined viewer chain", "self", self, "next", next)
	}
	l.next = next
	return next
}

// Next returns the owned next handle.
func (l *Link) Next() Handle { return l.next }

// Registered reports whether the link is currently in the chain.
func (l *Link) Registered() bool { return l.registered }

// Handle dispatches n. It returns false when the message is not a chain
// notification and should go to default handling.
func (l *Link) Handle(n Notification) bool {
	switch Decide(n, l.next) {
	case ActionProcessAndForward:
		l.OnContentChanged(n)
	case ActionAdoptNext, ActionForward:
		l.OnChainChanged(n)
	default:
		return false
	}
	return true
}

// OnContentChanged runs the content hook and then relays n to the next
// member. The relay happens even if the hook panics.
func (l *Link) OnContentChanged(n Notification) {
	defer l.forward(n)
	l.onContent()
}

// OnChainChanged either adopts the replacement for a removed next member or
// relays n onward. It never does both.
func (l *Link) OnChainChanged(n Notification) {
	removed, replacement := Handle(n.WParam), Handle(n.LParam)
	if removed == l.next {
		l.log.Debug("next member left chain", "removed", removed, "next", replacement)
		l.next = replacement
		return
	}
	l.forward(n)
}

// Deregister splices this process out of the chain. Calling it again after
// a successful call is a no-op.
func (l *Link) Deregister() error {
	if !l.registered {
		if l.self != 0 {
			return nil
		}
		return ErrNotRegistered
	}
	// Mark first so a panicking Leave is not retried from a deferred backstop.
	l.registered = false
	if err := l.sys.Leave(l.self, l.next); err != nil {
		l.log.Warn("leaving viewer chain failed", "self", l.self, "next", l.next, "err", err)
		return fmt.Errorf("leave chain: %w", err)
	}
	l.log.Info("left viewer chain", "self", l.self, "next", l.next)
	l.next = 0
	return nil
}

func (l *Link) forward(n Notification) {
	if l.next == 0 {
		return
	}
	l.sys.Send(l.next, n)
}
