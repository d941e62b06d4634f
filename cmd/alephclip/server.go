package main

import (
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"go.klb.dev/alephclip/internal/message"
	"go.klb.dev/alephclip/internal/status"
	"go.klb.dev/alephclip/internal/wire"
)

const ipcReadTimeout = 5 * time.Second

// statusServer answers STATUS queries on the local IPC endpoint.
type statusServer struct {
	latest  *status.Latest
	source  string
	started time.Time
	backend atomic.Pointer[string]
}

func newStatusServer(latest *status.Latest, source string, started time.Time) *statusServer {
	return &statusServer{latest: latest, source: source, started: started}
}

func (s *statusServer) setBackend(name string) { s.backend.Store(&name) }

func (s *statusServer) serve(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			slog.Debug("IPC listener closed", "err", err)
			return
		}
		go s.handle(conn)
	}
}

func (s *statusServer) handle(conn net.Conn) {
	wc := wire.New(conn)
	defer wc.Close()

	wc.SetReadDeadline(ipcReadTimeout)
	msg, err := wc.ReadMsg()
	if err != nil {
		slog.Debug("IPC read failed", "err", err)
		return
	}

	var resp *message.Message
	switch msg.Type {
	case message.TypeStatus:
		resp = s.response()
	default:
		resp = &message.Message{
			Type:  message.TypeError,
			Error: fmt.Sprintf("unexpected message type %q", msg.Type),
		}
	}
	if err := wc.WriteMsg(resp); err != nil {
		slog.Debug("IPC write failed", "err", err)
	}
}

func (s *statusServer) response() *message.Message {
	m := &message.Message{
		Type:      message.TypeStatusResponse,
		Source:    s.source,
		Version:   Version,
		StartedAt: s.started,
	}
	if b := s.backend.Load(); b != nil {
		m.Backend = *b
	}
	if r, n, ok := s.latest.Get(); ok {
		m.Reports = n
		m.Latest = message.NewReportInfo(r)
	}
	return m
}
