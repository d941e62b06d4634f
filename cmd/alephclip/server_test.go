package main

import (
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"go.klb.dev/alephclip/internal/message"
	"go.klb.dev/alephclip/internal/status"
	"go.klb.dev/alephclip/internal/wire"
)

func pipe(t *testing.T, s *statusServer) *wire.Conn {
	t.Helper()
	client, server := net.Pipe()
	go s.handle(server)
	wc := wire.New(client)
	t.Cleanup(func() { _ = wc.Close() })
	return wc
}

func TestStatusServerBeforeAnyChange(t *testing.T) {
	started := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s := newStatusServer(&status.Latest{}, "desk-7", started)

	resp, err := queryStatus(pipe(t, s))
	if err != nil {
		t.Fatal(err)
	}
	if resp.Source != "desk-7" || !resp.StartedAt.Equal(started) || resp.Version != Version {
		t.Errorf("response = %+v", resp)
	}
	if resp.Latest != nil || resp.Reports != 0 || resp.Backend != "" {
		t.Errorf("unexpected latest: %+v", resp)
	}
}

func TestStatusServerLatest(t *testing.T) {
	latest := &status.Latest{}
	s := newStatusServer(latest, "desk-7", time.Now())
	s.setBackend("Windows clipboard")

	at := time.Date(2024, 3, 1, 9, 30, 5, 0, time.UTC)
	latest.Show(status.Report{At: at, Outcome: status.NotApplicable})
	latest.Show(status.Report{At: at, Outcome: status.PublishFailure, Err: errors.New("clipboard busy")})

	resp, err := queryStatus(pipe(t, s))
	if err != nil {
		t.Fatal(err)
	}
	if resp.Reports != 2 || resp.Backend != "Windows clipboard" {
		t.Errorf("reports = %d backend = %q", resp.Reports, resp.Backend)
	}
	if resp.Latest == nil {
		t.Fatal("latest missing")
	}
	if resp.Latest.Summary != "09:30:05 - Error occurred during saving to clipboard" ||
		resp.Latest.Category != "red" || resp.Latest.Error != "clipboard busy" {
		t.Errorf("latest = %+v", resp.Latest)
	}
}

func TestStatusServerRejectsUnknownType(t *testing.T) {
	s := newStatusServer(&status.Latest{}, "x", time.Now())
	wc := pipe(t, s)

	if err := wc.WriteMsg(&message.Message{Type: "PASTE"}); err != nil {
		t.Fatal(err)
	}
	resp, err := wc.ReadMsg()
	if err != nil {
		t.Fatal(err)
	}
	if resp.Type != message.TypeError || !strings.Contains(resp.Error, "PASTE") {
		t.Errorf("response = %+v", resp)
	}
}

func TestPrintStatus(t *testing.T) {
	var b strings.Builder
	printStatus(&b, &message.Message{Source: "desk-7", Version: "1.2.0"})
	if !strings.Contains(b.String(), "desk-7") || !strings.Contains(b.String(), "No clipboard changes yet.") {
		t.Errorf("output = %q", b.String())
	}

	b.Reset()
	at := time.Date(2024, 3, 1, 9, 30, 5, 0, time.UTC)
	printStatus(&b, &message.Message{
		Source:  "desk-7",
		Reports: 1,
		Latest:  message.NewReportInfo(status.Report{At: at, Outcome: status.Success, Format: "ALEPH_TAG", Text: "008   Lx\r\n"}),
	})
	out := b.String()
	if !strings.Contains(out, "09:30:05 - OK") || !strings.Contains(out, "008   Lx\n") {
		t.Errorf("output = %q", out)
	}
}
