// Package message defines the status protocol spoken on the local IPC
// endpoint.
//
// All messages are newline-delimited JSON, one message per line:
// <json>\n
package message

import (
	"encoding/json"
	"fmt"
	"time"

	"go.klb.dev/alephclip/internal/status"
)

// Type identifies the kind of message.
type Type string

const (
	TypeStatus         Type = "STATUS"
	TypeStatusResponse Type = "STATUS_RESPONSE"
	TypeError          Type = "ERROR"
)

// ReportInfo is the wire form of a status.Report.
type ReportInfo struct {
	At       time.Time `json:"at"`
	Outcome  string    `json:"outcome"`
	Category string    `json:"category"`
	Summary  string    `json:"summary"`
	Format   string    `json:"format,omitempty"`
	Text     string    `json:"text,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// NewReportInfo converts a report for the wire.
func NewReportInfo(r status.Report) *ReportInfo {
	info := &ReportInfo{
		At:       r.At,
		Outcome:  string(r.Outcome),
		Category: string(r.Category()),
		Summary:  r.Summary(),
		Format:   r.Format,
		Text:     r.Text,
	}
	if r.Err != nil {
		info.Error = r.Err.Error()
	}
	return info
}

// Message is the top-level wire envelope.
type Message struct {
	// Always present
	Type Type `json:"type"`

	// STATUS_RESPONSE
	Source    string      `json:"source,omitempty"`
	Version   string      `json:"version,omitempty"`
	Backend   string      `json:"backend,omitempty"`
	StartedAt time.Time   `json:"started_at,omitzero"`
	Reports   uint64      `json:"reports,omitempty"`
	Latest    *ReportInfo `json:"latest,omitempty"`

	// ERROR
	Error string `json:"error,omitempty"`
}

// Encode serialises the message to JSON without a trailing newline.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode deserialises a message from raw JSON bytes.
func Decode(b []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("message decode: %w", err)
	}
	return &m, nil
}
