// Package status describes the outcome of one clipboard notification and
// renders it for whoever is watching.
package status

import (
	"fmt"
	"time"
)

// Outcome is the result of processing one clipboard change.
type Outcome string

const (
	Success        Outcome = "success"
	NotApplicable  Outcome = "not_applicable"
	Empty          Outcome = "empty"
	PublishFailure Outcome = "publish_failure"
	Fault          Outcome = "fault"
)

// Category is the colour a display uses for an outcome.
type Category string

const (
	Green   Category = "green"
	Neutral Category = "neutral"
	Red     Category = "red"
)

// TimeFormat is the timestamp layout used in summaries.
const TimeFormat = "15:04:05"

// Report is one notification cycle's outcome. Text holds the normalized
// payload and is only set on success.
type Report struct {
	At      time.Time
	Outcome Outcome
	Format  string
	Text    string
	Err     error
}

// Category maps the outcome to a display colour.
func (r Report) Category() Category {
	switch r.Outcome {
	case Success:
		return Green
	case PublishFailure, Fault:
		return Red
	default:
		return Neutral
	}
}

// Message is the one-line description without the timestamp.
func (r Report) Message() string {
	switch r.Outcome {
	case Success:
		return "OK"
	case NotApplicable:
		return "Text in clipboard is not for Aleph"
	case Empty:
		return "No text in clipboard"
	case PublishFailure:
		return "Error occurred during saving to clipboard"
	case Fault:
		if r.Err != nil {
			return "Unexpected error: " + r.Err.Error()
		}
		return "Unexpected error"
	default:
		return string(r.Outcome)
	}
}

// Summary is the timestamped one-line summary, e.g. "14:02:11 - OK".
func (r Report) Summary() string {
	return fmt.Sprintf("%s - %s", r.At.Format(TimeFormat), r.Message())
}

// Display consumes reports.
type Display interface {
	Show(Report)
}

// DisplayFunc adapts a function to Display.
type DisplayFunc func(Report)

func (f DisplayFunc) Show(r Report) { f(r) }

// Multi fans a report out to several displays in order.
type Multi []Display

func (m Multi) Show(r Report) {
	for _, d := range m {
		if d != nil {
			d.Show(r)
		}
	}
}
