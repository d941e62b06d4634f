package status

import "log/slog"

// Notifier raises a notice the user has to acknowledge. It is used for
// faults that should never happen.
type Notifier interface {
	Alert(title, text string)
}

// LogNotifier logs notices at error level. It is the fallback where no
// desktop notice is available.
type LogNotifier struct{}

func (LogNotifier) Alert(title, text string) {
	slog.Error(title, "notice", text)
}
