package editor

import "log/slog"

type StatusKind string

const (
	StatusInfo    StatusKind = "info"
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

// Status is the controller's stand-in for UI feedback. Transient statuses
// (auto-save ticks) fade on their own; sticky ones stay until replaced.
type Status struct {
	Message string
	Kind    StatusKind
	Sticky  bool
}

type StatusFunc func(Status)

func logStatus(st Status) {
	switch st.Kind {
	case StatusError:
		slog.Warn("editor status", "msg", st.Message)
	default:
		slog.Debug("editor status", "msg", st.Message)
	}
}
