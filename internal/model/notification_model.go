package model

import "time"

type AlertSeverity string

const (
	SeverityDanger  AlertSeverity = "danger"
	SeverityWarning AlertSeverity = "warning"
	SeverityInfo    AlertSeverity = "info"
	SeveritySuccess AlertSeverity = "success"
)

func (s AlertSeverity) Valid() bool {
	switch s {
	case SeverityDanger, SeverityWarning, SeverityInfo, SeveritySuccess:
		return true
	}
	return false
}

// Accent is the CSS color token the console paints the alert dot with.
func (s AlertSeverity) Accent() string {
	switch s {
	case SeverityDanger:
		return "var(--danger)"
	case SeverityWarning:
		return "var(--warning)"
	case SeveritySuccess:
		return "var(--success)"
	default:
		return "var(--primary)"
	}
}

// Alert is one entry of the console's notification dropdown.
// RelativeTime is display text authored with the seed ("8 min ago") and is
// never recomputed.
type Alert struct {
	ID           int           `json:"id"`
	Severity     AlertSeverity `json:"type"`
	Title        string        `json:"title"`
	Message      string        `json:"message"`
	RelativeTime string        `json:"time"`
	Read         bool          `json:"read"`
	ReadAt       *time.Time    `json:"read_at,omitempty"`
}
