package memory

import "smartcity-be/internal/model"

// DefaultAlerts returns the console's built-in alert list. A fresh slice is
// returned on every call.
func DefaultAlerts() []model.Alert {
	return []model.Alert{
		{
			ID:           1,
			Severity:     model.SeverityDanger,
			Title:        "Waste Overflow",
			Message:      "Bin #6 at Riverside is 95% full — collection overdue.",
			RelativeTime: "2 min ago",
		},
		{
			ID:           2,
			Severity:     model.SeverityWarning,
			Title:        "Traffic Congestion",
			Message:      "Heavy traffic on I-495 Eastbound. Avg speed 12mph.",
			RelativeTime: "8 min ago",
		},
		{
			ID:           3,
			Severity:     model.SeverityInfo,
			Title:        "Route Update",
			Message:      "Bus R2 Airport Shuttle delayed by 5 minutes.",
			RelativeTime: "15 min ago",
		},
		{
			ID:           4,
			Severity:     model.SeveritySuccess,
			Title:        "Energy Target Met",
			Message:      "Renewable energy exceeded 40% target today.",
			RelativeTime: "1h ago",
			Read:         true,
		},
		{
			ID:           5,
			Severity:     model.SeverityWarning,
			Title:        "Air Quality Alert",
			Message:      "AQI rising near City Hall sensor. Currently at 78.",
			RelativeTime: "2h ago",
			Read:         true,
		},
		{
			ID:           6,
			Severity:     model.SeverityInfo,
			Title:        "Scheduled Maintenance",
			Message:      "Grid maintenance in Sector 4 tonight 22:00-04:00.",
			RelativeTime: "3h ago",
			Read:         true,
		},
	}
}
