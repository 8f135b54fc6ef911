package repository

import "smartcity-be/internal/model"

// AlertRepository owns the read state of a fixed alert list. Records are
// seeded once; only the read flag changes afterwards and it never flips back.
type AlertRepository interface {
	List() []model.Alert
	UnreadCount() int
	// MarkRead reports whether the record changed and the unread count right
	// after the change. Unknown ids and records that are already read are
	// no-ops.
	MarkRead(id int) (changed bool, unread int)
	// MarkAllRead returns how many records changed and the unread count
	// after the change.
	MarkAllRead() (marked int, unread int)
}
