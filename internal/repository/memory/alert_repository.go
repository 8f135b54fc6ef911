package memory

import (
	"fmt"
	"sync"
	"time"

	"smartcity-be/internal/model"
	"smartcity-be/internal/repository"
)

type AlertRepository struct {
	mu     sync.RWMutex
	alerts []model.Alert
	index  map[int]int // alert id -> position in alerts
	now    func() time.Time
}

var _ repository.AlertRepository = (*AlertRepository)(nil)

// NewAlertRepository copies seed so later changes by the caller cannot leak in.
func NewAlertRepository(seed []model.Alert) (*AlertRepository, error) {
	alerts := make([]model.Alert, len(seed))
	index := make(map[int]int, len(seed))

	for i, a := range seed {
		if _, dup := index[a.ID]; dup {
			return nil, fmt.Errorf("duplicate alert id %d", a.ID)
		}
		if !a.Severity.Valid() {
			return nil, fmt.Errorf("alert %d: unknown severity %q", a.ID, a.Severity)
		}
		alerts[i] = cloneAlert(a)
		index[a.ID] = i
	}

	return &AlertRepository{
		alerts: alerts,
		index:  index,
		now:    time.Now,
	}, nil
}

func (r *AlertRepository) List() []model.Alert {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Alert, len(r.alerts))
	for i, a := range r.alerts {
		out[i] = cloneAlert(a)
	}
	return out
}

func (r *AlertRepository) UnreadCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.unreadLocked()
}

func (r *AlertRepository) unreadLocked() int {
	count := 0
	for _, a := range r.alerts {
		if !a.Read {
			count++
		}
	}
	return count
}

func (r *AlertRepository) MarkRead(id int) (bool, int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[id]
	if !ok || r.alerts[i].Read {
		return false, r.unreadLocked()
	}
	r.markLocked(i, r.now())
	return true, r.unreadLocked()
}

func (r *AlertRepository) MarkAllRead() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	changed := 0
	for i := range r.alerts {
		if !r.alerts[i].Read {
			r.markLocked(i, now)
			changed++
		}
	}
	return changed, 0
}

func (r *AlertRepository) markLocked(i int, at time.Time) {
	r.alerts[i].Read = true
	r.alerts[i].ReadAt = &at
}

// cloneAlert copies a so the ReadAt pointer is not shared.
func cloneAlert(a model.Alert) model.Alert {
	if a.ReadAt != nil {
		readAt := *a.ReadAt
		a.ReadAt = &readAt
	}
	return a
}
