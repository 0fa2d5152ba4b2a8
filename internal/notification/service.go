package notification

import (
	"sync"
	"time"
)

// Notice summarizes the outcome of one merge run.
type Notice struct {
	RunID    string    `json:"run_id"`
	Source   string    `json:"source"`
	Filename string    `json:"filename,omitempty"`
	Status   string    `json:"status"`
	Message  string    `json:"message,omitempty"`
	Rows     int       `json:"rows"`
	At       time.Time `json:"at"`
}

const DefaultLimit = 50

// NotificationService keeps the most recent run notices, newest first.
type NotificationService struct {
	mu            sync.Mutex
	notifications []Notice
	limit         int
}

func NewNotificationService(limit int) *NotificationService {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &NotificationService{
		notifications: make([]Notice, 0, limit),
		limit:         limit,
	}
}

func (ns *NotificationService) AddNotification(n Notice) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	if n.At.IsZero() {
		n.At = time.Now()
	}
	ns.notifications = append([]Notice{n}, ns.notifications...)
	if len(ns.notifications) > ns.limit {
		ns.notifications = ns.notifications[:ns.limit]
	}
}

// GetNotifications returns a copy of the retained notices.
func (ns *NotificationService) GetNotifications() []Notice {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	out := make([]Notice, len(ns.notifications))
	copy(out, ns.notifications)
	return out
}

func (ns *NotificationService) ClearNotifications() {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	ns.notifications = ns.notifications[:0]
}
