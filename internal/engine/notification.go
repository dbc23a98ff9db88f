package engine

import "github.com/roach88/bitshub/internal/domain"

// notify appends an unread notification stamped with the transition time.
func (r *reducer) notify(userID string, typ domain.NotificationType, message string) {
	r.s.Notifications = append(r.s.Notifications, domain.Notification{
		ID:        r.ids.NewID(),
		UserID:    userID,
		Message:   message,
		Type:      typ,
		CreatedAt: r.now,
		Read:      false,
	})
}

func (r *reducer) addNotification(a AddNotification) error {
	n := a.Notification
	n.ID = r.newID(n.ID)
	if n.CreatedAt.IsZero() {
		n.CreatedAt = r.now
	}
	r.s.Notifications = append(r.s.Notifications, n)
	r.out.CreatedID = n.ID
	return nil
}

// markNotificationRead is idempotent; unknown ids are ignored.
func (r *reducer) markNotificationRead(a MarkNotificationRead) error {
	for i := range r.s.Notifications {
		if r.s.Notifications[i].ID == a.ID {
			r.s.Notifications[i].Read = true
		}
	}
	return nil
}
