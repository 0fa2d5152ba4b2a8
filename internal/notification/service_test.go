package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotificationServiceKeepsNewestFirst(t *testing.T) {
	ns := NewNotificationService(2)
	ns.AddNotification(Notice{RunID: "1", Status: "succeeded"})
	ns.AddNotification(Notice{RunID: "2", Status: "failed"})
	ns.AddNotification(Notice{RunID: "3", Status: "succeeded"})

	got := ns.GetNotifications()
	assert.Len(t, got, 2)
	assert.Equal(t, "3", got[0].RunID)
	assert.Equal(t, "2", got[1].RunID)
	assert.False(t, got[0].At.IsZero())

	got[0].RunID = "changed"
	assert.Equal(t, "3", ns.GetNotifications()[0].RunID)

	ns.ClearNotifications()
	assert.Empty(t, ns.GetNotifications())
}
