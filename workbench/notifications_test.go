package workbench

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueNewestFirst(t *testing.T) {
	q := NewNotificationQueue(time.Minute)
	defer q.Stop()

	q.Push("first")
	q.Push("second")
	q.Push("third")

	entries := q.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "third", entries[0].Text)
	assert.Equal(t, "second", entries[1].Text)
	assert.Equal(t, "first", entries[2].Text)
}

func TestQueueEvictsOldestBeyondCap(t *testing.T) {
	q := NewNotificationQueue(time.Minute)
	defer q.Stop()

	for i := 0; i < NotificationCap+5; i++ {
		q.Push(fmt.Sprintf("toast %d", i))
	}

	entries := q.Entries()
	require.Len(t, entries, NotificationCap)
	assert.Equal(t, fmt.Sprintf("toast %d", NotificationCap+4), entries[0].Text)
	assert.Equal(t, "toast 5", entries[len(entries)-1].Text)
}

func TestQueueSelfExpiry(t *testing.T) {
	q := NewNotificationQueue(50 * time.Millisecond)
	defer q.Stop()

	q.Push("ephemeral")
	require.Len(t, q.Entries(), 1)

	assert.Eventually(t, func() bool {
		return len(q.Entries()) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestQueueDismissRemovesOnlyTarget(t *testing.T) {
	q := NewNotificationQueue(time.Minute)
	defer q.Stop()

	kept := q.Push("keep me")
	dropped := q.Push("dismiss me")

	q.Dismiss(dropped.ID)

	entries := q.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, kept.ID, entries[0].ID)

	// Dismissing twice, or an unknown ID, is harmless.
	q.Dismiss(dropped.ID)
	q.Dismiss("no-such-id")
	assert.Len(t, q.Entries(), 1)
}

func TestQueueUniqueIDs(t *testing.T) {
	q := NewNotificationQueue(time.Minute)
	defer q.Stop()

	a := q.Push("same text")
	b := q.Push("same text")
	assert.NotEqual(t, a.ID, b.ID)
}

func TestQueueOnChangeSnapshots(t *testing.T) {
	q := NewNotificationQueue(time.Minute)
	defer q.Stop()

	var lengths []int
	q.OnChange = func(entries []Notification) {
		lengths = append(lengths, len(entries))
	}

	q.Push("a")
	q.Push("b")
	entries := q.Entries()
	q.Dismiss(entries[0].ID)

	assert.Equal(t, []int{1, 2, 1}, lengths)
}

func TestQueueStopRejectsFurtherPushes(t *testing.T) {
	q := NewNotificationQueue(time.Minute)
	q.Push("pre-stop")
	q.Stop()

	assert.Empty(t, q.Entries())

	entry := q.Push("post-stop")
	assert.Empty(t, entry.ID)
	assert.Empty(t, q.Entries())
}
