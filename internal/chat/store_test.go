package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAppendReturnsOrderedCopy(t *testing.T) {
	store := NewStore(WithClock(newStepClock().Now))

	view := store.append(Message{Role: RoleUser, Text: "a"})
	require.Len(t, view, 1)
	view = store.append(Message{Role: RoleAssistant, Text: "b"})
	require.Len(t, view, 2)

	assert.Equal(t, "a", view[0].Text)
	assert.Equal(t, "b", view[1].Text)
	assert.NotEmpty(t, view[0].ID)
	assert.NotEqual(t, view[0].ID, view[1].ID)

	// 修改返回的切片不影响历史
	view[0].Text = "changed"
	assert.Equal(t, "a", store.Messages()[0].Text)
}

func TestStoreTimestampsNonDecreasing(t *testing.T) {
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(-time.Minute), base.Add(time.Minute)}
	i := 0
	store := NewStore(WithClock(func() time.Time {
		ts := times[i]
		i++
		return ts
	}))

	store.append(Message{Role: RoleUser, Text: "1"})
	store.append(Message{Role: RoleAssistant, Text: "2"})
	store.append(Message{Role: RoleUser, Text: "3"})

	msgs := store.Messages()
	assert.Equal(t, base, msgs[1].Timestamp, "clock going backwards is clamped")
	for i := 1; i < len(msgs); i++ {
		assert.False(t, msgs[i].Timestamp.Before(msgs[i-1].Timestamp))
	}
}

func TestStoreNotifiesSynchronously(t *testing.T) {
	store := NewStore()
	var seenLen []int
	store.Subscribe(func(e Event) {
		appended, ok := e.(MessageAppended)
		require.True(t, ok)
		// 回调执行时消息已经记录
		seenLen = append(seenLen, store.Len())
		assert.Equal(t, appended.Index, store.Len()-1)
	})

	store.append(Message{Role: RoleUser, Text: "x"})
	assert.Equal(t, []int{1}, seenLen, "listener must run before append returns")
}

func TestStoreUnsubscribe(t *testing.T) {
	store := NewStore()
	calls := 0
	unsubscribe := store.Subscribe(func(Event) { calls++ })
	store.append(Message{Role: RoleUser, Text: "1"})
	unsubscribe()
	unsubscribe()
	store.append(Message{Role: RoleUser, Text: "2"})
	assert.Equal(t, 1, calls)
}

func TestStoreListenersRunInOrder(t *testing.T) {
	store := NewStore()
	var order []string
	store.Subscribe(func(Event) { order = append(order, "first") })
	store.Subscribe(func(Event) { order = append(order, "second") })

	store.append(Message{Role: RoleUser, Text: "x"})
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestStoreLast(t *testing.T) {
	store := NewStore()
	_, ok := store.Last()
	assert.False(t, ok)

	store.append(Message{Role: RoleUser, Text: "q"})
	last, ok := store.Last()
	assert.True(t, ok)
	assert.Equal(t, "q", last.Text)
}
