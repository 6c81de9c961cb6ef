package auditlog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitFillsDefaults(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store)

	err := pub.Emit(context.Background(), Event{
		Action:       ActionQueryProcessed,
		TemplateType: "C01",
		Currency:     "GBP",
	})
	require.NoError(t, err)

	events, err := store.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.NotEqual(t, uuid.Nil, events[0].ID)
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestListRecentNewestFirst(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store)
	ctx := context.Background()

	for _, tt := range []string{"first", "second", "third"} {
		require.NoError(t, pub.Emit(ctx, Event{Action: ActionQueryProcessed, RequestID: tt}))
	}

	events, err := pub.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "third", events[0].RequestID)
	assert.Equal(t, "second", events[1].RequestID)
}
