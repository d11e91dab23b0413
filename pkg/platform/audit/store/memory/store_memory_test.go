package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "docverify/pkg/platform/audit"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	for _, e := range []audit.Event{
		{Subject: "v-1", Action: string(audit.EventDocumentVerified)},
		{Subject: "aamva", Action: string(audit.EventDocumentParseFailed)},
		{Subject: "v-1", Action: string(audit.EventDocumentRejected)},
	} {
		require.NoError(t, store.Append(ctx, e))
	}

	t.Run("by subject keeps order", func(t *testing.T) {
		events, err := store.ListBySubject(ctx, "v-1")
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, string(audit.EventDocumentVerified), events[0].Action)
		assert.Equal(t, string(audit.EventDocumentRejected), events[1].Action)
	})

	t.Run("recent", func(t *testing.T) {
		events, err := store.ListRecent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "aamva", events[0].Subject)

		all, err := store.ListRecent(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("clear", func(t *testing.T) {
		store.Clear()
		events, err := store.ListAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}
