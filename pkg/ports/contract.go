package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/chatflow"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore
// implementation adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Put and Get", func(t *testing.T) {
		ed := chatflow.New()
		_, err := ed.AddNode(domain.NodeTypeText, domain.Position{})
		require.NoError(t, err)

		err = store.Put(ctx, sessionID, ed)
		require.NoError(t, err, "Put should not return error")

		got, err := store.Get(ctx, sessionID)
		require.NoError(t, err, "Get should not return error")
		assert.Len(t, got.Graph().Nodes, 1)
		assert.True(t, got.CanUndo(), "history must survive the store")
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Put(ctx, sessionID, chatflow.New())
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Get(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Get after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, sessionID), "Delete is idempotent")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Put(ctx, id1, chatflow.New())
		_ = store.Put(ctx, id2, chatflow.New())

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
