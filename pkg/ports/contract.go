package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/tafel/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore implementation
// adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	clientID := "contract-test-client-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		session := domain.NewSession(clientID)
		session.Stage = domain.StageWaitingForPersons
		session.Draft = domain.Draft{Name: "Erika", Email: "erika@example.de"}
		session.UpdatedAt = time.Now()

		err := store.Save(ctx, clientID, session)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, clientID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, clientID, loaded.ClientID)
		assert.Equal(t, domain.StageWaitingForPersons, loaded.Stage)
		assert.Equal(t, session.Draft, loaded.Draft)
	})

	t.Run("Load Returns Copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, clientID)
		require.NoError(t, err)
		loaded.Stage = domain.StageWaitingForWish

		again, err := store.Load(ctx, clientID)
		require.NoError(t, err)
		assert.Equal(t, domain.StageWaitingForPersons, again.Stage, "Mutating a loaded session must not affect the store")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+clientID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, clientID, domain.NewSession(clientID))
		require.NoError(t, err)

		err = store.Delete(ctx, clientID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, clientID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := clientID + "-1"
		id2 := clientID + "-2"
		_ = store.Save(ctx, id1, domain.NewSession(id1))
		_ = store.Save(ctx, id2, domain.NewSession(id2))

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
