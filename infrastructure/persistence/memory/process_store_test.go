package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowflow-backend/application/ports"
	"knowflow-backend/domain/core/aggregates"
	"knowflow-backend/domain/core/entities"
	"knowflow-backend/domain/risk"
	"knowflow-backend/domain/versioning"
	"knowflow-backend/pkg/errors"
)

func newTestState(t *testing.T, name string) *ports.ProcessState {
	t.Helper()
	process, err := entities.NewProcess(name, "", "operations")
	require.NoError(t, err)
	return &ports.ProcessState{
		Process:  process,
		Graph:    aggregates.NewProcessGraph(process.ID()),
		Versions: versioning.NewLedger(),
		Findings: risk.NewLedger(),
	}
}

func TestInMemoryProcessStore(t *testing.T) {
	ctx := context.Background()

	t.Run("SaveAndGetByID", func(t *testing.T) {
		store := NewInMemoryProcessStore()
		state := newTestState(t, "Invoice Approval")
		require.NoError(t, store.Save(ctx, state))

		got, err := store.GetByID(ctx, state.Process.ID().String())
		require.NoError(t, err)
		assert.Same(t, state, got)
	})

	t.Run("DuplicateSaveIsAConflict", func(t *testing.T) {
		store := NewInMemoryProcessStore()
		state := newTestState(t, "Invoice Approval")
		require.NoError(t, store.Save(ctx, state))

		err := store.Save(ctx, state)
		assert.True(t, errors.IsConflict(err))
	})

	t.Run("GetUnknownIDIsNotFound", func(t *testing.T) {
		store := NewInMemoryProcessStore()
		_, err := store.GetByID(ctx, "missing")
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("ListOrdersByCreationTime", func(t *testing.T) {
		store := NewInMemoryProcessStore()
		first := newTestState(t, "Onboarding")
		second := newTestState(t, "Offboarding")
		require.NoError(t, store.Save(ctx, second))
		require.NoError(t, store.Save(ctx, first))

		states, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, states, 2)
		notAfter := !states[0].Process.CreatedAt().After(states[1].Process.CreatedAt())
		assert.True(t, notAfter)
	})

	t.Run("DeleteRemovesTheProcess", func(t *testing.T) {
		store := NewInMemoryProcessStore()
		state := newTestState(t, "Onboarding")
		require.NoError(t, store.Save(ctx, state))

		require.NoError(t, store.Delete(ctx, state.Process.ID().String()))
		_, err := store.GetByID(ctx, state.Process.ID().String())
		assert.True(t, errors.IsNotFound(err))

		assert.True(t, errors.IsNotFound(store.Delete(ctx, state.Process.ID().String())))
	})
}
