package entities

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "knowflow-backend/pkg/errors"
)

func TestNewProcess(t *testing.T) {
	t.Run("SuccessfulCreation", func(t *testing.T) {
		p, err := NewProcess("  Invoice Approval  ", "end-to-end AP flow", "finance")
		require.NoError(t, err)

		assert.False(t, p.ID().IsZero())
		assert.Equal(t, "Invoice Approval", p.Name())
		assert.Equal(t, "end-to-end AP flow", p.Description())
		assert.Equal(t, "finance", p.Department())
		assert.Equal(t, ProcessStatusDraft, p.Status())
		assert.Equal(t, p.CreatedAt(), p.UpdatedAt())
	})

	t.Run("EmptyName", func(t *testing.T) {
		_, err := NewProcess("   ", "", "")
		require.Error(t, err)
		assert.True(t, pkgerrors.IsValidation(err))
	})
}

func TestProcessLifecycle(t *testing.T) {
	t.Run("MarkCapturingIsIdempotent", func(t *testing.T) {
		p, err := NewProcess("Onboarding", "", "")
		require.NoError(t, err)

		require.NoError(t, p.MarkCapturing())
		assert.Equal(t, ProcessStatusCapturing, p.Status())
		require.NoError(t, p.MarkCapturing())
		assert.Equal(t, ProcessStatusCapturing, p.Status())
	})

	t.Run("ArchiveBlocksMutation", func(t *testing.T) {
		p, err := NewProcess("Onboarding", "", "")
		require.NoError(t, err)

		p.Archive()
		assert.Equal(t, ProcessStatusArchived, p.Status())

		err = p.Rename("New Name", "")
		assert.True(t, pkgerrors.IsValidation(err))
		err = p.MarkCapturing()
		assert.True(t, pkgerrors.IsValidation(err))

		// Archiving again is a no-op.
		p.Archive()
		assert.Equal(t, ProcessStatusArchived, p.Status())
	})

	t.Run("RenameKeepsDescriptionWhenBlank", func(t *testing.T) {
		p, err := NewProcess("Onboarding", "hire to desk", "")
		require.NoError(t, err)

		require.NoError(t, p.Rename("New Hire Onboarding", ""))
		assert.Equal(t, "New Hire Onboarding", p.Name())
		assert.Equal(t, "hire to desk", p.Description())
	})
}

// TestProcessConcurrentAccess drives readers and writers over the same
// process at once. Run with -race.
func TestProcessConcurrentAccess(t *testing.T) {
	p, err := NewProcess("Payroll Run", "", "hr")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = p.MarkCapturing()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = p.Status()
				_ = p.Name()
				_ = p.UpdatedAt()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, ProcessStatusCapturing, p.Status())
}
