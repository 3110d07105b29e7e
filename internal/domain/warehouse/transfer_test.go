package warehouse

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransfer(t *testing.T) {
	t.Run("creates a draft transfer", func(t *testing.T) {
		transfer, err := NewTransfer("WH/IN/00042", uuid.New())
		require.NoError(t, err)
		assert.Equal(t, TransferStatusDraft, transfer.Status)
	})

	t.Run("requires a reference", func(t *testing.T) {
		_, err := NewTransfer(" ", uuid.New())
		require.Error(t, err)
	})
}

func TestTransferLifecycle(t *testing.T) {
	transfer, err := NewTransfer("WH/IN/00042", uuid.New())
	require.NoError(t, err)

	t.Run("cannot be marked ready without lines", func(t *testing.T) {
		require.Error(t, transfer.MarkReady())
	})

	require.NoError(t, transfer.AddLine(uuid.New(), "SN-001", 1))
	require.NoError(t, transfer.AddLine(uuid.New(), "", 5))
	require.NoError(t, transfer.MarkReady())

	t.Run("serial lines excludes untracked lines", func(t *testing.T) {
		lines := transfer.SerialLines()
		require.Len(t, lines, 1)
		assert.Equal(t, "SN-001", lines[0].LotSerial)
	})

	t.Run("completes exactly once", func(t *testing.T) {
		assert.True(t, transfer.Complete())
		assert.False(t, transfer.Complete())
		assert.True(t, transfer.IsDone())
	})

	t.Run("rejects new lines after completion", func(t *testing.T) {
		require.Error(t, transfer.AddLine(uuid.New(), "SN-002", 1))
	})
}
