package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard(t *testing.T) {
	require.NoError(t, Acquire())

	// A second maintenance job must be refused, not queued.
	assert.ErrorIs(t, Acquire(), ErrBusy)

	Release()
	require.NoError(t, Acquire())
	Release()
}
