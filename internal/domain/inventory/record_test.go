package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecord(t *testing.T) {
	t.Run("creates tracked record", func(t *testing.T) {
		r, err := NewRecord(uuid.New(), nil, 10, true)
		require.NoError(t, err)
		assert.Equal(t, int64(10), r.Quantity)
		assert.True(t, r.Tracked)
	})

	t.Run("rejects nil product", func(t *testing.T) {
		_, err := NewRecord(uuid.Nil, nil, 10, true)
		assert.Error(t, err)
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		_, err := NewRecord(uuid.New(), nil, -1, true)
		assert.Error(t, err)
	})
}

func TestRecordIsAvailable(t *testing.T) {
	r, err := NewRecord(uuid.New(), nil, 5, true)
	require.NoError(t, err)

	assert.True(t, r.IsAvailable(5))
	assert.False(t, r.IsAvailable(6))

	r.SetTracked(false)
	assert.True(t, r.IsAvailable(1000))
}

func TestValidateQuantity(t *testing.T) {
	assert.NoError(t, ValidateQuantity(1))
	assert.Error(t, ValidateQuantity(0))
	assert.Error(t, ValidateQuantity(-3))
}
