package favorite

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFavorite(t *testing.T) {
	c, p := uuid.New(), uuid.New()
	f, err := NewFavorite(c, p)
	require.NoError(t, err)
	assert.Equal(t, c, f.CustomerID)
	assert.Equal(t, p, f.ProductID)
	assert.NotEqual(t, uuid.Nil, f.ID)
	assert.False(t, f.CreatedAt.IsZero())

	_, err = NewFavorite(uuid.Nil, p)
	assert.Error(t, err)
	_, err = NewFavorite(c, uuid.Nil)
	assert.Error(t, err)
}
