package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"backend/internal/models"
)

func TestRemoveAddress(t *testing.T) {
	addresses := []models.Address{
		{ID: "a1", Title: "Home"},
		{ID: "a2", Title: "Work"},
		{ID: "a3", Title: "Studio"},
	}

	remaining, removed := removeAddress(addresses, "a2")
	assert.True(t, removed)
	assert.Len(t, remaining, 2)
	assert.Equal(t, "a1", remaining[0].ID)
	assert.Equal(t, "a3", remaining[1].ID)
}

func TestRemoveAddressMissingID(t *testing.T) {
	addresses := []models.Address{
		{ID: "a1", Title: "Home"},
	}

	remaining, removed := removeAddress(addresses, "nope")
	assert.False(t, removed)
	assert.Len(t, remaining, 1)
}

func TestRemoveAddressEmptyList(t *testing.T) {
	remaining, removed := removeAddress(nil, "a1")
	assert.False(t, removed)
	assert.Empty(t, remaining)
}
