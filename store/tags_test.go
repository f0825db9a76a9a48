package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"median/models"
)

func TestDeleteTag_ClearsEndpoints(t *testing.T) {
	s := newTestStore(t)
	changes, cancel := s.Subscribe()
	defer cancel()

	result, err := s.DeleteTag("tag-users")
	require.NoError(t, err)
	assert.True(t, result.Success)

	for _, e := range s.ListEndpoints(models.GlobalNamespaceID) {
		assert.Empty(t, e.TagID, e.Label())
	}
	billing, err := s.GetEndpoint("ep-create-invoice")
	require.NoError(t, err)
	assert.Equal(t, "tag-billing", billing.TagID)

	assert.Len(t, changes, 3, "tag deletion plus two endpoint updates")
}

func TestCreateTag_UniqueName(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateTag(models.EndpointTag{Name: "users"})
	assert.Contains(t, validationFields(t, err), "name")
}
