package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"median/models"
)

func TestObject_UsedInApis(t *testing.T) {
	s := newTestStore(t)

	user, err := s.GetObject("obj-user")
	require.NoError(t, err)
	assert.Equal(t, []string{"GET /users", "GET /users/{user_id}"}, user.UsedInApis)
}

func TestCreateObject(t *testing.T) {
	s := newTestStore(t)

	o, err := s.CreateObject(models.ObjectDefinition{
		Name:   "Profile",
		Fields: []models.ObjectField{{FieldID: "field-name", Required: true}, {FieldID: "field-gone"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "obj-1700000000000-0", o.ID)

	assert.Equal(t, []string{"field-gone"}, s.MissingFields(o), "dangling ids are kept and reported")
}

func TestCreateObject_Validation(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateObject(models.ObjectDefinition{Name: "user"})
	assert.Contains(t, validationFields(t, err), "name")

	_, err = s.CreateObject(models.ObjectDefinition{Name: "User", NamespaceID: "ns-billing"})
	assert.NoError(t, err, "names are unique per namespace")

	_, err = s.CreateObject(models.ObjectDefinition{
		Name:   "Twice",
		Fields: []models.ObjectField{{FieldID: "field-name"}, {FieldID: "field-name"}},
	})
	assert.Contains(t, validationFields(t, err), "fields")
}

func TestDeleteObject(t *testing.T) {
	s := newTestStore(t)

	result, err := s.DeleteObject("obj-user", "")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, `Cannot delete object "User": it is used by 2 endpoints: "GET /users", "GET /users/{user_id}".`, result.Error)

	o, err := s.CreateObject(models.ObjectDefinition{Name: "Loose"})
	require.NoError(t, err)
	result, err = s.DeleteObject(o.ID, "")
	require.NoError(t, err)
	assert.True(t, result.Success)

	_, err = s.DeleteObject(o.ID, "")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDeleteField_UnblockedOnceObjectDropsIt(t *testing.T) {
	s := newTestStore(t)

	f, err := s.CreateField(models.Field{Name: "nickname", Type: "str"})
	require.NoError(t, err)
	o, err := s.CreateObject(models.ObjectDefinition{Name: "Holder", Fields: []models.ObjectField{{FieldID: f.ID}}})
	require.NoError(t, err)

	result, err := s.DeleteField(f.ID, "")
	require.NoError(t, err)
	assert.False(t, result.Success)

	o.Fields = nil
	_, err = s.UpdateObject(o)
	require.NoError(t, err)

	result, err = s.DeleteField(f.ID, "")
	require.NoError(t, err)
	assert.True(t, result.Success)
}
