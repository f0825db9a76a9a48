package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"median/models"
)

func TestCreateField(t *testing.T) {
	s := newTestStore(t)

	f, err := s.CreateField(models.Field{Name: "  slug ", Type: "str",
		Validators: []models.FieldValidator{{Name: "lowercase_slug"}}})
	require.NoError(t, err)

	assert.Equal(t, "field-1700000000000-0", f.ID)
	assert.Equal(t, "slug", f.Name)
	assert.Equal(t, models.GlobalNamespaceID, f.NamespaceID)
	assert.Empty(t, f.UsedInApis)
}

func TestCreateField_Validation(t *testing.T) {
	tests := []struct {
		name  string
		field models.Field
		key   string
	}{
		{name: "missing name", field: models.Field{Type: "str"}, key: "name"},
		{name: "duplicate name ignores case", field: models.Field{Name: "EMAIL", Type: "str"}, key: "name"},
		{name: "unknown type", field: models.Field{Name: "x", Type: "blob"}, key: "type"},
		{name: "unknown namespace", field: models.Field{Name: "x", Type: "str", NamespaceID: "nope"}, key: "namespace_id"},
		{
			name:  "unknown validator",
			field: models.Field{Name: "x", Type: "str", Validators: []models.FieldValidator{{Name: "nope"}}},
			key:   "validators",
		},
		{
			name:  "incompatible validator",
			field: models.Field{Name: "x", Type: "int", Validators: []models.FieldValidator{{Name: "min_length", Value: "3"}}},
			key:   "validators",
		},
		{
			name:  "type without category takes no validators",
			field: models.Field{Name: "x", Type: "bool", Validators: []models.FieldValidator{{Name: "gt", Value: "0"}}},
			key:   "validators",
		},
		{
			name:  "validator applied twice",
			field: models.Field{Name: "x", Type: "str", Validators: []models.FieldValidator{{Name: "min_length"}, {Name: "min_length"}}},
			key:   "validators",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)

			_, err := s.CreateField(tt.field)

			assert.Contains(t, validationFields(t, err), tt.key)
			assert.Equal(t, 6, s.Counts()["fields"], "rejected field must not be stored")
		})
	}
}

func TestCreateField_SameNameOtherNamespace(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateField(models.Field{Name: "email", Type: "email", NamespaceID: "ns-billing"})
	assert.NoError(t, err)
}

func TestUpdateField(t *testing.T) {
	s := newTestStore(t)

	f, err := s.GetField("field-age")
	require.NoError(t, err)
	f.Description = "Age in years"

	updated, err := s.UpdateField(f)
	require.NoError(t, err)
	assert.Equal(t, "Age in years", updated.Description)

	_, err = s.UpdateField(models.Field{ID: "missing", Name: "x", Type: "str"})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUpdateField_KeepingOwnNameIsNotDuplicate(t *testing.T) {
	s := newTestStore(t)

	f, err := s.GetField("field-email")
	require.NoError(t, err)
	f.Name = "Email"

	_, err = s.UpdateField(f)
	assert.NoError(t, err)
}

func TestField_UsedInApis(t *testing.T) {
	s := newTestStore(t)

	email, err := s.GetField("field-email")
	require.NoError(t, err)
	assert.Equal(t, []string{"GET /users", "GET /users/{user_id}", "POST /invoices"}, email.UsedInApis)

	tags, err := s.GetField("field-tags")
	require.NoError(t, err)
	assert.Equal(t, []string{"GET /users"}, tags.UsedInApis)
}

func TestDeleteField(t *testing.T) {
	s := newTestStore(t)

	f, err := s.CreateField(models.Field{Name: "unused", Type: "str"})
	require.NoError(t, err)

	result, err := s.DeleteField(f.ID, "")
	require.NoError(t, err)
	assert.True(t, result.Success)

	_, err = s.GetField(f.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDeleteField_BlockedByObjects(t *testing.T) {
	s := newTestStore(t)

	result, err := s.DeleteField("field-email", "")
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, `Cannot delete field "email": it is used by 2 objects: "User", "Invoice".`, result.Error)
	require.Len(t, result.References, 2)
	assert.Equal(t, "obj-user", result.References[0].ID)

	_, err = s.GetField("field-email")
	assert.NoError(t, err, "blocked field must survive")
}

func TestDeleteField_NamespaceScoped(t *testing.T) {
	s := newTestStore(t)

	// Invoice lives in billing; only User blocks within global.
	result, err := s.DeleteField("field-email", models.GlobalNamespaceID)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Len(t, result.References, 1)

	// field-tags is only used by a global object.
	result, err = s.DeleteField("field-tags", "ns-billing")
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestDeleteField_NotFound(t *testing.T) {
	s := newTestStore(t)

	result, err := s.DeleteField("missing", "")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestFieldReferences(t *testing.T) {
	s := newTestStore(t)

	target, refs, err := s.FieldReferences("field-name")
	require.NoError(t, err)
	assert.Equal(t, "name", target.Name)
	assert.Len(t, refs, 2)
}
