package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"median/models"
)

const testTimestamp = 1700000000000

func newTestStore(t *testing.T) *Store {
	t.Helper()

	seed, err := DefaultSeed()
	require.NoError(t, err)

	ids := NewIDGenerator()
	ids.Seed(0, testTimestamp)
	return New(seed, WithIDGenerator(ids))
}

func validationFields(t *testing.T, err error) map[string]string {
	t.Helper()

	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected a validation error, got %v", err)
	return verr.FieldErrors()
}

func TestIDGenerator(t *testing.T) {
	ids := NewIDGenerator()
	ids.Seed(0, testTimestamp)

	assert.Equal(t, "field-1700000000000-0", ids.Next("field"))
	assert.Equal(t, "obj-1700000000000-1", ids.Next("obj"))

	ids.Seed(7, 42)
	assert.Equal(t, "ep-42-7", ids.Next("ep"))

	ids.SetClock(func() time.Time { return time.UnixMilli(99) })
	assert.Equal(t, "tag-99-8", ids.Next("tag"))
}

func TestNew_AlwaysHasLockedGlobalNamespace(t *testing.T) {
	s := New(Seed{})

	ns, err := s.GetNamespace(models.GlobalNamespaceID)
	require.NoError(t, err)
	assert.True(t, ns.Locked)

	seeded := New(Seed{Namespaces: []models.Namespace{{ID: models.GlobalNamespaceID, Name: "Global"}}})
	ns, err = seeded.GetNamespace(models.GlobalNamespaceID)
	require.NoError(t, err)
	assert.True(t, ns.Locked, "seeded global namespace is forced locked")
}

func TestDefaultSeed(t *testing.T) {
	s := newTestStore(t)

	counts := s.Counts()
	assert.Equal(t, 2, counts["namespaces"])
	assert.Equal(t, 12, counts["types"])
	assert.Equal(t, 8, counts["validators"])
	assert.Equal(t, 6, counts["fields"])
	assert.Equal(t, 3, counts["objects"])
	assert.Equal(t, 3, counts["endpoints"])
	assert.Equal(t, 2, counts["tags"])
}

func TestLoadSeedFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"types": [{"name": "str", "category": "string"}],
		"fields": [{"id": "f1", "name": "title", "type": "str"}]
	}`), 0o600))

	seed, err := LoadSeedFile(path)
	require.NoError(t, err)

	s := New(seed)
	f, err := s.GetField("f1")
	require.NoError(t, err)
	assert.Equal(t, models.GlobalNamespaceID, f.NamespaceID)
}

func TestParseSeed_UnknownFormat(t *testing.T) {
	_, err := ParseSeed([]byte("x"), "toml")
	assert.Error(t, err)
}

func TestReadsReturnCopies(t *testing.T) {
	s := newTestStore(t)

	f, err := s.GetField("field-name")
	require.NoError(t, err)
	f.Validators[0].Name = "tampered"

	again, err := s.GetField("field-name")
	require.NoError(t, err)
	assert.Equal(t, "min_length", again.Validators[0].Name)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	copied := New(s.Snapshot())

	assert.Equal(t, s.Counts(), copied.Counts())
	assert.Equal(t, s.ListFields(""), copied.ListFields(""))
}

func TestSubscribe(t *testing.T) {
	s := newTestStore(t)
	changes, cancel := s.Subscribe()

	created, err := s.CreateTag(models.EndpointTag{Name: "Admin"})
	require.NoError(t, err)

	select {
	case c := <-changes:
		assert.Equal(t, KindTag, c.Entity)
		assert.Equal(t, OpCreated, c.Op)
		assert.Equal(t, created.ID, c.ID)
	case <-time.After(time.Second):
		t.Fatal("no change event")
	}

	cancel()
	cancel()
	_, open := <-changes
	assert.False(t, open)
}
