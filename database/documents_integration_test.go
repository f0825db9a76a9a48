package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"median/store"
)

func TestReplaceAndLoadSeed(t *testing.T) {
	db := RequireTestDB(t)
	ctx := context.Background()

	seed, err := store.DefaultSeed()
	require.NoError(t, err)

	require.NoError(t, db.ReplaceSeed(ctx, seed))

	loaded, err := db.LoadSeed(ctx)
	require.NoError(t, err)
	assert.Equal(t, seed, loaded)

	require.NoError(t, db.ReplaceSeed(ctx, store.Seed{}))
	loaded, err = db.LoadSeed(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded.Fields)
}

func TestListDocuments_FilterAndPaging(t *testing.T) {
	db := RequireTestDB(t)
	ctx := context.Background()

	seed, err := store.DefaultSeed()
	require.NoError(t, err)
	docs, err := DocumentsFromSeed(seed)
	require.NoError(t, err)
	require.NoError(t, db.InsertDocuments(ctx, docs))

	page, total, err := db.ListDocuments(ctx, DocumentQuery{Kinds: []string{store.KindField}, Limit: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
	assert.Len(t, page, 4)
	assert.Equal(t, "field-email", page[0].ID)

	page, total, err = db.ListDocuments(ctx, DocumentQuery{NamespaceID: "ns-billing"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total, "namespace row plus four entities")
	assert.Len(t, page, 5)
}

func TestInsertDocuments_Upserts(t *testing.T) {
	db := RequireTestDB(t)
	ctx := context.Background()

	doc := Document{Kind: store.KindTag, ID: "t1", Body: []byte(`{"id":"t1","name":"A"}`)}
	require.NoError(t, db.InsertDocuments(ctx, []Document{doc}))

	doc.Body = []byte(`{"id":"t1","name":"B"}`)
	require.NoError(t, db.InsertDocuments(ctx, []Document{doc}))

	got, err := db.GetDocument(ctx, store.KindTag, "t1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"t1","name":"B"}`, string(got.Body))
}

func TestInsertDocuments_ReportsFailedIndex(t *testing.T) {
	db := RequireTestDB(t)

	err := db.InsertDocuments(context.Background(), []Document{
		{Kind: store.KindTag, ID: "ok", Body: []byte(`{}`)},
		{Kind: store.KindTag, ID: "bad", Body: []byte(`not json`)},
	})

	var insertErr *SeedInsertError
	require.True(t, errors.As(err, &insertErr))
	assert.Equal(t, 1, insertErr.FailedIndex)
	assert.Equal(t, "bad", insertErr.ID)
}

func TestGetDocument_NotFound(t *testing.T) {
	db := RequireTestDB(t)

	_, err := db.GetDocument(context.Background(), store.KindField, "missing")
	assert.True(t, errors.Is(err, ErrDocumentNotFound))
}

func TestDeleteDocuments(t *testing.T) {
	db := RequireTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.InsertDocuments(ctx, []Document{
		{Kind: store.KindTag, ID: "t1", Body: []byte(`{}`)},
		{Kind: store.KindField, ID: "f1", Body: []byte(`{}`)},
	}))

	n, err := db.DeleteDocuments(ctx, store.KindTag)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	remaining, err := db.AllDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}
