package database

import (
	"context"
	"encoding/json"
	"fmt"

	"median/store"
)

// kindOrder is the load order of seed documents; referenced entities come
// before the entities referencing them.
var kindOrder = []string{
	store.KindNamespace,
	store.KindType,
	store.KindValidator,
	store.KindField,
	store.KindObject,
	store.KindTag,
	store.KindEndpoint,
}

// DocumentsFromSeed flattens a seed into documents. Types and validators
// use their name as id.
func DocumentsFromSeed(seed store.Seed) ([]Document, error) {
	var docs []Document
	add := func(kind, id, namespaceID string, position int, v any) error {
		body, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode %s %q: %w", kind, id, err)
		}
		docs = append(docs, Document{Kind: kind, ID: id, NamespaceID: namespaceID, Position: position, Body: body})
		return nil
	}

	for i, ns := range seed.Namespaces {
		if err := add(store.KindNamespace, ns.ID, ns.ID, i, ns); err != nil {
			return nil, err
		}
	}
	for i, t := range seed.Types {
		if err := add(store.KindType, t.Name, "", i, t); err != nil {
			return nil, err
		}
	}
	for i, v := range seed.Validators {
		if err := add(store.KindValidator, v.Name, "", i, v); err != nil {
			return nil, err
		}
	}
	for i, f := range seed.Fields {
		if err := add(store.KindField, f.ID, f.NamespaceID, i, f); err != nil {
			return nil, err
		}
	}
	for i, o := range seed.Objects {
		if err := add(store.KindObject, o.ID, o.NamespaceID, i, o); err != nil {
			return nil, err
		}
	}
	for i, t := range seed.Tags {
		if err := add(store.KindTag, t.ID, "", i, t); err != nil {
			return nil, err
		}
	}
	for i, e := range seed.Endpoints {
		if err := add(store.KindEndpoint, e.ID, e.NamespaceID, i, e); err != nil {
			return nil, err
		}
	}

	for _, doc := range docs {
		if doc.ID == "" {
			return nil, fmt.Errorf("%s at position %d has no id", doc.Kind, doc.Position)
		}
	}
	return docs, nil
}

// SeedFromDocuments rebuilds a seed. Documents of unknown kinds are
// rejected.
func SeedFromDocuments(docs []Document) (store.Seed, error) {
	var seed store.Seed
	for _, doc := range docs {
		var err error
		switch doc.Kind {
		case store.KindNamespace:
			seed.Namespaces, err = appendDecoded(seed.Namespaces, doc)
		case store.KindType:
			seed.Types, err = appendDecoded(seed.Types, doc)
		case store.KindValidator:
			seed.Validators, err = appendDecoded(seed.Validators, doc)
		case store.KindField:
			seed.Fields, err = appendDecoded(seed.Fields, doc)
		case store.KindObject:
			seed.Objects, err = appendDecoded(seed.Objects, doc)
		case store.KindTag:
			seed.Tags, err = appendDecoded(seed.Tags, doc)
		case store.KindEndpoint:
			seed.Endpoints, err = appendDecoded(seed.Endpoints, doc)
		default:
			err = fmt.Errorf("unknown document kind %q", doc.Kind)
		}
		if err != nil {
			return store.Seed{}, err
		}
	}
	return seed, nil
}

func appendDecoded[T any](items []T, doc Document) ([]T, error) {
	var item T
	if err := json.Unmarshal(doc.Body, &item); err != nil {
		return nil, fmt.Errorf("failed to decode %s %q: %w", doc.Kind, doc.ID, err)
	}
	return append(items, item), nil
}

// LoadSeed reads every stored document back into a seed.
func (db *DB) LoadSeed(ctx context.Context) (store.Seed, error) {
	docs, err := db.AllDocuments(ctx, kindOrder...)
	if err != nil {
		return store.Seed{}, err
	}
	return SeedFromDocuments(docs)
}

// ReplaceSeed swaps the stored documents for seed in one transaction.
func (db *DB) ReplaceSeed(ctx context.Context, seed store.Seed) error {
	docs, err := DocumentsFromSeed(seed)
	if err != nil {
		return err
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, "DELETE FROM seed_documents"); err != nil {
		return fmt.Errorf("failed to clear documents: %w", err)
	}
	if err := insertDocuments(ctx, tx, db.logger, docs); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}
	return nil
}
