package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"median/models"
)

// Document is one stored seed entity. Body is the entity's JSON.
type Document struct {
	Kind        string
	ID          string
	NamespaceID string
	Position    int
	Body        json.RawMessage
}

// ErrDocumentNotFound is returned by GetDocument for unknown keys.
var ErrDocumentNotFound = errors.New("document not found")

// DocumentQuery filters ListDocuments.
type DocumentQuery struct {
	Kinds       []string
	NamespaceID string
	Limit       int
	Offset      int
}

// SeedInsertError indicates which document failed during a batch insert.
type SeedInsertError struct {
	FailedIndex int
	Total       int
	Kind        string
	ID          string
	Err         error
}

func (e *SeedInsertError) Error() string {
	return fmt.Sprintf("failed to insert %s %q at index %d/%d: %v", e.Kind, e.ID, e.FailedIndex, e.Total, e.Err)
}

func (e *SeedInsertError) Unwrap() error {
	return e.Err
}

// InsertDocuments upserts documents in one round trip. The first failing
// document is reported as a *SeedInsertError.
func (db *DB) InsertDocuments(ctx context.Context, docs []Document) error {
	return insertDocuments(ctx, db.Pool, db.logger, docs)
}

type batchSender interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

func insertDocuments(ctx context.Context, conn batchSender, logger *zap.Logger, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	start := time.Now()
	defer func() {
		logger.Debug("InsertDocuments", zap.Duration("duration", time.Since(start)), zap.Int("count", len(docs)))
	}()

	query := fmt.Sprintf(`
		INSERT INTO seed_documents (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (%s, %s) DO UPDATE
		SET %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s, updated_at = NOW()
	`, columnKind, columnID, columnNamespaceID, columnPosition, columnBody,
		columnKind, columnID,
		columnNamespaceID, columnNamespaceID, columnPosition, columnPosition, columnBody, columnBody)

	batch := &pgx.Batch{}
	for _, doc := range docs {
		var namespaceID any
		if doc.NamespaceID != "" {
			namespaceID = doc.NamespaceID
		}
		batch.Queue(query, doc.Kind, doc.ID, namespaceID, doc.Position, []byte(doc.Body))
	}

	results := conn.SendBatch(ctx, batch)
	defer func() {
		_ = results.Close()
	}()

	for i := range docs {
		if _, err := results.Exec(); err != nil {
			return &SeedInsertError{
				FailedIndex: i,
				Total:       len(docs),
				Kind:        docs[i].Kind,
				ID:          docs[i].ID,
				Err:         err,
			}
		}
	}

	return nil
}

// ListDocuments returns matching documents in kind and position order,
// with the total match count.
func (db *DB) ListDocuments(ctx context.Context, q DocumentQuery) ([]Document, int64, error) {
	start := time.Now()
	defer func() {
		db.logger.Debug("ListDocuments", zap.Duration("duration", time.Since(start)),
			zap.Strings("kinds", q.Kinds), zap.String("namespace", q.NamespaceID))
	}()

	qb := NewQueryBuilder()
	qb.AddIn(columnKind, q.Kinds)
	if q.NamespaceID != "" {
		qb.AddCondition(columnNamespaceID, q.NamespaceID)
	}

	where := qb.WhereClause()
	page := qb.Paginate(q.Limit, q.Offset)

	// SAFETY: values are parameterized; the WHERE clause only holds column
	// names and operators.
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		FROM seed_documents
		%s
		ORDER BY %s, %s
		%s
	`, documentColumns, where, columnKind, columnPosition, page)

	args := qb.Args()

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	docs := []Document{}
	var total int64
	for rows.Next() {
		doc, err := scanDocument(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan document row: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating documents: %w", err)
	}

	return docs, total, nil
}

// GetDocument returns one document.
func (db *DB) GetDocument(ctx context.Context, kind, id string) (*Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM seed_documents
		WHERE %s = $1 AND %s = $2
	`, documentColumns, columnKind, columnID)

	doc, err := scanDocument(db.Pool.QueryRow(ctx, query, kind, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s %q: %w", kind, id, ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

// AllDocuments returns every document of the given kinds (all kinds when
// none are given), paging through ListDocuments.
func (db *DB) AllDocuments(ctx context.Context, kinds ...string) ([]Document, error) {
	var all []Document
	for offset := 0; ; offset += models.MaxLimit {
		page, total, err := db.ListDocuments(ctx, DocumentQuery{Kinds: kinds, Limit: models.MaxLimit, Offset: offset})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) == 0 || int64(offset+len(page)) >= total {
			return all, nil
		}
	}
}

// DeleteDocuments removes documents of the given kinds, or all documents
// when none are given. It returns the number of rows removed.
func (db *DB) DeleteDocuments(ctx context.Context, kinds ...string) (int64, error) {
	qb := NewQueryBuilder()
	qb.AddIn(columnKind, kinds)

	result, err := db.Pool.Exec(ctx, "DELETE FROM seed_documents "+qb.WhereClause(), qb.Args()...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete documents: %w", err)
	}

	db.logger.Info("deleted seed documents", zap.Int64("count", result.RowsAffected()))
	return result.RowsAffected(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanDocument reads the document columns, plus any trailing columns into
// extra.
func scanDocument(row rowScanner, extra ...any) (*Document, error) {
	var doc Document
	dest := append([]any{&doc.Kind, &doc.ID, &doc.NamespaceID, &doc.Position, &doc.Body}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &doc, nil
}
