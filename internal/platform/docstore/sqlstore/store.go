// Package sqlstore keeps documents, references and asset bytes in a SQL
// database (PostgreSQL, MySQL or SQLite).
package sqlstore

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/georgemunganga/accessories-admin/internal/platform/docstore"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Store implements docstore.Client and docstore.AssetReader.
type Store struct {
	db      *sqlx.DB
	dialect dialect
	now     func() time.Time
}

var (
	_ docstore.Client      = (*Store)(nil)
	_ docstore.AssetReader = (*Store)(nil)
)

// Open connects to the database behind dsn and creates the schema if needed.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	if _, ok := dialects[driver]; !ok {
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite3" {
		// A single connection keeps :memory: databases shared and avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	s, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an already open connection.
func New(db *sqlx.DB) (*Store, error) {
	d, ok := dialects[db.DriverName()]
	if !ok {
		return nil, fmt.Errorf("unsupported store driver %q", db.DriverName())
	}
	return &Store{db: db, dialect: d, now: time.Now}, nil
}

// Migrate creates the tables the store needs.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

type documentRow struct {
	ID        string `db:"id"`
	Type      string `db:"doc_type"`
	Body      string `db:"body"`
	CreatedAt int64  `db:"created_at"`
	UpdatedAt int64  `db:"updated_at"`
}

func (r documentRow) document() (docstore.Document, error) {
	fields := map[string]any{}
	if err := json.Unmarshal([]byte(r.Body), &fields); err != nil {
		return docstore.Document{}, fmt.Errorf("decode body of %s: %w", r.ID, err)
	}
	return docstore.Document{
		ID:        r.ID,
		Type:      r.Type,
		CreatedAt: time.UnixMicro(r.CreatedAt).UTC(),
		UpdatedAt: time.UnixMicro(r.UpdatedAt).UTC(),
		Fields:    fields,
	}, nil
}

const selectDocuments = `SELECT id, doc_type, body, created_at, updated_at FROM documents`

func (s *Store) Query(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	query := selectDocuments + ` WHERE doc_type = ?`
	args := []interface{}{q.Type}
	if len(q.IDs) > 0 {
		query += ` AND id IN (?)`
		args = append(args, q.IDs)
	}
	switch q.Order {
	case docstore.OrderCreatedAsc:
		query += ` ORDER BY created_at ASC, id ASC`
	case docstore.OrderCreatedDesc:
		query += ` ORDER BY created_at DESC, id DESC`
	}
	if len(q.IDs) > 0 {
		var err error
		query, args, err = sqlx.In(query, args...)
		if err != nil {
			return nil, err
		}
	}

	var rows []documentRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Type, err)
	}
	docs := make([]docstore.Document, 0, len(rows))
	for _, row := range rows {
		doc, err := row.document()
		if err != nil {
			return nil, err
		}
		if !q.Matches(doc) {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *Store) Get(ctx context.Context, id string) (docstore.Document, error) {
	row, err := getRow(ctx, s.db, id)
	if err != nil {
		return docstore.Document{}, err
	}
	return row.document()
}

func (s *Store) Create(ctx context.Context, doc docstore.Document) (docstore.Document, error) {
	if doc.Type == "" {
		return docstore.Document{}, errors.New("document type is required")
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	fields, err := docstore.Normalize(doc.Fields)
	if err != nil {
		return docstore.Document{}, fmt.Errorf("encode %s: %w", doc.ID, err)
	}
	now := s.now().UTC().Truncate(time.Microsecond)
	doc.Fields, doc.CreatedAt, doc.UpdatedAt = fields, now, now

	err = s.withTx(ctx, func(tx *sqlx.Tx) error {
		var n int
		if err := tx.GetContext(ctx, &n, tx.Rebind(`SELECT COUNT(*) FROM documents WHERE id = ?`), doc.ID); err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("create %s: %w", doc.ID, docstore.ErrConflict)
		}
		return insertDocument(ctx, tx, doc)
	})
	if err != nil {
		return docstore.Document{}, err
	}
	return doc, nil
}

func (s *Store) Patch(ctx context.Context, id string, set map[string]any) (docstore.Document, error) {
	changes, err := docstore.Normalize(set)
	if err != nil {
		return docstore.Document{}, fmt.Errorf("encode patch for %s: %w", id, err)
	}

	var doc docstore.Document
	err = s.withTx(ctx, func(tx *sqlx.Tx) error {
		row, err := getRow(ctx, tx, id)
		if err != nil {
			return err
		}
		if doc, err = row.document(); err != nil {
			return err
		}
		for k, v := range changes {
			if len(k) > 0 && k[0] == '_' {
				continue
			}
			doc.Fields[k] = v
		}
		doc.UpdatedAt = s.now().UTC().Truncate(time.Microsecond)

		body, err := json.Marshal(doc.Fields)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			tx.Rebind(`UPDATE documents SET body = ?, updated_at = ? WHERE id = ?`),
			string(body), doc.UpdatedAt.UnixMicro(), id); err != nil {
			return fmt.Errorf("update %s: %w", id, err)
		}
		return writeRefs(ctx, tx, id, doc.Fields)
	})
	if err != nil {
		return docstore.Document{}, err
	}
	return doc, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := getRow(ctx, tx, id); err != nil {
			return err
		}
		var refs int
		if err := tx.GetContext(ctx, &refs,
			tx.Rebind(`SELECT COUNT(*) FROM document_refs WHERE to_id = ? AND from_id <> ?`), id, id); err != nil {
			return err
		}
		if refs > 0 {
			return fmt.Errorf("delete %s: %w", id, docstore.ErrReferenced)
		}
		for _, stmt := range []string{
			`DELETE FROM document_refs WHERE from_id = ?`,
			`DELETE FROM documents WHERE id = ?`,
			`DELETE FROM assets WHERE id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, tx.Rebind(stmt), id); err != nil {
				return fmt.Errorf("delete %s: %w", id, err)
			}
		}
		return nil
	})
}

// UploadAsset stores the bytes and an asset document describing them. The
// asset URL points at the dashboard's own asset route.
func (s *Store) UploadAsset(ctx context.Context, kind docstore.AssetKind, filename string, r io.Reader) (docstore.Asset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return docstore.Asset{}, fmt.Errorf("read asset: %w", err)
	}
	if len(data) == 0 {
		return docstore.Asset{}, errors.New("asset is empty")
	}
	docType := docstore.ImageAssetType
	if kind == docstore.AssetFile {
		docType = "sanity.fileAsset"
	}
	asset := docstore.Asset{
		ID:          string(kind) + "-" + uuid.NewString(),
		Kind:        kind,
		Filename:    filename,
		ContentType: http.DetectContentType(data),
		Size:        int64(len(data)),
	}
	asset.URL = "/assets/" + asset.ID

	now := s.now().UTC().Truncate(time.Microsecond)
	err = s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO assets (id, kind, filename, content_type, size, data, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`),
			asset.ID, string(kind), filename, asset.ContentType, asset.Size, data, now.UnixMicro()); err != nil {
			return fmt.Errorf("insert asset: %w", err)
		}
		return insertDocument(ctx, tx, docstore.Document{
			ID:        asset.ID,
			Type:      docType,
			CreatedAt: now,
			UpdatedAt: now,
			Fields: map[string]any{
				"url":              asset.URL,
				"originalFilename": asset.Filename,
				"mimeType":         asset.ContentType,
				"size":             asset.Size,
			},
		})
	})
	if err != nil {
		return docstore.Asset{}, err
	}
	return asset, nil
}

func (s *Store) OpenAsset(ctx context.Context, id string) (docstore.Asset, io.ReadCloser, error) {
	var row struct {
		ID          string `db:"id"`
		Kind        string `db:"kind"`
		Filename    string `db:"filename"`
		ContentType string `db:"content_type"`
		Size        int64  `db:"size"`
		Data        []byte `db:"data"`
	}
	err := s.db.GetContext(ctx, &row, s.db.Rebind(
		`SELECT id, kind, filename, content_type, size, data FROM assets WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return docstore.Asset{}, nil, fmt.Errorf("asset %s: %w", id, docstore.ErrNotFound)
	}
	if err != nil {
		return docstore.Asset{}, nil, err
	}
	asset := docstore.Asset{
		ID:          row.ID,
		Kind:        docstore.AssetKind(row.Kind),
		URL:         "/assets/" + row.ID,
		Filename:    row.Filename,
		ContentType: row.ContentType,
		Size:        row.Size,
	}
	return asset, io.NopCloser(bytes.NewReader(row.Data)), nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	sqlx.QueryerContext
	Rebind(query string) string
}

func getRow(ctx context.Context, q queryer, id string) (documentRow, error) {
	var row documentRow
	err := sqlx.GetContext(ctx, q, &row, q.Rebind(selectDocuments+` WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return documentRow{}, fmt.Errorf("document %s: %w", id, docstore.ErrNotFound)
	}
	return row, err
}

func insertDocument(ctx context.Context, tx *sqlx.Tx, doc docstore.Document) error {
	body, err := json.Marshal(doc.Fields)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO documents (id, doc_type, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`),
		doc.ID, doc.Type, string(body), doc.CreatedAt.UnixMicro(), doc.UpdatedAt.UnixMicro()); err != nil {
		return fmt.Errorf("insert %s: %w", doc.ID, err)
	}
	return writeRefs(ctx, tx, doc.ID, doc.Fields)
}

func writeRefs(ctx context.Context, tx *sqlx.Tx, id string, fields map[string]any) error {
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM document_refs WHERE from_id = ?`), id); err != nil {
		return fmt.Errorf("clear refs of %s: %w", id, err)
	}
	for _, to := range docstore.ExtractRefs(fields) {
		if to == id {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			tx.Rebind(`INSERT INTO document_refs (from_id, to_id) VALUES (?, ?)`), id, to); err != nil {
			return fmt.Errorf("insert ref %s -> %s: %w", id, to, err)
		}
	}
	return nil
}
