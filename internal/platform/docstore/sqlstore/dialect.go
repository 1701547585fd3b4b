package sqlstore

import (
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// dialect holds the schema for one SQL driver. Queries themselves are written
// with ? placeholders and rebound by sqlx.
type dialect struct {
	name   string
	schema []string
}

var dialects = map[string]dialect{
	"postgres": {
		name: "postgres",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS documents (
				id         VARCHAR(128) PRIMARY KEY,
				doc_type   VARCHAR(128) NOT NULL,
				body       TEXT NOT NULL,
				created_at BIGINT NOT NULL,
				updated_at BIGINT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS documents_type_created_idx ON documents (doc_type, created_at)`,
			`CREATE TABLE IF NOT EXISTS document_refs (
				from_id VARCHAR(128) NOT NULL,
				to_id   VARCHAR(128) NOT NULL,
				PRIMARY KEY (from_id, to_id)
			)`,
			`CREATE INDEX IF NOT EXISTS document_refs_to_idx ON document_refs (to_id)`,
			`CREATE TABLE IF NOT EXISTS assets (
				id           VARCHAR(128) PRIMARY KEY,
				kind         VARCHAR(16) NOT NULL,
				filename     TEXT NOT NULL,
				content_type VARCHAR(255) NOT NULL,
				size         BIGINT NOT NULL,
				data         BYTEA NOT NULL,
				created_at   BIGINT NOT NULL
			)`,
		},
	},
	"mysql": {
		name: "mysql",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS documents (
				id         VARCHAR(128) PRIMARY KEY,
				doc_type   VARCHAR(128) NOT NULL,
				body       LONGTEXT NOT NULL,
				created_at BIGINT NOT NULL,
				updated_at BIGINT NOT NULL,
				INDEX documents_type_created_idx (doc_type, created_at)
			)`,
			`CREATE TABLE IF NOT EXISTS document_refs (
				from_id VARCHAR(128) NOT NULL,
				to_id   VARCHAR(128) NOT NULL,
				PRIMARY KEY (from_id, to_id),
				INDEX document_refs_to_idx (to_id)
			)`,
			`CREATE TABLE IF NOT EXISTS assets (
				id           VARCHAR(128) PRIMARY KEY,
				kind         VARCHAR(16) NOT NULL,
				filename     VARCHAR(512) NOT NULL,
				content_type VARCHAR(255) NOT NULL,
				size         BIGINT NOT NULL,
				data         LONGBLOB NOT NULL,
				created_at   BIGINT NOT NULL
			)`,
		},
	},
	"sqlite3": {
		name: "sqlite3",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS documents (
				id         TEXT PRIMARY KEY,
				doc_type   TEXT NOT NULL,
				body       TEXT NOT NULL,
				created_at INTEGER NOT NULL,
				updated_at INTEGER NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS documents_type_created_idx ON documents (doc_type, created_at)`,
			`CREATE TABLE IF NOT EXISTS document_refs (
				from_id TEXT NOT NULL,
				to_id   TEXT NOT NULL,
				PRIMARY KEY (from_id, to_id)
			)`,
			`CREATE INDEX IF NOT EXISTS document_refs_to_idx ON document_refs (to_id)`,
			`CREATE TABLE IF NOT EXISTS assets (
				id           TEXT PRIMARY KEY,
				kind         TEXT NOT NULL,
				filename     TEXT NOT NULL,
				content_type TEXT NOT NULL,
				size         INTEGER NOT NULL,
				data         BLOB NOT NULL,
				created_at   INTEGER NOT NULL
			)`,
		},
	},
}
