package datasource

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// CatalogFile is the index database kept at the models root.
const CatalogFile = "catalog.db"

// Catalog is a SQLite index over discovered models. It exists so large
// model libraries can be listed without re-parsing every BOM, and so batch
// extraction runs can record what they produced.
type Catalog struct {
	db   *sql.DB
	path string
}

// CatalogEntry is one indexed model.
type CatalogEntry struct {
	Name          string
	Dir           string
	SourceFile    string
	PartCount     int
	AssemblyCount int
	BOMModTime    time.Time
	IndexedAt     time.Time
}

const catalogSchema = `
CREATE TABLE IF NOT EXISTS models (
	name            TEXT PRIMARY KEY,
	dir             TEXT NOT NULL,
	source_file     TEXT,
	part_count      INTEGER NOT NULL DEFAULT 0,
	assembly_count  INTEGER NOT NULL DEFAULT 0,
	bom_mtime       TIMESTAMP,
	indexed_at      TIMESTAMP
)`

// OpenCatalog opens (creating if needed) the catalog database at path.
func OpenCatalog(path string) (*Catalog, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open catalog: %w", err)
	}
	if _, err := db.Exec(catalogSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot initialize catalog schema: %w", err)
	}
	return &Catalog{db: db, path: path}, nil
}

// Close closes the database connection.
func (c *Catalog) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Upsert records or refreshes one model's entry.
func (c *Catalog) Upsert(e CatalogEntry) error {
	if e.IndexedAt.IsZero() {
		e.IndexedAt = time.Now()
	}
	_, err := c.db.Exec(`
		INSERT INTO models (name, dir, source_file, part_count, assembly_count, bom_mtime, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			dir = excluded.dir,
			source_file = excluded.source_file,
			part_count = excluded.part_count,
			assembly_count = excluded.assembly_count,
			bom_mtime = excluded.bom_mtime,
			indexed_at = excluded.indexed_at`,
		e.Name, e.Dir, e.SourceFile, e.PartCount, e.AssemblyCount, e.BOMModTime, e.IndexedAt)
	if err != nil {
		return fmt.Errorf("upserting model %s: %w", e.Name, err)
	}
	return nil
}

// Entries returns all indexed models, newest BOM first.
func (c *Catalog) Entries() ([]CatalogEntry, error) {
	rows, err := c.db.Query(`
		SELECT name, dir, source_file, part_count, assembly_count, bom_mtime, indexed_at
		FROM models ORDER BY bom_mtime DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var entries []CatalogEntry
	for rows.Next() {
		var e CatalogEntry
		var sourceFile sql.NullString
		var bomMtime, indexedAt sql.NullTime
		if err := rows.Scan(&e.Name, &e.Dir, &sourceFile, &e.PartCount, &e.AssemblyCount, &bomMtime, &indexedAt); err != nil {
			return nil, fmt.Errorf("scanning catalog row: %w", err)
		}
		if sourceFile.Valid {
			e.SourceFile = sourceFile.String
		}
		if bomMtime.Valid {
			e.BOMModTime = bomMtime.Time
		}
		if indexedAt.Valid {
			e.IndexedAt = indexedAt.Time
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating catalog rows: %w", err)
	}
	return entries, nil
}

// EntryByName retrieves one model's entry.
func (c *Catalog) EntryByName(name string) (*CatalogEntry, error) {
	var e CatalogEntry
	var sourceFile sql.NullString
	var bomMtime, indexedAt sql.NullTime
	err := c.db.QueryRow(`
		SELECT name, dir, source_file, part_count, assembly_count, bom_mtime, indexed_at
		FROM models WHERE name = ?`, name).
		Scan(&e.Name, &e.Dir, &sourceFile, &e.PartCount, &e.AssemblyCount, &bomMtime, &indexedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("model not indexed: %s", name)
	}
	if err != nil {
		return nil, err
	}
	if sourceFile.Valid {
		e.SourceFile = sourceFile.String
	}
	if bomMtime.Valid {
		e.BOMModTime = bomMtime.Time
	}
	if indexedAt.Valid {
		e.IndexedAt = indexedAt.Time
	}
	return &e, nil
}

// Count returns the number of indexed models.
func (c *Catalog) Count() (int, error) {
	var count int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM models").Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Remove drops a model's entry. Removing an unknown name is not an error.
func (c *Catalog) Remove(name string) error {
	_, err := c.db.Exec("DELETE FROM models WHERE name = ?", name)
	return err
}
