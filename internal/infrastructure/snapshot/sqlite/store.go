// Package sqlite provides a SQLite implementation of the SnapshotStore interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/ersonp/lore-index/internal/domain/entities"
	"github.com/ersonp/lore-index/internal/domain/ports"
	"github.com/ersonp/lore-index/internal/infrastructure/config"
)

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// Store implements ports.SnapshotStore using SQLite.
type Store struct {
	db   *sql.DB
	path string
}

var _ ports.SnapshotStore = (*Store)(nil)

// NewStore opens (and creates if needed) the snapshot database.
func NewStore(cfg config.SnapshotConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("snapshot path is required")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot database: %w", err)
	}

	// Enable WAL mode for better concurrent read/write performance
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Set busy timeout to avoid "database is locked" errors
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	store := &Store{db: db, path: cfg.Path}
	if err := store.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ensureSchema creates the database schema if it doesn't exist.
func (s *Store) ensureSchema() error {
	schema := `
	-- One row per saved index snapshot
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		doc_count INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	-- Source entities, kept for result payload assembly
	CREATE TABLE IF NOT EXISTS documents (
		snapshot_id TEXT NOT NULL,
		doc_id TEXT NOT NULL,
		type TEXT NOT NULL,
		description TEXT NOT NULL,
		facts TEXT NOT NULL,
		related_entities TEXT NOT NULL,
		keywords TEXT NOT NULL,
		PRIMARY KEY (snapshot_id, doc_id)
	);

	-- Inverted index rows: one per (field, term, document)
	CREATE TABLE IF NOT EXISTS postings (
		snapshot_id TEXT NOT NULL,
		field TEXT NOT NULL,
		term TEXT NOT NULL,
		doc_id TEXT NOT NULL,
		frequency INTEGER NOT NULL,
		PRIMARY KEY (snapshot_id, field, term, doc_id)
	);
	CREATE INDEX IF NOT EXISTS idx_postings_term ON postings(snapshot_id, field, term);

	-- Per-document field lengths
	CREATE TABLE IF NOT EXISTS field_lengths (
		snapshot_id TEXT NOT NULL,
		field TEXT NOT NULL,
		doc_id TEXT NOT NULL,
		length INTEGER NOT NULL,
		PRIMARY KEY (snapshot_id, field, doc_id)
	);

	-- Corpus-wide statistics per field
	CREATE TABLE IF NOT EXISTS field_stats (
		snapshot_id TEXT NOT NULL,
		field TEXT NOT NULL,
		avg_length REAL NOT NULL,
		PRIMARY KEY (snapshot_id, field)
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("creating snapshot schema: %w", err)
	}
	return nil
}

// Save persists the snapshot in one transaction, then drops any older
// snapshots so the store holds exactly one.
func (s *Store) Save(ctx context.Context, snap *entities.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: nil snapshot", entities.ErrInvalidArgument)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	snapshotID := uuid.New().String()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, doc_count, created_at) VALUES (?, ?, ?)`,
		snapshotID, snap.DocCount, timeNow().UTC(),
	); err != nil {
		return fmt.Errorf("inserting snapshot row: %w", err)
	}

	if err := s.saveDocuments(ctx, tx, snapshotID, snap); err != nil {
		return err
	}
	if err := s.savePostings(ctx, tx, snapshotID, snap); err != nil {
		return err
	}
	if err := s.saveStatistics(ctx, tx, snapshotID, snap); err != nil {
		return err
	}

	// Replace-on-save: older snapshots go away in the same transaction.
	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE id != ?`, snapshotID); err != nil {
		return fmt.Errorf("pruning old snapshots: %w", err)
	}
	for _, table := range []string{"documents", "postings", "field_lengths", "field_stats"} {
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE snapshot_id != ?`, table), snapshotID,
		); err != nil {
			return fmt.Errorf("pruning old snapshot data: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

func (s *Store) saveDocuments(ctx context.Context, tx *sql.Tx, snapshotID string, snap *entities.Snapshot) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO documents (snapshot_id, doc_id, type, description, facts, related_entities, keywords)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing document insert: %w", err)
	}
	defer stmt.Close()

	for _, id := range sortedDocIDs(snap) {
		doc := snap.Documents[id]

		facts, err := json.Marshal(doc.Facts)
		if err != nil {
			return fmt.Errorf("encoding facts for %s: %w", id, err)
		}
		related, err := json.Marshal(doc.RelatedEntities)
		if err != nil {
			return fmt.Errorf("encoding related entities for %s: %w", id, err)
		}
		keywords, err := json.Marshal(doc.Keywords)
		if err != nil {
			return fmt.Errorf("encoding keywords for %s: %w", id, err)
		}

		if _, err := stmt.ExecContext(ctx,
			snapshotID, id, string(doc.Type), doc.Description,
			string(facts), string(related), string(keywords),
		); err != nil {
			return fmt.Errorf("inserting document %s: %w", id, err)
		}
	}
	return nil
}

func (s *Store) savePostings(ctx context.Context, tx *sql.Tx, snapshotID string, snap *entities.Snapshot) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO postings (snapshot_id, field, term, doc_id, frequency)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing postings insert: %w", err)
	}
	defer stmt.Close()

	for field, terms := range snap.Postings {
		for term, list := range terms {
			for _, p := range list {
				if _, err := stmt.ExecContext(ctx, snapshotID, field, term, p.DocID, p.Frequency); err != nil {
					return fmt.Errorf("inserting posting %s/%s/%s: %w", field, term, p.DocID, err)
				}
			}
		}
	}
	return nil
}

func (s *Store) saveStatistics(ctx context.Context, tx *sql.Tx, snapshotID string, snap *entities.Snapshot) error {
	lengthStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO field_lengths (snapshot_id, field, doc_id, length)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing field length insert: %w", err)
	}
	defer lengthStmt.Close()

	for field, lengths := range snap.FieldLengths {
		for docID, length := range lengths {
			if _, err := lengthStmt.ExecContext(ctx, snapshotID, field, docID, length); err != nil {
				return fmt.Errorf("inserting field length %s/%s: %w", field, docID, err)
			}
		}
	}

	for field, avg := range snap.AvgFieldLength {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO field_stats (snapshot_id, field, avg_length) VALUES (?, ?, ?)`,
			snapshotID, field, avg,
		); err != nil {
			return fmt.Errorf("inserting field stats %s: %w", field, err)
		}
	}
	return nil
}

// Load reads the most recently saved snapshot and validates its internal
// consistency before returning it.
func (s *Store) Load(ctx context.Context) (*entities.Snapshot, error) {
	var (
		snapshotID string
		docCount   int
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, doc_count FROM snapshots ORDER BY created_at DESC, id LIMIT 1`,
	).Scan(&snapshotID, &docCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entities.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot row: %w", err)
	}

	snap := &entities.Snapshot{
		Documents:      make(map[string]entities.Entity),
		Postings:       make(map[string]map[string][]entities.Posting),
		FieldLengths:   make(map[string]map[string]int),
		AvgFieldLength: make(map[string]float64),
		DocCount:       docCount,
	}
	for _, field := range entities.Fields() {
		snap.Postings[field] = make(map[string][]entities.Posting)
		snap.FieldLengths[field] = make(map[string]int)
	}

	if err := s.loadDocuments(ctx, snapshotID, snap); err != nil {
		return nil, err
	}
	if err := s.loadPostings(ctx, snapshotID, snap); err != nil {
		return nil, err
	}
	if err := s.loadStatistics(ctx, snapshotID, snap); err != nil {
		return nil, err
	}

	if err := validateSnapshot(snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *Store) loadDocuments(ctx context.Context, snapshotID string, snap *entities.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT doc_id, type, description, facts, related_entities, keywords
		FROM documents WHERE snapshot_id = ?`, snapshotID)
	if err != nil {
		return fmt.Errorf("reading documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			entity                   entities.Entity
			typ                      string
			facts, related, keywords string
		)
		if err := rows.Scan(&entity.ID, &typ, &entity.Description, &facts, &related, &keywords); err != nil {
			return fmt.Errorf("scanning document: %w", err)
		}
		entity.Type = entities.EntityType(typ)

		if err := json.Unmarshal([]byte(facts), &entity.Facts); err != nil {
			return fmt.Errorf("%w: invalid facts payload for %s", entities.ErrSnapshotCorrupt, entity.ID)
		}
		if err := json.Unmarshal([]byte(related), &entity.RelatedEntities); err != nil {
			return fmt.Errorf("%w: invalid related entities payload for %s", entities.ErrSnapshotCorrupt, entity.ID)
		}
		if err := json.Unmarshal([]byte(keywords), &entity.Keywords); err != nil {
			return fmt.Errorf("%w: invalid keywords payload for %s", entities.ErrSnapshotCorrupt, entity.ID)
		}

		snap.Documents[entity.ID] = entity
	}
	return rows.Err()
}

func (s *Store) loadPostings(ctx context.Context, snapshotID string, snap *entities.Snapshot) error {
	// Ordering by doc_id restores the sorted-postings invariant directly.
	rows, err := s.db.QueryContext(ctx, `
		SELECT field, term, doc_id, frequency
		FROM postings WHERE snapshot_id = ?
		ORDER BY field, term, doc_id`, snapshotID)
	if err != nil {
		return fmt.Errorf("reading postings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			field, term string
			posting     entities.Posting
		)
		if err := rows.Scan(&field, &term, &posting.DocID, &posting.Frequency); err != nil {
			return fmt.Errorf("scanning posting: %w", err)
		}
		if snap.Postings[field] == nil {
			snap.Postings[field] = make(map[string][]entities.Posting)
		}
		snap.Postings[field][term] = append(snap.Postings[field][term], posting)
	}
	return rows.Err()
}

func (s *Store) loadStatistics(ctx context.Context, snapshotID string, snap *entities.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT field, doc_id, length
		FROM field_lengths WHERE snapshot_id = ?`, snapshotID)
	if err != nil {
		return fmt.Errorf("reading field lengths: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			field, docID string
			length       int
		)
		if err := rows.Scan(&field, &docID, &length); err != nil {
			return fmt.Errorf("scanning field length: %w", err)
		}
		if snap.FieldLengths[field] == nil {
			snap.FieldLengths[field] = make(map[string]int)
		}
		snap.FieldLengths[field][docID] = length
	}
	if err := rows.Err(); err != nil {
		return err
	}

	statRows, err := s.db.QueryContext(ctx, `
		SELECT field, avg_length FROM field_stats WHERE snapshot_id = ?`, snapshotID)
	if err != nil {
		return fmt.Errorf("reading field stats: %w", err)
	}
	defer statRows.Close()

	for statRows.Next() {
		var (
			field string
			avg   float64
		)
		if err := statRows.Scan(&field, &avg); err != nil {
			return fmt.Errorf("scanning field stats: %w", err)
		}
		snap.AvgFieldLength[field] = avg
	}
	return statRows.Err()
}

// validateSnapshot checks the invariants a loaded snapshot must satisfy
// before it may serve queries.
func validateSnapshot(snap *entities.Snapshot) error {
	if len(snap.Documents) != snap.DocCount {
		return fmt.Errorf("%w: snapshot claims %d documents, found %d",
			entities.ErrSnapshotCorrupt, snap.DocCount, len(snap.Documents))
	}

	for field, terms := range snap.Postings {
		for term, list := range terms {
			for i, p := range list {
				if _, ok := snap.Documents[p.DocID]; !ok {
					return fmt.Errorf("%w: posting %s/%s references unknown document %s",
						entities.ErrSnapshotCorrupt, field, term, p.DocID)
				}
				if i > 0 && list[i-1].DocID >= p.DocID {
					return fmt.Errorf("%w: postings for %s/%s not sorted by document id",
						entities.ErrSnapshotCorrupt, field, term)
				}
			}
		}
	}

	if snap.DocCount > 0 {
		for _, field := range entities.Fields() {
			if _, ok := snap.AvgFieldLength[field]; !ok {
				return fmt.Errorf("%w: missing statistics for field %s",
					entities.ErrSnapshotCorrupt, field)
			}
		}
	}

	return nil
}

func sortedDocIDs(snap *entities.Snapshot) []string {
	ids := make([]string, 0, len(snap.Documents))
	for id := range snap.Documents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
