package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"pcg/internal/domain"
	"pcg/internal/repository"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db *sql.DB
}

var _ repository.Repository = (*Repository)(nil)

// New creates a new SQLite repository. ":memory:" opens a private in-memory
// database.
func New(dbPath string) (*Repository, error) {
	dsn := dbPath + "?_pragma=busy_timeout(5000)"
	if dbPath != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS canon_graphs (
		kb TEXT NOT NULL,
		position INTEGER NOT NULL,
		graph TEXT NOT NULL,
		PRIMARY KEY (kb, position)
	);

	CREATE TABLE IF NOT EXISTS canons (
		kb TEXT PRIMARY KEY,
		size INTEGER NOT NULL,
		saved_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS exports (
		id TEXT PRIMARY KEY,
		process TEXT NOT NULL,
		rule TEXT,
		retract INTEGER NOT NULL DEFAULT 0,
		graph TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_exports_process ON exports(process);
	`

	_, err := r.db.Exec(schema)
	return err
}

// SaveCanon replaces the stored snapshot of a knowledge base
func (r *Repository) SaveCanon(ctx context.Context, kb string, graphs []*domain.Graph) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM canon_graphs WHERE kb = ?`, kb); err != nil {
		return fmt.Errorf("failed to clear canon %s: %w", kb, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO canon_graphs (kb, position, graph) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, g := range graphs {
		if _, err := stmt.ExecContext(ctx, kb, i, encodeGraph(g)); err != nil {
			return fmt.Errorf("failed to insert graph %d of canon %s: %w", i, kb, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO canons (kb, size, saved_at) VALUES (?, ?, ?)
		ON CONFLICT(kb) DO UPDATE SET size = excluded.size, saved_at = excluded.saved_at
	`, kb, len(graphs), time.Now().UnixNano()); err != nil {
		return fmt.Errorf("failed to record canon %s: %w", kb, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LoadCanon returns the stored graphs of a knowledge base in saved order. An
// unknown name yields an empty canon.
func (r *Repository) LoadCanon(ctx context.Context, kb string, vocab *domain.Vocabulary) ([]*domain.Graph, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT graph FROM canon_graphs WHERE kb = ? ORDER BY position`, kb)
	if err != nil {
		return nil, fmt.Errorf("failed to query canon %s: %w", kb, err)
	}
	defer rows.Close()

	var graphs []*domain.Graph
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("failed to scan graph: %w", err)
		}
		g, err := decodeGraph(text, vocab)
		if err != nil {
			return nil, err
		}
		graphs = append(graphs, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating canon %s: %w", kb, err)
	}
	return graphs, nil
}

// ListCanons returns the names of every saved knowledge base
func (r *Repository) ListCanons(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT kb FROM canons ORDER BY kb`)
	if err != nil {
		return nil, fmt.Errorf("failed to query canons: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan canon name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DeleteCanon removes a snapshot; deleting an unknown name is not an error
func (r *Repository) DeleteCanon(ctx context.Context, kb string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM canon_graphs WHERE kb = ?`, kb); err != nil {
		return fmt.Errorf("failed to delete canon graphs: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM canons WHERE kb = ?`, kb); err != nil {
		return fmt.Errorf("failed to delete canon: %w", err)
	}
	return tx.Commit()
}

// AppendExports logs records in one transaction. Records without an ID or
// timestamp get fresh ones.
func (r *Repository) AppendExports(ctx context.Context, records []repository.ExportRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO exports (`+exportColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for i := range records {
		rec := &records[i]
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if rec.CreatedAt.IsZero() {
			// keep insertion order stable within a batch
			rec.CreatedAt = now.Add(time.Duration(i))
		}
		if _, err := stmt.ExecContext(ctx,
			rec.ID, rec.Process, stringToNull(rec.Rule), boolToInt(rec.Retract),
			encodeGraph(rec.Graph), rec.CreatedAt.UnixNano(),
		); err != nil {
			return fmt.Errorf("failed to insert export %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListExports returns the logged exports, oldest first. An empty process
// name lists every process.
func (r *Repository) ListExports(ctx context.Context, process string, vocab *domain.Vocabulary) ([]repository.ExportRecord, error) {
	var (
		query strings.Builder
		args  []interface{}
	)
	query.WriteString(`SELECT ` + exportColumns + ` FROM exports`)
	if process != "" {
		query.WriteString(` WHERE process = ?`)
		args = append(args, process)
	}
	query.WriteString(` ORDER BY created_at, id`)

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query exports: %w", err)
	}
	defer rows.Close()

	var records []repository.ExportRecord
	for rows.Next() {
		var row exportRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan export: %w", err)
		}
		rec, err := row.toDomain(vocab)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exports: %w", err)
	}
	return records, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
