package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"pcg/internal/codec"
	"pcg/internal/domain"
	"pcg/internal/repository"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// boolToInt stores booleans as 0/1
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ============================================================================
// Graph Encoding Helpers
// ============================================================================

// encodeGraph renders g as the CGIF text stored in graph columns
func encodeGraph(g *domain.Graph) string {
	return codec.FormatCGIF(g)
}

// decodeGraph parses a stored graph column against vocab
func decodeGraph(text string, vocab *domain.Vocabulary) (*domain.Graph, error) {
	g, err := codec.ParseCGIF(text, vocab)
	if err != nil {
		return nil, fmt.Errorf("decode stored graph: %w", err)
	}
	return g, nil
}

// ============================================================================
// Export Row Scanner
// ============================================================================

// exportRow holds all columns from an export query for scanning
type exportRow struct {
	ID        string
	Process   string
	Rule      sql.NullString
	Retract   int
	Graph     string
	CreatedAt int64 // unix nanoseconds
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match exportColumns order exactly
func (r *exportRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,        // 1
		&r.Process,   // 2
		&r.Rule,      // 3
		&r.Retract,   // 4
		&r.Graph,     // 5
		&r.CreatedAt, // 6
	}
}

// toDomain converts the scanned row to an ExportRecord
func (r *exportRow) toDomain(vocab *domain.Vocabulary) (repository.ExportRecord, error) {
	g, err := decodeGraph(r.Graph, vocab)
	if err != nil {
		return repository.ExportRecord{}, err
	}
	return repository.ExportRecord{
		ID:        r.ID,
		Process:   r.Process,
		Rule:      nullToString(r.Rule),
		Retract:   r.Retract != 0,
		Graph:     g,
		CreatedAt: time.Unix(0, r.CreatedAt).UTC(),
	}, nil
}

// exportColumns is the SELECT column list for export queries
const exportColumns = `id, process, rule, retract, graph, created_at`
