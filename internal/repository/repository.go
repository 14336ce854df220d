package repository

import (
	"context"
	"time"

	"pcg/internal/domain"
)

// ExportRecord is one graph a process exported to its parent knowledge base
type ExportRecord struct {
	ID        string
	Process   string
	Rule      string
	Retract   bool
	Graph     *domain.Graph
	CreatedAt time.Time
}

// Repository persists canon snapshots and the export log
type Repository interface {
	// Canon snapshots, one per knowledge-base name
	SaveCanon(ctx context.Context, kb string, graphs []*domain.Graph) error
	LoadCanon(ctx context.Context, kb string, vocab *domain.Vocabulary) ([]*domain.Graph, error)
	ListCanons(ctx context.Context) ([]string, error)
	DeleteCanon(ctx context.Context, kb string) error

	// Export log
	AppendExports(ctx context.Context, records []ExportRecord) error
	ListExports(ctx context.Context, process string, vocab *domain.Vocabulary) ([]ExportRecord, error)

	// Close releases resources
	Close() error
}
