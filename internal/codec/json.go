package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"pcg/internal/domain"
)

// JSONCodec handles JSON import/export of graphs
type JSONCodec struct {
	// SuppressComments drops graph comments on export
	SuppressComments bool
}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Parse imports a graph from JSON
func (c *JSONCodec) Parse(r io.Reader, vocab *domain.Vocabulary) (*domain.Graph, error) {
	var doc graphDoc
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&doc); err != nil {
		return nil, domain.ParseError("parse json", fmt.Errorf("failed to parse JSON: %w", err))
	}

	g, err := fromDoc(&doc, vocab)
	if err != nil {
		return nil, domain.ParseError("parse json", err)
	}
	if vocab != nil {
		if err := g.Validate(vocab.Relations); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Export exports a graph to JSON
func (c *JSONCodec) Export(g *domain.Graph, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(toDoc(g, !c.SuppressComments)); err != nil {
		return domain.IOError("export json", fmt.Errorf("failed to encode JSON: %w", err))
	}

	return nil
}
