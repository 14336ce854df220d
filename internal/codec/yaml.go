package codec

import (
	"fmt"
	"io"

	"pcg/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles structured YAML import/export of graphs
type YAMLCodec struct {
	// SuppressComments drops graph comments on export
	SuppressComments bool
}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// Parse imports a graph from YAML
func (c *YAMLCodec) Parse(r io.Reader, vocab *domain.Vocabulary) (*domain.Graph, error) {
	var doc graphDoc
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&doc); err != nil {
		return nil, domain.ParseError("parse yaml", fmt.Errorf("failed to parse YAML: %w", err))
	}

	g, err := fromDoc(&doc, vocab)
	if err != nil {
		return nil, domain.ParseError("parse yaml", err)
	}
	if vocab != nil {
		if err := g.Validate(vocab.Relations); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Export exports a graph to YAML
func (c *YAMLCodec) Export(g *domain.Graph, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(toDoc(g, !c.SuppressComments)); err != nil {
		return domain.IOError("export yaml", fmt.Errorf("failed to encode YAML: %w", err))
	}

	return nil
}
