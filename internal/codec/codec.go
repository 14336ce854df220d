package codec

import (
	"fmt"
	"io"
	"sort"

	"pcg/internal/domain"
)

// Importer reads a graph from a textual format. Unknown type labels are
// registered in vocab when it is non-nil.
type Importer interface {
	Parse(r io.Reader, vocab *domain.Vocabulary) (*domain.Graph, error)
	Format() string
}

// Exporter writes a graph to a textual format
type Exporter interface {
	Export(g *domain.Graph, w io.Writer) error
	Format() string
}

// Codec is both an Importer and an Exporter
type Codec interface {
	Importer
	Exporter
}

// ByFormat returns the codec registered for a format identifier.
func ByFormat(format string) (Codec, error) {
	switch format {
	case "cgif", "":
		return NewCGIFCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	case "json":
		return NewJSONCodec(), nil
	}
	return nil, fmt.Errorf("unknown graph format %q (known: %v)", format, Formats())
}

// New is ByFormat with comment suppression applied to the exporter
func New(format string, suppressComments bool) (Codec, error) {
	c, err := ByFormat(format)
	if err != nil {
		return nil, err
	}
	switch c := c.(type) {
	case *CGIFCodec:
		c.SuppressComments = suppressComments
	case *YAMLCodec:
		c.SuppressComments = suppressComments
	case *JSONCodec:
		c.SuppressComments = suppressComments
	}
	return c, nil
}

// Formats lists the supported format identifiers
func Formats() []string {
	f := []string{"cgif", "yaml", "json"}
	sort.Strings(f)
	return f
}
