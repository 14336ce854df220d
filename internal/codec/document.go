package codec

import (
	"fmt"
	"strconv"

	"pcg/internal/domain"
)

// graphDoc is the structured form shared by the YAML and JSON codecs
type graphDoc struct {
	Comments  []string      `yaml:"comments,omitempty" json:"comments,omitempty"`
	Concepts  []conceptDoc  `yaml:"concepts" json:"concepts"`
	Relations []relationDoc `yaml:"relations,omitempty" json:"relations,omitempty"`
}

type conceptDoc struct {
	ID         string         `yaml:"id" json:"id"`
	Type       string         `yaml:"type" json:"type"`
	Quantifier *quantifierDoc `yaml:"quantifier,omitempty" json:"quantifier,omitempty"`
	Designator *designatorDoc `yaml:"designator,omitempty" json:"designator,omitempty"`
	Descriptor *graphDoc      `yaml:"descriptor,omitempty" json:"descriptor,omitempty"`
}

type quantifierDoc struct {
	Kind    string   `yaml:"kind" json:"kind"`
	Count   int      `yaml:"count,omitempty" json:"count,omitempty"`
	Name    string   `yaml:"name,omitempty" json:"name,omitempty"`
	Members []string `yaml:"members,omitempty" json:"members,omitempty"`
}

type designatorDoc struct {
	Kind  string `yaml:"kind" json:"kind"`
	Value any    `yaml:"value" json:"value"`
}

type relationDoc struct {
	Type    string   `yaml:"type" json:"type"`
	Actor   bool     `yaml:"actor,omitempty" json:"actor,omitempty"`
	Inputs  []string `yaml:"inputs,omitempty" json:"inputs,omitempty"`
	Outputs []string `yaml:"outputs,omitempty" json:"outputs,omitempty"`
}

// toDoc converts g into its structured form
func toDoc(g *domain.Graph, comments bool) *graphDoc {
	doc := &graphDoc{Concepts: make([]conceptDoc, 0, len(g.Concepts()))}
	if comments {
		doc.Comments = g.Comments()
	}

	ids := make(map[*domain.Concept]string)
	for i, c := range g.Concepts() {
		id := "c" + strconv.Itoa(i+1)
		ids[c] = id
		cd := conceptDoc{ID: id, Type: c.Type()}
		if q := c.Quantifier(); !q.IsNone() {
			cd.Quantifier = quantifierToDoc(q)
		}
		if d := c.Designator(); !d.IsNone() {
			cd.Designator = designatorToDoc(d)
		}
		if desc := c.Descriptor(); desc != nil && !desc.IsBlank() {
			cd.Descriptor = toDoc(desc, comments)
		}
		doc.Concepts = append(doc.Concepts, cd)
	}

	for _, r := range g.Relations() {
		rd := relationDoc{Type: r.Type(), Actor: r.IsActor()}
		for _, c := range r.Inputs() {
			rd.Inputs = append(rd.Inputs, ids[c])
		}
		for _, c := range r.Outputs() {
			rd.Outputs = append(rd.Outputs, ids[c])
		}
		doc.Relations = append(doc.Relations, rd)
	}
	return doc
}

func quantifierToDoc(q domain.Quantifier) *quantifierDoc {
	switch q.Kind() {
	case domain.QuantifierNumeric:
		return &quantifierDoc{Kind: "numeric", Count: q.Count()}
	case domain.QuantifierCollection:
		return &quantifierDoc{Kind: "collection", Name: q.Name(), Members: q.Members()}
	default:
		return &quantifierDoc{Kind: "generic", Name: q.Name()}
	}
}

func designatorToDoc(d domain.Designator) *designatorDoc {
	switch d.Kind() {
	case domain.DesignatorLiteral:
		return &designatorDoc{Kind: "literal", Value: d.Literal()}
	case domain.DesignatorMarker:
		return &designatorDoc{Kind: "marker", Value: d.Text()}
	default:
		return &designatorDoc{Kind: "name", Value: d.Text()}
	}
}

// fromDoc rebuilds a graph, registering type labels in vocab when non-nil
func fromDoc(doc *graphDoc, vocab *domain.Vocabulary) (*domain.Graph, error) {
	g := domain.NewGraph()
	for _, text := range doc.Comments {
		g.AddComment(text)
	}

	byID := make(map[string]*domain.Concept, len(doc.Concepts))
	for _, cd := range doc.Concepts {
		if cd.Type == "" {
			return nil, fmt.Errorf("concept %q has no type", cd.ID)
		}
		if _, dup := byID[cd.ID]; dup {
			return nil, fmt.Errorf("duplicate concept id %q", cd.ID)
		}
		if vocab != nil {
			vocab.Concepts.AddType(cd.Type)
		}
		c := domain.NewConcept(cd.Type)
		if cd.Quantifier != nil {
			q, err := quantifierFromDoc(cd.Quantifier)
			if err != nil {
				return nil, fmt.Errorf("concept %q: %w", cd.ID, err)
			}
			c.SetQuantifier(q)
		}
		if cd.Designator != nil {
			d, err := designatorFromDoc(cd.Designator)
			if err != nil {
				return nil, fmt.Errorf("concept %q: %w", cd.ID, err)
			}
			c.SetDesignator(d)
		}
		if cd.Descriptor != nil {
			desc, err := fromDoc(cd.Descriptor, vocab)
			if err != nil {
				return nil, fmt.Errorf("descriptor of %q: %w", cd.ID, err)
			}
			if err := c.SetDescriptor(desc); err != nil {
				return nil, err
			}
		}
		if err := g.AddConcept(c); err != nil {
			return nil, err
		}
		if cd.ID != "" {
			byID[cd.ID] = c
		}
	}

	lookup := func(ids []string) ([]*domain.Concept, error) {
		out := make([]*domain.Concept, len(ids))
		for i, id := range ids {
			c, ok := byID[id]
			if !ok {
				return nil, fmt.Errorf("unknown concept id %q", id)
			}
			out[i] = c
		}
		return out, nil
	}

	for _, rd := range doc.Relations {
		ins, err := lookup(rd.Inputs)
		if err != nil {
			return nil, fmt.Errorf("relation %s: %w", rd.Type, err)
		}
		outs, err := lookup(rd.Outputs)
		if err != nil {
			return nil, fmt.Errorf("relation %s: %w", rd.Type, err)
		}
		if vocab != nil {
			vocab.Relations.AddType(rd.Type)
		}
		var r *domain.Relation
		if rd.Actor {
			r = domain.NewActor(rd.Type, ins, outs)
		} else {
			if len(outs) != 1 {
				return nil, fmt.Errorf("relation %s must have exactly one output, has %d", rd.Type, len(outs))
			}
			r = domain.NewRelation(rd.Type, append(ins, outs[0])...)
		}
		if err := g.AddRelation(r); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func quantifierFromDoc(qd *quantifierDoc) (domain.Quantifier, error) {
	switch qd.Kind {
	case "numeric":
		return domain.NumericQuantifier(qd.Count), nil
	case "collection":
		return domain.CollectionQuantifier(qd.Name, qd.Members), nil
	case "generic":
		return domain.GenericQuantifier(qd.Name), nil
	}
	return domain.Quantifier{}, fmt.Errorf("unknown quantifier kind %q", qd.Kind)
}

func designatorFromDoc(dd *designatorDoc) (domain.Designator, error) {
	switch dd.Kind {
	case "literal":
		switch v := dd.Value.(type) {
		case float64:
			return domain.NumberLiteral(v), nil
		case int:
			return domain.NumberLiteral(float64(v)), nil
		case string:
			return domain.StringLiteral(v), nil
		case bool:
			return domain.BoolLiteral(v), nil
		}
		return domain.Designator{}, fmt.Errorf("unsupported literal %v (%T)", dd.Value, dd.Value)
	case "marker", "name":
		text, ok := dd.Value.(string)
		if !ok {
			text = fmt.Sprint(dd.Value)
		}
		if dd.Kind == "marker" {
			return domain.Marker(text), nil
		}
		return domain.Name(text), nil
	}
	return domain.Designator{}, fmt.Errorf("unknown designator kind %q", dd.Kind)
}
