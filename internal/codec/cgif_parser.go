package codec

import (
	"pcg/internal/domain"
)

// parser builds graphs from CGIF tokens. Coreference labels are scoped to the
// graph that defines them; a nested descriptor opens a new scope.
type parser struct {
	tokens []token
	pos    int
	vocab  *domain.Vocabulary
}

type scope struct {
	graph  *domain.Graph
	labels map[string]*domain.Concept
}

func newParser(tokens []token, vocab *domain.Vocabulary) *parser {
	return &parser{tokens: tokens, vocab: vocab}
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) advance() token {
	t := p.tokens[p.pos]
	if t.typ != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) check(tt tokenType) bool { return p.peek().typ == tt }

func (p *parser) errorf(t token, format string, args ...any) error {
	return syntaxErrorf(t.line, t.col, format, args...)
}

func (p *parser) expect(tt tokenType) (token, error) {
	t := p.peek()
	if t.typ != tt {
		return t, p.errorf(t, "expected %s, found %s", tt, describe(t))
	}
	return p.advance(), nil
}

func describe(t token) string {
	if t.text == "" || t.typ <= tokAt {
		return t.typ.String()
	}
	return t.typ.String() + " '" + t.text + "'"
}

// parseGraph reads items until end of input
func (p *parser) parseGraph() (*domain.Graph, error) {
	g, err := p.parseItems(tokEOF)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokEOF); err != nil {
		return nil, err
	}
	return g, nil
}

// parseItems reads concepts, relations, actors and comments until the
// terminator token, which is left unconsumed.
func (p *parser) parseItems(term tokenType) (*domain.Graph, error) {
	s := &scope{graph: domain.NewGraph(), labels: make(map[string]*domain.Concept)}
	for !p.check(term) && !p.check(tokEOF) {
		t := p.peek()
		switch t.typ {
		case tokComment:
			p.advance()
			s.graph.AddComment(t.text)
		case tokLBracket:
			if _, err := p.parseConcept(s); err != nil {
				return nil, err
			}
		case tokLParen:
			if err := p.parseRelation(s); err != nil {
				return nil, err
			}
		case tokLAngle:
			if err := p.parseActor(s); err != nil {
				return nil, err
			}
		default:
			return nil, p.errorf(t, "unexpected %s", describe(t))
		}
	}
	return s.graph, nil
}

// parseConcept reads [Type *label: @quantifier designator descriptor...]
func (p *parser) parseConcept(s *scope) (*domain.Concept, error) {
	if _, err := p.expect(tokLBracket); err != nil {
		return nil, err
	}
	typeTok, err := p.expect(tokIdent)
	if err != nil {
		return nil, err
	}
	if p.vocab != nil {
		p.vocab.Concepts.AddType(typeTok.text)
	}
	c := domain.NewConcept(typeTok.text)

	label := ""
	if p.check(tokVarDef) {
		lt := p.advance()
		if _, dup := s.labels[lt.text]; dup {
			return nil, p.errorf(lt, "coreference label '*%s' defined twice", lt.text)
		}
		label = lt.text
	}

	if p.check(tokColon) {
		p.advance()
		if err := p.parseReferent(c); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(tokRBracket); err != nil {
		return nil, err
	}

	if err := s.graph.AddConcept(c); err != nil {
		return nil, err
	}
	if label != "" {
		s.labels[label] = c
		if err := s.graph.AddCoreferenceSet(label, c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (p *parser) parseReferent(c *domain.Concept) error {
	if p.check(tokAt) {
		q, err := p.parseQuantifier()
		if err != nil {
			return err
		}
		c.SetQuantifier(q)
	}

	t := p.peek()
	switch t.typ {
	case tokNumber:
		p.advance()
		c.SetDesignator(domain.NumberLiteral(t.num))
	case tokString:
		p.advance()
		c.SetDesignator(domain.StringLiteral(t.text))
	case tokName:
		p.advance()
		c.SetDesignator(domain.Name(t.text))
	case tokMarker:
		p.advance()
		c.SetDesignator(domain.Marker(t.text))
	case tokVarDef:
		p.advance()
		c.SetDesignator(domain.Name(domain.DefiningSigil + t.text))
	case tokVarRef:
		p.advance()
		c.SetDesignator(domain.Name(domain.BoundSigil + t.text))
	case tokIdent:
		switch t.text {
		case "true", "false":
			p.advance()
			c.SetDesignator(domain.BoolLiteral(t.text == "true"))
		default:
			return p.errorf(t, "unexpected %s in referent", describe(t))
		}
	}

	switch p.peek().typ {
	case tokLBracket, tokLParen, tokLAngle, tokComment:
		desc, err := p.parseItems(tokRBracket)
		if err != nil {
			return err
		}
		if err := c.SetDescriptor(desc); err != nil {
			return err
		}
	}
	return nil
}

// parseQuantifier reads @3, @every, @{"a","b"} or @name{"a","b"}
func (p *parser) parseQuantifier() (domain.Quantifier, error) {
	p.advance()
	t := p.peek()
	switch t.typ {
	case tokNumber:
		p.advance()
		if t.num < 0 || t.num != float64(int(t.num)) {
			return domain.Quantifier{}, p.errorf(t, "numeric quantifier must be a non-negative integer")
		}
		return domain.NumericQuantifier(int(t.num)), nil
	case tokIdent:
		p.advance()
		if !p.check(tokLBrace) {
			return domain.GenericQuantifier(t.text), nil
		}
		members, err := p.parseMembers()
		if err != nil {
			return domain.Quantifier{}, err
		}
		return domain.CollectionQuantifier(t.text, members), nil
	case tokLBrace:
		members, err := p.parseMembers()
		if err != nil {
			return domain.Quantifier{}, err
		}
		return domain.CollectionQuantifier("", members), nil
	}
	return domain.Quantifier{}, p.errorf(t, "unexpected %s after '@'", describe(t))
}

func (p *parser) parseMembers() ([]string, error) {
	if _, err := p.expect(tokLBrace); err != nil {
		return nil, err
	}
	var members []string
	for !p.check(tokRBrace) {
		t, err := p.expect(tokString)
		if err != nil {
			return nil, err
		}
		members = append(members, t.text)
		if !p.check(tokComma) {
			break
		}
		p.advance()
	}
	if _, err := p.expect(tokRBrace); err != nil {
		return nil, err
	}
	return members, nil
}

// parseArgs reads ?label references and inline concepts until stop
func (p *parser) parseArgs(s *scope, stop tokenType) ([]*domain.Concept, error) {
	var args []*domain.Concept
	for !p.check(stop) {
		t := p.peek()
		switch t.typ {
		case tokVarRef:
			p.advance()
			c, ok := s.labels[t.text]
			if !ok {
				return nil, p.errorf(t, "undefined coreference label '?%s'", t.text)
			}
			args = append(args, c)
		case tokLBracket:
			c, err := p.parseConcept(s)
			if err != nil {
				return nil, err
			}
			args = append(args, c)
		default:
			return nil, p.errorf(t, "expected argument, found %s", describe(t))
		}
	}
	return args, nil
}

// parseRelation reads (Type args...)
func (p *parser) parseRelation(s *scope) error {
	p.advance()
	typeTok, err := p.expect(tokIdent)
	if err != nil {
		return err
	}
	args, err := p.parseArgs(s, tokRParen)
	if err != nil {
		return err
	}
	p.advance()
	if len(args) == 0 {
		return p.errorf(typeTok, "relation (%s) has no arguments", typeTok.text)
	}
	if p.vocab != nil {
		p.vocab.Relations.AddType(typeTok.text)
	}
	return s.graph.AddRelation(domain.NewRelation(typeTok.text, args...))
}

// parseActor reads <Type inputs... | outputs...>
func (p *parser) parseActor(s *scope) error {
	p.advance()
	typeTok, err := p.expect(tokIdent)
	if err != nil {
		return err
	}
	inputs, err := p.parseArgs(s, tokBar)
	if err != nil {
		return err
	}
	p.advance()
	outputs, err := p.parseArgs(s, tokRAngle)
	if err != nil {
		return err
	}
	p.advance()
	if p.vocab != nil {
		p.vocab.Relations.AddType(typeTok.text)
	}
	return s.graph.AddRelation(domain.NewActor(typeTok.text, inputs, outputs))
}
