package kb

import (
	"strings"

	"pcg/internal/algebra"
	"pcg/internal/domain"
	"pcg/internal/metrics"

	"go.uber.org/zap"
)

// Built-in concept types present in every knowledge base
var BuiltinConceptTypes = []string{"Number", "String", "Boolean", "Proposition", "Erasure", "Condition"}

// ChangeKind identifies a canon mutation
type ChangeKind string

const (
	ChangeAsserted  ChangeKind = "asserted"
	ChangeRetracted ChangeKind = "retracted"
)

// Change describes one canon mutation. Graph is a copy owned by the receiver.
type Change struct {
	KB    string
	Kind  ChangeKind
	Graph *domain.Graph
}

// Listener is notified after every canon mutation
type Listener func(Change)

// CorefVar is one recorded coreference variable binding
type CorefVar struct {
	Name    string
	Binding domain.Binding
}

// Match is a successful projection against the canon
type Match struct {
	// Member is a copy of the canon graph that matched
	Member *domain.Graph
	// Projection is the filter restricted by Member
	Projection *domain.Graph
}

// KnowledgeBase holds a canon of structurally distinct graphs.
type KnowledgeBase struct {
	name       string
	vocab      *domain.Vocabulary
	canon      []*domain.Graph
	corefs     map[string]domain.Binding
	corefOrder []string
	logger     *zap.Logger
	metrics    *metrics.Metrics
	listeners  []Listener
}

// Option configures a KnowledgeBase
type Option func(*KnowledgeBase)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(k *KnowledgeBase) {
		if l != nil {
			k.logger = l
		}
	}
}

// WithMetrics records assert, retract and projection counts on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(k *KnowledgeBase) { k.metrics = m }
}

// WithListener adds a change listener
func WithListener(fn Listener) Option {
	return func(k *KnowledgeBase) {
		if fn != nil {
			k.listeners = append(k.listeners, fn)
		}
	}
}

// WithVocabulary uses an existing pair of type hierarchies
func WithVocabulary(v *domain.Vocabulary) Option {
	return func(k *KnowledgeBase) {
		if v != nil {
			k.vocab = v
		}
	}
}

// New creates an empty knowledge base with the built-in concept types.
func New(name string, opts ...Option) *KnowledgeBase {
	k := &KnowledgeBase{
		name:   name,
		vocab:  domain.NewVocabulary(),
		corefs: make(map[string]domain.Binding),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(k)
	}
	for _, label := range BuiltinConceptTypes {
		k.vocab.Concepts.AddType(label)
	}
	return k
}

func (k *KnowledgeBase) Name() string                   { return k.name }
func (k *KnowledgeBase) Vocabulary() *domain.Vocabulary { return k.vocab }
func (k *KnowledgeBase) Len() int                       { return len(k.canon) }

// Graphs returns copies of the canon in assertion order
func (k *KnowledgeBase) Graphs() []*domain.Graph {
	out := make([]*domain.Graph, len(k.canon))
	for i, g := range k.canon {
		out[i] = g.Copy(true)
	}
	return out
}

// AddConceptType declares a concept type
func (k *KnowledgeBase) AddConceptType(label string) { k.vocab.Concepts.AddType(label) }

// AddRelationType declares a relation type
func (k *KnowledgeBase) AddRelationType(label string) { k.vocab.Relations.AddType(label) }

// LinkConceptTypes declares sub as an immediate subtype of super
func (k *KnowledgeBase) LinkConceptTypes(super, sub string) error {
	return k.vocab.Concepts.LinkSupertype(sub, super)
}

// LinkRelationTypes declares sub as an immediate subtype of super
func (k *KnowledgeBase) LinkRelationTypes(super, sub string) error {
	return k.vocab.Relations.LinkSupertype(sub, super)
}

// Clone returns a knowledge base for a nested activation. The hierarchies
// are shared; the canon and coreference variables are copied so changes do
// not reach k. Listeners are not inherited.
func (k *KnowledgeBase) Clone(name string) *KnowledgeBase {
	c := &KnowledgeBase{
		name:       name,
		vocab:      k.vocab,
		canon:      k.Graphs(),
		corefs:     make(map[string]domain.Binding, len(k.corefs)),
		corefOrder: append([]string(nil), k.corefOrder...),
		logger:     k.logger,
		metrics:    k.metrics,
	}
	for key, b := range k.corefs {
		c.corefs[key] = copyBinding(b)
	}
	return c
}

// Assert adds a copy of g to the canon unless a structurally equal graph is
// already present. With bindVars set, recorded coreference variables are
// substituted into the copy first. It reports whether the canon grew.
func (k *KnowledgeBase) Assert(g *domain.Graph, bindVars bool) (bool, error) {
	stored, err := k.prepare("assert", g, bindVars)
	if err != nil {
		return false, err
	}
	if k.locate(stored) >= 0 {
		k.metrics.Assert(metrics.ResultDuplicate)
		k.logger.Debug("assert ignored duplicate graph", zap.String("kb", k.name))
		return false, nil
	}
	k.canon = append(k.canon, stored)
	k.metrics.Assert(metrics.ResultAdded)
	k.logger.Debug("graph asserted", zap.String("kb", k.name), zap.Int("canon", len(k.canon)))
	k.notify(ChangeAsserted, stored)
	return true, nil
}

// Retract removes the first canon member structurally equal to g, after the
// same binding step as Assert. It reports whether a member was removed.
func (k *KnowledgeBase) Retract(g *domain.Graph, bindVars bool) (bool, error) {
	probe, err := k.prepare("retract", g, bindVars)
	if err != nil {
		return false, err
	}
	i := k.locate(probe)
	if i < 0 {
		k.metrics.Retract(metrics.ResultAbsent)
		return false, nil
	}
	removed := k.canon[i]
	k.canon = append(k.canon[:i:i], k.canon[i+1:]...)
	k.metrics.Retract(metrics.ResultRemoved)
	k.logger.Debug("graph retracted", zap.String("kb", k.name), zap.Int("canon", len(k.canon)))
	k.notify(ChangeRetracted, removed)
	return true, nil
}

func (k *KnowledgeBase) prepare(op string, g *domain.Graph, bindVars bool) (*domain.Graph, error) {
	if g == nil {
		return nil, domain.StructuralError(op, "no graph given")
	}
	if err := g.Validate(k.vocab.Relations); err != nil {
		return nil, err
	}
	if bindVars {
		return k.BindCorefVars(g), nil
	}
	return g.Copy(true), nil
}

func (k *KnowledgeBase) locate(g *domain.Graph) int {
	for i, h := range k.canon {
		if algebra.Equal(g, h) {
			return i
		}
	}
	return -1
}

func (k *KnowledgeBase) notify(kind ChangeKind, g *domain.Graph) {
	for _, fn := range k.listeners {
		fn(Change{KB: k.name, Kind: kind, Graph: g.Copy(true)})
	}
}

// ExactMatch reports whether some canon member is structurally equal to g
func (k *KnowledgeBase) ExactMatch(g *domain.Graph) bool {
	return g != nil && k.locate(g) >= 0
}

// ProjectionMatch uses g as a filter over the canon and returns the first
// member it projects onto, or nil. Variables bound along the way are recorded
// as coreference variables, including those from members that ultimately
// failed to match.
func (k *KnowledgeBase) ProjectionMatch(g *domain.Graph) *Match {
	if g == nil {
		return nil
	}
	for _, h := range k.canon {
		if p := algebra.Project(k.vocab, h, g, k); p != nil {
			k.metrics.Projection(metrics.ResultMatch)
			return &Match{Member: h.Copy(true), Projection: p}
		}
	}
	k.metrics.Projection(metrics.ResultMiss)
	return nil
}

// BindCorefVars returns a copy of g in which every variable designator with a
// recorded binding is replaced by it, descriptors included.
func (k *KnowledgeBase) BindCorefVars(g *domain.Graph) *domain.Graph {
	cp := g.Copy(true)
	k.bindInPlace(cp)
	return cp
}

func (k *KnowledgeBase) bindInPlace(g *domain.Graph) {
	for _, c := range g.Concepts() {
		if c.HasVariable() {
			if b, ok := k.corefs[c.VariableKey()]; ok {
				c.Bind(b)
			}
		}
		if d := c.Descriptor(); d != nil {
			k.bindInPlace(d)
		}
	}
}

// RecordCoref stores the latest binding for a coreference variable.
func (k *KnowledgeBase) RecordCoref(key string, b domain.Binding) {
	key = corefKey(key)
	if _, ok := k.corefs[key]; !ok {
		k.corefOrder = append(k.corefOrder, key)
	}
	k.corefs[key] = copyBinding(b)
	k.logger.Debug("coreference bound", zap.String("kb", k.name), zap.String("var", key), zap.Stringer("value", b))
}

// Coref returns the binding recorded for name, given with or without a sigil.
func (k *KnowledgeBase) Coref(name string) (domain.Binding, bool) {
	b, ok := k.corefs[corefKey(name)]
	return b, ok
}

// CorefVars lists the recorded bindings in first-recorded order
func (k *KnowledgeBase) CorefVars() []CorefVar {
	out := make([]CorefVar, len(k.corefOrder))
	for i, key := range k.corefOrder {
		out[i] = CorefVar{Name: key, Binding: k.corefs[key]}
	}
	return out
}

func corefKey(name string) string {
	if strings.HasPrefix(name, domain.DefiningSigil) || strings.HasPrefix(name, domain.BoundSigil) {
		return domain.Name(name).VariableKey()
	}
	return domain.DefiningSigil + name
}

func copyBinding(b domain.Binding) domain.Binding {
	if b.Descriptor != nil {
		return domain.Binding{Descriptor: b.Descriptor.Copy(true)}
	}
	return b
}
