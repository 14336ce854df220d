package kb

import (
	"strings"

	"pcg/internal/codec"
	"pcg/internal/domain"
)

// Describe renders the type hierarchies and the canon for display.
func (k *KnowledgeBase) Describe() string {
	var b strings.Builder
	b.WriteString("ACTIVE KNOWLEDGE BASE\n\n")
	section(&b, "Concept Types", DescribeTypes(k.vocab.Concepts))
	section(&b, "Relation Types", DescribeTypes(k.vocab.Relations))

	var graphs strings.Builder
	for _, g := range k.canon {
		graphs.WriteString(codec.FormatCGIF(g))
		graphs.WriteString("\n")
	}
	section(&b, "Graphs", graphs.String())
	return b.String()
}

func section(b *strings.Builder, title, body string) {
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("-", len(title)))
	b.WriteString("\n")
	b.WriteString(body)
	b.WriteString("\n")
}

// DescribeTypes lists every type of h in label order with its immediate
// supertypes and subtypes, one sentence per line.
func DescribeTypes(h *domain.TypeHierarchy) string {
	var b strings.Builder
	for _, label := range h.Labels() {
		t, _ := h.Lookup(label)
		b.WriteString(label)
		b.WriteString(" has ")
		b.WriteString(relatives("supertypes", t.Supertypes()))
		b.WriteString(" and ")
		b.WriteString(relatives("subtypes", t.Subtypes()))
		b.WriteString(".\n")
	}
	return b.String()
}

func relatives(kind string, types []*domain.Type) string {
	if len(types) == 0 {
		return "no " + kind
	}
	labels := make([]string, len(types))
	for i, t := range types {
		labels[i] = t.Label()
	}
	return kind + " " + strings.Join(labels, ", ")
}
