package kb

import "pcg/internal/domain"

// Stack nests knowledge bases; the top is the active one.
type Stack struct {
	items []*KnowledgeBase
}

// NewStack creates a stack whose bottom is root
func NewStack(root *KnowledgeBase) *Stack {
	return &Stack{items: []*KnowledgeBase{root}}
}

// Depth returns the number of knowledge bases on the stack
func (s *Stack) Depth() int { return len(s.items) }

// Push makes k the active knowledge base
func (s *Stack) Push(k *KnowledgeBase) *KnowledgeBase {
	s.items = append(s.items, k)
	return k
}

// Peek returns the active knowledge base
func (s *Stack) Peek() *KnowledgeBase {
	return s.items[len(s.items)-1]
}

// Root returns the bottom knowledge base
func (s *Stack) Root() *KnowledgeBase { return s.items[0] }

// Pop removes and returns the active knowledge base. The root cannot be
// popped.
func (s *Stack) Pop() (*KnowledgeBase, error) {
	if len(s.items) <= 1 {
		return nil, domain.StructuralError("pop knowledge base", "cannot pop the root knowledge base")
	}
	top := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return top, nil
}
