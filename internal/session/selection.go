package session

// Selection is an insertion-ordered set used by multi-select steps.
type Selection[T comparable] struct {
	order []T
	index map[T]struct{}
}

// NewSelection returns an empty selection.
func NewSelection[T comparable]() *Selection[T] {
	return &Selection[T]{index: make(map[T]struct{})}
}

// Toggle adds v when absent and removes it when present. It returns
// whether v is selected afterwards.
func (s *Selection[T]) Toggle(v T) bool {
	if _, ok := s.index[v]; ok {
		delete(s.index, v)
		for i, x := range s.order {
			if x == v {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
		return false
	}
	s.index[v] = struct{}{}
	s.order = append(s.order, v)
	return true
}

// Contains reports whether v is selected.
func (s *Selection[T]) Contains(v T) bool {
	_, ok := s.index[v]
	return ok
}

// Values returns the selection in insertion order.
func (s *Selection[T]) Values() []T {
	out := make([]T, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of selected values.
func (s *Selection[T]) Len() int {
	return len(s.order)
}

// Clear empties the selection.
func (s *Selection[T]) Clear() {
	s.order = nil
	s.index = make(map[T]struct{})
}
