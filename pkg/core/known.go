package core

import "github.com/leapstack-labs/lpi/pkg/quantity"

// KnownSet is the working set of quantities for one resolution request.
// It starts with the caller's inputs and grows as quantities are derived.
// Insertion order is kept for reporting. A KnownSet is not safe for
// concurrent use; each request owns its own.
type KnownSet struct {
	values map[quantity.Kind]quantity.Quantity
	order  []quantity.Kind
}

// NewKnownSet creates a set holding qs.
func NewKnownSet(qs ...quantity.Quantity) *KnownSet {
	s := &KnownSet{values: make(map[quantity.Kind]quantity.Quantity, len(qs))}
	s.Add(qs...)
	return s
}

// Set stores q, replacing any quantity of the same kind in place.
func (s *KnownSet) Set(q quantity.Quantity) {
	if _, ok := s.values[q.Kind]; !ok {
		s.order = append(s.order, q.Kind)
	}
	s.values[q.Kind] = q
}

// Add stores every quantity in qs.
func (s *KnownSet) Add(qs ...quantity.Quantity) {
	for _, q := range qs {
		s.Set(q)
	}
}

// Get returns the quantity of kind k.
func (s *KnownSet) Get(k quantity.Kind) (quantity.Quantity, bool) {
	q, ok := s.values[k]
	return q, ok
}

// Has reports whether k is known.
func (s *KnownSet) Has(k quantity.Kind) bool {
	_, ok := s.values[k]
	return ok
}

// Delete removes k.
func (s *KnownSet) Delete(k quantity.Kind) {
	if _, ok := s.values[k]; !ok {
		return
	}
	delete(s.values, k)
	for i, kk := range s.order {
		if kk == k {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of known quantities.
func (s *KnownSet) Len() int {
	return len(s.values)
}

// All returns the quantities in insertion order.
func (s *KnownSet) All() []quantity.Quantity {
	out := make([]quantity.Quantity, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.values[k])
	}
	return out
}

// Kinds returns the known kinds in insertion order.
func (s *KnownSet) Kinds() []quantity.Kind {
	return append([]quantity.Kind(nil), s.order...)
}

// Inputs returns a read-only view restricted to kinds.
func (s *KnownSet) Inputs(kinds []quantity.Kind) Inputs {
	qs := make([]quantity.Quantity, 0, len(kinds))
	for _, k := range kinds {
		if q, ok := s.values[k]; ok {
			qs = append(qs, q)
		}
	}
	return NewInputs(qs...)
}

// Clone returns an independent copy.
func (s *KnownSet) Clone() *KnownSet {
	return NewKnownSet(s.All()...)
}
