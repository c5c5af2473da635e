package promo

import "github.com/shopspring/decimal"

// mapSet implements Set using a map for O(1) lookups.
type mapSet struct {
	codes map[string]decimal.Decimal
}

// newMapSet creates an empty map-backed set.
func newMapSet(capacity int) *mapSet {
	return &mapSet{codes: make(map[string]decimal.Decimal, capacity)}
}

func (s *mapSet) Percent(code string) (decimal.Decimal, bool) {
	p, ok := s.codes[code]
	return p, ok
}

func (s *mapSet) Size() int {
	return len(s.codes)
}

func (s *mapSet) Range(fn func(code string, percent decimal.Decimal)) {
	for code, p := range s.codes {
		fn(code, p)
	}
}

// Add stores code with percent. A repeated code keeps the last value.
func (s *mapSet) Add(code string, percent decimal.Decimal) {
	s.codes[code] = percent
}
