package catalog

import (
	"cmp"
	"fmt"
	"math"
	"path"
	"slices"

	"github.com/bft-labs/ptflview/pkg/scan"
)

// Store is an insertion-ordered, uniquely keyed collection of entries.
// The zero value is not usable; call New.
type Store struct {
	order []scan.Key
	index map[scan.Key]int
	items []scan.Entry
}

// New returns an empty store.
func New() *Store {
	return &Store{index: make(map[scan.Key]int)}
}

// Insert adds entry, or replaces the entry with the same key in place.
// A replaced entry keeps its original position.
func (s *Store) Insert(entry scan.Entry) {
	if i, ok := s.index[entry.Key]; ok {
		s.items[i] = entry
		return
	}
	s.index[entry.Key] = len(s.items)
	s.order = append(s.order, entry.Key)
	s.items = append(s.items, entry)
}

// Get returns the entry stored under key.
func (s *Store) Get(key scan.Key) (scan.Entry, bool) {
	i, ok := s.index[key]
	if !ok {
		return scan.Entry{}, false
	}
	return s.items[i], true
}

// Contains reports whether key is present.
func (s *Store) Contains(key scan.Key) bool {
	_, ok := s.index[key]
	return ok
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.items)
}

// Keys returns every key in insertion order.
func (s *Store) Keys() []scan.Key {
	return slices.Clone(s.order)
}

// Entries returns every entry in insertion order.
func (s *Store) Entries() []scan.Entry {
	return slices.Clone(s.items)
}

// Match returns, in insertion order, the entries whose label equals pattern
// or matches it as a shell pattern (see path.Match). A label is always
// matched literally first, so labels containing glob metacharacters still
// select themselves. A malformed pattern is an error only when no label
// equals it.
func (s *Store) Match(pattern string) ([]scan.Entry, error) {
	_, patErr := path.Match(pattern, "")

	var out []scan.Entry
	for _, e := range s.items {
		if e.Key.Label == pattern {
			out = append(out, e)
			continue
		}
		if patErr != nil {
			continue
		}
		if ok, _ := path.Match(pattern, e.Key.Label); ok {
			out = append(out, e)
		}
	}
	if patErr != nil && len(out) == 0 {
		return nil, fmt.Errorf("catalog: bad pattern %q: %w", pattern, patErr)
	}
	return out, nil
}

// Combine merges the samples of sources into a new entry stored under
// target. Samples are sorted by angle, then range. The store is left
// untouched when any check fails.
func (s *Store) Combine(target scan.Key, sources []scan.Key) (scan.Entry, error) {
	if s.Contains(target) {
		return scan.Entry{}, fmt.Errorf("%w: %s", ErrDuplicateKey, target)
	}
	if len(sources) == 0 {
		return scan.Entry{}, ErrNoSources
	}

	total := 0
	for _, k := range sources {
		e, ok := s.Get(k)
		if !ok {
			return scan.Entry{}, fmt.Errorf("%w: %s", ErrNotFound, k)
		}
		total += e.Len()
	}

	merged := make([]scan.Sample, 0, total)
	for _, k := range sources {
		e, _ := s.Get(k)
		merged = append(merged, e.Samples...)
	}
	if err := SortSamples(merged); err != nil {
		return scan.Entry{}, err
	}

	entry := scan.Entry{Key: target, Samples: merged}
	s.Insert(entry)
	return entry, nil
}

// SortSamples orders samples ascending by angle, then by range. It refuses
// NaN values instead of placing them arbitrarily, leaving samples unsorted.
func SortSamples(samples []scan.Sample) error {
	for i, smp := range samples {
		if math.IsNaN(smp.Angle) || math.IsNaN(smp.Range) {
			return fmt.Errorf("%w: sample %d is (%v, %v)", ErrUnordered, i, smp.Angle, smp.Range)
		}
	}
	slices.SortStableFunc(samples, func(a, b scan.Sample) int {
		if c := compareTotal(a.Angle, b.Angle); c != 0 {
			return c
		}
		return compareTotal(a.Range, b.Range)
	})
	return nil
}

// compareTotal orders non-NaN floats with -0 before +0.
func compareTotal(a, b float64) int {
	if c := cmp.Compare(a, b); c != 0 {
		return c
	}
	switch sa, sb := math.Signbit(a), math.Signbit(b); {
	case sa && !sb:
		return -1
	case !sa && sb:
		return 1
	}
	return 0
}
