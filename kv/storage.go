package kv

import (
	"iter"
	"slices"
)

// PromotionThreshold is the number of distinct keys at which a Storage abandons the linear
// representation in favour of a hash map. The promotion happens exactly once and is never
// reverted, even by Clear.
const PromotionThreshold = 12

// Storage is a multimap of (string, []string). Until PromotionThreshold distinct keys are
// stored, it keeps keys and their values in two parallel slices and looks them up by linear
// search, which beats hashing for the typical header set. Afterwards everything is moved into
// a map, so the insertion order of keys is lost, while the order of values per key is kept.
//
// Keys are compared exactly. Case-insensitivity, where needed, is the caller's business: the
// parser lowercases header keys before inserting them.
type Storage struct {
	keys   []string
	values [][]string
	large  map[string][]string
	// total number of values, so Each is able to tell the last one without a lookahead
	count int
}

func New() *Storage {
	return new(Storage)
}

// NewPrealloc returns an instance of Storage with pre-allocated seats for n distinct keys.
func NewPrealloc(n int) *Storage {
	if n >= PromotionThreshold {
		return &Storage{large: make(map[string][]string, n)}
	}

	return &Storage{
		keys:   make([]string, 0, n),
		values: make([][]string, 0, n),
	}
}

// NewFromMap returns a new instance with already inserted values from given map.
// Note: as maps are unordered, resulting storage will also contain unordered keys.
func NewFromMap(m map[string][]string) *Storage {
	s := NewPrealloc(len(m))

	for key, values := range m {
		for _, value := range values {
			s.Add(key, value)
		}
	}

	return s
}

// Add appends the value to the values of the key. Existing values are never overwritten.
func (s *Storage) Add(key, value string) *Storage {
	s.count++

	if s.large != nil {
		s.large[key] = append(s.large[key], value)
		return s
	}

	if i := s.index(key); i != -1 {
		s.values[i] = append(s.values[i], value)
		return s
	}

	s.insert(key, value)
	return s
}

// Set drops all the values of the key and leaves exactly the passed one.
func (s *Storage) Set(key, value string) *Storage {
	if s.large != nil {
		values := s.large[key]
		s.count += 1 - len(values)
		s.large[key] = append(values[:0], value)
		return s
	}

	if i := s.index(key); i != -1 {
		s.count += 1 - len(s.values[i])
		s.values[i] = append(s.values[i][:0], value)
		return s
	}

	s.count++
	s.insert(key, value)
	return s
}

// insert adds a new distinct key. It's the only place where promotion may happen.
func (s *Storage) insert(key, value string) {
	if len(s.keys)+1 >= PromotionThreshold {
		s.promote()
		s.large[key] = []string{value}
		return
	}

	s.keys = append(s.keys, key)
	if len(s.values) < cap(s.values) {
		// reuse the values slice left by Clear
		s.values = s.values[:len(s.values)+1]
		s.values[len(s.values)-1] = append(s.values[len(s.values)-1][:0], value)
		return
	}

	s.values = append(s.values, []string{value})
}

func (s *Storage) promote() {
	s.large = make(map[string][]string, PromotionThreshold*2)
	for i, key := range s.keys {
		s.large[key] = s.values[i]
	}

	s.keys, s.values = nil, nil
}

// Delete removes the key together with all its values.
func (s *Storage) Delete(key string) *Storage {
	if s.large != nil {
		s.count -= len(s.large[key])
		delete(s.large, key)
		return s
	}

	if i := s.index(key); i != -1 {
		s.count -= len(s.values[i])
		s.keys = slices.Delete(s.keys, i, i+1)
		s.values = slices.Delete(s.values, i, i+1)
	}

	return s
}

// Value returns the first value, corresponding to the key. Otherwise, empty string is returned
func (s *Storage) Value(key string) string {
	return s.ValueOr(key, "")
}

// ValueOr returns either the first value corresponding to the key or custom value, defined
// via the second parameter.
func (s *Storage) ValueOr(key, or string) string {
	value, found := s.Get(key)
	if !found {
		return or
	}

	return value
}

// Get returns the first value and a bool, indicating whether the value was found.
func (s *Storage) Get(key string) (value string, found bool) {
	values := s.Values(key)
	if len(values) == 0 {
		return "", false
	}

	return values[0], true
}

// Values returns all values by the key in insertion order. Returns nil if key doesn't exist.
//
// WARNING: the returned slice is the storage's own and becomes invalid after Clear. Copy it
// in order to keep it.
func (s *Storage) Values(key string) []string {
	if s.large != nil {
		return s.large[key]
	}

	if i := s.index(key); i != -1 {
		return s.values[i]
	}

	return nil
}

// Has indicates, whether there's an entry of the key.
func (s *Storage) Has(key string) bool {
	return len(s.Values(key)) > 0
}

// Keys returns an iterator over distinct keys.
func (s *Storage) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		if s.large != nil {
			for key := range s.large {
				if !yield(key) {
					return
				}
			}

			return
		}

		for _, key := range s.keys {
			if !yield(key) {
				return
			}
		}
	}
}

// Iter returns an iterator over all the pairs. A key with multiple values is yielded once per
// value.
func (s *Storage) Iter() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		if s.large != nil {
			for key, values := range s.large {
				for _, value := range values {
					if !yield(key, value) {
						return
					}
				}
			}

			return
		}

		for i, key := range s.keys {
			for _, value := range s.values[i] {
				if !yield(key, value) {
					return
				}
			}
		}
	}
}

// Each calls the visitor for every pair. The last argument is true only for the very last
// pair, which comes handy for rendering separators.
func (s *Storage) Each(visitor func(key, value string, last bool)) {
	n := 0
	for key, value := range s.Iter() {
		n++
		visitor(key, value, n == s.count)
	}
}

// Len returns a number of distinct keys.
func (s *Storage) Len() int {
	if s.large != nil {
		return len(s.large)
	}

	return len(s.keys)
}

// Count returns a number of stored values across all keys.
func (s *Storage) Count() int {
	return s.count
}

func (s *Storage) Empty() bool {
	return s.count == 0
}

// Promoted tells whether the storage switched to the hash map representation.
func (s *Storage) Promoted() bool {
	return s.large != nil
}

// Clone creates a deep copy, which may be used later or stored somewhere safely. However,
// it comes at cost of multiple allocations.
func (s *Storage) Clone() *Storage {
	c := &Storage{count: s.count}

	if s.large != nil {
		c.large = make(map[string][]string, len(s.large))
		for key, values := range s.large {
			c.large[key] = slices.Clone(values)
		}

		return c
	}

	c.keys = slices.Clone(s.keys)
	c.values = make([][]string, len(s.values))
	for i, values := range s.values {
		c.values[i] = slices.Clone(values)
	}

	return c
}

// Clear all the entries. However, all the allocated space won't be freed and a promoted
// storage stays promoted.
func (s *Storage) Clear() *Storage {
	s.count = 0

	if s.large != nil {
		clear(s.large)
		return s
	}

	s.keys = s.keys[:0]
	s.values = s.values[:0]
	return s
}

func (s *Storage) index(key string) int {
	for i, k := range s.keys {
		if k == key {
			return i
		}
	}

	return -1
}
