// Package radix implements a prefix tree over route templates. Static parts of templates
// are compressed into shared prefixes, dynamic segments ({name}) match everything up to the
// next slash.
package radix

import (
	"errors"
	"strings"

	"github.com/indigo-web/h2tp/kv"
)

var (
	ErrMismatchingWildcards = errors.New(
		"having two different names for wildcards sharing common prefix isn't supported",
	)
	ErrBadTemplate = errors.New("dynamic segment must be enclosed in braces and span the whole segment")
)

type Node[T any] struct {
	isLeaf       bool
	value        string
	dyn          *dynamicNode[T]
	predecessors []*Node[T]
	payload      T
}

type dynamicNode[T any] struct {
	isLeaf   bool
	next     *Node[T]
	wildcard string
	payload  T
}

func New[T any]() *Node[T] {
	return new(Node[T])
}

// Lookup finds the payload by the path. Values of dynamic segments are added to wildcards,
// unless it's nil. Static parts take precedence over dynamic ones, but if the static branch
// doesn't lead to a leaf, the dynamic segment at the same position is tried instead.
// Wildcards are added only if the payload is found.
func (n *Node[T]) Lookup(key string, wildcards *kv.Storage) (value T, found bool) {
	var buff [4]capture
	captured := buff[:0]

	value, found = n.lookup(key, &captured)
	if found && wildcards != nil {
		for _, c := range captured {
			if len(c.wildcard) > 0 {
				wildcards.Add(c.wildcard, c.value)
			}
		}
	}

	return value, found
}

type capture struct {
	wildcard, value string
}

func (n *Node[T]) lookup(key string, captured *[]capture) (value T, found bool) {
	if len(key) == 0 {
		return n.payload, n.isLeaf
	}

	for _, p := range n.predecessors {
		if strings.HasPrefix(key, p.value) {
			if value, found = p.lookup(key[len(p.value):], captured); found {
				return value, true
			}

			// siblings never share the first byte
			break
		}
	}

	if n.dyn == nil {
		return value, false
	}

	return n.dyn.lookup(key, captured)
}

func (d *dynamicNode[T]) lookup(key string, captured *[]capture) (value T, found bool) {
	end := strings.IndexByte(key, '/')
	if end == -1 {
		end = len(key)
	}

	if end == 0 {
		return value, false
	}

	mark := len(*captured)
	*captured = append(*captured, capture{d.wildcard, key[:end]})

	switch rest := key[end:]; {
	case len(rest) <= 1:
		if d.isLeaf {
			return d.payload, true
		}
	case d.next != nil:
		if value, found = d.next.lookup(rest[1:], captured); found {
			return value, true
		}
	}

	*captured = (*captured)[:mark]
	return value, false
}

// Insert adds the template. Inserting the same template again replaces its payload.
func (n *Node[T]) Insert(template string, value T) error {
	segs, err := splitTemplate(template)
	if err != nil {
		return err
	}

	return n.insert(segs, value)
}

func (n *Node[T]) insert(segs []pathSegment, value T) error {
	if len(segs) == 0 {
		n.isLeaf = true
		n.payload = value
		return nil
	}

	seg := segs[0]

	if seg.IsWildcard {
		if n.dyn == nil {
			n.dyn = &dynamicNode[T]{wildcard: seg.Value}
		}

		if n.dyn.wildcard != seg.Value {
			return ErrMismatchingWildcards
		}

		if len(segs) == 1 {
			n.dyn.isLeaf = true
			n.dyn.payload = value

			return nil
		}

		if n.dyn.next == nil {
			n.dyn.next = New[T]()
		}

		return n.dyn.next.insert(segs[1:], value)
	}

	for i, p := range n.predecessors {
		common := union(p.value, seg.Value)
		if len(common) == 0 {
			continue
		}

		if len(common) == len(p.value) {
			if len(common) == len(seg.Value) {
				// p.value == seg.Value
				return p.insert(segs[1:], value)
			}

			// len(seg.Value) > len(p.value)
			seg.Value = seg.Value[len(common):]
			segs[0] = seg

			return p.insert(segs, value)
		}

		// len(common) < len(p.value)
		// len(common) <= len(seg.Value)

		stays, goes := p.value[:len(common)], p.value[len(common):]
		substitution := &Node[T]{value: stays}
		p.value = goes
		substitution.predecessors = append(substitution.predecessors, p)
		n.predecessors[i] = substitution

		if len(common) == len(seg.Value) {
			return substitution.insert(segs[1:], value)
		}

		// len(common) < len(seg.Value)
		newNode := &Node[T]{value: seg.Value[len(common):]}
		substitution.predecessors = append(substitution.predecessors, newNode)
		return newNode.insert(segs[1:], value)
	}

	newNode := &Node[T]{value: seg.Value}
	n.predecessors = append(n.predecessors, newNode)

	return newNode.insert(segs[1:], value)
}

func union(a, b string) string {
	for i := 0; i < min(len(a), len(b)); i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}

	return a[:min(len(a), len(b))]
}

type pathSegment struct {
	IsWildcard bool
	Value      string
}

// splitTemplate cuts the template into static parts and dynamic segments. A static part
// preceding a dynamic segment always ends with a slash, which is consumed by the lookup
// together with the static part. The slash following a dynamic segment is consumed by the
// dynamic segment itself, so it isn't included into the next static part.
func splitTemplate(str string) (result []pathSegment, err error) {
	for len(str) > 0 {
		brace := strings.IndexByte(str, '{')
		if brace == -1 {
			if strings.IndexByte(str, '}') != -1 {
				return nil, ErrBadTemplate
			}

			result = append(result, pathSegment{false, str})
			break
		}

		if brace > 0 && str[brace-1] != '/' {
			return nil, ErrBadTemplate
		}

		if brace > 0 {
			result = append(result, pathSegment{false, str[:brace]})
		}

		str = str[brace+1:]
		closing := strings.IndexByte(str, '}')
		if closing == -1 || strings.IndexByte(str[:closing], '/') != -1 {
			return nil, ErrBadTemplate
		}

		result = append(result, pathSegment{true, str[:closing]})
		str = str[closing+1:]

		if len(str) == 0 {
			break
		}

		if str[0] != '/' {
			return nil, ErrBadTemplate
		}

		str = str[1:]
	}

	return result, nil
}
