package parser

import "github.com/dhamidi/hocon/hocerr"

// Kind discriminates the tagged union that is both the Intermediate Tree
// (while Substitution/Concat/Bad nodes may still be present) and, once the
// merger, resolver, and array post-processor have run, the fully resolved
// value tree (§3 of the spec: the same closed set of cases, two of which
// are guaranteed gone after resolution).
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
	KindSubstitution
	KindConcat
	KindBad
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Boolean"
	case KindInt:
		return "Integer"
	case KindFloat:
		return "Real"
	case KindString:
		return "String"
	case KindArray:
		return "Array"
	case KindObject:
		return "Object"
	case KindSubstitution:
		return "Substitution"
	case KindConcat:
		return "Concat"
	case KindBad:
		return "BadValue"
	default:
		return "Unknown"
	}
}

// Node is one value in the tree. Only the fields relevant to Kind are
// meaningful; the rest are zero. A single type serves both the
// Intermediate Tree and the resolved tree, exactly as spec.md describes
// IT as the Value union plus two extra transient variants.
type Node struct {
	Kind Kind
	Pos  Position

	Bool bool
	Int  int64
	// Str carries the String payload, and also the raw text of a number
	// literal that turned out to carry a unit suffix (kept as a string per
	// §4.1 "Number parsing": typed accessors interpret it later).
	Str   string
	Float float64

	Elems []*Node // Array elements, or Concat operands in source order
	// Gaps records, for a Concat node, whether operand i was separated
	// from operand i-1 by whitespace in source (Gaps[0] is always
	// meaningless). This is what lets string concatenation reconstruct
	// "1.2.3" with no inserted spaces while still rendering "foo ${bar}"
	// with one.
	Gaps []bool
	Obj  *Object // Object members

	SubPath     string // Substitution: dotted path text, not yet parsed
	SubOptional bool
	// SelfRefSnapshot, when set, is the pre-assignment value of the key
	// this substitution sits inside of (§4.4 self-reference). When the
	// resolver encounters it, it uses this value directly instead of
	// looking the path up in the merged root, which would just be the
	// value currently being computed.
	SelfRefSnapshot *Node

	Bad *BadInfo
}

// BadInfo is the payload of a KindBad node: an error that arose during
// parsing or resolution, captured instead of aborting (lenient mode only).
type BadInfo struct {
	ErrKind hocerr.Kind
	Err     error
}

func Null(pos Position) *Node  { return &Node{Kind: KindNull, Pos: pos} }
func Bool(pos Position, v bool) *Node {
	return &Node{Kind: KindBool, Pos: pos, Bool: v}
}
func Int(pos Position, v int64) *Node {
	return &Node{Kind: KindInt, Pos: pos, Int: v}
}
func Float(pos Position, v float64) *Node {
	return &Node{Kind: KindFloat, Pos: pos, Float: v}
}
func String(pos Position, v string) *Node {
	return &Node{Kind: KindString, Pos: pos, Str: v}
}
func Array(pos Position, elems []*Node) *Node {
	return &Node{Kind: KindArray, Pos: pos, Elems: elems}
}
func ObjectNode(pos Position, obj *Object) *Node {
	return &Node{Kind: KindObject, Pos: pos, Obj: obj}
}
func Substitution(pos Position, path string, optional bool) *Node {
	return &Node{Kind: KindSubstitution, Pos: pos, SubPath: path, SubOptional: optional}
}
func Concat(pos Position, parts []*Node) *Node {
	return &Node{Kind: KindConcat, Pos: pos, Elems: parts}
}

// ConcatWithGaps is Concat plus explicit adjacency information; see
// Node.Gaps.
func ConcatWithGaps(pos Position, parts []*Node, gaps []bool) *Node {
	return &Node{Kind: KindConcat, Pos: pos, Elems: parts, Gaps: gaps}
}
func Bad(pos Position, errKind hocerr.Kind, err error) *Node {
	return &Node{Kind: KindBad, Pos: pos, Bad: &BadInfo{ErrKind: errKind, Err: err}}
}

// IsValue reports whether the node is free of IT-only variants, i.e. it
// could appear in a resolved tree.
func (n *Node) IsValue() bool {
	return n.Kind != KindSubstitution && n.Kind != KindConcat
}

// Clone makes a deep, independent copy of the node. MergeAt uses this to
// snapshot a key's pre-assignment value for self-reference (§4.4), and the
// resolver uses it to work on a copy of the input tree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Elems != nil {
		c.Elems = make([]*Node, len(n.Elems))
		for i, e := range n.Elems {
			c.Elems[i] = e.Clone()
		}
	}
	if n.Gaps != nil {
		c.Gaps = append([]bool(nil), n.Gaps...)
	}
	if n.Obj != nil {
		c.Obj = n.Obj.Clone()
	}
	if n.SelfRefSnapshot != nil {
		c.SelfRefSnapshot = n.SelfRefSnapshot.Clone()
	}
	return &c
}

// Object is an insertion-ordered string-keyed mapping, per the invariant in
// §3 that object key order is first-insertion order and that later
// assignments update in place rather than moving to the end.
type Object struct {
	keys []string
	vals map[string]*Node
}

func NewObject() *Object {
	return &Object{vals: make(map[string]*Node)}
}

func (o *Object) Get(key string) (*Node, bool) {
	v, ok := o.vals[key]
	return v, ok
}

// Set inserts key if new, or updates it in place (preserving its original
// position) if it already exists.
func (o *Object) Set(key string, v *Node) {
	if _, exists := o.vals[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
}

func (o *Object) Delete(key string) {
	if _, exists := o.vals[key]; !exists {
		return
	}
	delete(o.vals, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

func (o *Object) Len() int { return len(o.keys) }

func (o *Object) Clone() *Object {
	c := NewObject()
	for _, k := range o.keys {
		c.Set(k, o.vals[k].Clone())
	}
	return c
}
