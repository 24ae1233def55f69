package parser

import "strings"

// Merge folds right over left per §4.3's table: two objects deep-merge
// recursively, anything else and right wins outright. It is the single
// algorithm used both to fold duplicate keys within one document and, by
// the merge package, to fold whole documents (and spliced includes) into
// one root.
func Merge(left, right *Node) *Node {
	return MergeAt(nil, left, right)
}

// MergeAt is Merge with the key path leading to left/right threaded
// through, so self-referencing substitutions (§4.4) can be recognized and
// given a snapshot of the value they're about to replace.
func MergeAt(path []string, left, right *Node) *Node {
	if left == nil {
		return right
	}
	if right == nil {
		return left
	}

	annotateSelfReference(path, left, right)

	if left.Kind == KindObject && right.Kind == KindObject {
		result := NewObject()
		for _, k := range left.Obj.Keys() {
			v, _ := left.Obj.Get(k)
			result.Set(k, v)
		}
		for _, k := range right.Obj.Keys() {
			rv, _ := right.Obj.Get(k)
			childPath := append(append([]string{}, path...), k)
			if lv, exists := result.Get(k); exists {
				result.Set(k, MergeAt(childPath, lv, rv))
			} else {
				result.Set(k, rv)
			}
		}
		return ObjectNode(right.Pos, result)
	}

	// Object overridden by non-object, or any non-object overridden by
	// anything: the right operand wins outright, left is discarded.
	return right
}

// annotateSelfReference scans the direct value position of right (and,
// if right is a deferred Concat, each of its top-level operands) for a
// Substitution referencing exactly path. Such references are the only
// ones a HOCON implementation recognizes as "self" (spec.md §4.4's
// a = ${a} [x] example): deeper occurrences inside nested objects or
// arrays refer to the merged root as usual, not to this assignment.
func annotateSelfReference(path []string, left, right *Node) {
	if len(path) == 0 {
		return
	}
	target := strings.Join(path, ".")

	var visit func(n *Node)
	visit = func(n *Node) {
		if n == nil {
			return
		}
		switch n.Kind {
		case KindSubstitution:
			if n.SubPath == target {
				n.SelfRefSnapshot = left.Clone()
			}
		case KindConcat:
			for _, part := range n.Elems {
				visit(part)
			}
		}
	}
	visit(right)
}
