// Package resolve implements the Substitution Resolver: it walks a merged
// Intermediate Tree, replacing every Substitution and Concat node with a
// plain value, iterating to a fixed point the way the teacher's dependency
// resolver iterates requirements to a mediated version (pom/resolver.go's
// resolveTransitive + mediateVersions split into a discovery pass and a
// settling pass). Here the two passes are folded into one worklist loop,
// since unlike Maven coordinates a substitution's inputs are themselves
// other substitutions that may still be pending.
package resolve

import (
	"os"
	"strconv"
	"strings"

	"github.com/dhamidi/hocon/hocerr"
	"github.com/dhamidi/hocon/parser"
	"github.com/dhamidi/hocon/path"
)

// Option configures a Resolver.
type Option func(*Resolver)

// WithSystemEnvironment controls whether unresolved substitutions fall
// back to the process environment (§6 use_system, default true).
func WithSystemEnvironment(enabled bool) Option {
	return func(r *Resolver) { r.useSystem = enabled }
}

// WithEnvironment supplies a name->value map consulted as a lower-priority
// fallback than the tree itself but independent of the real process
// environment (useful for tests and for embedding callers that want
// deterministic substitution without mutating os.Environ).
func WithEnvironment(env map[string]string) Option {
	return func(r *Resolver) { r.environment = env }
}

func WithMode(mode parser.Mode) Option {
	return func(r *Resolver) { r.mode = mode }
}

type Resolver struct {
	useSystem   bool
	environment map[string]string
	mode        parser.Mode
}

func New(opts ...Option) *Resolver {
	r := &Resolver{useSystem: true, mode: parser.ModeLenient}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve replaces every Substitution/Concat in root with a plain value,
// against root itself as the lookup scope (§4.4). It mutates a clone of
// root and returns that clone; the input is left untouched.
func (r *Resolver) Resolve(root *parser.Node) (*parser.Node, error) {
	work := root.Clone()

	const maxRounds = 1000 // generous upper bound; a real cycle is caught well before this
	for round := 0; round < maxRounds; round++ {
		progressed, pending, err := r.pass(work, work)
		if err != nil {
			return nil, err
		}
		if len(pending) == 0 {
			return work, nil
		}
		if !progressed {
			return r.fail(work, pending)
		}
	}
	return r.fail(work, nil)
}

// fail reports the substitutions that could never be resolved, either as
// a hard error (strict) or by embedding a BadValue at each cycle
// participant still left in IT shape (lenient). pending may be nil when
// the round budget itself was exhausted; it only feeds the error's Paths.
// In lenient mode every remaining Substitution/Concat in the tree is
// swept up, whether or not its path is named in pending.
func (r *Resolver) fail(work *parser.Node, pending []string) (*parser.Node, error) {
	cycleErr := &hocerr.SubstitutionCycleError{Paths: pending}
	if r.mode == parser.ModeStrict {
		return nil, cycleErr
	}
	embedUnresolvedAsCycle(work, cycleErr)
	return work, nil
}

// embedUnresolvedAsCycle replaces every Substitution/Concat node still
// reachable from node with a BadValue carrying cycleErr. §3's invariant
// that no Substitution/Concat node survives resolution is stated
// unconditionally, not scoped to strict mode, so lenient mode must not
// hand back a tree that still contains them.
func embedUnresolvedAsCycle(node *parser.Node, cycleErr *hocerr.SubstitutionCycleError) {
	switch node.Kind {
	case parser.KindObject:
		for _, k := range node.Obj.Keys() {
			v, _ := node.Obj.Get(k)
			if v.Kind == parser.KindSubstitution || v.Kind == parser.KindConcat {
				node.Obj.Set(k, parser.Bad(v.Pos, hocerr.KindSubstitutionCycle, cycleErr))
				continue
			}
			embedUnresolvedAsCycle(v, cycleErr)
		}
	case parser.KindArray:
		for i, elem := range node.Elems {
			if elem.Kind == parser.KindSubstitution || elem.Kind == parser.KindConcat {
				node.Elems[i] = parser.Bad(elem.Pos, hocerr.KindSubstitutionCycle, cycleErr)
				continue
			}
			embedUnresolvedAsCycle(elem, cycleErr)
		}
	}
}

// pass makes one sweep over the tree, attempting to resolve every
// Substitution/Concat it finds against root. It returns whether any node
// changed state this sweep (so the caller can detect a stalled fixed
// point) and the dotted paths of substitutions still pending.
func (r *Resolver) pass(root, node *parser.Node) (progressed bool, pending []string, err error) {
	switch node.Kind {
	case parser.KindObject:
		for _, k := range node.Obj.Keys() {
			v, _ := node.Obj.Get(k)
			resolved, changed, absent, pend, e := r.resolveValue(root, v)
			if e != nil {
				return progressed, pending, e
			}
			switch {
			case absent:
				// A sole ${?missing} value: the member itself vanishes
				// rather than becoming null (Invariant 6).
				node.Obj.Delete(k)
				progressed = true
			case changed:
				node.Obj.Set(k, resolved)
				progressed = true
			}
			pending = append(pending, pend...)
		}
	case parser.KindArray:
		var kept []*parser.Node
		for _, elem := range node.Elems {
			resolved, changed, absent, pend, e := r.resolveValue(root, elem)
			if e != nil {
				return progressed, pending, e
			}
			switch {
			case absent:
				progressed = true
			case changed:
				kept = append(kept, resolved)
				progressed = true
			default:
				kept = append(kept, elem)
			}
			pending = append(pending, pend...)
		}
		node.Elems = kept
	}
	return progressed, pending, nil
}

// resolveValue resolves node itself if it is a Substitution or Concat,
// then recurses into its children regardless (an Object/Array produced by
// a substitution still needs its own contents resolved). absent is true
// only for an unresolved optional substitution standing alone (not inside
// a Concat), meaning the caller should drop it entirely rather than keep
// any value.
func (r *Resolver) resolveValue(root, node *parser.Node) (result *parser.Node, changed bool, absent bool, pending []string, err error) {
	switch node.Kind {
	case parser.KindSubstitution:
		val, ok, blocked, pend := r.lookup(root, node, node)
		if ok {
			return val, true, false, nil, nil
		}
		if blocked {
			// Points at another not-yet-resolved substitution; may still
			// resolve in a later round, or turn out to be a cycle.
			return node, false, false, pend, nil
		}
		if node.SubOptional {
			return nil, false, true, nil, nil
		}
		// Required and not found anywhere (tree, environment map, process
		// environment): this can never change in a later round, so report
		// it now rather than waiting for the round budget to exhaust and
		// misreporting it as a cycle.
		mkErr := &hocerr.MissingKeyError{Path: node.SubPath}
		if r.mode == parser.ModeStrict {
			return node, false, false, nil, mkErr
		}
		return parser.Bad(node.Pos, hocerr.KindMissingKey, mkErr), true, false, nil, nil

	case parser.KindConcat:
		v, changed, pend, e := r.resolveConcat(root, node)
		return v, changed, false, pend, e

	default:
		sub, pend, e := r.pass(root, node)
		if e != nil {
			return node, false, false, nil, e
		}
		return node, sub, false, pend, nil
	}
}

// lookup resolves a single Substitution against root (or, for a
// self-reference, against its pre-merge snapshot — §4.4), falling back to
// the environment map and then the process environment (§6 use_system,
// Invariant 7) when use_system is enabled. blocked distinguishes "the path
// exists but currently points at another unresolved substitution/concat"
// (may still resolve in a later round) from "the path doesn't exist
// anywhere" (never will, regardless of how many more rounds run).
//
// self is the node currently being resolved that contains sub (the bare
// Substitution itself, or the enclosing Concat for an operand inside one).
// When sub's path resolves to that very node — `k += v` with no earlier
// `k = ...`, or a bare `k = ${k}` with nothing preceding it — there is no
// prior binding for MergeAt to have snapshotted (annotateSelfReference only
// runs when a previous value already exists), so what find() reports back
// is just sub's own not-yet-resolved container, not a separate dependency.
// That can never produce a value in a later round, so it's reported as
// not-found rather than blocked. Pass nil when no such self-containment is
// possible (e.g. there is no enclosing node to compare against).
func (r *Resolver) lookup(root, sub, self *parser.Node) (val *parser.Node, found bool, blocked bool, pending []string) {
	if sub.SelfRefSnapshot != nil {
		return sub.SelfRefSnapshot, true, false, nil
	}

	if v, ok := find(root, path.Split(sub.SubPath)); ok {
		if v == self {
			return nil, false, false, nil
		}
		if v.Kind == parser.KindSubstitution || v.Kind == parser.KindConcat {
			return nil, false, true, []string{sub.SubPath}
		}
		return v, true, false, nil
	}

	if v, ok := r.environment[sub.SubPath]; ok {
		return parser.String(sub.Pos, v), true, false, nil
	}
	if r.useSystem {
		if v, ok := os.LookupEnv(sub.SubPath); ok {
			return parser.String(sub.Pos, v), true, false, nil
		}
	}

	return nil, false, false, nil
}

func find(root *parser.Node, p path.Path) (*parser.Node, bool) {
	cur := root
	for _, seg := range p {
		if cur.Kind != parser.KindObject {
			return nil, false
		}
		v, ok := cur.Obj.Get(seg)
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// resolveConcat combines the operands of a Concat node (§4.1): string
// concatenation joins with a single space between operands that were
// separated by whitespace in source and nothing between operands that were
// adjacent (the parser records this per operand in Node.Gaps, and a
// dropped optional operand passes its gap on to the next survivor);
// object concatenation deep-merges; array concatenation appends.
func (r *Resolver) resolveConcat(root, node *parser.Node) (*parser.Node, bool, []string, error) {
	var resolvedParts []*parser.Node
	var resolvedGaps []bool
	var pending []string
	allResolved := true
	pendingGap := false // accumulates whether any space separated a dropped run from the next survivor

	gapBefore := func(i int) bool {
		if node.Gaps == nil || i >= len(node.Gaps) {
			return false
		}
		return node.Gaps[i]
	}

	for i, part := range node.Elems {
		gap := pendingGap || gapBefore(i)

		if part.Kind == parser.KindSubstitution && part.SubOptional {
			val, ok, _, pend := r.lookup(root, part, node)
			if !ok {
				pending = append(pending, pend...)
				if len(pend) > 0 {
					allResolved = false
				}
				pendingGap = gap // optional substitution with no value drops from the concat (Invariant 6)
				continue
			}
			resolvedParts = append(resolvedParts, val)
			resolvedGaps = append(resolvedGaps, len(resolvedParts) > 1 && gap)
			pendingGap = false
			continue
		}

		resolved, pend, err := r.resolveConcatPart(root, part, node)
		if err != nil {
			return node, false, nil, err
		}
		if resolved != nil && resolved.Kind == parser.KindBad {
			// A required substitution inside this concat is missing for
			// good; the whole concat becomes that BadValue (lenient mode
			// only — strict mode already returned via err above).
			return resolved, true, nil, nil
		}
		if resolved == nil {
			allResolved = false
			pending = append(pending, pend...)
			pendingGap = gap
			continue
		}
		resolvedParts = append(resolvedParts, resolved)
		resolvedGaps = append(resolvedGaps, len(resolvedParts) > 1 && gap)
		pendingGap = false
	}

	if !allResolved {
		return node, false, pending, nil
	}

	combined, err := combine(node.Pos, resolvedParts, resolvedGaps)
	if err != nil {
		if ice, ok := err.(*hocerr.IncompatibleConcatError); ok {
			return parser.Bad(node.Pos, hocerr.KindIncompatibleConcat, ice), true, nil, nil
		}
		return node, false, nil, err
	}
	return combined, true, nil, nil
}

// resolveConcatPart resolves one non-optional-substitution operand of a
// Concat to a plain value, or reports nil with the paths still blocking it.
// self is the enclosing Concat, passed through to lookup for the
// self-containment check (see lookup's doc comment).
func (r *Resolver) resolveConcatPart(root, part, self *parser.Node) (*parser.Node, []string, error) {
	switch part.Kind {
	case parser.KindSubstitution:
		val, ok, blocked, pend := r.lookup(root, part, self)
		if ok {
			return val, nil, nil
		}
		if blocked {
			return nil, pend, nil
		}
		mkErr := &hocerr.MissingKeyError{Path: part.SubPath}
		if r.mode == parser.ModeStrict {
			return nil, nil, mkErr
		}
		return parser.Bad(part.Pos, hocerr.KindMissingKey, mkErr), nil, nil
	case parser.KindConcat:
		v, changed, pend, err := r.resolveConcat(root, part)
		if err != nil {
			return nil, nil, err
		}
		if !changed {
			return nil, pend, nil
		}
		return v, nil, nil
	default:
		if _, pend, err := r.pass(root, part); err != nil {
			return nil, nil, err
		} else if len(pend) > 0 {
			return nil, pend, nil
		}
		return part, nil, nil
	}
}

// combine implements the per-pair concatenation rule: two objects merge,
// two arrays append, and otherwise the parts render as strings and join,
// inserting a space only where gaps[i] records that source whitespace
// actually separated operand i from its predecessor — this is what lets
// "1.2.3" reconstruct with no inserted spaces while "foo ${bar}" keeps its
// one.
func combine(pos parser.Position, parts []*parser.Node, gaps []bool) (*parser.Node, error) {
	if len(parts) == 0 {
		return parser.Null(pos), nil
	}
	if len(parts) == 1 {
		return parts[0], nil
	}

	if parts[0].Kind == parser.KindObject {
		acc := parts[0]
		for _, p := range parts[1:] {
			if p.Kind != parser.KindObject {
				return nil, &hocerr.IncompatibleConcatError{Left: acc.Kind.String(), Right: p.Kind.String()}
			}
			acc = parser.MergeAt(nil, acc, p)
		}
		return acc, nil
	}

	if parts[0].Kind == parser.KindArray {
		var elems []*parser.Node
		for _, p := range parts {
			if p.Kind != parser.KindArray {
				return nil, &hocerr.IncompatibleConcatError{Left: parser.KindArray.String(), Right: p.Kind.String()}
			}
			elems = append(elems, p.Elems...)
		}
		return parser.Array(pos, elems), nil
	}

	var sb strings.Builder
	for i, p := range parts {
		if p.Kind == parser.KindObject || p.Kind == parser.KindArray {
			return nil, &hocerr.IncompatibleConcatError{Left: "scalar", Right: p.Kind.String()}
		}
		if i > 0 && i < len(gaps) && gaps[i] {
			sb.WriteByte(' ')
		}
		sb.WriteString(stringify(p))
	}
	return parser.String(pos, sb.String()), nil
}

func stringify(n *parser.Node) string {
	switch n.Kind {
	case parser.KindString:
		return n.Str
	case parser.KindInt:
		return strconv.FormatInt(n.Int, 10)
	case parser.KindFloat:
		return strconv.FormatFloat(n.Float, 'g', -1, 64)
	case parser.KindBool:
		if n.Bool {
			return "true"
		}
		return "false"
	case parser.KindNull:
		return "null"
	default:
		return ""
	}
}
