// Package path splits and joins the dotted path expressions used both for
// substitution references (${a.b.c}) and for the query surface's bracketed
// access (doc["a.b.c"]). It is deliberately independent of the parser
// package's token-based key-path parsing: by the time a path reaches here
// it is already plain text, either typed by a caller of the query surface
// or carried as a Substitution node's SubPath.
package path

import "strings"

// Path is a parsed, dot-separated sequence of segments.
type Path []string

// Split parses s into a Path. A segment may be double-quoted, in which
// case it may itself contain literal dots; outside quotes, '.' always
// separates segments. This mirrors the parser package's key-path grammar
// but operates on a plain string instead of a token stream.
func Split(s string) Path {
	if s == "" {
		return nil
	}
	var segs []string
	var cur strings.Builder
	inQuotes := false
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == '\\' && inQuotes && i+1 < len(runes):
			i++
			cur.WriteRune(runes[i])
		case r == '.' && !inQuotes:
			segs = append(segs, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	segs = append(segs, cur.String())
	return segs
}

// Join renders a Path back into dotted-path text, quoting any segment that
// itself contains a dot so it round-trips through Split.
func Join(p Path) string {
	parts := make([]string, len(p))
	for i, seg := range p {
		if strings.ContainsRune(seg, '.') {
			parts[i] = `"` + strings.ReplaceAll(seg, `"`, `\"`) + `"`
		} else {
			parts[i] = seg
		}
	}
	return strings.Join(parts, ".")
}

// String renders the path using Join.
func (p Path) String() string { return Join(p) }

// Head returns the first segment and the remaining path.
func (p Path) Head() (string, Path) {
	if len(p) == 0 {
		return "", nil
	}
	return p[0], p[1:]
}

// Empty reports whether the path has no segments.
func (p Path) Empty() bool { return len(p) == 0 }
