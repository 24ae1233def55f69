// Package merge folds the sequence of Intermediate Trees produced by
// loading multiple sources (load_str/load_file/load_url calls, §6) into a
// single root, applying the same deep-merge-with-override rule (§4.3) that
// the parser package already applies within one document for duplicate
// keys. Keeping the algorithm itself in parser.MergeAt and only
// orchestrating the multi-document fold here avoids a second copy of the
// merge table.
package merge

import "github.com/dhamidi/hocon/parser"

// Documents folds a sequence of parsed documents left-to-right: each later
// document overrides/extends the ones before it, exactly as if they had
// been concatenated and parsed as one (§4.3's "later declarations of the
// same key ... override or deep-merge earlier ones", generalized across
// source boundaries rather than just within one).
func Documents(docs ...*parser.Node) *parser.Node {
	var acc *parser.Node
	for _, d := range docs {
		acc = parser.Merge(acc, d)
	}
	return acc
}
