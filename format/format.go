// Package format renders a resolved HOCON tree to an external wire format.
// The Encoder interface mirrors the teacher's own format package shape
// (an encoding.TextMarshaler plus a domain-specific Encode method) with
// java.Class swapped for parser.Node.
package format

import (
	"encoding"

	"github.com/dhamidi/hocon/parser"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(root *parser.Node) error
}
