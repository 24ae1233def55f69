package format

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/dhamidi/hocon/parser"
)

// JSONEncoder renders a fully resolved HOCON tree as canonical JSON. It
// walks *parser.Node directly instead of going through encoding/json on a
// map[string]any, because Go maps carry no order and the spec's object
// invariant (first-insertion order, §3) would otherwise be lost.
type JSONEncoder struct {
	w   io.Writer
	buf bytes.Buffer
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

// Encode writes root's canonical JSON rendering to the encoder's writer.
// root must already be free of KindSubstitution/KindConcat nodes; a
// KindBad node encountered mid-tree is reported as an error rather than
// silently skipped, since its presence means resolution did not fully
// succeed.
func (e *JSONEncoder) Encode(root *parser.Node) error {
	e.buf.Reset()
	if err := e.encodeNode(root); err != nil {
		return err
	}
	_, err := e.w.Write(e.buf.Bytes())
	return err
}

// MarshalText satisfies encoding.TextMarshaler using whatever was last
// passed to Encode.
func (e *JSONEncoder) MarshalText() ([]byte, error) {
	return append([]byte(nil), e.buf.Bytes()...), nil
}

func (e *JSONEncoder) encodeNode(n *parser.Node) error {
	if n == nil {
		e.buf.WriteString("null")
		return nil
	}
	switch n.Kind {
	case parser.KindNull:
		e.buf.WriteString("null")
	case parser.KindBool:
		if n.Bool {
			e.buf.WriteString("true")
		} else {
			e.buf.WriteString("false")
		}
	case parser.KindInt:
		e.buf.WriteString(strconv.FormatInt(n.Int, 10))
	case parser.KindFloat:
		e.buf.WriteString(strconv.FormatFloat(n.Float, 'g', -1, 64))
	case parser.KindString:
		e.encodeString(n.Str)
	case parser.KindArray:
		return e.encodeArray(n)
	case parser.KindObject:
		return e.encodeObject(n)
	default:
		return fmt.Errorf("cannot render unresolved %s node as JSON", n.Kind)
	}
	return nil
}

func (e *JSONEncoder) encodeArray(n *parser.Node) error {
	e.buf.WriteByte('[')
	for i, elem := range n.Elems {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		if err := e.encodeNode(elem); err != nil {
			return err
		}
	}
	e.buf.WriteByte(']')
	return nil
}

func (e *JSONEncoder) encodeObject(n *parser.Node) error {
	e.buf.WriteByte('{')
	for i, k := range n.Obj.Keys() {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		e.encodeString(k)
		e.buf.WriteByte(':')
		v, _ := n.Obj.Get(k)
		if err := e.encodeNode(v); err != nil {
			return err
		}
	}
	e.buf.WriteByte('}')
	return nil
}

func (e *JSONEncoder) encodeString(s string) {
	e.buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			e.buf.WriteString(`\"`)
		case '\\':
			e.buf.WriteString(`\\`)
		case '\n':
			e.buf.WriteString(`\n`)
		case '\t':
			e.buf.WriteString(`\t`)
		case '\r':
			e.buf.WriteString(`\r`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&e.buf, `\u%04x`, r)
			} else {
				e.buf.WriteRune(r)
			}
		}
	}
	e.buf.WriteByte('"')
}
