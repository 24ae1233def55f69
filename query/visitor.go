package query

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/dhamidi/hocon/hocerr"
	"github.com/dhamidi/hocon/parser"
)

// Decode maps a resolved node onto target, a pointer to a struct, map,
// slice, or scalar. It walks the tree in lockstep with target's shape
// (§4.6's "visitor... emit tokens: begin-object/end-object,
// begin-sequence/end-sequence, key, and primitive leaves" — implemented
// directly via reflection rather than through an intermediate token
// stream, since Go's own reflect package already gives random-access
// shape information the visitor would otherwise have to buffer).
func Decode(node *parser.Node, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return &hocerr.DeserializeError{Path: "", Detail: "target must be a non-nil pointer"}
	}
	return decodeValue(node, "", rv.Elem())
}

func decodeValue(node *parser.Node, path string, dst reflect.Value) error {
	if node == nil {
		return &hocerr.DeserializeError{Path: path, Detail: "missing value"}
	}
	if node.Kind == parser.KindBad {
		detail := "unresolved value"
		if node.Bad != nil && node.Bad.Err != nil {
			detail = node.Bad.Err.Error()
		}
		return &hocerr.DeserializeError{Path: path, Detail: detail}
	}

	if dst.Kind() == reflect.Ptr {
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		return decodeValue(node, path, dst.Elem())
	}

	switch dst.Kind() {
	case reflect.Struct:
		return decodeStruct(node, path, dst)
	case reflect.Map:
		return decodeMap(node, path, dst)
	case reflect.Slice:
		return decodeSlice(node, path, dst)
	case reflect.String:
		s, ok := Of(node).AsString()
		if !ok {
			return &hocerr.DeserializeError{Path: path, Detail: "expected string"}
		}
		dst.SetString(s)
	case reflect.Bool:
		b, ok := Of(node).AsBool()
		if !ok {
			return &hocerr.DeserializeError{Path: path, Detail: "expected boolean"}
		}
		dst.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := Of(node).AsInt()
		if !ok {
			return &hocerr.DeserializeError{Path: path, Detail: "expected integer"}
		}
		dst.SetInt(n)
	case reflect.Float32, reflect.Float64:
		n, ok := Of(node).AsFloat()
		if !ok {
			return &hocerr.DeserializeError{Path: path, Detail: "expected number"}
		}
		dst.SetFloat(n)
	case reflect.Interface:
		dst.Set(reflect.ValueOf(nodeToAny(node)))
	default:
		return &hocerr.DeserializeError{Path: path, Detail: fmt.Sprintf("unsupported target kind %s", dst.Kind())}
	}
	return nil
}

func decodeStruct(node *parser.Node, path string, dst reflect.Value) error {
	if node.Kind != parser.KindObject {
		return &hocerr.DeserializeError{Path: path, Detail: "expected object"}
	}
	t := dst.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue // unexported
		}
		key := fieldKey(field)
		if key == "-" {
			continue
		}
		child, ok := node.Obj.Get(key)
		if !ok {
			continue
		}
		childPath := joinPath(path, key)
		if err := decodeValue(child, childPath, dst.Field(i)); err != nil {
			return err
		}
	}
	return nil
}

func fieldKey(f reflect.StructField) string {
	if tag, ok := f.Tag.Lookup("hocon"); ok {
		if name, _, _ := strings.Cut(tag, ","); name != "" {
			return name
		}
	}
	return strings.ToLower(f.Name)
}

func decodeMap(node *parser.Node, path string, dst reflect.Value) error {
	if node.Kind != parser.KindObject {
		return &hocerr.DeserializeError{Path: path, Detail: "expected object"}
	}
	elemType := dst.Type().Elem()
	m := reflect.MakeMapWithSize(dst.Type(), node.Obj.Len())
	for _, k := range node.Obj.Keys() {
		v, _ := node.Obj.Get(k)
		ev := reflect.New(elemType).Elem()
		if err := decodeValue(v, joinPath(path, k), ev); err != nil {
			return err
		}
		m.SetMapIndex(reflect.ValueOf(k), ev)
	}
	dst.Set(m)
	return nil
}

func decodeSlice(node *parser.Node, path string, dst reflect.Value) error {
	vals, ok := Of(node).AsArray()
	if !ok {
		return &hocerr.DeserializeError{Path: path, Detail: "expected array"}
	}
	s := reflect.MakeSlice(dst.Type(), len(vals), len(vals))
	for i, v := range vals {
		if err := decodeValue(v.node, fmt.Sprintf("%s[%d]", path, i), s.Index(i)); err != nil {
			return err
		}
	}
	dst.Set(s)
	return nil
}

func joinPath(base, seg string) string {
	if base == "" {
		return seg
	}
	return base + "." + seg
}

func nodeToAny(n *parser.Node) any {
	switch n.Kind {
	case parser.KindNull:
		return nil
	case parser.KindBool:
		return n.Bool
	case parser.KindInt:
		return n.Int
	case parser.KindFloat:
		return n.Float
	case parser.KindString:
		return n.Str
	case parser.KindArray:
		out := make([]any, len(n.Elems))
		for i, e := range n.Elems {
			out[i] = nodeToAny(e)
		}
		return out
	case parser.KindObject:
		out := make(map[string]any, n.Obj.Len())
		for _, k := range n.Obj.Keys() {
			v, _ := n.Obj.Get(k)
			out[k] = nodeToAny(v)
		}
		return out
	default:
		return nil
	}
}
