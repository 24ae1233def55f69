// Package properties implements §4.7's bridge: it reads a Java
// `.properties` file — ISO-8859-1 text, `#`/`!` comment lines, `\`-line
// continuations, `\uXXXX` escapes — and inflates its flat `a.b.c=v` keys
// into a nested parser.Node tree identical in shape to what the main
// grammar's dotted-key sugar produces, so it can feed the same merger as
// any other parsed source.
package properties

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/dhamidi/hocon/hocerr"
	"github.com/dhamidi/hocon/parser"
)

// Parse decodes ISO-8859-1-encoded .properties data and returns the
// inflated Intermediate Tree.
func Parse(data []byte, source string) (*parser.Node, error) {
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", source, err)
	}

	entries, err := scan(decoded)
	if err != nil {
		return nil, &hocerr.ParseError{Pos: hocerr.Position{Source: source}, Message: err.Error()}
	}

	root := parser.NewObject()
	for _, e := range entries {
		segs := strings.Split(e.key, ".")
		val := parser.String(hocerr.Position{Source: source, Line: e.line}, e.value)
		setPath(root, segs, val)
	}
	return parser.ObjectNode(hocerr.Position{Source: source}, root), nil
}

func setPath(obj *parser.Object, path []string, val *parser.Node) {
	if len(path) == 1 {
		existing, _ := obj.Get(path[0])
		obj.Set(path[0], parser.MergeAt(path, existing, val))
		return
	}
	key := path[0]
	child := parser.NewObject()
	setPath(child, path[1:], val)
	childNode := parser.ObjectNode(val.Pos, child)
	if existing, ok := obj.Get(key); ok {
		obj.Set(key, parser.MergeAt([]string{key}, existing, childNode))
	} else {
		obj.Set(key, childNode)
	}
}

type entry struct {
	key   string
	value string
	line  int
}

// scan implements the line-oriented grammar of java.util.Properties:
// leading whitespace is insignificant, '#' or '!' starts a comment,
// a line ending in an odd number of backslashes continues onto the next
// physical line, and the first unescaped '='/':'/whitespace run
// separates key from value.
func scan(data []byte) ([]entry, error) {
	var entries []entry
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		raw := sc.Text()

		for {
			trailing := 0
			for trailing < len(raw) && raw[len(raw)-1-trailing] == '\\' {
				trailing++
			}
			if trailing%2 == 0 || !sc.Scan() {
				break
			}
			lineNo++
			raw = raw[:len(raw)-1] + strings.TrimLeft(sc.Text(), " \t")
		}

		line := strings.TrimLeft(raw, " \t\f")
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}

		key, value := splitKeyValue(line)
		entries = append(entries, entry{key: unescape(key), value: unescape(value), line: lineNo})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// splitKeyValue finds the first unescaped separator: '=', ':', or
// whitespace, per the Properties format.
func splitKeyValue(line string) (key, value string) {
	var keyEnd int
	escaped := false
	for i, r := range line {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			escaped = true
		case '=', ':', ' ', '\t':
			keyEnd = i
			rest := strings.TrimLeft(line[i:], " \t")
			if len(rest) > 0 && (rest[0] == '=' || rest[0] == ':') {
				rest = strings.TrimLeft(rest[1:], " \t")
			}
			return line[:keyEnd], rest
		}
	}
	return line, ""
}

func unescape(s string) string {
	var sb strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '\\' || i == len(runes)-1 {
			sb.WriteRune(runes[i])
			continue
		}
		i++
		switch runes[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 'f':
			sb.WriteByte('\f')
		case 'u':
			if i+4 < len(runes) {
				var v rune
				valid := true
				for _, c := range runes[i+1 : i+5] {
					v <<= 4
					switch {
					case c >= '0' && c <= '9':
						v |= c - '0'
					case c >= 'a' && c <= 'f':
						v |= c - 'a' + 10
					case c >= 'A' && c <= 'F':
						v |= c - 'A' + 10
					default:
						valid = false
					}
				}
				if valid {
					sb.WriteRune(v)
					i += 4
					continue
				}
			}
			sb.WriteRune(runes[i])
		default:
			sb.WriteRune(runes[i])
		}
	}
	return sb.String()
}
