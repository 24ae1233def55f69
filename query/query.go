// Package query implements the Query/Deserialize Surface (§4.6): path
// indexing into a resolved tree, typed scalar accessors, unit-aware
// duration/size/period parsing, the array post-processor (§4.5, compacting
// variant), and a visitor for external record deserialization.
package query

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dhamidi/hocon/hocerr"
	"github.com/dhamidi/hocon/parser"
	"github.com/dhamidi/hocon/path"
)

// Value wraps a resolved parser.Node (or its absence) with the typed
// accessors the query surface exposes. A Value is never nil; a missing
// path yields a Value whose node is nil and whose typed accessors all
// report "none".
type Value struct {
	node *parser.Node
}

// Of wraps a resolved node for querying.
func Of(n *parser.Node) Value { return Value{node: n} }

// Get indexes into the value by a dotted path (a single segment is just a
// one-element path), returning the sentinel missing Value when any
// segment along the way doesn't exist.
func (v Value) Get(p string) Value {
	if v.node == nil {
		return Value{}
	}
	n, ok := find(v.node, path.Split(p))
	if !ok {
		return Value{}
	}
	return Value{node: n}
}

func find(root *parser.Node, p path.Path) (*parser.Node, bool) {
	cur := root
	for _, seg := range p {
		obj := asObject(cur)
		if obj == nil {
			return nil, false
		}
		v, ok := obj.Obj.Get(seg)
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// IsMissing reports whether the path this Value came from resolved to
// nothing.
func (v Value) IsMissing() bool { return v.node == nil }

func (v Value) IsBad() bool { return v.node != nil && v.node.Kind == parser.KindBad }

func (v Value) usable() *parser.Node {
	if v.node == nil || v.node.Kind == parser.KindBad {
		return nil
	}
	return v.node
}

// AsString returns the string value, or ("", false) if missing, bad, or
// not a string.
func (v Value) AsString() (string, bool) {
	n := v.usable()
	if n == nil || n.Kind != parser.KindString {
		return "", false
	}
	return n.Str, true
}

// AsInt returns the integer value, or (0, false) otherwise.
func (v Value) AsInt() (int64, bool) {
	n := v.usable()
	if n == nil {
		return 0, false
	}
	switch n.Kind {
	case parser.KindInt:
		return n.Int, true
	case parser.KindFloat:
		return int64(n.Float), true
	default:
		return 0, false
	}
}

// AsFloat returns the float value, or (0, false) otherwise.
func (v Value) AsFloat() (float64, bool) {
	n := v.usable()
	if n == nil {
		return 0, false
	}
	switch n.Kind {
	case parser.KindFloat:
		return n.Float, true
	case parser.KindInt:
		return float64(n.Int), true
	default:
		return 0, false
	}
}

// AsBool returns the boolean value, or (false, false) otherwise.
func (v Value) AsBool() (bool, bool) {
	n := v.usable()
	if n == nil || n.Kind != parser.KindBool {
		return false, false
	}
	return n.Bool, true
}

// AsArray returns the element values in order. If the underlying node is
// an object whose keys are all non-negative decimal integers, it is
// compacted into an array first (§4.5): keys sorted ascending, no gap
// padding.
func (v Value) AsArray() ([]Value, bool) {
	n := v.usable()
	if n == nil {
		return nil, false
	}
	switch n.Kind {
	case parser.KindArray:
		out := make([]Value, len(n.Elems))
		for i, e := range n.Elems {
			out[i] = Value{node: e}
		}
		return out, true
	case parser.KindObject:
		elems, ok := compactNumericObject(n)
		if !ok {
			return nil, false
		}
		out := make([]Value, len(elems))
		for i, e := range elems {
			out[i] = Value{node: e}
		}
		return out, true
	default:
		return nil, false
	}
}

func compactNumericObject(n *parser.Node) ([]*parser.Node, bool) {
	keys := n.Obj.Keys()
	if len(keys) == 0 {
		return nil, true
	}
	type indexed struct {
		idx int64
		val *parser.Node
	}
	items := make([]indexed, 0, len(keys))
	for _, k := range keys {
		idx, err := strconv.ParseInt(k, 10, 64)
		if err != nil || idx < 0 {
			return nil, false
		}
		v, _ := n.Obj.Get(k)
		items = append(items, indexed{idx: idx, val: v})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].idx < items[j].idx })
	out := make([]*parser.Node, len(items))
	for i, it := range items {
		out[i] = it.val
	}
	return out, true
}

// AsObject returns the Value as a key->Value map, in insertion order of
// the keys slice returned alongside it.
func (v Value) AsObject() (keys []string, get func(string) Value, ok bool) {
	obj := asObject(v.node)
	if obj == nil {
		return nil, nil, false
	}
	return obj.Obj.Keys(), func(k string) Value {
		n, found := obj.Obj.Get(k)
		if !found {
			return Value{}
		}
		return Value{node: n}
	}, true
}

func asObject(n *parser.Node) *parser.Node {
	if n == nil || n.Kind != parser.KindObject {
		return nil
	}
	return n
}

// durationUnits maps every recognized duration suffix, short and long, to
// its size in nanoseconds.
var durationUnits = map[string]time.Duration{
	"ns": time.Nanosecond, "nanosecond": time.Nanosecond, "nanoseconds": time.Nanosecond,
	"us": time.Microsecond, "microsecond": time.Microsecond, "microseconds": time.Microsecond,
	"ms": time.Millisecond, "millisecond": time.Millisecond, "milliseconds": time.Millisecond,
	"s": time.Second, "second": time.Second, "seconds": time.Second,
	"m": time.Minute, "minute": time.Minute, "minutes": time.Minute,
	"h": time.Hour, "hour": time.Hour, "hours": time.Hour,
	"d": 24 * time.Hour, "day": 24 * time.Hour, "days": 24 * time.Hour,
}

// AsDuration parses the stored string (or bare number, itself returned
// verbatim in nanoseconds) as a HOCON duration (§4.6).
func (v Value) AsDuration() (time.Duration, error) {
	s, unit, ok := v.numericWithUnit()
	if !ok {
		return 0, &hocerr.InvalidUnitError{Value: v.raw(), Expected: "duration"}
	}
	if unit == "" {
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, &hocerr.InvalidUnitError{Value: v.raw(), Expected: "duration"}
		}
		return time.Duration(n), nil
	}
	mult, ok := durationUnits[strings.ToLower(unit)]
	if !ok {
		return 0, &hocerr.InvalidUnitError{Value: v.raw(), Expected: "duration"}
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &hocerr.InvalidUnitError{Value: v.raw(), Expected: "duration"}
	}
	return time.Duration(n * float64(mult)), nil
}

// Period is a calendar-based span (§4.6), distinct from Duration because
// "month"/"year" have no fixed nanosecond length.
type Period struct {
	Days   int64
	Weeks  int64
	Months int64
	Years  int64
}

var periodUnits = map[string]string{
	"d": "d", "day": "d", "days": "d",
	"w": "w", "week": "w", "weeks": "w",
	"m": "m", "month": "m", "months": "m",
	"y": "y", "year": "y", "years": "y",
}

// AsPeriod parses the stored string as a HOCON period (§4.6).
func (v Value) AsPeriod() (Period, error) {
	s, unit, ok := v.numericWithUnit()
	if !ok || unit == "" {
		return Period{}, &hocerr.InvalidUnitError{Value: v.raw(), Expected: "period"}
	}
	kind, ok := periodUnits[strings.ToLower(unit)]
	if !ok {
		return Period{}, &hocerr.InvalidUnitError{Value: v.raw(), Expected: "period"}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Period{}, &hocerr.InvalidUnitError{Value: v.raw(), Expected: "period"}
	}
	switch kind {
	case "d":
		return Period{Days: n}, nil
	case "w":
		return Period{Weeks: n}, nil
	case "m":
		return Period{Months: n}, nil
	default:
		return Period{Years: n}, nil
	}
}

// sizeUnitsSI is 1000-based (B, kB, MB, ...); sizeUnitsIEC is 1024-based
// (KiB, MiB, ...), per §4.6. zb/yb (and the IEC units beyond eib) are
// omitted: both overflow int64 (a zettabyte alone is ~108x MaxInt64), so
// there is no value they could ever produce here.
var sizeUnitsSI = map[string]int64{
	"b": 1,
	"kb": 1_000, "mb": 1_000_000, "gb": 1_000_000_000,
	"tb": 1_000_000_000_000, "pb": 1_000_000_000_000_000,
	"eb": 1_000_000_000_000_000_000,
}

var sizeUnitsIEC = map[string]int64{
	"kib": 1 << 10, "mib": 1 << 20, "gib": 1 << 30,
	"tib": 1 << 40, "pib": 1 << 50, "eib": 1 << 60,
}

// AsSize parses the stored string as a byte count (§4.6).
func (v Value) AsSize() (int64, error) {
	s, unit, ok := v.numericWithUnit()
	if !ok {
		return 0, &hocerr.InvalidUnitError{Value: v.raw(), Expected: "size"}
	}
	if unit == "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, &hocerr.InvalidUnitError{Value: v.raw(), Expected: "size"}
		}
		return n, nil
	}
	lower := strings.ToLower(unit)
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &hocerr.InvalidUnitError{Value: v.raw(), Expected: "size"}
	}
	if mult, ok := sizeUnitsIEC[lower]; ok {
		return int64(n * float64(mult)), nil
	}
	if mult, ok := sizeUnitsSI[lower]; ok {
		return int64(n * float64(mult)), nil
	}
	return 0, &hocerr.InvalidUnitError{Value: v.raw(), Expected: "size"}
}

func (v Value) raw() string {
	n := v.usable()
	if n == nil {
		return ""
	}
	switch n.Kind {
	case parser.KindString:
		return n.Str
	case parser.KindInt:
		return strconv.FormatInt(n.Int, 10)
	case parser.KindFloat:
		return strconv.FormatFloat(n.Float, 'g', -1, 64)
	default:
		return ""
	}
}

// numericWithUnit splits the stored text into a leading numeric run and a
// trailing unit suffix (possibly empty, for a bare number).
func (v Value) numericWithUnit() (number, unit string, ok bool) {
	s := v.raw()
	if s == "" {
		return "", "", false
	}
	i := 0
	for i < len(s) && (s[i] == '-' || s[i] == '+' || s[i] == '.' || (s[i] >= '0' && s[i] <= '9')) {
		i++
	}
	if i == 0 {
		return "", "", false
	}
	number = strings.TrimSpace(s[:i])
	unit = strings.TrimSpace(s[i:])
	return number, unit, true
}
