package jsonvalue

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Kind identifies which JSON type a [Value] holds.
type Kind int

const (
	// KindNull is the JSON null literal. The zero Value is null.
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

var kindNames = [...]string{
	KindNull:   "null",
	KindBool:   "boolean",
	KindNumber: "number",
	KindString: "string",
	KindArray:  "array",
	KindObject: "object",
}

// String returns the JSON name of the kind ("object", "number", ...).
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Member is one key/value pair of a JSON object.
type Member struct {
	Key   string
	Value Value
}

// Value is a parsed JSON value.
//
// Values are immutable once built: accessors return copies of the member
// and item slices so callers cannot reorder the document underneath a graph.
type Value struct {
	kind    Kind
	boolean bool
	text    string // string contents, or the number literal as written
	items   []Value
	members []Member
}

// Null returns the JSON null value.
func Null() Value { return Value{} }

// Bool returns a JSON boolean.
func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

// Number returns a JSON number with the given literal text (e.g. "1.50").
// The literal is kept verbatim so large or precise numbers survive a round trip.
func Number(literal string) Value { return Value{kind: KindNumber, text: literal} }

// String returns a JSON string.
func String(s string) Value { return Value{kind: KindString, text: s} }

// Array returns a JSON array holding items in order.
func Array(items ...Value) Value {
	return Value{kind: KindArray, items: append([]Value{}, items...)}
}

// Object returns a JSON object with members in the given order.
// Duplicate keys are collapsed: the last value wins at the first key's position.
func Object(members ...Member) Value {
	b := newObjectBuilder(len(members))
	for _, m := range members {
		b.set(m.Key, m.Value)
	}
	return b.value()
}

// Kind reports the JSON type of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null literal.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsComposite reports whether v is an object or an array.
func (v Value) IsComposite() bool { return v.kind == KindObject || v.kind == KindArray }

// BoolValue returns the boolean held by v (false for non-booleans).
func (v Value) BoolValue() bool { return v.boolean }

// Text returns the string contents for strings and the literal for numbers.
// It returns "" for every other kind.
func (v Value) Text() string { return v.text }

// Len returns the number of members (objects) or items (arrays), 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindObject:
		return len(v.members)
	case KindArray:
		return len(v.items)
	}
	return 0
}

// Members returns a copy of the object's members in document order.
func (v Value) Members() []Member {
	if v.kind != KindObject {
		return nil
	}
	return append([]Member(nil), v.members...)
}

// Items returns a copy of the array's items in order.
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	return append([]Value(nil), v.items...)
}

// Get returns the member value for key.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Index returns the i-th array item.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindArray || i < 0 || i >= len(v.items) {
		return Value{}, false
	}
	return v.items[i], true
}

// Count returns the number of values in the tree rooted at v, v included.
func (v Value) Count() int {
	n := 1
	for _, it := range v.items {
		n += it.Count()
	}
	for _, m := range v.members {
		n += m.Value.Count()
	}
	return n
}

// Equal reports whether a and b hold the same JSON document, member order included.
// Numbers compare by literal text.
func Equal(a, b Value) bool {
	if a.kind != b.kind || a.boolean != b.boolean || a.text != b.text {
		return false
	}
	if len(a.items) != len(b.items) || len(a.members) != len(b.members) {
		return false
	}
	for i := range a.items {
		if !Equal(a.items[i], b.items[i]) {
			return false
		}
	}
	for i := range a.members {
		if a.members[i].Key != b.members[i].Key || !Equal(a.members[i].Value, b.members[i].Value) {
			return false
		}
	}
	return true
}

// Preview renders a short single-line description of v for labels:
// primitives as JSON text, composites as "{3 keys}" or "[2 items]".
// Output longer than max runes is cut with an ellipsis; max <= 0 disables cutting.
func (v Value) Preview(max int) string {
	var s string
	switch v.kind {
	case KindObject:
		s = plural(len(v.members), "key")
		s = "{" + s + "}"
	case KindArray:
		s = "[" + plural(len(v.items), "item") + "]"
	case KindString:
		data, _ := v.MarshalJSON()
		s = string(data)
	case KindNumber:
		s = v.text
	case KindBool:
		s = "false"
		if v.boolean {
			s = "true"
		}
	default:
		s = "null"
	}
	s = strings.ReplaceAll(s, "\n", " ")
	if max > 0 && utf8.RuneCountInString(s) > max {
		r := []rune(s)
		s = string(r[:max-1]) + "…"
	}
	return s
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// objectBuilder accumulates members with last-write-wins duplicate handling.
type objectBuilder struct {
	members []Member
	index   map[string]int
}

func newObjectBuilder(capacity int) *objectBuilder {
	return &objectBuilder{
		members: make([]Member, 0, capacity),
		index:   make(map[string]int, capacity),
	}
}

func (b *objectBuilder) set(key string, val Value) {
	if i, ok := b.index[key]; ok {
		b.members[i].Value = val
		return
	}
	b.index[key] = len(b.members)
	b.members = append(b.members, Member{Key: key, Value: val})
}

func (b *objectBuilder) value() Value {
	return Value{kind: KindObject, members: b.members}
}
