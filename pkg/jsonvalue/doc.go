// Package jsonvalue provides an order-preserving representation of parsed JSON.
//
// The encoding/json package decodes objects into Go maps, which forgets the
// order in which members appeared in the source text. The tree visualizer
// needs that order: node identifiers, sibling placement and the pre-order
// node list all follow the document. [Value] is a tagged union over the six
// JSON kinds that keeps object members as an ordered slice.
//
// # Parsing
//
//	v, err := jsonvalue.Parse([]byte(`{"user": {"name": "Ada"}}`))
//	if err != nil {
//	    // errors.Is(err, errors.ErrCodeInvalidJSON) or errors.ErrCodeTooDeep
//	}
//
// Parse reads exactly one JSON value (RFC 8259: no comments, no trailing
// commas) and rejects trailing data. Duplicate object keys collapse to the
// last value, kept at the position of the first occurrence. Nesting deeper
// than [Options.MaxDepth] is reported as a TOO_DEEP error instead of
// exhausting the stack.
//
// # Locating values
//
// [Lookup] resolves a JSON-path string such as "$.items[0].name" back to the
// value it names, which is how the graph's path labels are checked.
//
// # Encoding
//
// Value implements json.Marshaler, json.Unmarshaler and yaml.Marshaler, so
// graphs carrying values can be written as JSON or YAML without losing
// member order.
package jsonvalue
