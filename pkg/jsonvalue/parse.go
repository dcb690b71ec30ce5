package jsonvalue

import (
	"bytes"
	stderrors "errors"
	"io"
	"strings"

	"github.com/go-json-experiment/json/jsontext"

	"github.com/matzehuels/jsontree/pkg/errors"
)

// DefaultMaxDepth is the nesting limit applied when Options.MaxDepth is zero.
const DefaultMaxDepth = 1000

// Options configures Parse.
type Options struct {
	// MaxDepth bounds how deeply objects and arrays may nest. The root value
	// is depth 0. Zero means DefaultMaxDepth; negative disables the check.
	MaxDepth int
}

func (o Options) maxDepth() int {
	if o.MaxDepth == 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

// Parse decodes a single JSON document using default options.
func Parse(data []byte) (Value, error) {
	return ParseWithOptions(data, Options{})
}

// ParseString is Parse for string input.
func ParseString(s string) (Value, error) {
	return ParseWithOptions([]byte(s), Options{})
}

// ParseWithOptions decodes a single JSON document.
//
// Syntax errors, empty input and trailing data are reported as
// INVALID_JSON errors whose message reads "Invalid JSON: <detail>".
// Exceeding MaxDepth is reported as TOO_DEEP.
func ParseWithOptions(data []byte, opts Options) (Value, error) {
	p := &parser{
		dec:      jsontext.NewDecoder(bytes.NewReader(data), jsontext.AllowDuplicateNames(true)),
		maxDepth: opts.maxDepth(),
	}

	v, err := p.value(0)
	if err != nil {
		return Value{}, err
	}

	// Exactly one top-level value.
	if _, err := p.dec.ReadToken(); err == nil {
		return Value{}, invalid("unexpected data after top-level value")
	} else if err != io.EOF {
		return Value{}, syntaxError(err)
	}
	return v, nil
}

type parser struct {
	dec      *jsontext.Decoder
	maxDepth int
}

func (p *parser) value(depth int) (Value, error) {
	tok, err := p.dec.ReadToken()
	if err != nil {
		return Value{}, syntaxError(err)
	}

	switch tok.Kind() {
	case 'n':
		return Null(), nil
	case 't', 'f':
		return Bool(tok.Bool()), nil
	case '"':
		return String(tok.String()), nil
	case '0':
		return Number(tok.String()), nil
	case '[':
		if err := p.checkDepth(depth + 1); err != nil {
			return Value{}, err
		}
		var items []Value
		for p.dec.PeekKind() != ']' {
			item, err := p.value(depth + 1)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		if _, err := p.dec.ReadToken(); err != nil {
			return Value{}, syntaxError(err)
		}
		return Value{kind: KindArray, items: items}, nil
	case '{':
		if err := p.checkDepth(depth + 1); err != nil {
			return Value{}, err
		}
		obj := newObjectBuilder(0)
		for p.dec.PeekKind() != '}' {
			name, err := p.dec.ReadToken()
			if err != nil {
				return Value{}, syntaxError(err)
			}
			key := name.String()
			member, err := p.value(depth + 1)
			if err != nil {
				return Value{}, err
			}
			obj.set(key, member)
		}
		if _, err := p.dec.ReadToken(); err != nil {
			return Value{}, syntaxError(err)
		}
		return obj.value(), nil
	}
	return Value{}, invalid("unexpected token %s", tok.Kind())
}

func (p *parser) checkDepth(depth int) error {
	if p.maxDepth > 0 && depth > p.maxDepth {
		return errors.New(errors.ErrCodeTooDeep, "JSON is nested too deeply (max depth %d)", p.maxDepth)
	}
	return nil
}

func invalid(format string, args ...any) *errors.Error {
	e := errors.New(errors.ErrCodeInvalidJSON, format, args...)
	e.Message = "Invalid JSON: " + e.Message
	return e
}

func syntaxError(err error) error {
	if stderrors.Is(err, io.EOF) || stderrors.Is(err, io.ErrUnexpectedEOF) {
		return errors.Wrap(errors.ErrCodeInvalidJSON, err, "Invalid JSON: unexpected end of input")
	}
	detail := strings.TrimPrefix(err.Error(), "jsontext: ")
	return errors.Wrap(errors.ErrCodeInvalidJSON, err, "Invalid JSON: %s", detail)
}
