package jsonvalue

import (
	"strconv"
	"strings"
)

// Lookup resolves a path of the form "$", "$.key", "$[0]" or any
// concatenation such as "$.items[1].name" against root.
//
// Keys are written unescaped, so a key containing '.' or '[' makes a path
// ambiguous. Lookup tries every member whose key is a prefix of the remaining
// path and returns the first one that resolves completely.
func Lookup(root Value, path string) (Value, bool) {
	rest, ok := strings.CutPrefix(path, "$")
	if !ok {
		return Value{}, false
	}
	return lookup(root, rest)
}

func lookup(v Value, rest string) (Value, bool) {
	if rest == "" {
		return v, true
	}

	switch {
	case rest[0] == '[' && v.kind == KindArray:
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return Value{}, false
		}
		i, err := strconv.Atoi(rest[1:end])
		if err != nil || i < 0 || i >= len(v.items) {
			return Value{}, false
		}
		return lookup(v.items[i], rest[end+1:])

	case rest[0] == '.' && v.kind == KindObject:
		rest = rest[1:]
		for _, m := range v.members {
			if !strings.HasPrefix(rest, m.Key) {
				continue
			}
			if found, ok := lookup(m.Value, rest[len(m.Key):]); ok {
				return found, true
			}
		}
	}
	return Value{}, false
}
