package jsonvalue

import (
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/jsontree/pkg/errors"
)

func TestParseKinds(t *testing.T) {
	tests := []struct {
		input string
		kind  Kind
		text  string
	}{
		{`null`, KindNull, ""},
		{`true`, KindBool, ""},
		{`42`, KindNumber, "42"},
		{`-1.50e3`, KindNumber, "-1.50e3"},
		{`"hi"`, KindString, "hi"},
		{`[]`, KindArray, ""},
		{`{}`, KindObject, ""},
		{"  \n{ }\t", KindObject, ""},
	}

	for _, tt := range tests {
		v, err := ParseString(tt.input)
		if err != nil {
			t.Fatalf("ParseString(%q): %v", tt.input, err)
		}
		if v.Kind() != tt.kind {
			t.Errorf("ParseString(%q).Kind() = %v, want %v", tt.input, v.Kind(), tt.kind)
		}
		if v.Text() != tt.text {
			t.Errorf("ParseString(%q).Text() = %q, want %q", tt.input, v.Text(), tt.text)
		}
	}
}

func TestParsePreservesMemberOrder(t *testing.T) {
	v, err := ParseString(`{"z": 1, "a": 2, "m": {"y": true, "b": null}}`)
	if err != nil {
		t.Fatal(err)
	}

	var keys []string
	for _, m := range v.Members() {
		keys = append(keys, m.Key)
	}
	if got := strings.Join(keys, ","); got != "z,a,m" {
		t.Errorf("member order = %s, want z,a,m", got)
	}

	inner, _ := v.Get("m")
	if inner.Members()[0].Key != "y" {
		t.Errorf("nested order lost: %v", inner.Members())
	}
}

func TestParseNestedObjectKeys(t *testing.T) {
	v, err := ParseString(`{"a-b":1,"a":{"b":2,"c":{"d":[{"e":null}]}}}`)
	if err != nil {
		t.Fatal(err)
	}

	members := v.Members()
	if len(members) != 2 || members[0].Key != "a-b" || members[1].Key != "a" {
		t.Fatalf("members = %v", members)
	}
	if members[0].Value.Text() != "1" {
		t.Errorf("a-b = %q, want 1", members[0].Value.Text())
	}

	b, ok := Lookup(v, "$.a.b")
	if !ok || b.Text() != "2" {
		t.Errorf("$.a.b = %v, %v", b, ok)
	}
	if e, ok := Lookup(v, "$.a.c.d[0].e"); !ok || !e.IsNull() {
		t.Errorf("$.a.c.d[0].e = %v, %v", e, ok)
	}
}

func TestParseDuplicateKeys(t *testing.T) {
	v, err := ParseString(`{"a": 1, "b": 2, "a": 3}`)
	if err != nil {
		t.Fatal(err)
	}
	members := v.Members()
	if len(members) != 2 {
		t.Fatalf("got %d members, want 2", len(members))
	}
	if members[0].Key != "a" || members[0].Value.Text() != "3" {
		t.Errorf("first member = %s:%s, want a:3", members[0].Key, members[0].Value.Text())
	}
	if members[1].Key != "b" {
		t.Errorf("second member = %s, want b", members[1].Key)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"trailing comma", `{"a": 1,}`},
		{"unquoted key", `{a: 1}`},
		{"truncated", `{"a": [1, 2`},
		{"trailing data", `{} {}`},
		{"trailing garbage", `[1] x`},
		{"comment", `// hi` + "\n" + `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.input)
			if err == nil {
				t.Fatalf("ParseString(%q) succeeded, want error", tt.input)
			}
			if !errors.Is(err, errors.ErrCodeInvalidJSON) {
				t.Errorf("code = %v, want INVALID_JSON", errors.GetCode(err))
			}
			if msg := errors.UserMessage(err); !strings.HasPrefix(msg, "Invalid JSON: ") {
				t.Errorf("message = %q, want Invalid JSON prefix", msg)
			}
		})
	}
}

func TestParseMaxDepth(t *testing.T) {
	deep := strings.Repeat("[", 20) + strings.Repeat("]", 20)

	if _, err := ParseWithOptions([]byte(deep), Options{MaxDepth: 20}); err != nil {
		t.Errorf("depth 20 with limit 20: %v", err)
	}

	_, err := ParseWithOptions([]byte(deep), Options{MaxDepth: 19})
	if !errors.Is(err, errors.ErrCodeTooDeep) {
		t.Errorf("depth 20 with limit 19: err = %v, want TOO_DEEP", err)
	}

	huge := strings.Repeat(`{"a":`, DefaultMaxDepth+1) + "1" + strings.Repeat("}", DefaultMaxDepth+1)
	if _, err := ParseString(huge); !errors.Is(err, errors.ErrCodeTooDeep) {
		t.Errorf("default limit: err = %v, want TOO_DEEP", err)
	}
}

func TestLookup(t *testing.T) {
	v, err := ParseString(`{"user": {"items": [{"name": "item1"}, {"name": "item2"}], "a.b": 7}}`)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"$.user.items[1].name", `"item2"`, true},
		{"$.user.items[0]", `{"name":"item1"}`, true},
		{"$.user.a.b", `7`, true},
		{"$", "", true},
		{"$.user.items[2]", "", false},
		{"$.user.missing", "", false},
		{"user", "", false},
		{"$[0]", "", false},
	}

	for _, tt := range tests {
		got, ok := Lookup(v, tt.path)
		if ok != tt.ok {
			t.Errorf("Lookup(%q) ok = %v, want %v", tt.path, ok, tt.ok)
			continue
		}
		if !ok || tt.want == "" {
			continue
		}
		data, _ := json.Marshal(got)
		if string(data) != tt.want {
			t.Errorf("Lookup(%q) = %s, want %s", tt.path, data, tt.want)
		}
	}
}

func TestMarshalJSONRoundTrip(t *testing.T) {
	input := `{"z":[1,2.50,{"k":null}],"a":"<tag>","t":true}`
	v, err := ParseString(input)
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	back, err := Parse(data)
	if err != nil {
		t.Fatalf("re-parse %s: %v", data, err)
	}
	if !Equal(v, back) {
		t.Errorf("round trip changed value: %s", data)
	}
	if !strings.HasPrefix(string(data), `{"z":[1,2.50,`) {
		t.Errorf("number literal or order not kept: %s", data)
	}
}

func TestUnmarshalJSONIgnoresDepthLimit(t *testing.T) {
	depth := DefaultMaxDepth + 50
	deep := strings.Repeat(`{"a":`, depth) + "1" + strings.Repeat("}", depth)

	var v Value
	if err := json.Unmarshal([]byte(deep), &v); err != nil {
		t.Fatalf("Unmarshal depth %d: %v", depth, err)
	}
	if got := v.Count(); got != depth+1 {
		t.Errorf("Count = %d, want %d", got, depth+1)
	}
}

func TestMarshalYAMLKeepsOrder(t *testing.T) {
	v := Object(
		Member{Key: "zeta", Value: Number("1")},
		Member{Key: "alpha", Value: String("true")},
	)
	data, err := yaml.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if strings.Index(out, "zeta") > strings.Index(out, "alpha") {
		t.Errorf("yaml member order lost:\n%s", out)
	}
	if !strings.Contains(out, `"true"`) {
		t.Errorf("string that looks like a bool should be quoted:\n%s", out)
	}
}

func TestCountAndPreview(t *testing.T) {
	v, _ := ParseString(`{"a": [1, 2], "b": "x"}`)
	if got := v.Count(); got != 5 {
		t.Errorf("Count() = %d, want 5", got)
	}
	if got := v.Preview(0); got != "{2 keys}" {
		t.Errorf("Preview() = %q", got)
	}
	items, _ := v.Get("a")
	if got := items.Preview(0); got != "[2 items]" {
		t.Errorf("Preview() = %q", got)
	}
	long := String(strings.Repeat("x", 50))
	if got := long.Preview(10); len([]rune(got)) != 10 || !strings.HasSuffix(got, "…") {
		t.Errorf("Preview(10) = %q", got)
	}
}

func TestObjectConstructorCollapsesDuplicates(t *testing.T) {
	v := Object(Member{"a", Number("1")}, Member{"a", Number("2")})
	if v.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", v.Len())
	}
	got, _ := v.Get("a")
	if got.Text() != "2" {
		t.Errorf("a = %s, want 2", got.Text())
	}
}
