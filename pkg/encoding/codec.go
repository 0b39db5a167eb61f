// Package encoding turns representations into wire formats.
//
// Representations are made of scalars, ordered maps and sequences. Values
// implementing Serializer are expanded before encoding.
package encoding

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/fxamacker/cbor/v2"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned by Lookup for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown format")

// Serializer is a value that renders itself into plain data.
type Serializer interface {
	Serialize() (any, error)
}

// Codec encodes a representation.
type Codec interface {
	ContentType() string
	Marshal(v any) ([]byte, error)
}

// JSONCodec encodes JSON. Indent enables pretty printing.
type JSONCodec struct {
	Indent string
}

// ContentType implements Codec.
func (JSONCodec) ContentType() string { return "application/json" }

// Marshal implements Codec.
func (c JSONCodec) Marshal(v any) ([]byte, error) {
	if c.Indent != "" {
		return json.MarshalIndent(v, "", c.Indent)
	}
	return json.Marshal(v)
}

// YAMLCodec encodes YAML, keeping mapping order.
type YAMLCodec struct{}

// ContentType implements Codec.
func (YAMLCodec) ContentType() string { return "application/yaml" }

// Marshal implements Codec.
func (YAMLCodec) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

// XMLCodec encodes XML, see XML.
type XMLCodec struct {
	Root string
}

// ContentType implements Codec.
func (XMLCodec) ContentType() string { return "application/xml" }

// Marshal implements Codec.
func (c XMLCodec) Marshal(v any) ([]byte, error) {
	return XML(v, WithRoot(c.Root))
}

var cborMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// CBORCodec encodes Core Deterministic CBOR. Mapping keys are sorted by the
// encoder, so insertion order is not kept.
type CBORCodec struct{}

// ContentType implements Codec.
func (CBORCodec) ContentType() string { return "application/cbor" }

// Marshal implements Codec.
func (CBORCodec) Marshal(v any) ([]byte, error) {
	plain, err := Plain(v)
	if err != nil {
		return nil, err
	}
	return cborMode.Marshal(plain)
}

// Formats lists the names accepted by Lookup.
func Formats() []string {
	return []string{"cbor", "json", "xml", "yaml"}
}

// Lookup returns the codec for a format name. pretty indents JSON.
func Lookup(format string, pretty bool) (Codec, error) {
	switch strings.ToLower(format) {
	case "", "json":
		if pretty {
			return JSONCodec{Indent: "  "}, nil
		}
		return JSONCodec{}, nil
	case "yaml", "yml":
		return YAMLCodec{}, nil
	case "xml":
		return XMLCodec{}, nil
	case "cbor":
		return CBORCodec{}, nil
	}
	return nil, fmt.Errorf("%w %q (want one of %s)", ErrUnknownFormat, format, strings.Join(Formats(), ", "))
}

// Encode marshals v with the codec registered for format.
func Encode(format string, v any, pretty bool) ([]byte, error) {
	c, err := Lookup(format, pretty)
	if err != nil {
		return nil, err
	}
	return c.Marshal(v)
}

// Plain converts a representation into Go maps and slices: ordered maps
// become map[string]any and Serializer values are expanded.
func Plain(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case Serializer:
		s, err := t.Serialize()
		if err != nil {
			return nil, err
		}
		return Plain(s)
	case *orderedmap.OrderedMap[string, any]:
		if t == nil {
			return nil, nil
		}
		out := make(map[string]any, t.Len())
		for pair := t.Oldest(); pair != nil; pair = pair.Next() {
			pv, err := Plain(pair.Value)
			if err != nil {
				return nil, err
			}
			out[pair.Key] = pv
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, el := range t {
			pv, err := Plain(el)
			if err != nil {
				return nil, err
			}
			out[k] = pv
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			pv, err := Plain(el)
			if err != nil {
				return nil, err
			}
			out[i] = pv
		}
		return out, nil
	}
	return v, nil
}

// entries yields the key/value pairs of a mapping in a stable order:
// insertion order for ordered maps, sorted keys for Go maps.
func entries(v any) ([]string, []any, bool) {
	switch m := v.(type) {
	case *orderedmap.OrderedMap[string, any]:
		if m == nil {
			return nil, nil, true
		}
		keys := make([]string, 0, m.Len())
		vals := make([]any, 0, m.Len())
		for pair := m.Oldest(); pair != nil; pair = pair.Next() {
			keys = append(keys, pair.Key)
			vals = append(vals, pair.Value)
		}
		return keys, vals, true
	case map[string]any:
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		vals := make([]any, len(keys))
		for i, k := range keys {
			vals[i] = m[k]
		}
		return keys, vals, true
	}
	return nil, nil, false
}

func sequence(v any) ([]any, bool) {
	switch s := v.(type) {
	case nil, []byte, string:
		return nil, false
	case []any:
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
