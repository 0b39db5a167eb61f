package encoding

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

type xmlConfig struct {
	root     string
	encoding string
}

// XMLOption configures XML.
type XMLOption func(*xmlConfig)

// WithRoot names the document element. Empty keeps "root".
func WithRoot(name string) XMLOption {
	return func(c *xmlConfig) {
		if name != "" {
			c.root = name
		}
	}
}

// WithEncoding sets the encoding declared in the XML header. Empty omits it.
func WithEncoding(enc string) XMLOption {
	return func(c *xmlConfig) {
		c.encoding = enc
	}
}

// XML encodes v under a document element. Mapping keys become elements,
// sequence elements are flattened into their parent (scalar elements are
// written as <item>), and scalars become escaped text.
func XML(v any, opts ...XMLOption) ([]byte, error) {
	cfg := xmlConfig{root: "root", encoding: "UTF-8"}
	for _, opt := range opts {
		opt(&cfg)
	}
	plain, err := expand(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if cfg.encoding != "" {
		fmt.Fprintf(&buf, "<?xml version=\"1.0\" encoding=\"%s\"?>\n", cfg.encoding)
	} else {
		buf.WriteString("<?xml version=\"1.0\"?>\n")
	}
	enc := xml.NewEncoder(&buf)
	start := xml.StartElement{Name: xml.Name{Local: cfg.root}}
	if err := enc.EncodeToken(start); err != nil {
		return nil, err
	}
	if err := writeXMLContent(enc, plain); err != nil {
		return nil, err
	}
	if err := enc.EncodeToken(start.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// expand resolves Serializer values while keeping ordered maps.
func expand(v any) (any, error) {
	if s, ok := v.(Serializer); ok {
		out, err := s.Serialize()
		if err != nil {
			return nil, err
		}
		return expand(out)
	}
	return v, nil
}

func writeXMLContent(enc *xml.Encoder, v any) error {
	v, err := expand(v)
	if err != nil {
		return err
	}
	if keys, vals, ok := entries(v); ok {
		for i, k := range keys {
			if err := writeXMLElement(enc, k, vals[i]); err != nil {
				return err
			}
		}
		return nil
	}
	if seq, ok := sequence(v); ok {
		for _, el := range seq {
			el, err := expand(el)
			if err != nil {
				return err
			}
			if isComposite(el) {
				if err := writeXMLContent(enc, el); err != nil {
					return err
				}
				continue
			}
			if err := writeXMLElement(enc, "item", el); err != nil {
				return err
			}
		}
		return nil
	}
	return enc.EncodeToken(xml.CharData(scalarText(v)))
}

func writeXMLElement(enc *xml.Encoder, name string, v any) error {
	start := xml.StartElement{Name: xml.Name{Local: name}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if err := writeXMLContent(enc, v); err != nil {
		return err
	}
	return enc.EncodeToken(start.End())
}

func isComposite(v any) bool {
	if _, _, ok := entries(v); ok {
		return true
	}
	_, ok := sequence(v)
	return ok
}

func scalarText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case bool:
		if t {
			return "1"
		}
		return ""
	case []byte:
		return string(t)
	}
	return fmt.Sprint(v)
}
