package format

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Style selects how elements are framed inside a stream.
type Style int

const (
	// Array is the aggregated default: every sample is an element of one
	// top-level collection.
	Array Style = iota
	// Grouped collects each pattern's samples under the pattern key. Only
	// JSON distinguishes it from Array.
	Grouped
	// Unit renders a single self-contained sample, one per file.
	Unit
)

// Position locates a sample inside its pattern and its stream.
type Position struct {
	Index int // sample index within the pattern
	Total int // samples drawn for the pattern
	Seq   int // element index within the whole stream
}

func (p Position) First() bool { return p.Index == 0 }
func (p Position) Last() bool  { return p.Index == p.Total-1 }

// Serializer renders the fragments of one format. Element returns the text to
// append for one sample, including any separator that precedes it.
type Serializer interface {
	Head(style Style) string
	Element(key, sample string, style Style, pos Position) (string, error)
	Tail(style Style) string
}

var serializers = map[Format]Serializer{
	JSON:  jsonSerializer{},
	XML:   xmlSerializer{},
	YAML:  yamlSerializer{},
	Plain: plainSerializer{},
}

// For returns the serializer for f, or an *UnsupportedFormatError.
func For(f Format) (Serializer, error) {
	s, ok := serializers[f]
	if !ok {
		return nil, &UnsupportedFormatError{Token: f.String()}
	}
	return s, nil
}

// Serialize renders sample produced by the named pattern.
func Serialize(f Format, style Style, name, sample string, pos Position) (string, error) {
	s, err := For(f)
	if err != nil {
		return "", err
	}
	return s.Element(SanitizeKey(name), sample, style, pos)
}

// Frame returns the text opening and closing a stream of format f. Unknown
// formats are framed as JSON.
func Frame(f Format, style Style) (head, tail string) {
	s, err := For(f)
	if err != nil {
		s = serializers[JSON]
	}
	return s.Head(style), s.Tail(style)
}

type jsonSerializer struct{}

func (jsonSerializer) Head(style Style) string {
	switch style {
	case Array:
		return "[\n"
	case Grouped:
		return "{\n"
	}
	return ""
}

func (jsonSerializer) Tail(style Style) string {
	switch style {
	case Array:
		return "\n]\n"
	case Grouped:
		return "\n}\n"
	}
	return ""
}

func (jsonSerializer) Element(key, sample string, style Style, pos Position) (string, error) {
	qk, err := jsonString(key)
	if err != nil {
		return "", err
	}
	qv, err := jsonString(sample)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	switch style {
	case Grouped:
		if pos.First() {
			if pos.Seq > 0 {
				b.WriteString(",\n")
			}
			b.WriteString("\t" + qk + ": [\n")
		} else {
			b.WriteString(",\n")
		}
		b.WriteString("\t\t" + qv)
		if pos.Last() {
			b.WriteString("\n\t]")
		}
	case Unit:
		b.WriteString("{" + qk + ":" + qv + "}\n")
	default:
		if pos.Seq > 0 {
			b.WriteString(",\n")
		}
		b.WriteString("\t{" + qk + ":" + qv + "}")
	}
	return b.String(), nil
}

// jsonString encodes s as a JSON string literal, leaving <, > and & as is.
func jsonString(s string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

const xmlDecl = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

type xmlSerializer struct{}

func (xmlSerializer) Head(style Style) string {
	if style == Unit {
		return ""
	}
	return xmlDecl + "<samples>\n"
}

func (xmlSerializer) Tail(style Style) string {
	if style == Unit {
		return ""
	}
	return "</samples>\n"
}

func (xmlSerializer) Element(key, sample string, style Style, _ Position) (string, error) {
	el := xmlElement(key, sample)
	if style == Unit {
		return el + "\n", nil
	}
	return "\t" + el + "\n", nil
}

var cdataTrigger = regexp.MustCompile(`[<>&]|--`)

// NeedsCDATA reports whether sample must be wrapped in a CDATA section.
func NeedsCDATA(sample string) bool {
	return cdataTrigger.MatchString(sample)
}

func xmlElement(key, sample string) string {
	key = xmlName(key)
	sample = xmlText(sample)
	if NeedsCDATA(sample) {
		// "]]>" would end the section early; split it across two sections.
		body := strings.ReplaceAll(sample, "]]>", "]]]]><![CDATA[>")
		return "<" + key + "><![CDATA[" + body + "]]></" + key + ">"
	}
	return "<" + key + ">" + sample + "</" + key + ">"
}

type yamlSerializer struct{}

func (yamlSerializer) Head(Style) string { return "" }
func (yamlSerializer) Tail(Style) string { return "" }

func (yamlSerializer) Element(key, sample string, style Style, _ Position) (string, error) {
	out, err := yaml.Marshal(map[string]string{key: sample})
	if err != nil {
		return "", err
	}
	if style == Unit {
		return string(out), nil
	}

	// Aggregated streams are a block sequence of single-key mappings.
	lines := strings.SplitAfter(string(out), "\n")
	var b strings.Builder
	for i, line := range lines {
		switch {
		case line == "":
		case i == 0:
			b.WriteString("- " + line)
		default:
			b.WriteString("  " + line)
		}
	}
	return b.String(), nil
}

type plainSerializer struct{}

func (plainSerializer) Head(Style) string { return "" }
func (plainSerializer) Tail(Style) string { return "" }

func (plainSerializer) Element(_, sample string, _ Style, _ Position) (string, error) {
	return sample + "\n", nil
}

// xmlName prefixes keys that start with a digit, which XML names cannot.
func xmlName(key string) string {
	if key != "" && key[0] >= '0' && key[0] <= '9' {
		return "_" + key
	}
	return key
}

// xmlText replaces runes outside the XML 1.0 character range with U+FFFD.
func xmlText(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
		case r >= 0x20 && r <= 0xd7ff:
		case r >= 0xe000 && r <= 0xfffd:
		case r >= 0x10000 && r <= 0x10ffff:
		default:
			return '\ufffd'
		}
		return r
	}, s)
}
