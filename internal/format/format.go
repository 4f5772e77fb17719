// Package format serializes generated samples as JSON, XML, YAML or plain text.
package format

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Format is an output format.
type Format int

const (
	JSON Format = iota
	XML
	YAML
	Plain
)

var formatNames = map[Format]string{
	JSON:  "JSON",
	XML:   "XML",
	YAML:  "YAML",
	Plain: "PLAIN",
}

var formatExts = map[Format]string{
	JSON:  ".json",
	XML:   ".xml",
	YAML:  ".yaml",
	Plain: ".txt",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Ext returns the file extension for f, ".json" for unknown values.
func (f Format) Ext() string {
	if ext, ok := formatExts[f]; ok {
		return ext
	}
	return formatExts[JSON]
}

// UnsupportedFormatError reports a format token outside the recognized set.
type UnsupportedFormatError struct {
	Token string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format %q", e.Token)
}

// Parse resolves a case-insensitive format token. PLAIN, TEXT and FLAT are
// synonyms and an empty token means JSON. Unrecognized tokens resolve to JSON
// together with an *UnsupportedFormatError.
func Parse(token string) (Format, error) {
	switch strings.ToUpper(strings.TrimSpace(token)) {
	case "", "JSON":
		return JSON, nil
	case "XML":
		return XML, nil
	case "YAML":
		return YAML, nil
	case "PLAIN", "TEXT", "FLAT":
		return Plain, nil
	}
	return JSON, &UnsupportedFormatError{Token: token}
}

// ParseList parses comma-separated format lists, dropping duplicates while
// keeping first-seen order. The returned error joins every unsupported token;
// those tokens still contribute JSON to the list.
func ParseList(lists ...string) ([]Format, error) {
	var (
		out  []Format
		errs []error
		seen = map[Format]bool{}
	)
	for _, list := range lists {
		for _, token := range strings.Split(list, ",") {
			if strings.TrimSpace(token) == "" {
				continue
			}
			f, err := Parse(token)
			if err != nil {
				errs = append(errs, err)
			}
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	if len(out) == 0 {
		out = []Format{JSON}
	}
	return out, errors.Join(errs...)
}

var keyRun = regexp.MustCompile(`[a-zA-Z0-9]+`)

// SanitizeKey keeps only the alphanumeric runs of name, joined with "_".
// A name without any such run becomes "pattern".
func SanitizeKey(name string) string {
	runs := keyRun.FindAllString(name, -1)
	if len(runs) == 0 {
		return "pattern"
	}
	return strings.Join(runs, "_")
}
