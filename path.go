package controlpath

import (
	"regexp"
	"strings"

	"github.com/valyala/bytebufferpool"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// IndexToken replaces empty path segments.
const IndexToken = "index"

var unconformed = regexp.MustCompile(`^[0-9]+|[^A-Za-z0-9_.\-]`)

// Conform turns a raw path segment into an identifier usable as a handler
// type or member name. Leading digits and characters outside [A-Za-z0-9_.-]
// are dropped, then "-" and "." separated words are camel cased:
//
//	"page-one"  -> "pageOne"
//	"2nd.item"  -> "ndItem"
//	"_always"   -> "_always"
func Conform(token string) string {
	cleared := unconformed.ReplaceAllString(token, "")
	words := strings.FieldsFunc(cleared, func(r rune) bool {
		return r == '-' || r == '.'
	})
	if len(words) == 0 {
		return ""
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.SetString(words[0])
	if len(words) > 1 {
		// A Caser holds state, one per call.
		title := cases.Title(language.Und, cases.NoLower)
		for _, w := range words[1:] {
			buf.WriteString(title.String(w))
		}
	}
	return buf.String()
}

// splitPath drops one leading separator and splits the rest into segments,
// replacing empty segments with IndexToken. "/" and "" both yield ["index"].
func splitPath(path string) []string {
	path = strings.TrimPrefix(path, "/")
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if s == "" {
			segments[i] = IndexToken
		}
	}
	return segments
}

// normalizeContext makes sure a non-empty root context ends with "/".
func normalizeContext(context string) string {
	if context != "" && !strings.HasSuffix(context, "/") {
		return context + "/"
	}
	return context
}

// currentPath returns the directory of the parsed segments. It always ends
// with a separator unless the root context is empty.
func (d *Dispatcher) currentPath(parsed []string) string {
	if len(parsed) == 0 {
		return d.context
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.SetString(d.context)
	for _, token := range parsed {
		buf.WriteString(token)
		buf.WriteByte('/')
	}
	return buf.String()
}

// typePrefix returns the handler type name prefix for the parsed segments,
// e.g. "App.Control.section1.".
func (d *Dispatcher) typePrefix(parsed []string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.SetString(d.namespace)
	buf.WriteByte('.')
	for _, token := range parsed {
		if name := Conform(token); name != "" {
			buf.WriteString(name)
			buf.WriteByte('.')
		}
	}
	return buf.String()
}

func relativePath(parsed []string) string {
	return strings.Join(parsed, "/")
}
