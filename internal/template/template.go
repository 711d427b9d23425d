// Package template expands clipping and export name templates.
//
// A template is text with {field} placeholders, where field is one of a fixed
// set describing the source file, layer and selection (see Fields). Two
// extensions on top of plain placeholders are supported:
//
//   - {field:spec} applies a format spec of the form
//     [[fill]align][0][width][.precision][s|d];
//   - {field/old/new[/old/new...]} replaces literal text in the field value
//     before it is inserted. Replacements run left to right, each seeing the
//     result of the previous one, so {basename/foo/o/o/bar} turns "foobar"
//     into "obar" and then "barbar". A literal '/' or '}' inside old or new
//     is written as \/ or \}.
//
// Literal braces are written {{ and }}.
package template

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	ErrMalformedSubstitution = errors.New("malformed substitution")
	ErrTemplateSyntax        = errors.New("template syntax error")
	ErrUnknownField          = errors.New("unknown template field")
)

// substitution matches {field/body} specifiers; escaped characters in the
// body (\/ and \}) never terminate it.
var substitution = regexp.MustCompile(`\{([^/{}:!]+)/((?:[^}\\]|\\.)*)\}`)

// Expand expands tmpl against src. Errors never propagate: a broken template
// produces a visible placeholder name instead.
func Expand(src Source, tmpl string) string {
	out, err := ExpandStrict(src, tmpl)
	if err != nil {
		return fmt.Sprintf("Error expanding %q. Template may be invalid.", tmpl)
	}
	return out
}

// ExpandStrict is Expand but returns the error.
func ExpandStrict(src Source, tmpl string) (string, error) {
	// The selection bounds are only computed when a geometry field name
	// appears anywhere in the raw text.
	needGeometry := false
	for _, f := range Fields() {
		if f.geometry() && strings.Contains(tmpl, f.String()) {
			needGeometry = true
			break
		}
	}
	c := newContext(src, needGeometry)
	rewritten, err := preprocess(tmpl, c)
	if err != nil {
		return "", err
	}
	return format(rewritten, c)
}

// preprocess applies {field/old/new...} substitutions to the context and
// returns the template with each specifier reduced to {field}.
func preprocess(tmpl string, c *context) (string, error) {
	matches := substitution.FindAllStringSubmatchIndex(tmpl, -1)
	if matches == nil {
		return tmpl, nil
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		name := tmpl[m[2]:m[3]]
		body := tmpl[m[4]:m[5]]
		f, ok := ParseField(name)
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
		parts := splitUnescaped(body)
		if len(parts)%2 != 0 {
			return "", fmt.Errorf("%w: incomplete substitution in %q", ErrMalformedSubstitution, name+"/"+body)
		}
		for i := 0; i < len(parts); i += 2 {
			c.put(f, strings.ReplaceAll(c.get(f), parts[i], parts[i+1]))
		}
		b.WriteString(tmpl[last:m[0]])
		b.WriteString("{" + name + "}")
		last = m[1]
	}
	b.WriteString(tmpl[last:])
	return b.String(), nil
}

// splitUnescaped splits a substitution body on '/' characters that are not
// preceded by a backslash, then resolves \/ and \} escapes.
func splitUnescaped(body string) []string {
	var parts []string
	var cur strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '\\' && i+1 < len(body) && (body[i+1] == '/' || body[i+1] == '}') {
			cur.WriteByte(body[i+1])
			i++
			continue
		}
		if c == '/' {
			parts = append(parts, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(c)
	}
	return append(parts, cur.String())
}

// format substitutes {field} and {field:spec} placeholders.
func format(tmpl string, c *context) (string, error) {
	var b strings.Builder
	for i := 0; i < len(tmpl); i++ {
		ch := tmpl[i]
		switch ch {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexAny(tmpl[i+1:], "{}")
			if end < 0 || tmpl[i+1+end] != '}' {
				return "", fmt.Errorf("%w: unmatched '{' at offset %d", ErrTemplateSyntax, i)
			}
			v, err := replacement(tmpl[i+1:i+1+end], c)
			if err != nil {
				return "", err
			}
			b.WriteString(v)
			i += end + 1
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return "", fmt.Errorf("%w: single '}' at offset %d", ErrTemplateSyntax, i)
		default:
			b.WriteByte(ch)
		}
	}
	return b.String(), nil
}

func replacement(expr string, c *context) (string, error) {
	name, spec, _ := strings.Cut(expr, ":")
	if base, conv, ok := strings.Cut(name, "!"); ok {
		if conv != "s" {
			return "", fmt.Errorf("%w: unsupported conversion !%s", ErrTemplateSyntax, conv)
		}
		name = base
	}
	if name == "" {
		return "", fmt.Errorf("%w: placeholder without a field name", ErrTemplateSyntax)
	}
	f, ok := ParseField(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if !c.set[f] {
		return "", fmt.Errorf("%w: %q was not computed", ErrUnknownField, name)
	}
	return applySpec(c.get(f), spec, f.numeric())
}

// applySpec implements the [[fill]align][0][width][.precision][s|d] subset of
// format specs.
func applySpec(value, spec string, numeric bool) (string, error) {
	if spec == "" {
		return value, nil
	}
	fill, align := ' ', byte(0)
	rest := spec
	if r, size := utf8.DecodeRuneInString(rest); size < len(rest) && isAlign(rest[size]) {
		fill, align = r, rest[size]
		rest = rest[size+1:]
	} else if isAlign(rest[0]) {
		align = rest[0]
		rest = rest[1:]
	}
	if strings.HasPrefix(rest, "0") {
		if align == 0 {
			fill, align = '0', '='
		}
		rest = rest[1:]
	}
	width, rest := leadingInt(rest)
	precision := -1
	if strings.HasPrefix(rest, ".") {
		precision, rest = leadingInt(rest[1:])
		if precision < 0 {
			return "", fmt.Errorf("%w: missing precision in %q", ErrTemplateSyntax, spec)
		}
	}
	switch rest {
	case "", "s":
	case "d":
		if _, err := strconv.Atoi(value); err != nil {
			return "", fmt.Errorf("%w: %q is not an integer", ErrTemplateSyntax, value)
		}
		numeric = true
	default:
		return "", fmt.Errorf("%w: unsupported format spec %q", ErrTemplateSyntax, spec)
	}

	if precision >= 0 && !numeric && utf8.RuneCountInString(value) > precision {
		value = string([]rune(value)[:precision])
	}
	if align == 0 {
		align = '<'
		if numeric {
			align = '>'
		}
	}
	pad := width - utf8.RuneCountInString(value)
	if pad <= 0 {
		return value, nil
	}
	padding := strings.Repeat(string(fill), pad)
	switch align {
	case '>':
		return padding + value, nil
	case '^':
		left := strings.Repeat(string(fill), pad/2)
		right := strings.Repeat(string(fill), pad-pad/2)
		return left + value + right, nil
	case '=':
		if strings.HasPrefix(value, "-") {
			return "-" + padding + value[1:], nil
		}
		return padding + value, nil
	}
	return value + padding, nil
}

func isAlign(c byte) bool { return c == '<' || c == '>' || c == '^' || c == '=' }

// leadingInt parses a run of digits; it returns -1 when there are none.
func leadingInt(s string) (int, string) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return -1, s
	}
	n, _ := strconv.Atoi(s[:i])
	return n, s[i:]
}
