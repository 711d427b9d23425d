package rules

import (
	"fmt"
	"regexp"
	"strings"
)

// Literal builds a rule that replaces the text find with the text
// replacement, both taken verbatim.
func Literal(find, replacement string) Rule {
	return Rule{
		Pattern:     regexp.QuoteMeta(find),
		Replacement: strings.ReplaceAll(replacement, `\`, `\\`),
	}
}

// Compile builds the regular expression for rule.
//
// Patterns and replacements use the Python re notation the config file was
// designed around; they are translated to RE2 here. The L, U and A flags have
// no RE2 counterpart and are accepted without effect.
func (r Rule) Compile() (*regexp.Regexp, error) {
	pattern := r.Pattern
	if r.Flags&FlagVerbose != 0 {
		pattern = stripVerbose(pattern)
	}
	var inline string
	if r.Flags&FlagIgnoreCase != 0 {
		inline += "i"
	}
	if r.Flags&FlagMultiline != 0 {
		inline += "m"
	}
	if r.Flags&FlagDotAll != 0 {
		inline += "s"
	}
	if inline != "" {
		pattern = "(?" + inline + ")" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", r.Pattern, err)
	}
	return re, nil
}

// Apply runs each rule over text in list order, replacing all
// non-overlapping matches. Callers sort the list beforehand.
func Apply(text string, list []Named) (string, error) {
	out := text
	for _, n := range list {
		var err error
		out, err = n.Rule.Replace(out)
		if err != nil {
			return text, fmt.Errorf("rule %s: %w", n.Key, err)
		}
	}
	return out, nil
}

// Replace applies a single rule to text.
func (r Rule) Replace(text string) (string, error) {
	re, err := r.Compile()
	if err != nil {
		return text, err
	}
	return re.ReplaceAllString(text, translateReplacement(r.Replacement)), nil
}

// translateReplacement rewrites \1, \g<1> and \g<name> group references into
// Go template form and protects literal dollar signs.
func translateReplacement(repl string) string {
	if !strings.ContainsAny(repl, `\$`) {
		return repl
	}
	var b strings.Builder
	for i := 0; i < len(repl); i++ {
		c := repl[i]
		if c == '$' {
			b.WriteString("$$")
			continue
		}
		if c != '\\' || i+1 == len(repl) {
			b.WriteByte(c)
			continue
		}
		next := repl[i+1]
		switch {
		case next >= '0' && next <= '9':
			j := i + 2
			if j < len(repl) && repl[j] >= '0' && repl[j] <= '9' {
				j++
			}
			b.WriteString("${" + repl[i+1:j] + "}")
			i = j - 1
		case next == 'g' && i+2 < len(repl) && repl[i+2] == '<':
			end := strings.IndexByte(repl[i+3:], '>')
			if end < 0 {
				b.WriteString(repl[i : i+2])
				i++
				continue
			}
			b.WriteString("${" + repl[i+3:i+3+end] + "}")
			i += 3 + end
		case next == '\\':
			b.WriteByte('\\')
			i++
		case next == 'n':
			b.WriteByte('\n')
			i++
		case next == 't':
			b.WriteByte('\t')
			i++
		case next == 'r':
			b.WriteByte('\r')
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// stripVerbose removes unescaped whitespace and # comments outside
// character classes.
func stripVerbose(pattern string) string {
	var b strings.Builder
	inClass := false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == '\\' && i+1 < len(pattern):
			next := pattern[i+1]
			if next == ' ' || next == '\t' {
				b.WriteByte(next)
			} else {
				b.WriteByte(c)
				b.WriteByte(next)
			}
			i++
		case inClass:
			if c == ']' {
				inClass = false
			}
			b.WriteByte(c)
		case c == '[':
			inClass = true
			b.WriteByte(c)
			// a leading ] (or ^]) is literal
			if i+1 < len(pattern) && pattern[i+1] == '^' {
				b.WriteByte('^')
				i++
			}
			if i+1 < len(pattern) && pattern[i+1] == ']' {
				b.WriteByte(']')
				i++
			}
		case c == '#':
			for i < len(pattern) && pattern[i] != '\n' {
				i++
			}
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v':
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
