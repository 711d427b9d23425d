// Package rules parses, serialises and applies the sed-like name edit rules
// used to clean up clipping and export names.
//
// A rule is written as
//
//	<SEP>pattern<SEP>replacement[<SEP>flags]
//
// where SEP is any single character other than a backslash. Occurrences of
// SEP inside the pattern or replacement are escaped with a backslash.
package rules

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

var (
	// ErrFormat is returned when a rule expression cannot be parsed.
	ErrFormat = errors.New("invalid rule expression")
	// ErrEncoding is returned when a rule cannot be written back out.
	ErrEncoding = errors.New("cannot encode rule")
)

// Flags is a set of regular expression flags.
type Flags uint8

const (
	FlagASCII Flags = 1 << iota
	FlagIgnoreCase
	FlagLocale
	FlagMultiline
	FlagDotAll
	FlagUnicode
	FlagVerbose
)

// flagLetters lists the accepted flag letters in sorted order.
var flagLetters = []struct {
	letter byte
	flag   Flags
}{
	{'a', FlagASCII},
	{'i', FlagIgnoreCase},
	{'l', FlagLocale},
	{'m', FlagMultiline},
	{'s', FlagDotAll},
	{'u', FlagUnicode},
	{'x', FlagVerbose},
}

// ParseFlags converts flag letters to a Flags set. Letters are
// case-insensitive; 'g' is accepted and ignored for sed compatibility.
func ParseFlags(s string) (Flags, error) {
	var f Flags
	for _, r := range s {
		lr := r | 0x20
		if lr == 'g' {
			continue
		}
		found := false
		for _, fl := range flagLetters {
			if rune(fl.letter) == lr {
				f |= fl.flag
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("%w: unknown flag %q", ErrFormat, r)
		}
	}
	return f, nil
}

// String returns the flag letters, lower-case and sorted.
func (f Flags) String() string {
	var b strings.Builder
	for _, fl := range flagLetters {
		if f&fl.flag != 0 {
			b.WriteByte(fl.letter)
		}
	}
	return b.String()
}

// Rule is a single regex replacement.
type Rule struct {
	Pattern     string
	Replacement string
	Flags       Flags
}

// Named is a rule with the config key it was loaded from.
type Named struct {
	Key  string
	Rule Rule
}

// Sorted returns a copy of list ordered by key.
func Sorted(list []Named) []Named {
	out := make([]Named, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// separatorPreference is tried before falling back to a scan of printable ASCII.
const separatorPreference = "/;,"

// unsafeSeparators are never picked by Encode. A backslash would read as an
// escape, and INI readers treat values opening with a quote or backtick as
// quoted.
const unsafeSeparators = `\"'` + "`"

// regexMeta are separators whose escape must survive in the pattern.
const regexMeta = `.+*?()|[]{}^$`

// Decode parses a rule expression.
func Decode(expr string) (Rule, error) {
	if expr == "" {
		return Rule{}, fmt.Errorf("%w: empty expression", ErrFormat)
	}
	sep, size := utf8.DecodeRuneInString(expr)
	if sep == '\\' {
		return Rule{}, fmt.Errorf("%w: separator cannot be a backslash", ErrFormat)
	}

	parts := splitEscaped(expr[size:], sep)
	if len(parts) < 2 {
		return Rule{}, fmt.Errorf("%w: replacement missing in %q", ErrFormat, expr)
	}
	if len(parts) > 3 {
		return Rule{}, fmt.Errorf("%w: %q has too many parts", ErrFormat, expr)
	}

	keepInPattern := strings.ContainsRune(regexMeta, sep)
	rule := Rule{
		Pattern:     unescapeSeparator(parts[0], sep, keepInPattern),
		Replacement: unescapeSeparator(parts[1], sep, false),
	}
	if len(parts) == 3 {
		flags, err := ParseFlags(unescapeSeparator(parts[2], sep, false))
		if err != nil {
			return Rule{}, fmt.Errorf("%w in %q", err, expr)
		}
		rule.Flags = flags
	}
	return rule, nil
}

// Encode serialises rule, choosing a separator that occurs in neither the
// pattern nor the replacement.
func Encode(rule Rule) (string, error) {
	if endsWithOddBackslashes(rule.Pattern) || endsWithOddBackslashes(rule.Replacement) {
		return "", fmt.Errorf("%w: trailing unpaired backslash", ErrEncoding)
	}
	sep, ok := pickSeparator(rule.Pattern, rule.Replacement)
	if !ok {
		return "", fmt.Errorf("%w: no safe separator for %q -> %q", ErrEncoding, rule.Pattern, rule.Replacement)
	}
	s := string(sep)
	return s + rule.Pattern + s + rule.Replacement + s + rule.Flags.String(), nil
}

func pickSeparator(pattern, replacement string) (rune, bool) {
	free := func(r rune) bool {
		return !strings.ContainsRune(pattern, r) && !strings.ContainsRune(replacement, r)
	}
	for _, r := range separatorPreference {
		if free(r) {
			return r, true
		}
	}
	for c := rune(33); c <= 127; c++ {
		if strings.ContainsRune(unsafeSeparators, c) {
			continue
		}
		if free(c) {
			return c, true
		}
	}
	return 0, false
}

// splitEscaped splits s on sep, ignoring separators preceded by an odd
// number of backslashes. Escapes are left in place.
func splitEscaped(s string, sep rune) []string {
	var parts []string
	var cur strings.Builder
	backslashes := 0
	for _, r := range s {
		if r == sep && backslashes%2 == 0 {
			parts = append(parts, cur.String())
			cur.Reset()
			backslashes = 0
			continue
		}
		if r == '\\' {
			backslashes++
		} else {
			backslashes = 0
		}
		cur.WriteRune(r)
	}
	return append(parts, cur.String())
}

// unescapeSeparator drops the backslash in front of each escaped sep.
func unescapeSeparator(s string, sep rune, keep bool) string {
	if keep || !strings.ContainsRune(s, sep) {
		return s
	}
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if r == '\\' && i+1 < len(runes) && runes[i+1] == sep && !precededByOddBackslashes(runes, i) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// precededByOddBackslashes reports whether runes[i] is itself escaped.
func precededByOddBackslashes(runes []rune, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && runes[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

func endsWithOddBackslashes(s string) bool {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}
