// Package diffutil shows how a list of name edits transforms a string, one
// rule at a time.
package diffutil

import (
	"fmt"
	"strings"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/TanaroSch/copynaut/internal/rules"
)

// Step records one rule that changed the text.
type Step struct {
	Key    string
	Before string
	After  string
	Diffs  []diffmatchpatch.Diff
}

// Inline renders the step as a single line, deletions in [-...-] and
// insertions in {+...+}.
func (s Step) Inline() string {
	return Inline(s.Diffs)
}

// Trace applies edits in key order and returns the final text plus a step
// for every rule that changed it. Rules that matched nothing are left out.
func Trace(text string, edits []rules.Named) (string, []Step, error) {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 5 * time.Second

	var steps []Step
	for _, n := range rules.Sorted(edits) {
		next, err := n.Rule.Replace(text)
		if err != nil {
			return text, steps, fmt.Errorf("rule %s: %w", n.Key, err)
		}
		if next == text {
			continue
		}
		diffs := dmp.DiffMain(text, next, false)
		diffs = dmp.DiffCleanupSemantic(diffs)
		steps = append(steps, Step{Key: n.Key, Before: text, After: next, Diffs: mergeRuns(diffs)})
		text = next
	}
	return text, steps, nil
}

// Inline renders diffs on one line.
func Inline(diffs []diffmatchpatch.Diff) string {
	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			b.WriteString("[-" + d.Text + "-]")
		case diffmatchpatch.DiffInsert:
			b.WriteString("{+" + d.Text + "+}")
		default:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}

// Summary counts the characters a trace removed and added.
func Summary(steps []Step) string {
	deleted, inserted := 0, 0
	for _, s := range steps {
		for _, d := range s.Diffs {
			switch d.Type {
			case diffmatchpatch.DiffDelete:
				deleted += len([]rune(d.Text))
			case diffmatchpatch.DiffInsert:
				inserted += len([]rune(d.Text))
			}
		}
	}
	return fmt.Sprintf("%d rule(s) changed the name: %d character(s) removed, %d added", len(steps), deleted, inserted)
}

// mergeRuns joins neighbouring diffs of the same operation, so a deletion
// split by the cleanup pass prints as one bracket.
func mergeRuns(diffs []diffmatchpatch.Diff) []diffmatchpatch.Diff {
	var out []diffmatchpatch.Diff
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Type == d.Type {
			out[n-1].Text += d.Text
			continue
		}
		out = append(out, d)
	}
	return out
}
