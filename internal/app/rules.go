package app

import (
	"errors"
	"fmt"

	"github.com/TanaroSch/copynaut/internal/config"
	"github.com/TanaroSch/copynaut/internal/diffutil"
	"github.com/TanaroSch/copynaut/internal/rules"
	"github.com/TanaroSch/copynaut/internal/ui"
)

// EditList selects one of the two name edit lists.
type EditList int

const (
	StackEdits EditList = iota
	ExportEdits
)

// ParseEditList accepts "stack"/"clipping" and "export".
func ParseEditList(s string) (EditList, error) {
	switch s {
	case "stack", "clipping":
		return StackEdits, nil
	case "export":
		return ExportEdits, nil
	}
	return 0, fmt.Errorf("unknown edit list %q, want stack or export", s)
}

func (l EditList) String() string {
	if l == ExportEdits {
		return "export"
	}
	return "stack"
}

func editsOf(cfg *config.Config, l EditList) []rules.Named {
	if l == ExportEdits {
		return cfg.Export.NameEdits
	}
	return cfg.Stack.NameEdits
}

// TestRules runs text through an edit list, recording each rule's change.
func (a *Application) TestRules(l EditList, text string) (string, []diffutil.Step, error) {
	cfg, err := a.config()
	if err != nil {
		return "", nil, err
	}
	return diffutil.Trace(text, editsOf(cfg, l))
}

// AddRule adds or replaces the rule named key in an edit list and saves the
// config file.
func (a *Application) AddRule(l EditList, key string, rule rules.Rule) error {
	if !ui.ValidRuleKey(key) {
		return fmt.Errorf("invalid rule key %q", key)
	}
	if _, err := rule.Compile(); err != nil {
		return err
	}
	if _, err := rules.Encode(rule); err != nil {
		return err
	}
	cfg, err := a.config()
	if err != nil {
		return err
	}

	next := *cfg
	edits := make([]rules.Named, 0, len(editsOf(cfg, l))+1)
	for _, n := range editsOf(cfg, l) {
		if n.Key != key {
			edits = append(edits, n)
		}
	}
	edits = rules.Sorted(append(edits, rules.Named{Key: key, Rule: rule}))
	if l == ExportEdits {
		next.Export.NameEdits = edits
	} else {
		next.Stack.NameEdits = edits
	}

	if err := a.store.Save(&next); err != nil {
		return a.fail("Save Error", err)
	}
	a.notifier.Info("Rule Added", fmt.Sprintf("Rule %s added to the %s name edits.", key, l))
	return nil
}

// AddRuleInteractive collects a rule through dialogs and adds it.
func (a *Application) AddRuleInteractive() error {
	in, err := ui.PromptRule([]string{StackEdits.String(), ExportEdits.String()})
	if err != nil {
		if errors.Is(err, ui.ErrCanceled) {
			a.notifier.Info("Operation Canceled", "Add rule canceled.")
			return nil
		}
		return a.fail("Input Error", err)
	}
	l, err := ParseEditList(in.Section)
	if err != nil {
		return a.fail("Input Error", err)
	}
	r := rules.Rule{Pattern: in.Pattern, Replacement: in.Replacement}
	if in.CaseInsensitive {
		r.Flags |= rules.FlagIgnoreCase
	}
	return a.AddRule(l, in.Key, r)
}
