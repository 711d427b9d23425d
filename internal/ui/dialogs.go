package ui

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ncruces/zenity"

	"github.com/TanaroSch/copynaut/internal/rules"
)

// ErrCanceled is returned when the user dismisses a dialog.
var ErrCanceled = errors.New("canceled by user")

// Dialog titles start with this.
const dialogTitle = "Copynaut"

// RuleInput is what the add-rule dialogs collected.
type RuleInput struct {
	Section         string
	Key             string
	Pattern         string
	Replacement     string
	CaseInsensitive bool
}

// ruleKey matches keys that sort well and survive the INI format.
var ruleKey = regexp.MustCompile(`^[0-9A-Za-z_.-]+$`)

// ValidRuleKey reports whether key can name a rule.
func ValidRuleKey(key string) bool {
	return ruleKey.MatchString(key)
}

// PromptSuffix asks for an export suffix. The suffix may itself be a
// template.
func PromptSuffix(initial string) (string, error) {
	s, err := zenity.Entry("Suffix for the exported file name\n(may contain {fields}; leave empty for none)",
		zenity.Title(dialogTitle+" - Export Clipping"),
		zenity.EntryText(initial),
	)
	if err != nil {
		return "", dialogErr(err)
	}
	return strings.TrimSpace(s), nil
}

// PromptRule walks the user through adding a name edit: pick a section,
// name the rule, give the text to find and its replacement.
func PromptRule(sections []string) (RuleInput, error) {
	title := zenity.Title(dialogTitle + " - Add Name Edit")
	var in RuleInput

	section, err := zenity.List("Step 1: Select the edit list to add the rule to:", sections,
		title, zenity.Height(250))
	if err != nil {
		return in, dialogErr(err)
	}
	if section == "" {
		return in, ErrCanceled
	}
	in.Section = section

	key, err := zenity.Entry("Step 2: Enter the rule key\n(rules run in key order, e.g. 05_dashes)",
		title, zenity.DisallowEmpty())
	if err != nil {
		return in, dialogErr(err)
	}
	in.Key = strings.TrimSpace(key)
	if !ValidRuleKey(in.Key) {
		return in, fmt.Errorf("invalid rule key %q: use letters, digits, '_', '.' and '-'", in.Key)
	}

	find, err := zenity.Entry("Step 3: Enter the text to find\n(special characters are matched literally)",
		title, zenity.DisallowEmpty())
	if err != nil {
		return in, dialogErr(err)
	}

	repl, err := zenity.Entry("Step 4: Enter the replacement text\n(inserted as typed, may be empty)", title)
	if err != nil {
		return in, dialogErr(err)
	}
	lit := rules.Literal(find, repl)
	in.Pattern, in.Replacement = lit.Pattern, lit.Replacement

	err = zenity.Question("Step 5: Make this rule case-insensitive?",
		title, zenity.QuestionIcon, zenity.OKLabel("Yes"), zenity.CancelLabel("No"))
	switch {
	case err == nil:
		in.CaseInsensitive = true
	case errors.Is(err, zenity.ErrCanceled):
	default:
		return in, err
	}
	return in, nil
}

func dialogErr(err error) error {
	if errors.Is(err, zenity.ErrCanceled) {
		return ErrCanceled
	}
	return err
}
