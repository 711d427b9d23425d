package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-ini/ini"

	"github.com/TanaroSch/copynaut/internal/rules"
	"github.com/TanaroSch/copynaut/internal/stack"
)

func fromINI(f *ini.File) (*Config, error) {
	st := f.Section(sectionStack)
	mode, err := stack.ParseMode(st.Key(keyMode).String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	stackEdits, err := nameEdits(f.Section(sectionStackEdits))
	if err != nil {
		return nil, err
	}

	ex := f.Section(sectionExport)
	exportEdits, err := nameEdits(f.Section(sectionExportEdits))
	if err != nil {
		return nil, err
	}
	webp, err := intInRange(ex, keyWebPQuality, 0, 100)
	if err != nil {
		return nil, err
	}
	jpeg, err := intInRange(ex, keyJPEGQuality, 0, 100)
	if err != nil {
		return nil, err
	}
	digits, err := intInRange(ex, keyDigits, 1, 100)
	if err != nil {
		return nil, err
	}

	return &Config{
		Stack: StackConfig{
			Mode:         mode,
			NameTemplate: st.Key(keyNameTemplate).String(),
			NameEdits:    stackEdits,
		},
		Export: ExportConfig{
			NameTemplate: ex.Key(keyNameTemplate).String(),
			NameEdits:    exportEdits,
			Directory:    ex.Key(keyDirectory).String(),
			WebPQuality:  webp,
			JPEGQuality:  jpeg,
			NumberDigits: digits,
		},
	}, nil
}

// nameEdits decodes every key of sec as a rule. Empty values disable the
// rule of that name, so a user file can switch off a default.
func nameEdits(sec *ini.Section) ([]rules.Named, error) {
	var out []rules.Named
	for _, k := range sec.Keys() {
		v := strings.TrimSpace(k.Value())
		if v == "" {
			continue
		}
		r, err := rules.Decode(v)
		if err != nil {
			return nil, fmt.Errorf("%w: [%s] %s: %v", ErrConfig, sec.Name(), k.Name(), err)
		}
		out = append(out, rules.Named{Key: k.Name(), Rule: r})
	}
	return rules.Sorted(out), nil
}

func intInRange(sec *ini.Section, key string, lo, hi int) (int, error) {
	raw := strings.TrimSpace(sec.Key(key).String())
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: [%s] %s: %q is not an integer", ErrConfig, sec.Name(), key, raw)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%w: [%s] %s: %d is outside %d..%d", ErrConfig, sec.Name(), key, n, lo, hi)
	}
	return n, nil
}

func toINI(cfg *Config) (*ini.File, error) {
	f := ini.Empty(loadOptions(false))

	st, err := f.NewSection(sectionStack)
	if err != nil {
		return nil, err
	}
	st.Key(keyMode).SetValue(cfg.Stack.Mode.String())
	st.Key(keyNameTemplate).SetValue(strings.TrimSpace(cfg.Stack.NameTemplate))
	if err := writeEdits(f, sectionStackEdits, cfg.Stack.NameEdits); err != nil {
		return nil, err
	}

	ex, err := f.NewSection(sectionExport)
	if err != nil {
		return nil, err
	}
	ex.Key(keyNameTemplate).SetValue(strings.TrimSpace(cfg.Export.NameTemplate))
	ex.Key(keyDirectory).SetValue(strings.TrimSpace(cfg.Export.Directory))
	ex.Key(keyWebPQuality).SetValue(strconv.Itoa(cfg.Export.WebPQuality))
	ex.Key(keyJPEGQuality).SetValue(strconv.Itoa(cfg.Export.JPEGQuality))
	ex.Key(keyDigits).SetValue(strconv.Itoa(cfg.Export.NumberDigits))
	if err := writeEdits(f, sectionExportEdits, cfg.Export.NameEdits); err != nil {
		return nil, err
	}
	return f, nil
}

func writeEdits(f *ini.File, section string, edits []rules.Named) error {
	sec, err := f.NewSection(section)
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(edits))
	for _, n := range rules.Sorted(edits) {
		expr, err := rules.Encode(n.Rule)
		if err != nil {
			return fmt.Errorf("[%s] %s: %w", section, n.Key, err)
		}
		sec.Key(n.Key).SetValue(expr)
		seen[n.Key] = true
	}
	// Defaults are layered under the user file on load, so a default rule
	// missing from edits has to be switched off explicitly.
	defaults, err := ini.LoadSources(loadOptions(false), []byte(DefaultConfig))
	if err != nil {
		return err
	}
	for _, k := range defaults.Section(section).KeyStrings() {
		if !seen[k] {
			sec.Key(k).SetValue("")
		}
	}
	return nil
}
