package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TanaroSch/copynaut/internal/app"
	"github.com/TanaroSch/copynaut/internal/diffutil"
	"github.com/TanaroSch/copynaut/internal/rules"
	"github.com/TanaroSch/copynaut/internal/stack"
	"github.com/TanaroSch/copynaut/internal/ui"
)

// documentFlags describes the document an image file stands for.
type documentFlags struct {
	snap  app.Snapshot
	alpha bool
}

func (d *documentFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&d.snap.Document, "document", "", "document filename seen by templates (default: the image path)")
	f.StringArrayVar(&d.snap.Layers, "layer", nil, "drawable hierarchy, outermost first; repeat for nested layers")
	f.IntVar(&d.snap.LayerCount, "layers", 0, "number of layers in the document")
	f.StringVar(&d.snap.Selection, "selection", "", "selection as WxH+X+Y (default: whole image)")
	f.StringVar(&d.snap.Type, "type", "", "color type: rgb, gray or indexed (default: from the image)")
	f.BoolVar(&d.alpha, "alpha", false, "drawable has an alpha channel (default: from the image)")
	f.BoolVar(&d.snap.Mask, "mask", false, "drawable has a layer mask")
	f.BoolVar(&d.snap.IsMask, "is-mask", false, "drawable is a layer mask")
	f.BoolVar(&d.snap.Group, "group", false, "drawable is a layer group")
	f.IntVar(&d.snap.Children, "children", 0, "number of children of a layer group")
}

func (d *documentFlags) open(cmd *cobra.Command, path string) (*app.Document, error) {
	snap := d.snap
	if cmd.Flags().Changed("alpha") {
		snap.Alpha = &d.alpha
	}
	return app.OpenDocument(path, snap)
}

func newExpandCmd() *cobra.Command {
	var doc documentFlags
	var which string
	cmd := &cobra.Command{
		Use:   "expand IMAGE",
		Short: "Print the clipping or export name for an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := app.StackName
			switch which {
			case "stack":
			case "export":
				w = app.ExportName
			default:
				return fmt.Errorf("unknown template %q, want stack or export", which)
			}
			d, err := doc.open(cmd, args[0])
			if err != nil {
				return err
			}
			name, err := application.ExpandName(d, w)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}
	doc.register(cmd)
	cmd.Flags().StringVar(&which, "template", "stack", "name template to expand: stack or export")
	return cmd
}

func newCopyCmd() *cobra.Command {
	var doc documentFlags
	var toClipboard bool
	cmd := &cobra.Command{
		Use:   "copy IMAGE",
		Short: "Push the selection onto the clipping stack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := doc.open(cmd, args[0])
			if err != nil {
				return err
			}
			name, err := application.Copy(d, toClipboard)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}
	doc.register(cmd)
	cmd.Flags().BoolVar(&toClipboard, "clipboard", false, "also copy the clipping name to the clipboard")
	return cmd
}

func newPasteCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "paste TARGET",
		Short: "Paste the next clipping into an image file and remove it from the stack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !all {
				res, err := application.Paste(args[0])
				if errors.Is(err, stack.ErrEmpty) {
					fmt.Fprintln(cmd.ErrOrStderr(), "nothing to paste")
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\t%d,%d\n", res.LayerName, res.At.X, res.At.Y)
				return nil
			}

			results, err := application.PasteAll(args[0])
			if errors.Is(err, stack.ErrEmpty) {
				fmt.Fprintln(cmd.ErrOrStderr(), "nothing to paste")
				return nil
			}
			for _, res := range results {
				if res.Err != nil {
					fmt.Fprintf(out, "%s\tfailed: %v\n", res.LayerName, res.Err)
					continue
				}
				fmt.Fprintf(out, "%s\t%d,%d\n", res.LayerName, res.At.X, res.At.Y)
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "paste every clipping on the stack")
	return cmd
}

func newBuffersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "buffers",
		Short: "List the clipping stack in paste order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := application.Buffers()
			if err != nil {
				return err
			}
			for i, b := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", i+1, b.LayerName, b.Buffer)
			}
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	var doc documentFlags
	var suffix string
	var askSuffix bool
	cmd := &cobra.Command{
		Use:   "export IMAGE",
		Short: "Write the selection to a file named by the export template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if askSuffix {
				s, err := ui.PromptSuffix(suffix)
				if errors.Is(err, ui.ErrCanceled) {
					return nil
				}
				if err != nil {
					return err
				}
				suffix = s
			}
			d, err := doc.open(cmd, args[0])
			if err != nil {
				return err
			}
			path, err := application.Export(d, suffix)
			if err != nil {
				return skipOK(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	doc.register(cmd)
	cmd.Flags().StringVar(&suffix, "suffix", "", "suffix appended to the file name; may contain {fields}")
	cmd.Flags().BoolVar(&askSuffix, "ask-suffix", false, "ask for the suffix in a dialog")
	return cmd
}

func newQuickPasteCmd() *cobra.Command {
	var base string
	cmd := &cobra.Command{
		Use:   "quickpaste",
		Short: "Push image files listed on the clipboard onto the clipping stack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			added, err := application.QuickPaste(base)
			for _, name := range added {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&base, "base", "", "name clippings relative to this directory")
	return cmd
}

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and edit the name edit lists",
	}
	cmd.AddCommand(newRulesTestCmd(), newRulesAddCmd())
	return cmd
}

func newRulesTestCmd() *cobra.Command {
	var list string
	cmd := &cobra.Command{
		Use:   "test TEXT",
		Short: "Show how each name edit changes TEXT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := app.ParseEditList(list)
			if err != nil {
				return err
			}
			final, steps, err := application.TestRules(l, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, s := range steps {
				fmt.Fprintf(out, "%s\t%s\n", s.Key, s.Inline())
			}
			fmt.Fprintln(out, diffutil.Summary(steps))
			fmt.Fprintln(out, final)
			return nil
		},
	}
	cmd.Flags().StringVar(&list, "list", "export", "edit list: stack or export")
	return cmd
}

func newRulesAddCmd() *cobra.Command {
	var list, key, expr, pattern, replacement, flags string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a name edit; without --key the rule is asked for in dialogs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if key == "" {
				return application.AddRuleInteractive()
			}
			l, err := app.ParseEditList(list)
			if err != nil {
				return err
			}
			var r rules.Rule
			if expr != "" {
				r, err = rules.Decode(expr)
				if err != nil {
					return err
				}
			} else {
				f, err := rules.ParseFlags(flags)
				if err != nil {
					return err
				}
				r = rules.Rule{Pattern: pattern, Replacement: replacement, Flags: f}
			}
			if r.Pattern == "" {
				return errors.New("a rule needs a pattern: use --rule or --pattern")
			}
			return application.AddRule(l, key, r)
		},
	}
	f := cmd.Flags()
	f.StringVar(&list, "list", "export", "edit list: stack or export")
	f.StringVar(&key, "key", "", "rule key; rules run in key order")
	f.StringVar(&expr, "rule", "", "rule in config syntax, e.g. /pattern/replacement/flags")
	f.StringVar(&pattern, "pattern", "", "regular expression to find")
	f.StringVar(&replacement, "replacement", "", "replacement text")
	f.StringVar(&flags, "flags", "", "regex flags from ILMSXUA")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return application.ShowConfig()
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Write the default configuration file if there is none",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				written, err := application.InitConfig()
				if err != nil {
					return err
				}
				if written {
					fmt.Fprintln(cmd.OutOrStdout(), "created", configPath)
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "exists", configPath)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "edit",
			Short: "Open the configuration file in the default editor",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return application.EditConfig()
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the configuration file path",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintln(cmd.OutOrStdout(), configPath)
			},
		},
	)
	return cmd
}
