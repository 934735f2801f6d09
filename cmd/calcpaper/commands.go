package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/zephyrtronium/calcpaper/evaluator"
	"github.com/zephyrtronium/calcpaper/expressions"
	"github.com/zephyrtronium/calcpaper/internal/render"
)

func newEvalCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "eval <expression>...",
		Short: "Evaluate expressions and add them to the paper",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var errs error
			for _, arg := range args {
				if err := evalLine(cmd.OutOrStdout(), o, arg); err != nil {
					errs = multierr.Append(errs, err)
				}
			}
			if err := o.save(); err != nil {
				return multierr.Append(errs, err)
			}
			return errs
		},
	}
}

func evalLine(w io.Writer, o *rootOptions, line string) error {
	r, err := o.paper.Evaluate(line)
	if err != nil {
		return fmt.Errorf("%s: %w", line, err)
	}
	if r.Kind() == evaluator.Function {
		fmt.Fprintf(w, "%s = %s\n", r.Text(), r.Expression())
		return nil
	}
	fmt.Fprintf(w, "%s = %s\n", r.ID(), r.Text())
	return nil
}

func newShowCommand(o *rootOptions) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the paper",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := render.Lookup(o.cfg.Output)
			if err != nil {
				return err
			}
			if watch {
				return watchPaper(cmd.Context(), cmd.OutOrStdout(), o, r)
			}
			return r(cmd.OutOrStdout(), o.paper)
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "print the paper again whenever its file changes")
	return cmd
}

func newNotesCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "notes [text...]",
		Short: "Print the paper's notes, or replace them",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				if n := o.paper.Notes(); n != "" {
					fmt.Fprintln(cmd.OutOrStdout(), n)
				}
				return nil
			}
			o.paper.SetNotes(strings.Join(args, " "))
			return o.save()
		},
	}
}

func newClearCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all expressions and notes from the paper",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o.paper.Clear()
			return o.save()
		},
	}
}

func newReplCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Evaluate lines from standard input, saving the paper at the end",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			sc := bufio.NewScanner(cmd.InOrStdin())
			for sc.Scan() {
				line := strings.TrimSpace(sc.Text())
				if line == "" {
					continue
				}
				if err := evalLine(out, o, line); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
				}
			}
			if err := sc.Err(); err != nil {
				return err
			}
			return o.save()
		},
	}
}

func newConvertCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <value> <from> <to>",
		Short: "Convert a value between units without touching the paper",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := expressions.EvalString(args[0], expressions.Prec(o.cfg.Precision))
			if err != nil {
				return fmt.Errorf("value %q: %w", args[0], err)
			}
			from, err := o.conv.ParseCompoundUnit(args[1])
			if err != nil {
				return err
			}
			to, err := o.conv.ParseCompoundUnit(args[2])
			if err != nil {
				return err
			}
			r, err := o.conv.ConvertCompound(from, to, v, o.cfg.Precision)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", evaluator.Format(r, o.cfg.Digits), to)
			return nil
		},
	}
}

func newUnitsCommand(o *rootOptions) *cobra.Command {
	var prefixes bool
	cmd := &cobra.Command{
		Use:   "units",
		Short: "List known units, or prefixes with --prefixes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if prefixes {
				for _, p := range o.conv.Prefixes() {
					fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name(), p.Symbol(), p.FactorString())
				}
				return nil
			}
			for _, u := range o.conv.Units() {
				fmt.Fprintf(w, "%s\t%s\n", u, strings.Join(u.Aliases(), " "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&prefixes, "prefixes", false, "list prefixes instead of units")
	return cmd
}
