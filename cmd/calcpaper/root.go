package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zephyrtronium/calcpaper/definitions"
	"github.com/zephyrtronium/calcpaper/evaluator"
	"github.com/zephyrtronium/calcpaper/internal/config"
	"github.com/zephyrtronium/calcpaper/internal/logging"
	"github.com/zephyrtronium/calcpaper/internal/render"
	"github.com/zephyrtronium/calcpaper/paper"
	"github.com/zephyrtronium/calcpaper/units"
)

type rootOptions struct {
	configPath string
	paperPath  string
	output     string

	cfg   config.Config
	log   *zap.Logger
	conv  *units.Converter
	paper *paper.Paper
}

func newRootCommand() *cobra.Command {
	o := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "calcpaper",
		Short: "Calculate on a paper of named results and unit conversions",
		Long: `calcpaper evaluates expressions and appends them to a paper file. Each
result is named #1, #2, and so on, or by a name given as name = expression,
and later expressions can use earlier results. Expressions may end with a unit
conversion like "3 ft to m".`,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return o.setup(cmd) },
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if o.log != nil {
				_ = o.log.Sync()
			}
		},
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&o.configPath, "config", "", "YAML configuration file")
	flags.StringVar(&o.paperPath, "paper", "", "paper file (default from config, else calc.paper)")
	flags.StringVarP(&o.output, "output", "o", "", fmt.Sprintf("output format for show, one of %v", render.Names()))

	cmd.AddCommand(
		newEvalCommand(o),
		newShowCommand(o),
		newNotesCommand(o),
		newClearCommand(o),
		newReplCommand(o),
		newConvertCommand(o),
		newUnitsCommand(o),
	)
	return cmd
}

// setup loads configuration, definitions, and the paper.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("paper") {
		cfg.Paper = o.paperPath
	}
	if cmd.Flags().Changed("output") {
		cfg.Output = o.output
	}
	o.cfg = cfg
	o.log, err = logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}

	o.conv, err = definitions.NewConverter(cfg.DefinitionsDir, units.WithLogger(o.log))
	if err != nil {
		// Definitions load best-effort, so the converter is still usable.
		o.log.Warn("some unit definitions were skipped", zap.Error(err))
	}
	ev := evaluator.New(
		evaluator.WithConverter(o.conv),
		evaluator.WithPrecision(cfg.Precision),
		evaluator.WithDigits(cfg.Digits),
		evaluator.WithLogger(o.log),
	)
	o.paper = paper.New(paper.WithEvaluator(ev), paper.WithLogger(o.log))
	if err := o.paper.Load(cfg.Paper); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		o.log.Debug("starting new paper", zap.String("path", cfg.Paper))
	}
	return nil
}

func (o *rootOptions) save() error {
	return o.paper.Store(o.cfg.Paper)
}
