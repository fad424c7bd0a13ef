package commands

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/teranos/scriptpack/config"
	"github.com/teranos/scriptpack/display"
	"github.com/teranos/scriptpack/logger"
	"github.com/teranos/scriptpack/pack"
	"github.com/teranos/scriptpack/toolchain"
)

type packOptions struct {
	input  string
	output string
	emit   string
	watch  bool
}

// newCompiler is replaced in tests.
var newCompiler = func(cfg toolchain.Config) toolchain.Compiler {
	return toolchain.NewGoToolchain(cfg)
}

// reporter prints pack outcomes either as lines or as JSON.
type reporter struct {
	w       io.Writer
	json    bool
	printer *display.Printer
}

func newReporter(cmd *cobra.Command) *reporter {
	verbosity, _ := cmd.Flags().GetCount("verbose")
	return &reporter{
		w:       cmd.OutOrStdout(),
		json:    display.ShouldOutputJSON(cmd),
		printer: display.NewPrinter(cmd.OutOrStdout(), verbosity > 0),
	}
}

func (r *reporter) compiling(pack.Request) {
	if !r.json {
		r.printer.Compiling()
	}
}

func (r *reporter) outcome(report *pack.Report, err error) {
	if r.json {
		if jerr := display.OutputJSON(r.w, display.NewOutcome(report, err)); jerr != nil {
			logger.Errorw("Failed to write JSON report", logger.FieldError, jerr)
		}
		return
	}
	if err != nil {
		r.printer.Error(err)
		return
	}
	r.printer.Report(report)
}

// runPack always returns nil: every outcome, including bad arguments, is a
// printed line.
func runPack(cmd *cobra.Command, opts *packOptions) error {
	out := newReporter(cmd)
	req := pack.Request{Input: opts.input, Output: opts.output, EmitSource: opts.emit}

	if err := req.Validate(); err != nil {
		out.outcome(nil, err)
		return nil
	}

	configPath, _ := cmd.Flags().GetString("config")
	loaded, err := config.Load(configPath)
	if err != nil {
		out.outcome(nil, err)
		return nil
	}
	logLoadedConfig(loaded)

	cfg := loaded.Config
	packer := pack.NewPacker(newCompiler(cfg.Toolchain()), cfg.PackOptions())
	packer.OnCompile(out.compiling)

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt)
	defer stop()

	if opts.watch {
		w := pack.NewWatcher(packer, req, cfg.WatchOptions(), out.outcome)
		if err := w.Run(ctx); err != nil {
			out.outcome(nil, err)
		}
		return nil
	}

	out.outcome(packer.Pack(ctx, req))
	return nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func logLoadedConfig(loaded *config.Loaded) {
	for _, f := range loaded.Files {
		if logger.ShouldOutput(logger.Verbosity, logger.OutputConfig) {
			logger.Infow("Loaded config", logger.FieldFile, f.Path, "source", f.Source)
		}
		for _, key := range f.Unknown {
			logger.Warnw("Unknown config key ignored", logger.FieldFile, f.Path, "key", key)
		}
	}
}
