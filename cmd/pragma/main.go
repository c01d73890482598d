// Command pragma expands annotated declaration blocks into cfg-guarded
// declarations. It reads one or more pragma files (or stdin) and writes the
// expanded source to stdout or to files.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/cloudcmds/pragma"
	perrors "github.com/cloudcmds/pragma/errors"
)

var version = "dev"

func main() {
	var (
		outPath     = flag.String("o", "", "write output to `file` (requires a single input)")
		write       = flag.Bool("w", false, "write each result to <input>.expanded instead of stdout")
		noColor     = flag.Bool("no-color", false, "disable colored error output")
		debug       = flag.Bool("debug", false, "enable debug logging")
		maxDepth    = flag.Int("max-depth", 0, "override the maximum nesting depth")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().Level(zerolog.WarnLevel)
	if *debug {
		logger = logger.Level(zerolog.DebugLevel)
	}

	useColor := !*noColor && isatty.IsTerminal(os.Stderr.Fd())

	args := flag.Args()
	if *outPath != "" && len(args) > 1 {
		fatal(useColor, "-o requires a single input file")
	}

	ctx := context.Background()
	var result *multierror.Error

	if len(args) == 0 {
		if err := expandStdin(ctx, logger, *outPath, *maxDepth, useColor); err != nil {
			result = multierror.Append(result, err)
		}
	}
	for _, path := range args {
		if err := expandFile(ctx, logger, path, *outPath, *write, *maxDepth, useColor); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", path, err))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		logger.Debug().Int("failures", result.Len()).Msg("expansion finished with errors")
		os.Exit(1)
	}
}

func expandStdin(ctx context.Context, logger zerolog.Logger, outPath string, maxDepth int, useColor bool) error {
	source, err := io.ReadAll(os.Stdin)
	if err != nil {
		fatal(useColor, err)
	}
	out, err := expandSource(ctx, logger, "stdin", string(source), maxDepth)
	if err != nil {
		printError(err, useColor)
		return err
	}
	return writeOutput(out, outPath)
}

func expandFile(ctx context.Context, logger zerolog.Logger, path, outPath string, write bool, maxDepth int, useColor bool) error {
	source, err := os.ReadFile(path)
	if err != nil {
		printError(err, useColor)
		return err
	}
	out, err := expandSource(ctx, logger, path, string(source), maxDepth)
	if err != nil {
		printError(err, useColor)
		return err
	}
	if write {
		outPath = path + ".expanded"
	}
	return writeOutput(out, outPath)
}

func expandSource(ctx context.Context, logger zerolog.Logger, name, source string, maxDepth int) (string, error) {
	opts := []pragma.Option{pragma.WithFilename(name)}
	if maxDepth > 0 {
		opts = append(opts, pragma.WithMaxDepth(maxDepth))
	}
	start := time.Now()
	out, err := pragma.Expand(ctx, source, opts...)
	if err != nil {
		return "", err
	}
	logger.Debug().
		Str("file", name).
		Int("input_bytes", len(source)).
		Int("output_bytes", len(out)).
		Dur("elapsed", time.Since(start)).
		Msg("expanded")
	return out, nil
}

func writeOutput(out, outPath string) error {
	if outPath == "" {
		fmt.Print(out)
		return nil
	}
	return os.WriteFile(outPath, []byte(out), 0o644)
}

func printError(err error, useColor bool) {
	if fe, ok := err.(perrors.FormattableError); ok {
		fmt.Fprint(os.Stderr, perrors.NewFormatter(useColor).Format(fe.ToFormatted()))
		return
	}
	fmt.Fprintf(os.Stderr, "%s\n", red(useColor, err.Error()))
}

func fatal(useColor bool, msg interface{}) {
	var s string
	switch msg := msg.(type) {
	case string:
		s = msg
	case error:
		s = msg.Error()
	default:
		s = fmt.Sprintf("%v", msg)
	}
	fmt.Fprintf(os.Stderr, "%s\n", red(useColor, s))
	os.Exit(1)
}

func red(useColor bool, s string) string {
	if !useColor {
		return s
	}
	return color.New(color.FgRed).Sprint(s)
}
