// Command flowplan checks a plan document offline and prints its flow usage.
//
//	flowplan [-format yaml|json] [-o table|json] [-debug] <plan-file|->
//
// Exit status is 0 when every device is within budget, 2 when any device is over
// capacity and 1 on invalid input.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/edirooss/flowplan/internal/config"
	"github.com/edirooss/flowplan/internal/domain/flow/views"
	"github.com/edirooss/flowplan/internal/plan"
	"github.com/edirooss/flowplan/internal/render"
	"github.com/edirooss/flowplan/pkg/fmtt"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	exitOK           = 0
	exitInvalid      = 1
	exitOverCapacity = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("flowplan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	format := fs.String("format", "", "plan format: yaml|json (default: from file extension)")
	output := fs.String("o", "table", "output: table|json")
	debug := fs.Bool("debug", false, "verbose logs and error chain dump")
	version := fs.Bool("v", false, "print version and exit")
	fs.BoolVar(version, "version", false, "print version and exit")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: flowplan [-format yaml|json] [-o table|json] [-debug] <plan-file|->")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitInvalid
	}

	if *version {
		fmt.Fprintf(stdout, "flowplan %s (commit %s, built %s)\n", config.Version, config.GitCommit, config.BuildDate)
		return exitOK
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return exitInvalid
	}

	log := buildLogger(*debug)
	defer log.Sync()

	report, err := check(log, fs.Arg(0), *format, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "flowplan: %v\n", err)
		if *debug {
			fmtt.PrintErrChainDebug(stderr, err)
		}
		return exitInvalid
	}

	switch *output {
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Fprintf(stderr, "flowplan: %v\n", err)
			return exitInvalid
		}
	case "table":
		fmt.Fprintln(stdout, render.Table(report))
	default:
		fmt.Fprintf(stderr, "flowplan: unknown output %q\n", *output)
		return exitInvalid
	}

	if report.OverCapacity > 0 {
		return exitOverCapacity
	}
	return exitOK
}

// check decodes the plan at path ("-" for stdin) and builds its report.
func check(log *zap.Logger, path, format string, stdin io.Reader) (views.Report, error) {
	f := plan.FormatFromPath(path)
	if format != "" {
		var err error
		if f, err = plan.ParseFormat(format); err != nil {
			return views.Report{}, err
		}
	}

	var r io.Reader = stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return views.Report{}, err
		}
		defer file.Close()
		r = file
	}

	doc, err := plan.Decode(r, f)
	if err != nil {
		return views.Report{}, fmt.Errorf("%s: %w", path, err)
	}
	log.Debug("plan decoded",
		zap.String("path", path),
		zap.String("format", string(f)),
		zap.Int("devices", len(doc.Devices)),
		zap.Int("connections", len(doc.Connections)),
	)

	start := time.Now()
	ws, err := doc.Workspace("cli", start)
	if err != nil {
		return views.Report{}, fmt.Errorf("%s: %w", path, err)
	}

	report := ws.Report()
	log.Debug("report built", zap.Duration("took", time.Since(start)), zap.Int("over_capacity", report.OverCapacity))
	return report, nil
}

func buildLogger(debug bool) *zap.Logger {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.EncoderConfig.TimeKey = ""
	logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logConfig.DisableStacktrace = true
	logConfig.DisableCaller = true
	logConfig.OutputPaths = []string{"stderr"}
	if debug {
		logConfig.Level.SetLevel(zap.DebugLevel)
	} else {
		logConfig.Level.SetLevel(zap.WarnLevel)
	}
	return zap.Must(logConfig.Build()).Named("flowplan")
}
