package main

import (
	"io"
	"log/slog"
	"os"

	"pixproc/logging"
	"pixproc/mangle"
	"pixproc/orient"
	"pixproc/parallel"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
)

type CLI struct {
	LogLevel string `help:"Log level (debug, info, warn, error)" default:"info"`
	LogJSON  bool   `help:"Write logs as JSON" name:"log-json"`
	LogFile  string `help:"Also write logs to this file, rotated every 10MB" type:"path"`
	Workers  int    `help:"Number of images processed at once, all CPUs when 0" default:"0"`

	Orient orient.CLICmd `cmd:"" help:"Rotate or mirror images by multiples of 90 degrees"`
	Mangle mangle.CLICmd `cmd:"" help:"Shrink, recolor and filter images"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("pixproc"),
		kong.Description("Pixel-level image transforms"),
		kong.UsageOnError(),
	)

	var out io.Writer = os.Stderr
	var logFile io.Closer
	if cli.LogFile != "" {
		f := logging.RotatingFile(cli.LogFile, 10, 3)
		out, logFile = io.MultiWriter(os.Stderr, f), f
	}

	level, ok := logging.ParseLevel(cli.LogLevel)
	slog.SetDefault(logging.Logger(out, cli.LogJSON, level).With("run", uuid.NewString()))
	if !ok {
		slog.Warn("invalid log level, defaulting to INFO", "level", cli.LogLevel)
	}

	pool := parallel.Start(cli.Workers)
	slog.Info("running", "command", kctx.Command(), "workers", pool.Workers())

	err := kctx.Run(parallel.WorkerFunc(pool.Do), parallel.WaitFunc(pool.Wait))
	if err != nil {
		slog.Error("command failed", "command", kctx.Command(), "error", err)
	}
	if logFile != nil {
		if closeErr := logFile.Close(); closeErr != nil {
			slog.Error("could not close log file", "name", cli.LogFile, "error", closeErr)
		}
	}
	if err != nil {
		os.Exit(1)
	}
}
