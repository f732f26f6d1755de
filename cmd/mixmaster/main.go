// Command mixmaster renders, monitors and analyzes the mix/master chain.
//
// Usage:
//
//	mixmaster render --gain 1.2 --low-eq 3 input.wav output.wav
//	mixmaster play --high-eq -2 input.wav
//	mixmaster analyze --mid-eq 6
//
// Every chain flag can also be set through the environment, for example
// MIXMASTER_GAIN=0.8 or MIXMASTER_LOW_EQ=-3.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/tphakala/go-audio-mixmaster/internal/logging"
	"github.com/tphakala/simd/cpu"
	"go.uber.org/zap"
)

var version = "dev"

// CLI defines the command-line interface.
type CLI struct {
	LogLevel string           `name:"log-level" default:"warn" env:"MIXMASTER_LOG_LEVEL" help:"Log level (debug, info, warn, error)"`
	LogJSON  bool             `name:"log-json" env:"MIXMASTER_LOG_JSON" help:"Log as JSON"`
	Version  kong.VersionFlag `short:"V" help:"Show version information"`

	Render  renderCmd  `cmd:"" help:"Render a WAV file through the chain"`
	Play    playCmd    `cmd:"" help:"Monitor a file live and adjust the chain from stdin"`
	Analyze analyzeCmd `cmd:"" help:"Print the chain's magnitude response"`
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("mixmaster"),
		kong.Description("Client-side mix and master engine"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	logger, err := logging.New(logging.WithLevel(cli.LogLevel), logging.WithJSON(cli.LogJSON))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Debug("starting", zap.String("version", version), zap.String("simd", cpu.Info()))

	if err := ctx.Run(logger); err != nil {
		logger.Error("command failed", zap.String("command", ctx.Command()), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}
