package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/linuxmatters/okng/internal/cli"
	"github.com/linuxmatters/okng/internal/config"
	"github.com/linuxmatters/okng/internal/logging"
)

var (
	version = "0.0.1"
)

// versionFlag prints the styled version banner and exits
type versionFlag bool

func (v versionFlag) BeforeReset(app *kong.Kong) error {
	cli.PrintVersion(version)
	app.Exit(0)
	return nil
}

// CLI defines the command-line interface
type CLI struct {
	Version versionFlag     `short:"v" help:"Show version information"`
	Config  kong.ConfigFlag `short:"c" help:"Path to TOML config file (optional)"`
	Debug   bool            `help:"Write debug entries to okng-debug.log"`

	Label   LabelCmd   `cmd:"" help:"Capture audio, label each second OK/NG and save the dataset"`
	Review  ReviewCmd  `cmd:"" help:"Review and edit the labels of a saved dataset"`
	Convert ConvertCmd `cmd:"" help:"Convert a dataset container to JSON"`
}

func main() {
	os.Exit(run())
}

func run() int {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("okng"),
		kong.Description("Segment anomaly labeling for fixed-duration audio"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
		kong.Configuration(config.Loader, config.SearchPaths()...),
	)

	log, err := logging.NewLogger(logging.DebugLogPath, cliArgs.Debug)
	if err != nil {
		cli.PrintError(err.Error())
		return 1
	}
	defer func() { _ = log.Sync() }()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Debugw("starting", "command", ctx.Command(), "version", version)
	ctx.BindTo(sigCtx, (*context.Context)(nil))
	if err := ctx.Run(log); err != nil {
		log.Errorw("command failed", "command", ctx.Command(), "error", err)
		cli.PrintError(err.Error())
		return 1
	}
	return 0
}
