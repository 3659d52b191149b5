package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"golang.org/x/term"

	"github.com/Al3jandr032/gforms-go/internal/config"
	"github.com/Al3jandr032/gforms-go/internal/errfmt"
	"github.com/Al3jandr032/gforms-go/internal/outfmt"
	"github.com/Al3jandr032/gforms-go/internal/ui"
)

type RootFlags struct {
	Color   string `help:"Color output: auto|always|never" default:"auto"`
	JSON    bool   `help:"Output JSON to stdout (best for scripting)" short:"j"`
	Plain   bool   `help:"Output stable, parseable text to stdout (TSV; no colors)" short:"p"`
	Verbose bool   `help:"Enable verbose logging" short:"v"`
}

type CLI struct {
	RootFlags `embed:""`

	Version kong.VersionFlag `help:"Print version and exit"`

	Form       FormCmd    `cmd:"" aliases:"forms" help:"Google Forms operations"`
	Auth       AuthCmd    `cmd:"" help:"Auth and credentials"`
	Config     ConfigCmd  `cmd:"" help:"Show resolved configuration"`
	VersionCmd VersionCmd `cmd:"" name:"version" help:"Print version"`
}

func Execute(args []string) error {
	var cli CLI

	parser, err := kong.New(&cli,
		kong.Name("gforms"),
		kong.Description("Thin client for the Google Forms API (API key, service account, or OAuth)."),
		kong.UsageOnError(),
		kong.Vars{"version": VersionString()},
	)
	if err != nil {
		return err
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		parsedErr := newUsageError(err)
		_, _ = fmt.Fprintln(os.Stderr, errfmt.Format(parsedErr))

		return parsedErr
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cli.Verbose),
	})))

	// Default to JSON when stdout is piped/non-TTY, unless an explicit
	// output mode was chosen. Opt-in via GFORMS_AUTO_JSON.
	if envBool("GFORMS_AUTO_JSON") && !cli.JSON && !cli.Plain && !term.IsTerminal(int(os.Stdout.Fd())) {
		cli.JSON = true
	}

	if env := outfmt.FromEnv(); !cli.JSON && !cli.Plain {
		cli.JSON = env.JSON
		cli.Plain = env.Plain
	}

	mode, err := outfmt.FromFlags(cli.JSON, cli.Plain)
	if err != nil {
		return newUsageError(err)
	}

	ctx := context.Background()
	ctx = outfmt.WithMode(ctx, mode)

	uiColor := cli.Color
	if mode.JSON || mode.Plain {
		uiColor = "never"
	}

	u, err := ui.New(ui.Options{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Color:  uiColor,
	})
	if err != nil {
		return err
	}

	ctx = ui.WithUI(ctx, u)

	kctx.BindTo(ctx, (*context.Context)(nil))
	kctx.Bind(&cli.RootFlags)

	err = kctx.Run()
	if err == nil {
		return nil
	}

	err = stableExitCode(err)
	u.Err().Errorf("%s", errfmt.Format(err))

	return err
}

// logLevel derives the slog level from --verbose, falling back to
// LOG_LEVEL, defaulting to warn so library chatter stays out of stderr.
func logLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}

	switch strings.ToUpper(strings.TrimSpace(os.Getenv(config.EnvLogLevel))) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func envBool(name string) bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv(name)), "true")
}

// loadConfig is a stub point for tests.
var loadConfig = config.Load
