// Command robo is the CLI entry point for the robot DSL toolchain.
//
// Usage:
//
//	robo tokens <file> [--json]    Print tokens
//	robo parse  <file> [--dump]    Print AST as JSON, or a Go dump
//	robo run    <file>             Run a source file
//	robo repl                      Start interactive REPL
//
// Global flags --config and --log-level apply to every command.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"robo-lang/internal/config"
	"robo-lang/internal/diag"
	"robo-lang/internal/lexer"
	"robo-lang/internal/parser"
	"robo-lang/internal/prepro"
	"robo-lang/internal/robot"
	"robo-lang/internal/runtime"

	"github.com/fatih/color"
	"gopkg.in/urfave/cli.v1"
)

// exit statuses
const (
	exitFailure = 1
	exitUsage   = 2
)

var (
	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML or YAML configuration file",
	}
	logLevelFlag = cli.StringFlag{
		Name:  "log-level",
		Usage: "log level (debug, info, warn, error); overrides the config file",
	}
	jsonFlag = cli.BoolFlag{
		Name:  "json",
		Usage: "print tokens as JSON",
	}
	dumpFlag = cli.BoolFlag{
		Name:  "dump",
		Usage: "print the AST as a Go structure dump instead of JSON",
	}
)

// session holds what every command needs once global flags are applied.
type session struct {
	cfg    config.Config
	logger *slog.Logger

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func main() {
	s := &session{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	if err := newApp(s).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(exitFailure)
	}
}

func newApp(s *session) *cli.App {
	app := cli.NewApp()
	app.Name = "robo"
	app.Usage = "lex, parse and run robot control programs"
	app.Version = "0.1.0"
	app.Writer = s.stdout
	app.ErrWriter = s.stderr
	app.Flags = []cli.Flag{configFileFlag, logLevelFlag}
	app.Before = s.setup
	app.Commands = []cli.Command{
		{
			Name:      "tokens",
			Usage:     "Tokenize a file and print the tokens",
			ArgsUsage: "<file>",
			Flags:     []cli.Flag{jsonFlag},
			Action:    s.tokens,
		},
		{
			Name:      "parse",
			Usage:     "Parse a file and print its AST",
			ArgsUsage: "<file>",
			Flags:     []cli.Flag{dumpFlag},
			Action:    s.parse,
		},
		{
			Name:      "run",
			Usage:     "Run a source file",
			ArgsUsage: "<file>",
			Action:    s.run,
		},
		{
			Name:   "repl",
			Usage:  "Start an interactive session",
			Action: s.repl,
		},
	}
	return app
}

// setup loads the configuration and builds the logger.
func (s *session) setup(ctx *cli.Context) error {
	s.cfg = config.Default()
	if file := ctx.GlobalString(configFileFlag.Name); file != "" {
		cfg, err := config.Load(file)
		if err != nil {
			return cli.NewExitError(color.RedString("error: %v", err), exitFailure)
		}
		s.cfg = cfg
	}
	if ctx.GlobalIsSet(logLevelFlag.Name) {
		s.cfg.Log.Level = ctx.GlobalString(logLevelFlag.Name)
		if _, err := s.cfg.Log.SlogLevel(); err != nil {
			return cli.NewExitError(color.RedString("error: %v", err), exitUsage)
		}
	}
	s.logger = s.cfg.Log.Logger(s.stderr)
	return nil
}

// fileArg returns the single file argument of ctx, or a usage error.
func fileArg(ctx *cli.Context) (string, error) {
	if ctx.NArg() != 1 {
		cli.ShowCommandHelp(ctx, ctx.Command.Name)
		return "", cli.NewExitError(
			fmt.Sprintf("%s: expected exactly one file argument, got %d", ctx.Command.Name, ctx.NArg()),
			exitUsage)
	}
	return ctx.Args().First(), nil
}

func readSource(ctx *cli.Context) (string, string, error) {
	path, err := fileArg(ctx)
	if err != nil {
		return "", "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", failure(fmt.Errorf("cannot read file %s: %w", path, err))
	}
	return path, string(data), nil
}

// failure reports err on the error stream and exits with status 1.
func failure(err error) error {
	return cli.NewExitError(color.RedString("error: %v", err), exitFailure)
}

// ---- tokens command ----

func (s *session) tokens(ctx *cli.Context) error {
	path, source, err := readSource(ctx)
	if err != nil {
		return err
	}
	tokens, lexErr := lexer.New(prepro.Filter(source), path).Tokenize()

	var diags []diag.Diagnostic
	var d *diag.Diagnostic
	if errors.As(lexErr, &d) {
		diags = append(diags, *d)
	}
	if ctx.Bool(jsonFlag.Name) {
		if err := printTokensJSON(s.stdout, tokens, diags); err != nil {
			return failure(err)
		}
	} else {
		printTokenTable(s.stdout, tokens)
	}

	if lexErr != nil {
		return failure(lexErr)
	}
	return nil
}

// ---- parse command ----

func (s *session) parse(ctx *cli.Context) error {
	path, source, err := readSource(ctx)
	if err != nil {
		return err
	}
	prog, warnings, err := parser.ParseString(source, path)
	printWarnings(s.stderr, warnings)
	if err != nil {
		return failure(err)
	}

	if ctx.Bool(dumpFlag.Name) {
		dumpAST(s.stdout, prog)
		return nil
	}
	if err := printAST(s.stdout, prog); err != nil {
		return failure(err)
	}
	return nil
}

// ---- run command ----

func (s *session) run(ctx *cli.Context) error {
	path, source, err := readSource(ctx)
	if err != nil {
		return err
	}
	prog, warnings, err := parser.ParseString(source, path)
	printWarnings(s.stderr, warnings)
	if err != nil {
		return failure(err)
	}

	opts := append(s.cfg.Robot.SimulatorOptions(), robot.WithInput(s.stdin))
	sim := robot.New(s.stdout, opts...)
	interp := runtime.NewInterpreter(s.stdout, s.interpOptions(sim)...)

	s.logger.Info("running program", slog.String("file", path), slog.Int("funcs", prog.Funcs.Len()))
	if err := interp.Run(prog); err != nil {
		return failure(err)
	}
	s.logger.Debug("program finished", slog.Any("trace", sim.Trace()))
	return nil
}

func (s *session) interpOptions(host runtime.Host) []runtime.Option {
	return []runtime.Option{
		runtime.WithHost(host),
		runtime.WithLogger(s.logger),
		runtime.WithMaxDepth(s.cfg.Run.MaxCallDepth),
	}
}
