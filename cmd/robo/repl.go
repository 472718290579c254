package main

import (
	"errors"
	"fmt"
	"io"
	"robo-lang/internal/parser"
	"robo-lang/internal/robot"
	"robo-lang/internal/runtime"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"gopkg.in/urfave/cli.v1"
)

var (
	bannerColor = color.New(color.FgCyan, color.Bold)
	promptColor = color.New(color.FgGreen)
	mutedColor  = color.New(color.FgHiBlack)
	errorColor  = color.New(color.FgRed)
)

// replHost is the simulator with Scan() wired to the line editor.
type replHost struct {
	*robot.Simulator
	rl *readline.Instance
}

func (h replHost) ReadInt() (int64, error) {
	prev := h.rl.Config.Prompt
	defer h.rl.SetPrompt(prev)
	h.rl.SetPrompt(mutedColor.Sprint("int? "))

	line, err := h.rl.Readline()
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(strings.TrimSpace(line), 10, 64)
}

// ---- repl command ----

// repl reads statements until 'exit' or EOF. The root scope persists
// between inputs; main is never called automatically.
func (s *session) repl(ctx *cli.Context) error {
	prompt := promptColor.Sprint(s.cfg.REPL.Prompt)
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       s.cfg.REPL.HistoryFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return failure(fmt.Errorf("readline init failed: %w", err))
	}
	defer rl.Close()

	bannerColor.Fprint(rl.Stdout(), "robo REPL")
	mutedColor.Fprintln(rl.Stdout(), " (type 'exit' or Ctrl+D to quit)")
	fmt.Fprintln(rl.Stdout())

	host := replHost{
		Simulator: robot.New(rl.Stdout(), s.cfg.Robot.SimulatorOptions()...),
		rl:        rl,
	}
	interp := runtime.NewInterpreter(rl.Stdout(), s.interpOptions(host)...)

	var accumulated strings.Builder
	braceDepth := 0

	for {
		// Update prompt based on multi-line state
		if braceDepth > 0 {
			rl.SetPrompt(mutedColor.Sprint("...   "))
		} else {
			rl.SetPrompt(prompt)
		}

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if braceDepth > 0 {
					// Cancel multi-line input
					accumulated.Reset()
					braceDepth = 0
					continue
				}
				mutedColor.Fprintln(rl.Stdout(), "(use 'exit' or Ctrl+D to quit)")
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(rl.Stdout())
			}
			return nil
		}

		if braceDepth == 0 && strings.TrimSpace(line) == "exit" {
			return nil
		}

		// Count braces for multi-line input
		braceDepth += strings.Count(line, "{") - strings.Count(line, "}")
		accumulated.WriteString(line)
		accumulated.WriteString("\n")
		if braceDepth > 0 {
			continue
		}
		braceDepth = 0

		source := accumulated.String()
		accumulated.Reset()
		if strings.TrimSpace(source) == "" {
			continue
		}

		prog, warnings, err := parser.ParseString(source, "<repl>")
		printWarnings(rl.Stderr(), warnings)
		if err != nil {
			errorColor.Fprintln(rl.Stderr(), err.Error())
			continue
		}
		if err := interp.Exec(prog); err != nil {
			errorColor.Fprintf(rl.Stderr(), "error: %s\n", err)
		}
	}
}
