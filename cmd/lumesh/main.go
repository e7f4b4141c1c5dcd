// Command lumesh is the interactive shell's entry point (spec §6).
//
// Grounded on the teacher's cli/main.go: a single cobra root command that
// resolves input (file, piped stdin, or REPL), runs it, and propagates
// the resulting exit code after process cleanup rather than os.Exit-ing
// mid-flight. newCancellableContext's SIGINT-forwarding idea is carried
// by internal/exec.WatchInterrupts instead of a context.CancelFunc,
// since lumesh's execution model has no context-threaded call chain to
// cancel (spec §5: only the one foreground child process is
// interruptible).
package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/lumesh-lang/lumesh/internal/env"
	"github.com/lumesh-lang/lumesh/internal/eval"
	"github.com/lumesh-lang/lumesh/internal/exec"
	"github.com/lumesh-lang/lumesh/internal/lmerr"
	"github.com/lumesh-lang/lumesh/internal/module"
	"github.com/lumesh-lang/lumesh/internal/parser"
	"github.com/lumesh-lang/lumesh/internal/stdlib"
	"github.com/lumesh-lang/lumesh/internal/value"
)

var promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

func main() {
	var (
		cmdString   string
		interactive bool
		strict      bool
		noColor     bool
	)

	root := &cobra.Command{
		Use:           "lumesh [script] [-- args...]",
		Short:         "The lumesh interactive shell",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, cmdString, interactive, strict, noColor)
		},
	}

	root.Flags().StringVarP(&cmdString, "command", "c", "", "run CMD and exit")
	root.Flags().BoolVarP(&interactive, "interactive", "i", false, "enter the REPL after running a script")
	root.Flags().BoolVarP(&strict, "strict", "s", false, "enable strict mode (redeclare/undeclared-assign errors)")
	root.Flags().BoolVar(&noColor, "no-color", false, "disable colored error output")

	exitCode := 0
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, lmerr.Format(err, !noColor))
		exitCode = codeOf(err)
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func codeOf(err error) int {
	switch e := err.(type) {
	case *lmerr.SyntaxError:
		return e.Code()
	case *lmerr.RuntimeError:
		return e.Code()
	default:
		return 1
	}
}

func run(cmd *cobra.Command, args []string, cmdString string, interactive, strict, noColor bool) error {
	var script string
	var scriptArgs []string
	if dash := cmd.ArgsLenAtDash(); dash >= 0 {
		if dash > 0 {
			script = args[0]
		}
		scriptArgs = args[dash:]
	} else if len(args) > 0 {
		script = args[0]
	}

	e := newRootEnv(strict, scriptArgs)
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	runner := exec.New()
	exec.WatchInterrupts()
	ev := eval.New(runner, module.New(runner, log), log)

	switch {
	case cmdString != "":
		_, err := evalSource(ev, e, cmdString)
		return err

	case script != "":
		src, err := os.ReadFile(script)
		if err != nil {
			return err
		}
		e.Define("SCRIPT", value.String{Value: script})
		if _, err := evalSource(ev, e, string(src)); err != nil {
			if !interactive {
				return err
			}
			fmt.Fprintln(os.Stderr, lmerr.Format(err, !noColor))
		}
		if interactive {
			repl(ev, e, noColor)
		}
		return nil

	default:
		repl(ev, e, noColor)
		return nil
	}
}

func newRootEnv(strict bool, scriptArgs []string) *env.Environment {
	e := env.New()
	stdlib.Install(e)
	if strict {
		e.Define("STRICT", value.True)
	}
	argv := make([]value.Value, len(scriptArgs))
	for i, a := range scriptArgs {
		argv[i] = value.String{Value: a}
	}
	e.Define("argv", value.List{Items: argv})
	return e
}

func evalSource(ev *eval.Evaluator, e *env.Environment, src string) (value.Value, error) {
	expr, perr := parser.Parse(src, ev.Log)
	if perr != nil {
		return nil, perr
	}
	return ev.Eval(expr, e, 0, src)
}

// repl implements spec §4.7's REPL recovery contract: a RuntimeError or
// SyntaxError is printed and the environment is left intact for the next
// line, rather than exiting the process.
func repl(ev *eval.Evaluator, e *env.Environment, noColor bool) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(os.Stdout, promptStyle.Render("lumesh> "))
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		v, err := evalSource(ev, e, line)
		if err != nil {
			fmt.Fprintln(os.Stderr, lmerr.Format(err, !noColor))
			continue
		}
		if _, ok := v.(value.None); !ok {
			fmt.Fprintln(os.Stdout, value.Display(v))
		}
	}
}
