// Command brexgrep reads one line from standard input and reports whether
// it matches a pattern.
//
// Usage:
//
//	echo "cat and cat" | brexgrep -E '(cat) and \1'
//
// The exit status is 0 when the line matches, 1 when it does not and 2 on
// any error, including an invalid pattern. A matching line is echoed to
// standard output unless -q is given.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tebeka/atexit"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/coregx/brex"
	"github.com/coregx/brex/compiler"
	"github.com/coregx/brex/meta"
)

// Exit codes.
const (
	exitMatch   = 0
	exitNoMatch = 1
	exitError   = 2
)

var matchStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#98FB98"))

type options struct {
	pattern  string
	quiet    bool
	debug    bool
	dump     bool
	maxSteps int
}

func main() {
	atexit.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command and returns its exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitMatch
		}
		fmt.Fprintln(stderr, "brexgrep:", err)
		return exitError
	}

	logger := newLogger(stderr, opts.debug)
	defer func() { _ = logger.Sync() }()
	compiler.SetLogger(logger.Named("compiler"))
	meta.SetLogger(logger.Named("meta"))
	defer compiler.SetLogger(nil)
	defer meta.SetLogger(nil)

	config := brex.DefaultConfig()
	config.MaxSteps = opts.maxSteps
	re, err := brex.CompileWithConfig(opts.pattern, config)
	if err != nil {
		logger.Error("invalid pattern", zap.String("pattern", opts.pattern), zap.Error(err))
		return exitError
	}
	if opts.dump {
		fmt.Fprint(stderr, re.Program())
	}

	line, err := readLine(stdin)
	if err != nil {
		logger.Error("reading input", zap.Error(err))
		return exitError
	}

	matched := re.MatchString(line)
	logger.Debug("search finished",
		zap.Bool("matched", matched),
		zap.Stringer("strategy", re.Strategy()),
		zap.Uint64("vm_runs", re.Stats().VMRuns),
		zap.Uint64("step_limit_hits", re.Stats().StepLimitHits))

	if !matched {
		return exitNoMatch
	}
	if !opts.quiet {
		fmt.Fprintln(stdout, render(stdout, line))
	}
	return exitMatch
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("brexgrep", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.pattern, "E", "", "pattern to match")
	fs.BoolVar(&opts.quiet, "q", false, "do not echo the matching line")
	fs.BoolVar(&opts.debug, "debug", false, "log at debug level")
	fs.BoolVar(&opts.dump, "dump", false, "print the compiled program to stderr")
	fs.IntVar(&opts.maxSteps, "max-steps", 0, "abandon a start offset after this many VM steps (0 = unlimited)")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if !isFlagSet(fs, "E") {
		return opts, errors.New("missing -E <pattern>")
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	return opts, nil
}

func isFlagSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// readLine returns the first line of r without its line terminator.
// Input without a trailing newline is still a line.
func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

func newLogger(w io.Writer, debug bool) *zap.Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(w), level)
	return zap.New(core)
}

// render highlights the line when w is an interactive terminal.
func render(w io.Writer, line string) string {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return line
	}
	return matchStyle.Render(line)
}
