package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

const usage = `Usage: paramstore COMMAND [flags]

Commands:
  serve                                  run the admin HTTP API
  migrate up|down|status|version         manage the database schema
  load [--file F | --json J] [--no-update]
                                         import parameters from JSON or YAML
  dump FILE [--indent N]                 export parameters as JSON
  rotate-key [--old-key K] [--backup-file F]
                                         rotate the encryption key in two steps
  token --subject S                      print an admin API token

Every command accepts --config FILE. Without it $PARAMSTORE_CONFIG or
./paramstore.yaml is read when present.
`

// errUsage marks command line mistakes; run prints the usage text for them.
var errUsage = errors.New("usage error")

type command func(ctx context.Context, cli *cli, args []string) error

var commands = map[string]command{
	"serve":      runServe,
	"migrate":    runMigrate,
	"load":       runLoad,
	"dump":       runDump,
	"rotate-key": runRotateKey,
	"token":      runToken,
}

// cli carries the output streams of one invocation.
type cli struct {
	stdout io.Writer
	stderr io.Writer
}

func (c *cli) printf(format string, args ...any) {
	fmt.Fprintf(c.stdout, format, args...)
}

// flagSet returns a flag set for command name with the shared --config flag.
func (c *cli) flagSet(name string, configPath *string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.StringVar(configPath, "config", "", "configuration file")
	return fs
}

// failure is an error whose message is written for the operator as is.
type failure struct{ msg string }

func (f failure) Error() string { return f.msg }

func fail(format string, args ...any) error {
	return failure{msg: fmt.Sprintf(format, args...)}
}

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

// run executes one command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	c := &cli{stdout: stdout, stderr: stderr}

	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}
	switch args[0] {
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return exitOK
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return exitUsage
	}

	err := cmd(ctx, c, args[1:])
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, pflag.ErrHelp):
		return exitOK
	case errors.Is(err, errUsage):
		fmt.Fprintf(stderr, "Error: %v\n\n%s", err, usage)
		return exitUsage
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
}
