// Command stoap loads a cube database from disk and serves queries
// against it, either interactively on a terminal or over a pair of
// named pipes.
package main

import (
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/grail"
	"v.io/x/lib/cmdline"
)

type runOpts struct {
	serverMode bool
	logLevel   int
}

func newRootCommand(opts *runOpts) *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "stoap",
		Short:    "Query a stoap cube database",
		Long:     "stoap loads a cube database directory and serves cell/area queries against it, interactively or over a pair of named pipes.",
		ArgsName: "dbdir",
		ArgsLong: "dbdir is the path to a directory holding database.csv and its database_CUBE_<id>.csv files.",
	}
	cmd.Flags.BoolVar(&opts.serverMode, "s", false, "Serve queries over /tmp/stoap-in and /tmp/stoap-out instead of a terminal")
	cmd.Flags.BoolVar(&opts.serverMode, "server-mode", false, "Serve queries over /tmp/stoap-in and /tmp/stoap-out instead of a terminal")
	cmd.Flags.IntVar(&opts.logLevel, "v", 0, "Log verbosity, 0 (errors only) through 4 (debug)")
	cmd.Flags.IntVar(&opts.logLevel, "log-level", 0, "Log verbosity, 0 (errors only) through 4 (debug)")

	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("stoap takes exactly one dbdir argument, got %v", argv)
		}
		return run(argv[0], opts)
	})
	return cmd
}

func main() {
	shutdown := grail.Init()
	defer shutdown()

	opts := &runOpts{}
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(newRootCommand(opts))
}
