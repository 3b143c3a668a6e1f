package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

// tick talks to a running ledger service. "run" processes everything due and
// is meant for cron or a cloud scheduler job.
func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	commander.Register(commander.HelpCommand(), "")
	commander.Register(&runCmd{}, "")
	commander.Register(&dueCmd{}, "")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
