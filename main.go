package main

import (
	"context"
	"os"
	"os/signal"
	"runtime/debug"
	"slices"
)

// Build vars.
var (
	//nolint: gochecknoglobals
	Version   = ""
	CommitSHA = ""
)

func buildVersion() string {
	if len(CommitSHA) >= runIDShort {
		vt := "version " + Version
		if Version == "" {
			vt = "unknown (built from source)"
		}
		return vt + " (" + CommitSHA[:runIDShort] + ")"
	}
	if Version == "" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Sum != "" {
			return info.Main.Version
		}
		return "unknown (built from source)"
	}
	return Version
}

func main() {
	cfg, err := ensureConfig()
	if err != nil && !isCompletionCmd(os.Args) && !isManCmd(os.Args) {
		handleError(err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newCLI(&cfg).execute(ctx, os.Args[1:]); err != nil {
		handleError(err)
		stop()
		os.Exit(1) //nolint:gocritic
	}
}

var shells = []string{"bash", "fish", "zsh", "powershell"}

func isCompletionCmd(args []string) bool {
	if len(args) <= 1 {
		return false
	}
	if args[1] == "__complete" {
		return true
	}
	if args[1] != "completion" {
		return false
	}
	isHelp := func(s string) bool { return s == "-h" || s == "--help" }
	switch len(args) {
	case 3: //nolint:mnd
		return slices.Contains(shells, args[2]) || isHelp(args[2]) || args[2] == "help"
	case 4: //nolint:mnd
		return slices.Contains(shells, args[2]) && isHelp(args[3])
	}
	return false
}

func isManCmd(args []string) bool {
	if len(args) == 2 { //nolint:mnd
		return args[1] == "man"
	}
	if len(args) == 3 && args[1] == "man" { //nolint:mnd
		return args[2] == "-h" || args[2] == "--help"
	}
	return false
}
