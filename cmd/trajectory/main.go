// Command trajectory estimates a ball's trajectory and kinematics from a
// video clip and keeps a history of processed runs.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/banshee-data/trajectory.report/internal/version"
)

func main() {
	args := os.Args[1:]
	command := "run"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command, args = args[0], args[1:]
	}

	switch command {
	case "run":
		os.Exit(handleRun(args))
	case "runs":
		os.Exit(handleRuns(args))
	case "show":
		os.Exit(handleShow(args))
	case "rm":
		os.Exit(handleRm(args))
	case "version":
		fmt.Println(version.String())
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`trajectory - ball trajectory and kinematics from video

Usage: trajectory [command] [options]

Commands:
  run        Track a clip and write CSV, annotated video and plots (default)
  runs       List runs stored in the history database
  show       Print one stored run; optionally re-export its rows
  rm         Delete stored runs by id
  version    Show version
  help       Show this help message

Run "trajectory <command> -h" for command options.`)
}
