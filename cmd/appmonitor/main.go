package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sadopc/appmonitor/pkg/version"
)

func main() {
	if len(os.Args) > 1 && !strings.HasPrefix(os.Args[1], "-") {
		switch os.Args[1] {
		case "serve":
			serveCmd(os.Args[2:])
			return
		case "tui":
			tuiCmd(os.Args[2:])
			return
		case "send":
			sendCmd(os.Args[2:])
			return
		case "version":
			fmt.Println(version.String())
			return
		case "help":
			printHelp()
			return
		default:
			fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", os.Args[1])
			printHelp()
			os.Exit(2)
		}
	}
	serveCmd(os.Args[1:])
}

func printHelp() {
	fmt.Fprintf(os.Stderr, `appmonitor - Live HTTP traffic monitor for instrumented apps

Usage:
  appmonitor [flags]                    Run the ingestion server (same as serve)
  appmonitor <command> [args] [flags]   Run a subcommand

Commands:
  serve     Receive records and print one line per transaction
  tui       Receive records and browse them interactively
  send      Send a sample transaction to a running monitor
  version   Print version information
  help      Show this help message

Records arrive over framed TCP (advertised via mDNS as _appmonitor._tcp)
or WebSocket (port 9876 by default). Configuration is read from
~/.config/appmonitor/config.yaml.

Run 'appmonitor <command> --help' for more information about a command.
`)
}
