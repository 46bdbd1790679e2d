package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/appmonitor/internal/config"
	"github.com/sadopc/appmonitor/internal/monitor"
	"github.com/sadopc/appmonitor/internal/ui/theme"
	"github.com/sadopc/appmonitor/internal/ui/viewer"
)

func tuiCmd(args []string) {
	fs := flag.NewFlagSet("tui", flag.ExitOnError)
	var sf serverFlags
	sf.register(fs)
	themeFlag := fs.String("theme", "", "Color theme (catppuccin-mocha, catppuccin-latte, nord, dracula or a custom theme)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: appmonitor tui [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Receive HTTP transaction records and browse them interactively.\n")
		fmt.Fprintf(os.Stderr, "Logs are written to log_file (default %s).\n\n", config.DefaultLogFile())
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys:\n")
		fmt.Fprintf(os.Stderr, "  j/k      move            tab      next detail tab\n")
		fmt.Fprintf(os.Stderr, "  /        search          f        host filter\n")
		fmt.Fprintf(os.Stderr, "  y        copy as cURL    s        start/stop server\n")
		fmt.Fprintf(os.Stderr, "  x        clear records   q        quit\n")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}

	cfg, err := sf.load()
	if err != nil {
		fatalf("%v", err)
	}
	if *themeFlag != "" {
		cfg.Theme = *themeFlag
	}

	logPath := cfg.LogFile
	if logPath == "" {
		logPath = config.DefaultLogFile()
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		fatalf("creating log directory: %v", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fatalf("opening log file: %v", err)
	}
	defer logFile.Close()
	logger := newLogger(cfg, logFile)

	svc := monitor.New(cfg, monitor.WithLogger(logger))
	feed := viewer.NewFeed(svc, svc.Records())
	svc.OnRecord(feed.OnRecord)
	svc.OnRunning(feed.OnRunning)

	model := viewer.New(svc, svc.Records(), theme.Resolve(cfg.Theme))
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go feed.Run(ctx, p)

	svc.Start()
	feed.Notify()
	logger.Info("viewer started", "status", svc.Status())

	_, err = p.Run()
	cancel()
	svc.Stop()
	if err != nil {
		fatalf("%v", err)
	}
}
