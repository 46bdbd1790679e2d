package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/sadopc/appmonitor/internal/export/har"
	"github.com/sadopc/appmonitor/internal/monitor"
	"github.com/sadopc/appmonitor/internal/record"
	"github.com/sadopc/appmonitor/pkg/version"
)

func serveCmd(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	var sf serverFlags
	sf.register(fs)
	harFlag := fs.String("har", "", "Write captured records as HAR to this path on shutdown")
	quietFlag := fs.Bool("quiet", false, "Do not print a line per record")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: appmonitor serve [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Receive HTTP transaction records and print one line per record.\n")
		fmt.Fprintf(os.Stderr, "Logs go to stderr, record lines to stdout.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  appmonitor serve\n")
		fmt.Fprintf(os.Stderr, "  appmonitor serve --tcp-port 7000 --no-advertise\n")
		fmt.Fprintf(os.Stderr, "  appmonitor serve --har capture.har\n")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}

	cfg, err := sf.load()
	if err != nil {
		fatalf("%v", err)
	}
	logger := newLogger(cfg, os.Stderr)

	svc := monitor.New(cfg, monitor.WithLogger(logger))
	if !*quietFlag {
		svc.OnRecord(func(r record.LogRecord) {
			fmt.Fprintln(os.Stdout, formatLine(r))
		})
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	svc.Start()
	logger.Info("monitor started", "status", svc.Status())
	<-ctx.Done()
	svc.Stop()
	logger.Info("monitor stopped", "records", svc.Records().Len())

	if *harFlag != "" {
		if err := writeHAR(*harFlag, svc.Records().Records()); err != nil {
			fatalf("%v", err)
		}
		logger.Info("har written", "path", *harFlag, "records", svc.Records().Len())
	}
}

// formatLine renders one record for the serve output.
func formatLine(r record.LogRecord) string {
	status := "PENDING"
	dur := "-"
	if !r.IsPending() {
		status = fmt.Sprintf("%d", r.StatusCode)
		dur = formatDuration(r)
	}
	line := fmt.Sprintf("%s  %-7s %-7s %8s  %s", r.FormattedTime(), r.Method, status, dur, r.URL)
	if n := len(r.ResponseBodyText()); n > 0 {
		line += "  (" + humanize.Bytes(uint64(n)) + ")"
	}
	return line
}

func formatDuration(r record.LogRecord) string {
	d := r.Elapsed()
	if d.Seconds() < 1 {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

func writeHAR(path string, records []record.LogRecord) error {
	har.Creator.Version = version.Version
	data, err := har.Export(records)
	if err != nil {
		return fmt.Errorf("exporting HAR: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
