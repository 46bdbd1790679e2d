package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/sadopc/appmonitor/internal/client"
	"github.com/sadopc/appmonitor/internal/config"
)

func sendCmd(args []string) {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	transportFlag := fs.String("transport", "tcp", "Transport: tcp or ws")
	addrFlag := fs.String("addr", "", "Monitor address (host:port); tcp discovers via mDNS when empty")
	methodFlag := fs.String("method", "GET", "HTTP method of the sample transaction")
	urlFlag := fs.String("url", "https://api.example.com/v1/users?page=1", "URL of the sample transaction")
	statusFlag := fs.Int("status", 200, "Final status code")
	bodyFlag := fs.String("body", "", "Request body")
	responseFlag := fs.String("response", `{"ok":true}`, "Response body")
	delayFlag := fs.Duration("delay", 500*time.Millisecond, "Time between the pending and final record")
	countFlag := fs.Int("count", 1, "Number of transactions to send")
	timeoutFlag := fs.Duration("timeout", 5*time.Second, "Discovery and connect timeout")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: appmonitor send [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Send sample transactions to a running monitor. Each transaction is a\n")
		fmt.Fprintf(os.Stderr, "pending record followed by its final record with the same id.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  appmonitor send\n")
		fmt.Fprintf(os.Stderr, "  appmonitor send --transport ws --addr 127.0.0.1:9876\n")
		fmt.Fprintf(os.Stderr, "  appmonitor send --method POST --body '{\"name\":\"ada\"}' --status 201 --count 5\n")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}
	if *countFlag < 1 {
		fatalf("count must be at least 1")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	sender, err := dialSender(ctx, *transportFlag, *addrFlag, *timeoutFlag)
	if err != nil {
		fatalf("%v", err)
	}
	defer sender.Close()

	for i := 0; i < *countFlag; i++ {
		tx := client.NewTransaction(*methodFlag, *urlFlag)
		tx.Headers = map[string]string{"Accept": "application/json", "User-Agent": "appmonitor-send"}
		tx.Body = *bodyFlag

		if err := sender.Send(ctx, tx.Pending()); err != nil {
			fatalf("sending pending record: %v", err)
		}
		select {
		case <-time.After(*delayFlag):
		case <-ctx.Done():
			return
		}
		done := tx.Complete(*statusFlag, time.Since(tx.Started),
			map[string]string{"Content-Type": "application/json"}, *responseFlag)
		if err := sender.Send(ctx, done); err != nil {
			fatalf("sending final record: %v", err)
		}
		fmt.Printf("sent %s %s %s -> %d\n", tx.ID, tx.Method, tx.URL, *statusFlag)
	}
}

func dialSender(ctx context.Context, transport, addr string, timeout time.Duration) (client.Sender, error) {
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cfg := config.Load()
	switch transport {
	case "tcp":
		if addr == "" {
			found, err := client.Discover(dialCtx, cfg.ServiceType, cfg.ServiceDomain)
			if err != nil {
				return nil, fmt.Errorf("discovering monitor: %w", err)
			}
			addr = found
		}
		c, err := client.DialTCP(dialCtx, addr)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "ws":
		if addr == "" {
			addr = fmt.Sprintf("127.0.0.1:%d", cfg.WebSocketPort)
		}
		c, err := client.DialWebSocket(dialCtx, "ws://"+addr+"/")
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown transport %q (must be tcp or ws)", transport)
	}
}
