package client

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/grandcat/zeroconf"
)

// Discover browses the local network for a monitor advertising service in
// domain and returns the first address found. It blocks until one answers
// or ctx is done.
func Discover(ctx context.Context, service, domain string) (string, error) {
	resolver, err := zeroconf.NewResolver()
	if err != nil {
		return "", fmt.Errorf("creating mDNS resolver: %w", err)
	}

	browseCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	if err := resolver.Browse(browseCtx, service, domain, entries); err != nil {
		return "", fmt.Errorf("browsing %s: %w", service, err)
	}

	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				return "", fmt.Errorf("no %s service found: %w", service, ctx.Err())
			}
			if addr := entryAddr(entry); addr != "" {
				return addr, nil
			}
		case <-ctx.Done():
			return "", fmt.Errorf("no %s service found: %w", service, ctx.Err())
		}
	}
}

func entryAddr(entry *zeroconf.ServiceEntry) string {
	if entry == nil || entry.Port == 0 {
		return ""
	}
	port := strconv.Itoa(entry.Port)
	if len(entry.AddrIPv4) > 0 {
		return net.JoinHostPort(entry.AddrIPv4[0].String(), port)
	}
	if len(entry.AddrIPv6) > 0 {
		return net.JoinHostPort(entry.AddrIPv6[0].String(), port)
	}
	return ""
}
