package listener

import (
	"fmt"

	"github.com/grandcat/zeroconf"
)

// Advertiser publishes a bound listener on the local network. The returned
// function withdraws the advertisement.
type Advertiser interface {
	Advertise(port int) (withdraw func(), err error)
}

// Zeroconf advertises over mDNS / DNS-SD.
type Zeroconf struct {
	Instance string   // e.g. "AppNetworkMonitor"
	Service  string   // e.g. "_appmonitor._tcp"
	Domain   string   // e.g. "local."
	Text     []string // optional TXT records
}

// Advertise registers the service instance on every multicast interface.
func (z Zeroconf) Advertise(port int) (func(), error) {
	server, err := zeroconf.Register(z.Instance, z.Service, z.Domain, port, z.Text, nil)
	if err != nil {
		return nil, fmt.Errorf("registering %s.%s%s: %w", z.Instance, z.Service, z.Domain, err)
	}
	return server.Shutdown, nil
}

// AdvertiserFunc adapts a function to Advertiser.
type AdvertiserFunc func(port int) (func(), error)

func (f AdvertiserFunc) Advertise(port int) (func(), error) { return f(port) }
