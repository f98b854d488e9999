// Package network blocks start-up until the host has a routable address.
package network

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"time"
)

// DefaultInterval is the delay between association checks.
const DefaultInterval = 500 * time.Millisecond

// Indicator colors the ring while waiting.
type Indicator interface {
	SetUniform(r, g, b, w uint8)
}

// Options configures WaitForNetwork.
type Options struct {
	// Interface restricts the check to one interface name. Empty means any.
	Interface string
	Interval  time.Duration
	Logger    *slog.Logger
}

// interfaceAddrs is replaced in tests.
var interfaceAddrs = systemAddrs

// WaitForNetwork polls until a non-loopback interface holds a global
// unicast address, showing dim red on every failed attempt and dim green on
// success. It blocks until an address appears or ctx is cancelled.
func WaitForNetwork(ctx context.Context, ind Indicator, opts Options) (netip.Addr, error) {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	attempts := 0
	for {
		addr, err := firstGlobalAddr(opts.Interface)
		if err == nil {
			ind.SetUniform(0, 10, 0, 0)
			logger.Info("Network ready", "address", addr.String(), "attempts", attempts+1)
			return addr, nil
		}

		ind.SetUniform(10, 0, 0, 0)
		if attempts == 0 {
			logger.Info("Waiting for network", "interface", opts.Interface, "reason", err)
		} else {
			logger.Debug("Still waiting for network", "attempt", attempts+1, "reason", err)
		}
		attempts++

		select {
		case <-ctx.Done():
			return netip.Addr{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func firstGlobalAddr(ifname string) (netip.Addr, error) {
	byIface, err := interfaceAddrs()
	if err != nil {
		return netip.Addr{}, fmt.Errorf("failed to list interfaces: %w", err)
	}

	var v6 netip.Addr
	for name, addrs := range byIface {
		if ifname != "" && name != ifname {
			continue
		}
		for _, a := range addrs {
			if !a.IsGlobalUnicast() {
				continue
			}
			if a.Is4() {
				return a, nil
			}
			if !v6.IsValid() {
				v6 = a
			}
		}
	}
	if v6.IsValid() {
		return v6, nil
	}
	return netip.Addr{}, fmt.Errorf("no global address")
}

// systemAddrs returns the addresses of every up, non-loopback interface.
func systemAddrs() (map[string][]netip.Addr, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	out := make(map[string][]netip.Addr, len(ifaces))
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipnet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			if addr, ok := netip.AddrFromSlice(ipnet.IP); ok {
				out[iface.Name] = append(out[iface.Name], addr.Unmap())
			}
		}
	}
	return out, nil
}
