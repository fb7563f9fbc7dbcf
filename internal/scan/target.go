// Package scan implements the scanner driver: target expansion
// (CIDR/port-range/nmap), the optional ICMP pre-filter contract, and
// wiring the expanded targets into the poll pipeline (spec.md §4.4,
// §6 scanner CLI).
package scan

import (
	"fmt"
	"math/rand/v2"
	"net"
	"strconv"
	"strings"
)

// Target is one (host, port) pair to probe.
type Target struct {
	Host string
	Port uint16
}

// ExpandPorts parses spec.md §6 port specs ("N" or "N-M"), validating
// 1 <= port <= 65535, and returns the flattened, deduplicated port
// list in first-seen order.
func ExpandPorts(specs []string) ([]uint16, error) {
	seen := make(map[uint16]struct{})
	var out []uint16
	for _, spec := range specs {
		lo, hi, err := parsePortSpec(spec)
		if err != nil {
			return nil, err
		}
		for p := lo; p <= hi; p++ {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out, nil
}

func parsePortSpec(spec string) (lo, hi uint16, err error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 0, 0, fmt.Errorf("scan: empty port spec")
	}
	if idx := strings.IndexByte(spec, '-'); idx >= 0 {
		loStr, hiStr := spec[:idx], spec[idx+1:]
		loN, err := parsePort(loStr)
		if err != nil {
			return 0, 0, err
		}
		hiN, err := parsePort(hiStr)
		if err != nil {
			return 0, 0, err
		}
		if loN > hiN {
			return 0, 0, fmt.Errorf("scan: port range %q is reversed", spec)
		}
		return loN, hiN, nil
	}
	n, err := parsePort(spec)
	if err != nil {
		return 0, 0, err
	}
	return n, n, nil
}

func parsePort(s string) (uint16, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("scan: invalid port %q: %w", s, err)
	}
	if n < 1 || n > 65535 {
		return 0, fmt.Errorf("scan: port %d out of range 1-65535", n)
	}
	return uint16(n), nil
}

// ExpandHosts expands a --target spec into individual host strings:
// a CIDR expands to every address in the block, a single IP or DNS
// name passes through verbatim (spec.md §6, §8 scenario 6).
func ExpandHosts(target string) ([]string, error) {
	if ip, ipnet, err := net.ParseCIDR(target); err == nil {
		return expandCIDR(ip, ipnet), nil
	}
	// Single IP or DNS name: preserved verbatim, never resolved here
	// (spec.md §3 Host: "a DNS name preserved verbatim if it wasn't
	// resolved to a literal").
	if strings.TrimSpace(target) == "" {
		return nil, fmt.Errorf("scan: empty target")
	}
	return []string{target}, nil
}

// expandCIDR enumerates every address in ipnet, including network and
// broadcast addresses for IPv4 (matching spec.md §8 scenario 6's
// "10.0.0.0/30 -> exactly four host addresses").
func expandCIDR(ip net.IP, ipnet *net.IPNet) []string {
	var out []string
	for cur := cloneIP(ipnet.IP); ipnet.Contains(cur); incIP(cur) {
		out = append(out, cur.String())
	}
	return out
}

func cloneIP(ip net.IP) net.IP {
	out := make(net.IP, len(ip))
	copy(out, ip)
	return out
}

func incIP(ip net.IP) {
	for i := len(ip) - 1; i >= 0; i-- {
		ip[i]++
		if ip[i] != 0 {
			return
		}
	}
}

// BuildTargets computes the full cross-product of hosts x ports,
// optionally randomizing host and/or port iteration order
// independently (spec.md §6 --randomize-hosts / --randomize-ports).
func BuildTargets(hosts []string, ports []uint16, randomizeHosts, randomizePorts bool) []Target {
	hosts = append([]string(nil), hosts...)
	ports = append([]uint16(nil), ports...)
	if randomizeHosts {
		rand.Shuffle(len(hosts), func(i, j int) { hosts[i], hosts[j] = hosts[j], hosts[i] })
	}
	if randomizePorts {
		rand.Shuffle(len(ports), func(i, j int) { ports[i], ports[j] = ports[j], ports[i] })
	}
	targets := make([]Target, 0, len(hosts)*len(ports))
	for _, h := range hosts {
		for _, p := range ports {
			targets = append(targets, Target{Host: h, Port: p})
		}
	}
	return targets
}
