package protocol

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// DefaultPort is used when the server address omits an explicit port.
const DefaultPort = 3636

// ServerAddress is the parsed form of "host[:port][/channel]".
type ServerAddress struct {
	Host    string
	Port    int
	Channel string
}

// Addr returns the dialable host:port part, bracketing IPv6 hosts.
func (a ServerAddress) Addr() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// ParseServerAddress splits a server address into host, port, and channel.
// The channel defaults to the root channel (empty string) and the port to
// DefaultPort. IPv6 hosts use the bracketed form "[::1]:3636" when a port
// is given; a bare literal like "::1" is taken as host only.
func ParseServerAddress(raw string) (ServerAddress, error) {
	addr := ServerAddress{Port: DefaultPort}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return addr, fmt.Errorf("empty server address")
	}

	if idx := strings.Index(raw, "/"); idx >= 0 {
		addr.Channel = strings.Trim(raw[idx+1:], "/")
		raw = raw[:idx]
	}

	host := raw
	switch {
	case strings.HasPrefix(raw, "["):
		end := strings.Index(raw, "]")
		if end < 0 {
			return addr, fmt.Errorf("unclosed bracket in address %q", raw)
		}
		host = raw[1:end]
		rest := raw[end+1:]
		if rest != "" {
			if !strings.HasPrefix(rest, ":") {
				return addr, fmt.Errorf("malformed address %q", raw)
			}
			port, err := parsePort(rest[1:])
			if err != nil {
				return addr, fmt.Errorf("invalid port in address %q", raw)
			}
			addr.Port = port
		}
	case strings.Count(raw, ":") == 1:
		idx := strings.Index(raw, ":")
		port, err := parsePort(raw[idx+1:])
		if err != nil {
			return addr, fmt.Errorf("invalid port in address %q", raw)
		}
		addr.Port = port
		host = raw[:idx]
	}
	// Two or more colons without brackets is a bare IPv6 literal; the whole
	// string is the host.

	if host == "" {
		return addr, fmt.Errorf("missing host in address %q", raw)
	}
	addr.Host = host

	return addr, nil
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil || port <= 0 || port > 65535 {
		return 0, fmt.Errorf("port %q out of range", s)
	}
	return port, nil
}
