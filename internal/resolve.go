package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"
)

// Family constrains name resolution to a single address family.
type Family int

const (
	FamilyUnspec Family = iota
	FamilyIPv4
	FamilyIPv6
)

func (f Family) String() string {
	switch f {
	case FamilyIPv4:
		return "IPv4"
	case FamilyIPv6:
		return "IPv6"
	default:
		return "UNKNOWN"
	}
}

// network returns the lookup network passed to the resolver.
func (f Family) network() string {
	switch f {
	case FamilyIPv4:
		return "ip4"
	case FamilyIPv6:
		return "ip6"
	default:
		return "ip"
	}
}

// maxAddrLen bounds the extracted address text. Longer input is rejected
// instead of being truncated.
const maxAddrLen = 127

var (
	ErrMissingBracket = errors.New("IPv6 address has no closing bracket")
	ErrTrailingText   = errors.New("invalid end of bracketed IPv6 address")
	ErrAddressTooLong = errors.New("address too long to be resolved")
)

// parseListenAddr extracts the host part of a textual listen address and the
// address family it implies.
//
// The text is ambiguous: "::1" is an IPv6 literal while "host:9000" carries a
// port. A leading bracket forces IPv6 and the bracket pair delimits the host.
// Without brackets, a single colon separates host and port text; two or more
// colons mean the whole string is an unbracketed IPv6 literal. Port text
// after the host is parsed over but not returned, the caller supplies the
// port to bind separately.
func parseListenAddr(address string) (host string, family Family, err error) {
	if strings.HasPrefix(address, "[") {
		end := strings.IndexByte(address, ']')
		if end < 0 {
			return "", FamilyUnspec, fmt.Errorf("%w (%s)", ErrMissingBracket, address)
		}
		if end+1 != len(address) && address[end+1] != ':' {
			return "", FamilyUnspec, fmt.Errorf("%w (%s)", ErrTrailingText, address)
		}

		host = address[1:end]
		family = FamilyIPv6
	} else {
		host = address
		family = FamilyUnspec

		if first := strings.IndexByte(address, ':'); first >= 0 {
			if strings.IndexByte(address[first+1:], ':') < 0 {
				host = address[:first]
			} else {
				family = FamilyIPv6
			}
		}
	}

	if len(host) > maxAddrLen {
		return "", FamilyUnspec, fmt.Errorf("%w (%s)", ErrAddressTooLong, address)
	}
	return host, family, nil
}

// buildSockaddr resolves a host and port through the platform resolver. An
// empty host means the wildcard address of the requested family. The first
// resolver result wins.
func buildSockaddr(host, port string, family Family) (netip.AddrPort, error) {
	portNum, err := net.LookupPort("udp", port)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("can't resolve port %q: %w", port, err)
	}

	if host == "" {
		addr := netip.IPv4Unspecified()
		if family == FamilyIPv6 {
			addr = netip.IPv6Unspecified()
		}
		return netip.AddrPortFrom(addr, uint16(portNum)), nil
	}

	addrs, err := net.DefaultResolver.LookupNetIP(context.Background(), family.network(), host)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("can't resolve %s:%s: %w", host, port, err)
	}
	if len(addrs) == 0 {
		return netip.AddrPort{}, fmt.Errorf("can't resolve %s:%s: no addresses found", host, port)
	}

	return netip.AddrPortFrom(addrs[0].Unmap(), uint16(portNum)), nil
}

// StringToSockaddr resolves a textual listen address against a separately
// supplied port or service name. The second return value is the bare host
// text without any port, kept around for diagnostics.
func StringToSockaddr(address, port string) (netip.AddrPort, string, error) {
	host, family, err := parseListenAddr(address)
	if err != nil {
		return netip.AddrPort{}, "", err
	}
	if host == "" {
		// An empty host is the wildcard marker internally, a declared
		// address must not resolve to it.
		return netip.AddrPort{}, "", fmt.Errorf("can't resolve %q: empty address", address)
	}

	addr, err := buildSockaddr(host, port, family)
	if err != nil {
		return netip.AddrPort{}, "", err
	}
	return addr, host, nil
}
