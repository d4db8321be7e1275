package internal

import (
	"errors"
	"net/netip"
	"strings"
	"testing"
)

func TestParseListenAddr(t *testing.T) {
	tests := []struct {
		input  string
		host   string
		family Family
		valid  bool
	}{
		{"127.0.0.1", "127.0.0.1", FamilyUnspec, true},
		{"[::1]", "::1", FamilyIPv6, true},
		{"[::1]:27950", "::1", FamilyIPv6, true},
		{"::1", "::1", FamilyIPv6, true},
		{"2001:db8::1", "2001:db8::1", FamilyIPv6, true},
		{"host:9000", "host", FamilyUnspec, true},
		{"host", "host", FamilyUnspec, true},
		{"example.com:27950", "example.com", FamilyUnspec, true},
		{"[::1", "", FamilyUnspec, false},
		{"[::1]x:9000", "", FamilyUnspec, false},
		{strings.Repeat("a", 200), "", FamilyUnspec, false},
		{"[" + strings.Repeat("a", 200) + "]", "", FamilyUnspec, false},
	}

	for _, test := range tests {
		host, family, err := parseListenAddr(test.input)
		if (err == nil) != test.valid {
			t.Fatalf("%q: error %v, expected valid %t", test.input, err, test.valid)
		}

		if !test.valid {
			continue
		}

		if host != test.host {
			t.Fatalf("%q: host %q instead of %q", test.input, host, test.host)
		}
		if family != test.family {
			t.Fatalf("%q: family %v instead of %v", test.input, family, test.family)
		}
	}
}

func TestParseListenAddrErrors(t *testing.T) {
	tests := []struct {
		input string
		err   error
	}{
		{"[::1", ErrMissingBracket},
		{"[::1]x:9000", ErrTrailingText},
		{strings.Repeat("a", 128), ErrAddressTooLong},
	}

	for _, test := range tests {
		if _, _, err := parseListenAddr(test.input); !errors.Is(err, test.err) {
			t.Fatalf("%q resulted in %v instead of %v", test.input, err, test.err)
		}
	}
}

func TestStringToSockaddr(t *testing.T) {
	tests := []struct {
		address string
		port    string
		want    string
		noPort  string
		valid   bool
	}{
		{"127.0.0.1", "9000", "127.0.0.1:9000", "127.0.0.1", true},
		{"[::1]", "9000", "[::1]:9000", "::1", true},
		// The port to bind comes from the port list; embedded port text in a
		// declared address does not override it.
		{"[::1]:27950", "9000", "[::1]:9000", "::1", true},
		{"::1", "9000", "[::1]:9000", "::1", true},
		{"localhost:27950", "9000", "", "localhost", true},
		{"[::1", "9000", "", "", false},
		{":9000", "9000", "", "", false},
		{"127.0.0.1", "notaport", "", "", false},
	}

	for _, test := range tests {
		addr, noPort, err := StringToSockaddr(test.address, test.port)
		if (err == nil) != test.valid {
			t.Fatalf("%q: error %v, expected valid %t", test.address, err, test.valid)
		}

		if !test.valid {
			continue
		}

		if noPort != test.noPort {
			t.Fatalf("%q: name without port is %q instead of %q", test.address, noPort, test.noPort)
		}
		if test.want != "" && addr.String() != test.want {
			t.Fatalf("%q resolved to %s instead of %s", test.address, addr, test.want)
		}
	}
}

func TestBuildSockaddrWildcard(t *testing.T) {
	tests := []struct {
		family Family
		want   netip.AddrPort
	}{
		{FamilyIPv4, netip.AddrPortFrom(netip.IPv4Unspecified(), 27950)},
		{FamilyIPv6, netip.AddrPortFrom(netip.IPv6Unspecified(), 27950)},
	}

	for _, test := range tests {
		addr, err := buildSockaddr("", "27950", test.family)
		if err != nil {
			t.Fatalf("%v: %v", test.family, err)
		}
		if addr != test.want {
			t.Fatalf("%v resolved to %v instead of %v", test.family, addr, test.want)
		}
	}
}

func TestBuildSockaddrService(t *testing.T) {
	addr, err := buildSockaddr("127.0.0.1", "domain", FamilyUnspec)
	if err != nil {
		t.Fatalf("service lookup errored: %v", err)
	}
	if addr.Port() != 53 {
		t.Fatalf("service \"domain\" resolved to port %d", addr.Port())
	}
}
