package internal

import (
	"net/netip"

	log "github.com/sirupsen/logrus"
)

// nonPrintableAddr substitutes for addresses that cannot be rendered.
const nonPrintableAddr = "NON-PRINTABLE ADDRESS"

// SockaddrToString renders an address numerically, without any reverse
// lookup. IPv6 addresses are bracketed and the port is always appended.
// Rendering never fails; invalid input yields a placeholder and a warning.
func SockaddrToString(addr netip.AddrPort) string {
	if !addr.Addr().IsValid() {
		log.Warn("Can't convert address to a printable form")
		return nonPrintableAddr
	}
	return addr.String()
}

// SockaddrPort returns the port in host byte order. Only addresses produced
// by this package's resolver are legal input.
func SockaddrPort(addr netip.AddrPort) uint16 {
	return addr.Port()
}
