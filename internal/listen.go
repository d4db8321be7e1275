package internal

import (
	"errors"
	"fmt"
	"net/netip"

	log "github.com/sirupsen/logrus"
)

const (
	// MaxListenAddresses caps the number of explicitly declared bind
	// addresses.
	MaxListenAddresses = 8

	// MaxListenSockets caps the address x port expansion.
	MaxListenSockets = 32

	// DefaultMasterPort is the master server's usual UDP port.
	DefaultMasterPort = "27950"
)

var (
	ErrTooManyAddresses = errors.New("too many listening addresses")
	ErrTooManySockets   = errors.New("too many listening sockets")
)

// ListenSocket is one fully resolved bind target.
type ListenSocket struct {
	// Addr is the resolved local address, a wildcard address for
	// auto-selected entries.
	Addr netip.AddrPort

	// Name is the raw text the operator declared, NameNoPort the same text
	// with any port stripped. Both are empty for auto-selected entries.
	Name       string
	NameNoPort string

	// Optional marks auto-selected entries whose address family may be
	// missing on the host.
	Optional bool

	// FD is the socket handle, -1 until CreateSockets reaches the entry.
	FD int
}

// sysNet abstracts the datagram socket syscalls so the activation logic can
// be exercised without touching the network stack.
type sysNet interface {
	Socket(family Family) (int, error)
	SetV6Only(fd int) error
	Bind(fd int, addr netip.AddrPort) error
	Close(fd int) error

	IsAFNoSupport(err error) bool
	IsNoProtoOpt(err error) bool
}

// ListenSet collects the operator's declared listen addresses and expands
// them into bound datagram sockets. The three steps must run in order:
// DeclareAddress any number of times, then Resolve once, then CreateSockets
// once. Not safe for concurrent use.
type ListenSet struct {
	addresses []string

	// Sockets holds the resolved entries in declaration order. After a
	// successful CreateSockets every entry carries a bound handle.
	Sockets []ListenSocket

	sys sysNet
}

func NewListenSet() *ListenSet {
	return &ListenSet{sys: defaultSysNet}
}

// DeclareAddress appends a listen address to the set. Duplicates are legal
// and yield duplicate sockets later on.
func (ls *ListenSet) DeclareAddress(name string) error {
	if len(ls.addresses) >= MaxListenAddresses {
		return fmt.Errorf("%w (max: %d)", ErrTooManyAddresses, MaxListenAddresses)
	}

	ls.addresses = append(ls.addresses, name)
	return nil
}

// Resolve expands the declared addresses against the given ports or service
// names. Without any declared address, one wildcard entry per address family
// and port is produced instead, marked optional so that a missing protocol
// family does not become fatal later. The first unresolvable entry aborts.
func (ls *ListenSet) Resolve(ports []string) error {
	nbAddresses := len(ls.addresses)
	if nbAddresses == 0 {
		nbAddresses = 2 // one wildcard entry per address family
	}
	if n := nbAddresses * len(ports); n > MaxListenSockets {
		return fmt.Errorf("%w (%d, max: %d)", ErrTooManySockets, n, MaxListenSockets)
	}

	if len(ls.addresses) == 0 {
		for _, family := range []Family{FamilyIPv4, FamilyIPv6} {
			for _, port := range ports {
				addr, err := buildSockaddr("", port, family)
				if err != nil {
					return err
				}

				ls.Sockets = append(ls.Sockets, ListenSocket{
					Addr:     addr,
					Optional: true,
					FD:       -1,
				})
			}
		}

		return nil
	}

	for _, name := range ls.addresses {
		for _, port := range ports {
			addr, hostText, err := StringToSockaddr(name, port)
			if err != nil {
				return err
			}

			ls.Sockets = append(ls.Sockets, ListenSocket{
				Addr:       addr,
				Name:       name,
				NameNoPort: hostText,
				FD:         -1,
			})
		}
	}

	return nil
}

// CreateSockets turns every resolved entry into a bound datagram socket.
//
// A creation failure caused by an unsupported address family removes the
// entry with a warning instead of failing, but only for optional entries;
// every other failure closes all sockets created so far and aborts. IPv6
// sockets get their dual-stack behavior disabled so they never compete with
// the IPv4 wildcard socket for mapped traffic.
func (ls *ListenSet) CreateSockets() error {
	for i := 0; i < len(ls.Sockets); {
		sock := &ls.Sockets[i]

		family := FamilyIPv4
		if sock.Addr.Addr().Is6() {
			family = FamilyIPv6
		}

		fd, err := ls.sys.Socket(family)
		if err != nil {
			if sock.Optional && ls.sys.IsAFNoSupport(err) {
				log.WithField("family", family).Warn("Protocol isn't supported")

				ls.Sockets = append(ls.Sockets[:i], ls.Sockets[i+1:]...)
				continue
			}

			ls.CloseAll()
			return fmt.Errorf("socket creation failed: %w", err)
		}

		if family == FamilyIPv6 {
			// A kernel without the option at all already isolates the
			// stacks, so only a real setsockopt failure counts.
			if err := ls.sys.SetV6Only(fd); err != nil && !ls.sys.IsNoProtoOpt(err) {
				_ = ls.sys.Close(fd)
				ls.CloseAll()
				return fmt.Errorf("setsockopt(IPV6_V6ONLY) failed: %w", err)
			}
		}

		addrText := SockaddrToString(sock.Addr)
		if sock.Name != "" {
			log.WithFields(log.Fields{
				"address":  sock.NameNoPort,
				"resolved": addrText,
			}).Info("Listening on address")
		} else {
			log.WithFields(log.Fields{
				"family":   family,
				"resolved": addrText,
			}).Info("Listening on all addresses")
		}

		if err := ls.sys.Bind(fd, sock.Addr); err != nil {
			_ = ls.sys.Close(fd)
			ls.CloseAll()
			return fmt.Errorf("socket binding failed on %s: %w", addrText, err)
		}

		sock.FD = fd
		i++
	}

	return nil
}

// CloseAll closes every created socket and forgets all entries.
func (ls *ListenSet) CloseAll() {
	for i := range ls.Sockets {
		if ls.Sockets[i].FD != -1 {
			_ = ls.sys.Close(ls.Sockets[i].FD)
			ls.Sockets[i].FD = -1
		}
	}

	ls.Sockets = nil
}
