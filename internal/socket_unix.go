//go:build aix || linux || darwin || dragonfly || freebsd || openbsd || netbsd || solaris

package internal

import (
	"errors"
	"net/netip"

	syscall "golang.org/x/sys/unix"
)

// unixNet implements sysNet on top of the real socket API.
type unixNet struct{}

var defaultSysNet sysNet = unixNet{}

func (unixNet) Socket(family Family) (int, error) {
	af := syscall.AF_INET
	if family == FamilyIPv6 {
		af = syscall.AF_INET6
	}

	return syscall.Socket(af, syscall.SOCK_DGRAM, syscall.IPPROTO_UDP)
}

func (unixNet) SetV6Only(fd int) error {
	return syscall.SetsockoptInt(fd, syscall.IPPROTO_IPV6, syscall.IPV6_V6ONLY, 1)
}

func (unixNet) Bind(fd int, addr netip.AddrPort) error {
	if addr.Addr().Is6() {
		return syscall.Bind(fd, &syscall.SockaddrInet6{
			Port: int(addr.Port()),
			Addr: addr.Addr().As16(),
		})
	}

	return syscall.Bind(fd, &syscall.SockaddrInet4{
		Port: int(addr.Port()),
		Addr: addr.Addr().As4(),
	})
}

func (unixNet) Close(fd int) error {
	return syscall.Close(fd)
}

func (unixNet) IsAFNoSupport(err error) bool {
	return errors.Is(err, syscall.EAFNOSUPPORT)
}

func (unixNet) IsNoProtoOpt(err error) bool {
	return errors.Is(err, syscall.ENOPROTOOPT)
}
