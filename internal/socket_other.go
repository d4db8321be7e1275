//go:build !(aix || linux || darwin || dragonfly || freebsd || openbsd || netbsd || solaris)

package internal

import (
	"errors"
	"net/netip"
	"runtime"
)

// unsupportedNet rejects every socket operation on platforms without a
// usable BSD socket API.
type unsupportedNet struct{}

var defaultSysNet sysNet = unsupportedNet{}

var errNoSocketAPI = errors.New("datagram sockets are not supported on " + runtime.GOOS)

func (unsupportedNet) Socket(Family) (int, error)     { return -1, errNoSocketAPI }
func (unsupportedNet) SetV6Only(int) error            { return errNoSocketAPI }
func (unsupportedNet) Bind(int, netip.AddrPort) error { return errNoSocketAPI }
func (unsupportedNet) Close(int) error                { return nil }

func (unsupportedNet) IsAFNoSupport(error) bool { return false }
func (unsupportedNet) IsNoProtoOpt(error) bool  { return false }
