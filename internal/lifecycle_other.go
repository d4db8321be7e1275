//go:build !(aix || linux || darwin || dragonfly || freebsd || openbsd || netbsd || solaris)

package internal

import (
	"errors"
	"runtime"
)

// noPriv implements sysPriv for platforms without chroot, setuid and
// sessions. The security phase degrades to a no-op there and daemon mode is
// rejected.
type noPriv struct{}

var defaultSysPriv sysPriv = noPriv{}

var errNoPrivAPI = errors.New("privilege isolation is not supported on " + runtime.GOOS)

func (noPriv) InitNetworking() error { return nil }

func (noPriv) OpenNullDevice() (int, error) { return -1, errNoPrivAPI }

func (noPriv) IsSuperUser() bool { return false }

func (noPriv) LookupAccount(string) (int, int, error) { return 0, 0, errNoPrivAPI }

func (noPriv) Chroot(string) error { return errNoPrivAPI }

func (noPriv) DropGroup(int) error { return errNoPrivAPI }

func (noPriv) DropUser(int) error { return errNoPrivAPI }

func (noPriv) Detach() error { return errNoPrivAPI }

func (noPriv) RedirectStdio(int) error { return errNoPrivAPI }

func (noPriv) CloseFd(int) error { return nil }
