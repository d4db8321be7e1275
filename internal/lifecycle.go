package internal

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// DaemonState tracks whether the process should detach and whether it
// already did.
type DaemonState int

const (
	DaemonNotRequested DaemonState = iota
	DaemonRequested
	DaemonEffective
)

const (
	// DefaultJailPath is the chroot target when running as the super-user.
	DefaultJailPath = "/var/empty/"

	// DefaultLowPrivUser receives the process identity after the chroot.
	DefaultLowPrivUser = "nobody"
)

// The lifecycle phases, in the only safe order.
const (
	phaseNone = iota
	phaseUnsecure
	phaseSecurity
	phaseSecure
)

var ErrPhaseOrder = errors.New("initialization phase called out of order")

// sysPriv abstracts the platform's privilege and session primitives.
type sysPriv interface {
	InitNetworking() error
	OpenNullDevice() (int, error)
	IsSuperUser() bool
	LookupAccount(name string) (uid, gid int, err error)

	// Chroot changes the filesystem root and the working directory to the
	// new root.
	Chroot(path string) error
	DropGroup(gid int) error
	DropUser(uid int) error

	// Detach removes the process from its controlling terminal and session,
	// keeping the working directory.
	Detach() error
	RedirectStdio(fd int) error
	CloseFd(fd int) error
}

// Lifecycle carries the process through its privilege transitions: open
// inherited resources, then chroot and drop the super-user identity, then
// daemonize. The three phases must bracket socket creation as
// UnsecureInit < sockets < SecurityInit < SecureInit; calls out of order are
// rejected. Not safe for concurrent use.
type Lifecycle struct {
	JailPath string
	User     string

	state      DaemonState
	phase      int
	nullDevice int

	sys sysPriv
}

func NewLifecycle() *Lifecycle {
	return &Lifecycle{
		JailPath:   DefaultJailPath,
		User:       DefaultLowPrivUser,
		nullDevice: -1,
		sys:        defaultSysPriv,
	}
}

// RequestDaemon selects daemon mode. Must be called before SecurityInit to
// have any effect.
func (l *Lifecycle) RequestDaemon() {
	if l.state == DaemonNotRequested {
		l.state = DaemonRequested
	}
}

func (l *Lifecycle) State() DaemonState {
	return l.state
}

func (l *Lifecycle) advance(from, to int) error {
	if l.phase != from {
		return fmt.Errorf("%w: %d does not follow %d", ErrPhaseOrder, to, l.phase)
	}

	l.phase = to
	return nil
}

// UnsecureInit performs the platform's networking-stack initialization. It
// must run before any socket is created.
func (l *Lifecycle) UnsecureInit() error {
	if err := l.advance(phaseNone, phaseUnsecure); err != nil {
		return err
	}

	return l.sys.InitNetworking()
}

// SecurityInit restricts the process when it runs with the super-user
// identity: chroot into the jail path and drop to the configured account.
//
// Two resources depend on the unrestricted filesystem and are therefore
// acquired first: the null device kept for the later daemonization, and the
// target account's numeric identity.
func (l *Lifecycle) SecurityInit() error {
	if err := l.advance(phaseUnsecure, phaseSecurity); err != nil {
		return err
	}

	if l.state == DaemonRequested {
		fd, err := l.sys.OpenNullDevice()
		if err != nil {
			return fmt.Errorf("can't open the null device: %w", err)
		}
		l.nullDevice = fd
	}

	if !l.sys.IsSuperUser() {
		return nil
	}

	log.Warn("Running with super-user privileges")

	uid, gid, err := l.sys.LookupAccount(l.User)
	if err != nil {
		return fmt.Errorf("can't get user %q properties: %w", l.User, err)
	}

	if err := l.sys.Chroot(l.JailPath); err != nil {
		return fmt.Errorf("can't chroot myself to %s: %w", l.JailPath, err)
	}
	log.WithField("jail", l.JailPath).Info("Chrooted myself")

	if err := l.sys.DropGroup(gid); err != nil {
		return fmt.Errorf("can't switch to user %q group privileges: %w", l.User, err)
	}
	if err := l.sys.DropUser(uid); err != nil {
		return fmt.Errorf("can't switch to user %q privileges: %w", l.User, err)
	}
	log.WithFields(log.Fields{
		"user": l.User,
		"uid":  uid,
		"gid":  gid,
	}).Info("Switched to low privileges")

	return nil
}

// SecureInit detaches the process if daemon mode was requested: new session,
// standard streams onto the retained null device, which is closed afterwards.
// A failed detach reverts the daemon state since no detachment occurred.
func (l *Lifecycle) SecureInit() error {
	if err := l.advance(phaseSecurity, phaseSecure); err != nil {
		return err
	}

	if l.state != DaemonRequested {
		return nil
	}

	if err := l.sys.Detach(); err != nil {
		l.state = DaemonNotRequested
		l.Close()
		return fmt.Errorf("daemonization failed: %w", err)
	}

	if err := l.sys.RedirectStdio(l.nullDevice); err != nil {
		l.Close()
		return fmt.Errorf("can't redirect the standard streams: %w", err)
	}

	_ = l.sys.CloseFd(l.nullDevice)
	l.nullDevice = -1
	l.state = DaemonEffective

	return nil
}

// Close releases the null-device descriptor if it is still held. Safe to
// call on every exit path, including after a successful SecureInit.
func (l *Lifecycle) Close() {
	if l.nullDevice != -1 {
		_ = l.sys.CloseFd(l.nullDevice)
		l.nullDevice = -1
	}
}
