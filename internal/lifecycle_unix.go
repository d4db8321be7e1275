//go:build aix || linux || darwin || dragonfly || freebsd || openbsd || netbsd || solaris

package internal

import (
	"os/user"
	"strconv"

	syscall "golang.org/x/sys/unix"
)

// unixPriv implements sysPriv with the real syscalls.
type unixPriv struct{}

var defaultSysPriv sysPriv = unixPriv{}

// InitNetworking is a no-op, Unix needs no networking-stack setup.
func (unixPriv) InitNetworking() error {
	return nil
}

func (unixPriv) OpenNullDevice() (int, error) {
	return syscall.Open("/dev/null", syscall.O_RDWR, 0)
}

func (unixPriv) IsSuperUser() bool {
	return syscall.Geteuid() == 0
}

func (unixPriv) LookupAccount(name string) (int, int, error) {
	sysUser, err := user.Lookup(name)
	if err != nil {
		return 0, 0, err
	}

	uid, _ := strconv.Atoi(sysUser.Uid)
	gid, _ := strconv.Atoi(sysUser.Gid)
	return uid, gid, nil
}

func (unixPriv) Chroot(path string) error {
	if err := syscall.Chroot(path); err != nil {
		return err
	}
	return syscall.Chdir("/")
}

func (unixPriv) DropGroup(gid int) error {
	if err := syscall.Setgroups([]int{gid}); err != nil {
		return err
	}
	return syscall.Setresgid(gid, gid, gid)
}

func (unixPriv) DropUser(uid int) error {
	return syscall.Setresuid(uid, uid, uid)
}

// Detach starts a new session. The Go runtime cannot fork(2) and after the
// chroot the binary cannot re-exec itself either, so a process started as
// its group's leader will get EPERM here; service supervisors start their
// children as non-leaders, where this works as intended.
func (unixPriv) Detach() error {
	_, err := syscall.Setsid()
	return err
}

func (unixPriv) RedirectStdio(fd int) error {
	for _, std := range []int{0, 1, 2} {
		if err := syscall.Dup2(fd, std); err != nil {
			return err
		}
	}
	return nil
}

func (unixPriv) CloseFd(fd int) error {
	return syscall.Close(fd)
}
