package internal

import (
	log "github.com/sirupsen/logrus"

	syscall "golang.org/x/sys/unix"
)

// Hardening on OpenBSD hides the whole filesystem and pledges down to
// standard I/O plus the network. Runs last, the lifecycle already performed
// the chroot and the privilege drop.
func Hardening() {
	if err := syscall.UnveilBlock(); err != nil {
		log.WithError(err).Fatal("Cannot unveil(NULL, NULL)")
	}

	if err := syscall.PledgePromises("stdio inet"); err != nil {
		log.WithError(err).Fatal("Cannot pledge")
	}
}
