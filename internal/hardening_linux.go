package internal

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/landlock-lsm/go-landlock/landlock"
	llsys "github.com/landlock-lsm/go-landlock/landlock/syscall"

	syscallset "github.com/oxzi/syscallset-go"
)

// hardeningLandlock denies filesystem access altogether. After the chroot
// into the empty jail there is nothing left this process needs to open.
func hardeningLandlock() {
	_, err := llsys.LandlockGetABIVersion()
	if err != nil {
		log.Warn("Landlock is not supported")
		return
	}

	if err := landlock.V2.BestEffort().RestrictPaths(); err != nil {
		log.WithError(err).Fatal("Failed to apply Landlock filter")
	}
}

// hardeningSeccompBpf restricts the syscall surface to what the datagram
// loop still needs, network I/O included.
func hardeningSeccompBpf() {
	if !syscallset.IsSupported() {
		log.Warn("No seccomp-bpf support is available")
		return
	}

	filter := []string{
		"@system-service",
		"~@chown",
		"~@clock",
		"~@cpu-emulation",
		"~@debug",
		"~@keyring",
		"~@memlock",
		"~@module",
		"~@mount",
		"~@privileged",
		"~@reboot",
		"~@resources",
		"~@setuid",
		"~@swap",
		"~execve ~execveat ~fork ~kill",
	}

	if err := syscallset.LimitTo(strings.Join(filter, " ")); err != nil {
		log.WithError(err).Fatal("Failed to apply seccomp-bpf filter")
	}
}

// Hardening is achieved on Linux with Landlock and seccomp-bpf. It must run
// last, after the privilege drop and the daemonization, once no further
// privileged call is needed.
func Hardening() {
	hardeningLandlock()
	hardeningSeccompBpf()
}
