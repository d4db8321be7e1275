//go:build !linux && !openbsd

package internal

import (
	"runtime"

	log "github.com/sirupsen/logrus"
)

// Hardening has no platform-specific filters to apply here.
func Hardening() {
	log.Warnf("No hardening available for %s/%s", runtime.GOOS, runtime.GOARCH)
}
