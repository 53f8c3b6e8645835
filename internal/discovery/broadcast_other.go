//go:build !linux && !darwin

package discovery

import "syscall"

// enableBroadcast is a no-op on platforms where the runtime permits
// broadcast sends without SO_BROADCAST or where x/sys/unix is unavailable.
func enableBroadcast(_ syscall.RawConn) error {
	return nil
}
