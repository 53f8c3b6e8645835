package syncnet

import (
	"errors"
	"fmt"
	"net"
	"syscall"
)

// User-visible failure messages. Connectivity failures are translated so
// the host UI can tell "peer unreachable" from "peer rejected data" from
// "local archive build failed".
const (
	msgPeerRejected = "peer rejected the data"
	msgBuildFailed  = "failed to build local archive"
)

// dialFailureMessage translates a dial error into a distinct user-visible
// message per failure class.
func dialFailureMessage(target string, err error) string {
	var nerr net.Error
	switch {
	case errors.As(err, &nerr) && nerr.Timeout():
		return fmt.Sprintf("connection to %s timed out - make sure the other device is in receive mode", target)
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Sprintf("connection to %s refused - make sure the other device is in receive mode", target)
	default:
		return fmt.Sprintf("connection to %s failed: %v", target, err)
	}
}

// transferFailureMessage wraps a mid-transfer error (short write, reset,
// deadline) for the host UI.
func transferFailureMessage(err error) string {
	return fmt.Sprintf("transfer failed: %v", err)
}
