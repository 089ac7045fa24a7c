//go:build !unix

package transport

import "syscall"

// reusePort is a no-op where SO_REUSEPORT isn't available.
func reusePort(_, _ string, _ syscall.RawConn) error {
	return nil
}
