//go:build !(aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris)

package server

import "syscall"

// On Windows SO_REUSEADDR allows two live listeners on one port, so the
// default socket options are kept.
func reuseAddrControl(network, address string, c syscall.RawConn) error {
	return nil
}
