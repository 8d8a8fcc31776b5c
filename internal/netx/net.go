// Package netx classifies low-level HTTP transport failures.
package netx

import (
	"context"
	"errors"
	"net"
	"net/url"
	"syscall"
)

// IsTransportError reports whether err is a failure to reach the server at
// all (DNS, refused or reset connection, unreachable network, timeouts at the
// socket level, client timeouts), as opposed to an HTTP response with an error status.
// Context cancellation by the caller is not a transport error.
func IsTransportError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	for _, errno := range []syscall.Errno{syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.ENETUNREACH, syscall.EHOSTUNREACH} {
		if errors.Is(err, errno) {
			return true
		}
	}

	// Anything else that surfaced from http.Client.Do without a response,
	// e.g. an unexpected EOF while reading the status line.
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
