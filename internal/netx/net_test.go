package netx

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransportError_Classification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "plain", err: errors.New("boom"), want: false},
		{name: "dns", err: &net.DNSError{Err: "no such host", Name: "api.invalid"}, want: true},
		{name: "op", err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("refused")}, want: true},
		{name: "errno wrapped", err: fmt.Errorf("x: %w", syscall.ECONNREFUSED), want: true},
		{name: "url error", err: &url.Error{Op: "Get", URL: "http://x", Err: errors.New("EOF")}, want: true},
		{name: "canceled", err: &url.Error{Op: "Get", URL: "http://x", Err: context.Canceled}, want: false},
		{name: "deadline", err: &url.Error{Op: "Get", URL: "http://x", Err: context.DeadlineExceeded}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransportError(tt.err))
		})
	}
}

func TestIsTransportError_RealRefusedConnection(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := http.Get(addr)
	assert.True(t, IsTransportError(err), "got %v", err)
}
