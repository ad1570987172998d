package profiler

import (
	"context"
	"io"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T) *Server {
	t.Helper()
	s := New(0, zerolog.Nop())
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s
}

func TestServer_Addr(t *testing.T) {
	assert.Empty(t, New(0, zerolog.Nop()).Addr())

	s := startServer(t)
	assert.Contains(t, s.Addr(), "127.0.0.1:")
}

func TestServer_Endpoints(t *testing.T) {
	s := startServer(t)
	base := "http://" + s.Addr()

	tests := []struct {
		name     string
		endpoint string
	}{
		{"index", "/debug/pprof/"},
		{"cmdline", "/debug/pprof/cmdline"},
		{"symbol", "/debug/pprof/symbol"},
		{"heap", "/debug/pprof/heap"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(base + tt.endpoint)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			_, _ = io.Copy(io.Discard, resp.Body)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		})
	}
}

func TestServer_PortInUse(t *testing.T) {
	s := startServer(t)
	_, portStr, err := net.SplitHostPort(s.Addr())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	other := New(port, zerolog.Nop())
	require.Error(t, other.Start(context.Background()))
}
