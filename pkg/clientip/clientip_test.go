package clientip_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mfagate/pkg/clientip"
)

func TestNewResolver(t *testing.T) {
	t.Parallel()

	_, err := clientip.NewResolver("10.0.0.0/8", "192.168.1.1", " ", "::1")
	require.NoError(t, err)

	_, err = clientip.NewResolver("not-an-ip")
	assert.Error(t, err)

	_, err = clientip.NewResolver("10.0.0.0/99")
	assert.Error(t, err)
}

func TestGetIP(t *testing.T) {
	t.Parallel()

	r, err := clientip.NewResolver("10.0.0.0/8")
	require.NoError(t, err)

	tests := []struct {
		name    string
		remote  string
		headers map[string][]string
		want    string
	}{
		{
			name:   "direct peer",
			remote: "203.0.113.7:5555",
			want:   "203.0.113.7",
		},
		{
			name:    "untrusted peer cannot spoof",
			remote:  "203.0.113.7:5555",
			headers: map[string][]string{"X-Forwarded-For": {"1.1.1.1"}, "X-Real-IP": {"2.2.2.2"}},
			want:    "203.0.113.7",
		},
		{
			name:    "trusted proxy with cloudflare header",
			remote:  "10.0.0.2:80",
			headers: map[string][]string{"CF-Connecting-IP": {"198.51.100.4"}},
			want:    "198.51.100.4",
		},
		{
			name:    "rightmost untrusted forwarded hop",
			remote:  "10.0.0.2:80",
			headers: map[string][]string{"X-Forwarded-For": {"6.6.6.6, 198.51.100.9, 10.1.1.1"}},
			want:    "198.51.100.9",
		},
		{
			name:    "multiple forwarded headers",
			remote:  "10.0.0.2:80",
			headers: map[string][]string{"X-Forwarded-For": {"6.6.6.6", "198.51.100.10"}},
			want:    "198.51.100.10",
		},
		{
			name:    "garbage header falls back to peer",
			remote:  "10.0.0.2:80",
			headers: map[string][]string{"X-Forwarded-For": {"nonsense"}},
			want:    "10.0.0.2",
		},
		{
			name:   "ipv4 mapped ipv6 is unmapped",
			remote: "[::ffff:203.0.113.8]:443",
			want:   "203.0.113.8",
		},
		{
			name:   "ipv6 peer",
			remote: "[2001:db8::1]:443",
			want:   "2001:db8::1",
		},
		{
			name:   "no port",
			remote: "203.0.113.9",
			want:   "203.0.113.9",
		},
		{
			name:   "unparseable remote",
			remote: "@",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, vs := range tt.headers {
				for _, v := range vs {
					req.Header.Add(k, v)
				}
			}
			assert.Equal(t, tt.want, r.GetIP(req))
		})
	}
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	r, err := clientip.NewResolver()
	require.NoError(t, err)

	var got string
	h := r.Middleware(http.HandlerFunc(func(_ http.ResponseWriter, req *http.Request) {
		got = clientip.GetIPFromContext(req.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "192.0.2.1", got)
}
