package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webview-cli/internal/auth"
	"webview-cli/internal/fault"
)

func newTestClient(t *testing.T, h http.Handler, user, pass string) *WebViewClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(ClientConfig{Host: srv.URL, Username: user, Password: pass, Timeout: time.Second}, zerolog.Nop())
}

func TestResolve(t *testing.T) {
	c := New(ClientConfig{Host: "10.0.0.5", Port: 8080}, zerolog.Nop())

	assert.Equal(t, "http://10.0.0.5:8080/-wvhttp-01-/info.cgi", c.Resolve("info.cgi"))
	assert.Equal(t, "http://10.0.0.5:8080/admin/-set-?pt=4", c.Resolve("/admin/-set-?pt=4"))
	assert.Equal(t, "http://other/x.cgi", c.Resolve("http://other/x.cgi"))

	c = New(ClientConfig{Host: "cam.local", Port: 80}, zerolog.Nop())
	assert.Equal(t, "http://cam.local/-wvhttp-01-/control.cgi?pan=0", c.Resolve("control.cgi?pan=0"))
}

func TestSendReturnsBodyVerbatim(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/-wvhttp-01-/info.cgi", r.URL.Path)
		_, _ = w.Write([]byte("c.1.pan=1500\nc.1.tilt:=-200\n"))
	}), "", "")

	res := c.GetInfo(context.Background())
	require.True(t, res.OK(), "err: %v", res.Err)
	assert.Equal(t, "c.1.pan=1500\nc.1.tilt:=-200\n", res.Body)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestSendUsesBasicAuth(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || u != "root" || p != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}), "root", "secret")

	res := c.Send(context.Background(), "info.cgi")
	assert.True(t, res.OK())
}

func TestSendAnswersDigestChallengeOnce(t *testing.T) {
	var calls atomic.Int32
	var authHeader atomic.Value

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Digest ") {
			authHeader.Store(h)
			_, _ = w.Write([]byte("s.firmware=1.0"))
			return
		}
		w.Header().Set("WWW-Authenticate", `Digest realm="R", nonce="N", qop="auth"`)
		w.WriteHeader(http.StatusUnauthorized)
	}), "user", "pass")
	c.digest.CNonce = func() string { return "abc" }

	res := c.Send(context.Background(), "info.cgi")
	require.True(t, res.OK(), "err: %v", res.Err)
	assert.Equal(t, "s.firmware=1.0", res.Body)
	assert.Equal(t, int32(2), calls.Load())

	h := authHeader.Load().(string)
	want := auth.Response("user", "pass", "R", "N", "GET", "/-wvhttp-01-/info.cgi", "MD5", "auth", "00000001", "abc")
	assert.Contains(t, h, `response="`+want+`"`)
	assert.Contains(t, h, `uri="/-wvhttp-01-/info.cgi"`)
	assert.Contains(t, h, "nc=00000001")
}

func TestSendDigestRejectedIsTransportFailure(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("WWW-Authenticate", `Digest realm="R", nonce="N"`)
		w.WriteHeader(http.StatusUnauthorized)
	}), "user", "wrong")

	res := c.Send(context.Background(), "info.cgi")
	assert.False(t, res.OK())
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, fault.KindTransport, fault.KindOf(res.Err))
	assert.Equal(t, int32(2), calls.Load(), "digest retry happens exactly once")
}

func TestSendDigestWithoutCredentialsIsAuthFailure(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("WWW-Authenticate", `Digest realm="R", nonce="N"`)
		w.WriteHeader(http.StatusUnauthorized)
	}), "", "")

	res := c.Send(context.Background(), "info.cgi")
	assert.False(t, res.OK())
	assert.Equal(t, fault.KindAuth, fault.KindOf(res.Err))
}

func TestSendNon2xx(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}), "", "")

	res := c.Send(context.Background(), "control.cgi?exp=auto")
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.ErrorIs(t, res.Err, fault.ErrTransport)
}

func TestSendTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(500 * time.Millisecond):
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	c := New(ClientConfig{Host: srv.URL, Timeout: 50 * time.Millisecond}, zerolog.Nop())

	res := c.Send(context.Background(), "info.cgi")
	assert.False(t, res.OK())
	assert.Equal(t, fault.KindTransport, fault.KindOf(res.Err))
}
