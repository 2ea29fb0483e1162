package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchSendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	f := NewFetcher()
	res, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, UserAgent, gotUA)
	assert.Contains(t, res.ContentType, "text/html")
	assert.Equal(t, []byte("<html><body>ok</body></html>"), res.Body)
}

func TestFetchNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewFetcher()
	_, err := f.Fetch(context.Background(), srv.URL+"/missing.php")
	require.Error(t, err)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.Contains(t, fetchErr.URL, "/missing.php")
}

func TestFetchInvalidURL(t *testing.T) {
	f := NewFetcher()
	_, err := f.Fetch(context.Background(), "http://\x7f invalid")
	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
}

func TestAllowsInsecure(t *testing.T) {
	f := NewFetcher("gmrit.edu.in")
	assert.True(t, f.AllowsInsecure("gmrit.edu.in"))
	assert.False(t, f.AllowsInsecure("example.com"))
}

func TestFetchInsecureHost(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("secure enough"))
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	// Without the allow-list the self-signed certificate is rejected
	_, err = NewFetcher().Fetch(context.Background(), srv.URL)
	assert.Error(t, err)

	res, err := NewFetcher(u.Hostname()).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, []byte("secure enough"), res.Body)
}
