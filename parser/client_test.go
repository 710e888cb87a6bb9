package parser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pevans/newscrape/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetDocument(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		fmt.Fprint(w, `<html><body><h1>Hello</h1></body></html>`)
	}))
	defer srv.Close()

	client := NewClient(time.Second, "newscrape-test/1.0")
	doc, err := client.GetDocument(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "newscrape-test/1.0", gotUA)
	assert.Equal(t, "Hello", query.First(query.Selector{Dialect: query.CSS, Expr: "h1"}, doc, ""))
}

func TestClient_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(time.Second, "").Fetch(context.Background(), srv.URL)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.StatusServiceUnavailable, transportErr.Status)
	assert.Equal(t, srv.URL, transportErr.URL)
	assert.Contains(t, err.Error(), "503")
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClient(30*time.Millisecond, "").Fetch(context.Background(), srv.URL)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Zero(t, transportErr.Status)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := NewClient(time.Second, "").Fetch(context.Background(), addr)

	var transportErr *TransportError
	assert.True(t, errors.As(err, &transportErr))
}

func TestClient_BadURL(t *testing.T) {
	_, err := NewClient(time.Second, "").Fetch(context.Background(), "://nope")

	var transportErr *TransportError
	assert.True(t, errors.As(err, &transportErr))
}
