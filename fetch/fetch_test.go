package fetch

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var body = bytes.Repeat([]byte("0123456789"), 250)

func TestArchive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	var (
		calls int
		last  [2]int64
	)
	d, e := New(WithChunkSize(1000), WithLogger(zaptest.NewLogger(t)),
		WithProgress(func(read, total int64) {
			calls++
			last = [2]int64{read, total}
		}))
	require.Nil(t, e)

	got, e := d.Archive(context.Background(), srv.URL)
	require.Nil(t, e)
	assert.Equal(t, body, got)
	assert.Equal(t, 3, calls)
	assert.Equal(t, [2]int64{2500, 2500}, last)
}

func TestArchive_NoContentLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// flushing before the body is complete forces chunked encoding
		_, _ = w.Write(body[:100])
		w.(http.Flusher).Flush()
		_, _ = w.Write(body[100:])
	}))
	defer srv.Close()

	var total int64
	d, e := New(WithAssumedSize(5000), WithProgress(func(_, tot int64) { total = tot }))
	require.Nil(t, e)

	got, e := d.Archive(context.Background(), srv.URL)
	require.Nil(t, e)
	assert.Equal(t, body, got)
	assert.Equal(t, int64(5000), total)
}

func TestArchive_Status(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	d, _ := New()
	_, e := d.Archive(context.Background(), srv.URL+"/asecpub20csv.zip")

	var se *StatusError
	require.True(t, errors.As(e, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Contains(t, e.Error(), "404 Not Found")
}

func TestArchive_ShortBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "5000")
		_, _ = w.Write(body[:10])
	}))
	defer srv.Close()

	d, _ := New()
	_, e := d.Archive(context.Background(), srv.URL)
	assert.NotNil(t, e)
}

func TestArchive_DeclaredLength(t *testing.T) {
	// a length above the assumed size still reads the whole body
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	d, _ := New(WithAssumedSize(100))
	got, e := d.Archive(context.Background(), srv.URL)
	require.Nil(t, e)
	assert.Equal(t, body, got)

	// a huge declared length is not allocated up front
	huge := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.FormatInt(1<<40, 10))
		_, _ = w.Write(body[:10])
	}))
	defer huge.Close()

	_, e = d.Archive(context.Background(), huge.URL)
	assert.NotNil(t, e)
}

func TestArchive_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	d, _ := New()
	_, e := d.Archive(context.Background(), url)
	assert.NotNil(t, e)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, e = d.Archive(ctx, url)
	assert.True(t, errors.Is(e, context.Canceled))
}

func TestNew_Errors(t *testing.T) {
	_, e := New(WithChunkSize(0))
	assert.NotNil(t, e)

	_, e = New(WithAssumedSize(-1))
	assert.NotNil(t, e)

	_, e = New(WithClient(nil))
	assert.NotNil(t, e)
}
