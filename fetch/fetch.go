// Package fetch downloads a remote archive into memory, reporting progress as it goes.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

const (
	DefaultChunkSize   = 1_000_000
	DefaultAssumedSize = 200_000_000
)

// StatusError is returned when the server answers with a non-2xx status
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// Progress is called after each chunk with the bytes read so far and the expected total.
// total is the Content-Length of the response, or the assumed size when the server sends none.
type Progress func(read, total int64)

type Downloader struct {
	client      *http.Client
	chunkSize   int
	assumedSize int64
	progress    Progress
	log         *zap.Logger
}

type Opt func(d *Downloader) error

func New(opts ...Opt) (*Downloader, error) {
	d := &Downloader{
		client:      http.DefaultClient,
		chunkSize:   DefaultChunkSize,
		assumedSize: DefaultAssumedSize,
		log:         zap.NewNop(),
	}

	for _, opt := range opts {
		if e := opt(d); e != nil {
			return nil, e
		}
	}

	return d, nil
}

func WithClient(client *http.Client) Opt {
	return func(d *Downloader) error {
		if client == nil {
			return fmt.Errorf("nil client in WithClient")
		}

		d.client = client
		return nil
	}
}

func WithChunkSize(size int) Opt {
	return func(d *Downloader) error {
		if size <= 0 {
			return fmt.Errorf("chunk size must be positive, got %d", size)
		}

		d.chunkSize = size
		return nil
	}
}

// WithAssumedSize sets the total reported to Progress when the server does not send a Content-Length
func WithAssumedSize(size int64) Opt {
	return func(d *Downloader) error {
		if size <= 0 {
			return fmt.Errorf("assumed size must be positive, got %d", size)
		}

		d.assumedSize = size
		return nil
	}
}

func WithProgress(p Progress) Opt {
	return func(d *Downloader) error {
		d.progress = p
		return nil
	}
}

func WithLogger(log *zap.Logger) Opt {
	return func(d *Downloader) error {
		if log != nil {
			d.log = log
		}

		return nil
	}
}

// Archive GETs url and returns the whole body.  The body is read in chunks of the downloader's chunk size.
func (d *Downloader) Archive(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}

	total := resp.ContentLength
	if total <= 0 {
		total = d.assumedSize
	}

	d.log.Info("downloading",
		zap.String("url", url),
		zap.String("size", humanize.Bytes(uint64(total))),
		zap.Bool("size_known", resp.ContentLength > 0))

	start := time.Now()
	var buf bytes.Buffer
	// the declared length is not trusted beyond assumedSize
	if resp.ContentLength > 0 {
		buf.Grow(int(min(resp.ContentLength, d.assumedSize)))
	}

	var (
		read       int64
		lastDecile int64
	)
	chunk := make([]byte, d.chunkSize)
	for {
		n, e := io.ReadFull(resp.Body, chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			read += int64(n)
			d.report(read, total, &lastDecile)
		}

		if errors.Is(e, io.EOF) || errors.Is(e, io.ErrUnexpectedEOF) {
			break
		}

		if e != nil {
			return nil, fmt.Errorf("read after %s: %w", humanize.Bytes(uint64(read)), e)
		}
	}

	if resp.ContentLength > 0 && read != resp.ContentLength {
		return nil, fmt.Errorf("short body: got %d of %d bytes", read, resp.ContentLength)
	}

	d.log.Info("downloaded",
		zap.String("url", url),
		zap.String("size", humanize.Bytes(uint64(read))),
		zap.Duration("elapsed", time.Since(start)))

	return buf.Bytes(), nil
}

// report calls the Progress func and logs at each tenth of the expected total
func (d *Downloader) report(read, total int64, lastDecile *int64) {
	if d.progress != nil {
		d.progress(read, total)
	}

	decile := 10 * read / total
	if decile <= *lastDecile {
		return
	}

	*lastDecile = decile
	d.log.Debug("progress",
		zap.String("read", humanize.Bytes(uint64(read))),
		zap.String("of", humanize.Bytes(uint64(total))))
}
