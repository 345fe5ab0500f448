// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

package changefeed

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/zeebo/blake3"
)

// MaxDocumentSize bounds how many decoded bytes a single feed may
// occupy: 256 MB. Real feeds are far smaller; the bound only stops a
// misbehaving server or a decompression bomb from exhausting memory.
const MaxDocumentSize int64 = 256 << 20

// Loader fetches and decodes change feeds. The zero value loads local
// files and HTTP URLs with http.DefaultClient, the default field, UTC
// timestamps, and a discarding logger.
type Loader struct {
	// BasePath is the deployment base path. Relative sources are
	// resolved against it: URL bases are joined as URL paths, directory
	// bases as file paths. Empty means relative sources are local
	// files relative to the working directory.
	BasePath string

	// Field is the document field holding the event list.
	Field string

	// DateLayout overrides the timestamp layout. Empty means DateLayout.
	DateLayout string

	// Location is the time zone feed timestamps are interpreted in.
	Location *time.Location

	// Client performs HTTP fetches.
	Client *http.Client

	// Logger receives load diagnostics. Nil discards them.
	Logger *slog.Logger

	// Now returns the current time; tests override it.
	Now func() time.Time
}

// Load resolves source, fetches it, decodes the document, and parses
// event timestamps. Unparseable events are dropped and counted, and a
// warning is logged when any are dropped.
func (loader *Loader) Load(ctx context.Context, source string) (*Feed, error) {
	resolved, err := loader.Resolve(source)
	if err != nil {
		return nil, err
	}

	data, format, err := loader.read(ctx, resolved)
	if err != nil {
		return nil, err
	}

	raw, err := Decode(data, format, loader.Field)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", resolved, err)
	}

	events, dropped := ParseEvents(raw, loader.DateLayout, loader.Location)
	digest := blake3.Sum256(data)

	feed := &Feed{
		Events:   events,
		Dropped:  dropped,
		Digest:   hex.EncodeToString(digest[:]),
		Source:   resolved,
		LoadedAt: loader.now(),
	}

	logger := loader.logger()
	if dropped > 0 {
		logger.Warn("dropped events with unparseable timestamps",
			"source", resolved,
			"dropped", dropped,
			"kept", len(events),
		)
	}
	logger.Info("feed loaded",
		"source", resolved,
		"format", format.String(),
		"events", len(events),
		"digest", feed.Digest[:16],
	)

	return feed, nil
}

// Resolve turns a source argument into an absolute URL or file path.
func (loader *Loader) Resolve(source string) (string, error) {
	if source == "" {
		return "", fmt.Errorf("no feed source given")
	}
	if isURL(source) || filepath.IsAbs(source) || loader.BasePath == "" {
		return source, nil
	}

	if isURL(loader.BasePath) {
		base, err := url.Parse(loader.BasePath)
		if err != nil {
			return "", fmt.Errorf("parsing base path %q: %w", loader.BasePath, err)
		}
		reference, err := url.Parse(source)
		if err != nil {
			return "", fmt.Errorf("parsing feed source %q: %w", source, err)
		}
		joined := *base
		joined.Path = path.Join(base.Path, reference.Path)
		joined.RawQuery = reference.RawQuery
		return joined.String(), nil
	}

	return filepath.Join(loader.BasePath, source), nil
}

// read returns the decompressed document bytes and their format.
func (loader *Loader) read(ctx context.Context, resolved string) ([]byte, Format, error) {
	if isURL(resolved) {
		return loader.fetch(ctx, resolved)
	}

	file, err := os.Open(resolved)
	if err != nil {
		return nil, FormatJSON, fmt.Errorf("opening feed: %w", err)
	}
	defer file.Close()

	compression, format := DetectEncoding(resolved, "", "")
	data, err := readDocument(file, compression)
	if err != nil {
		return nil, format, fmt.Errorf("reading %s: %w", resolved, err)
	}
	return data, format, nil
}

// fetch performs the HTTP GET for a URL source.
func (loader *Loader) fetch(ctx context.Context, resolved string) ([]byte, Format, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, resolved, nil)
	if err != nil {
		return nil, FormatJSON, fmt.Errorf("building request: %w", err)
	}
	request.Header.Set("Accept", "application/json, application/cbor;q=0.9")

	client := loader.Client
	if client == nil {
		client = http.DefaultClient
	}
	response, err := client.Do(request)
	if err != nil {
		return nil, FormatJSON, fmt.Errorf("fetching %s: %w", resolved, err)
	}
	defer response.Body.Close()

	if response.StatusCode >= http.StatusBadRequest {
		return nil, FormatJSON, &StatusError{
			URL:  resolved,
			Code: response.StatusCode,
			Body: strings.TrimSpace(errorBody(response.Body)),
		}
	}

	requestPath := resolved
	if parsed, err := url.Parse(resolved); err == nil {
		requestPath = parsed.Path
	}
	compression, format := DetectEncoding(requestPath,
		response.Header.Get("Content-Type"),
		response.Header.Get("Content-Encoding"))

	data, err := readDocument(response.Body, compression)
	if err != nil {
		return nil, format, fmt.Errorf("reading %s: %w", resolved, err)
	}
	return data, format, nil
}

// StatusError is an HTTP error response from a feed server.
type StatusError struct {
	URL  string
	Code int

	// Body is a short prefix of the response body.
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("fetching %s: HTTP %d", e.URL, e.Code)
	}
	return fmt.Sprintf("fetching %s: HTTP %d: %s", e.URL, e.Code, e.Body)
}

// readDocument decompresses and reads a document up to MaxDocumentSize
// bytes. Hitting the bound is an error rather than a silent truncation.
func readDocument(body io.Reader, compression Compression) ([]byte, error) {
	reader, release, err := decompress(body, compression)
	if err != nil {
		return nil, err
	}
	defer release()

	data, err := io.ReadAll(io.LimitReader(reader, MaxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("decoding %s body: %w", compression, err)
	}
	if int64(len(data)) > MaxDocumentSize {
		return nil, fmt.Errorf("document exceeds %d bytes", MaxDocumentSize)
	}
	return data, nil
}

// errorBody reads a short prefix of an HTTP error response for use in
// an error message. Read errors are ignored; a partial body is still
// useful.
func errorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, 512))
	return string(data)
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func (loader *Loader) logger() *slog.Logger {
	if loader.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return loader.Logger
}

func (loader *Loader) now() time.Time {
	if loader.Now == nil {
		return time.Now()
	}
	return loader.Now()
}
