// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

package changefeed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/tidwall/jsonc"

	"github.com/changeline/changeline/lib/codec"
)

// Format identifies the document encoding of a feed.
type Format int

const (
	// FormatJSON covers plain JSON and JSONC (comments and trailing
	// commas are stripped before decoding).
	FormatJSON Format = iota
	// FormatCBOR is a CBOR document with the same shape as the JSON one.
	FormatCBOR
)

// String returns the human-readable name of a format.
func (format Format) String() string {
	switch format {
	case FormatJSON:
		return "json"
	case FormatCBOR:
		return "cbor"
	default:
		return fmt.Sprintf("unknown(%d)", int(format))
	}
}

// Compression identifies the transport compression wrapped around a
// feed document.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionZstd
	CompressionLZ4
)

// String returns the human-readable name of a compression.
func (compression Compression) String() string {
	switch compression {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", int(compression))
	}
}

// DetectEncoding picks the compression and document format for a feed
// from its name (file path or URL path) and, for HTTP sources, the
// Content-Type and Content-Encoding headers. Header values take
// precedence over the name.
//
// Names are matched by suffix with the compression extension stripped
// first, so "events.cbor.zst" is zstd-compressed CBOR.
func DetectEncoding(name, contentType, contentEncoding string) (Compression, Format) {
	lowerName := strings.ToLower(name)
	if index := strings.IndexAny(lowerName, "?#"); index >= 0 {
		lowerName = lowerName[:index]
	}

	compression := CompressionNone
	switch {
	case strings.HasSuffix(lowerName, ".zst"):
		compression = CompressionZstd
		lowerName = strings.TrimSuffix(lowerName, ".zst")
	case strings.HasSuffix(lowerName, ".lz4"):
		compression = CompressionLZ4
		lowerName = strings.TrimSuffix(lowerName, ".lz4")
	}
	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "zstd":
		compression = CompressionZstd
	case "lz4":
		compression = CompressionLZ4
	}

	format := FormatJSON
	if strings.HasSuffix(lowerName, ".cbor") {
		format = FormatCBOR
	}
	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err == nil && mediaType == "application/cbor" {
			format = FormatCBOR
		}
	}

	return compression, format
}

// decompress wraps body in the reader for the given compression. The
// returned close function releases decoder resources and must be called
// once the body has been read.
func decompress(body io.Reader, compression Compression) (io.Reader, func(), error) {
	switch compression {
	case CompressionZstd:
		decoder, err := zstd.NewReader(body)
		if err != nil {
			return nil, nil, fmt.Errorf("zstd reader: %w", err)
		}
		return decoder, decoder.Close, nil
	case CompressionLZ4:
		return lz4.NewReader(body), func() {}, nil
	default:
		return body, func() {}, nil
	}
}

// Decode extracts the named list field from a feed document and decodes
// its elements as raw events. A missing field is an error: an empty
// feed is written as an empty list, not an absent one.
func Decode(data []byte, format Format, field string) ([]Event, error) {
	if field == "" {
		field = DefaultField
	}

	switch format {
	case FormatCBOR:
		var document map[string]codec.RawMessage
		if err := codec.Unmarshal(data, &document); err != nil {
			return nil, fmt.Errorf("decoding cbor feed: %w", err)
		}
		raw, exists := document[field]
		if !exists {
			return nil, fmt.Errorf("feed has no %q field", field)
		}
		var events []Event
		if err := codec.Unmarshal(raw, &events); err != nil {
			return nil, fmt.Errorf("decoding %q: %w", field, err)
		}
		return events, nil

	case FormatJSON:
		stripped := jsonc.ToJSON(data)
		var document map[string]json.RawMessage
		if err := json.Unmarshal(stripped, &document); err != nil {
			return nil, fmt.Errorf("decoding json feed: %w", err)
		}
		raw, exists := document[field]
		if !exists {
			return nil, fmt.Errorf("feed has no %q field", field)
		}
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return nil, nil
		}
		var events []Event
		if err := json.Unmarshal(raw, &events); err != nil {
			return nil, fmt.Errorf("decoding %q: %w", field, err)
		}
		return events, nil

	default:
		return nil, fmt.Errorf("unsupported feed format %s", format)
	}
}
