// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the CBOR encoding configuration shared by
// changeline packages.
//
// Change feeds normally arrive as JSON. Archived or relayed feeds may
// instead be stored as CBOR documents with the same shape; this package
// decodes them so [changefeed] can treat both formats identically.
//
// The decoder ignores unknown fields and rejects duplicate map keys. The
// encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted map
// keys, smallest integer encoding, no indefinite-length items, so the
// same feed always produces the same bytes (and the same digest).
//
// Types shared with JSON carry only `json` struct tags. fxamacker/cbor
// reads `json` tags when `cbor` tags are absent, so a single tag names
// the field in both formats.
package codec
