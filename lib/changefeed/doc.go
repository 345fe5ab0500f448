// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

// Package changefeed loads a medical-resource change feed and turns it
// into an ordered list of timestamped events.
//
// A feed is a document with a named list field (normally "Changes")
// whose elements describe one change each:
//
//	{
//	  "Changes": [
//	    {"ChangeType": "NewStudy", "Date": "20240101T080000",
//	     "ID": "6b9e...", "Path": "/studies/6b9e...",
//	     "ResourceType": "Study", "Seq": 1}
//	  ]
//	}
//
// The document may be JSON, JSONC, or CBOR, and may be zstd or lz4
// compressed. It may come from a local file or an HTTP(S) URL.
//
// Loading has two failure classes. Whole-document failures (fetch,
// decompression, malformed document, missing list field) are returned
// as errors and the caller does not render anything new. Per-event
// timestamp failures are not errors: the event is left out of
// [Feed.Events] and counted in [Feed.Dropped].
package changefeed
