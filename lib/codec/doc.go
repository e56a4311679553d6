// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides warden's standard CBOR encoding.
//
// Encoding uses Core Deterministic Encoding (RFC 8949 §4.2): the same
// logical value always produces the same bytes. The binding snapshot
// relies on this — its integrity checksum is computed over the encoded
// payload, and deterministic bytes keep the checksum stable across
// re-encodes of unchanged state.
package codec
