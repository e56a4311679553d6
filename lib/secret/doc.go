// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret provides a memory-safe buffer for sensitive data.
// Warden uses it for exactly one secret: the bot token.
//
// Buffer allocates memory outside the Go heap via mmap(MAP_ANONYMOUS),
// locks it into physical RAM via mlock so it cannot be swapped to
// disk, and excludes it from core dumps via madvise(MADV_DONTDUMP).
// Close zeroes and unmaps the region. Because the memory is invisible
// to the garbage collector, the token is never copied or relocated by
// the runtime.
package secret
