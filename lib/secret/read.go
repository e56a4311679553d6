// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bytes"
	"fmt"
	"os"
)

// ReadFile reads a secret from a file into a protected Buffer.
// Surrounding whitespace (including the conventional trailing
// newline) is stripped. The on-disk file is the operator's problem;
// the in-memory copy read here is zeroed as it moves into the buffer.
func ReadFile(path string) (*Buffer, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("secret: reading %s: %w", path, err)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		zero(raw)
		return nil, fmt.Errorf("secret: %s is empty", path)
	}

	buffer, err := NewFromBytes(trimmed)
	// NewFromBytes zeroes trimmed, which aliases raw; zero the rest of
	// raw (stripped whitespace bytes) regardless of the outcome.
	zero(raw)
	if err != nil {
		return nil, err
	}
	return buffer, nil
}

func zero(data []byte) {
	for index := range data {
		data[index] = 0
	}
}
