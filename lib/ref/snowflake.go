// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "fmt"

// maxSnowflakeLength bounds the decimal form of a 64-bit snowflake.
// The largest uint64 is 20 digits.
const maxSnowflakeLength = 20

// parseSnowflake validates the decimal string form of a Discord
// snowflake identifier. kind names the identifier type in error
// messages ("message ID", "role ID", ...).
func parseSnowflake(kind, raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("empty %s", kind)
	}
	if len(raw) > maxSnowflakeLength {
		return "", fmt.Errorf("%s too long (%d digits): %q", kind, len(raw), raw)
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return "", fmt.Errorf("%s must be decimal digits: %q", kind, raw)
		}
	}
	return raw, nil
}
