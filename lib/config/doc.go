// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for warden.
//
// Configuration is loaded from a single yaml file specified by:
//   - the WARDEN_CONFIG environment variable, or
//   - the --config flag passed to the binary
//
// There are no fallbacks or automatic discovery, and environment
// variables never override file values. This keeps configuration
// deterministic and auditable. The only expansion performed is
// ${VAR} / ${VAR:-default} substitution in paths, for portability.
package config
