// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports the build version of warden binaries.
package version

import "runtime/debug"

// Info returns a human-readable version string assembled from the
// module build info: the module version when built from a tagged
// release, otherwise the VCS revision (with a "-dirty" suffix for
// modified trees), otherwise "unknown".
func Info() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	var revision string
	var dirty bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	if revision == "" {
		return "unknown"
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	if dirty {
		revision += "-dirty"
	}
	return revision
}
