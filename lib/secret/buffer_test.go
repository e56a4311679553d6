// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewFromBytes(t *testing.T) {
	source := []byte("bot-token-value")
	buffer, err := NewFromBytes(source)
	if err != nil {
		t.Fatalf("NewFromBytes failed: %v", err)
	}
	defer buffer.Close()

	if buffer.String() != "bot-token-value" {
		t.Errorf("unexpected buffer content: %q", buffer.String())
	}

	// The source slice is zeroed so the secret has one home.
	for index, b := range source {
		if b != 0 {
			t.Errorf("source byte %d not zeroed", index)
		}
	}
}

func TestCloseIdempotent(t *testing.T) {
	buffer, err := NewFromBytes([]byte("secret"))
	if err != nil {
		t.Fatalf("NewFromBytes failed: %v", err)
	}
	if err := buffer.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := buffer.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
}

func TestReadAfterClosePanics(t *testing.T) {
	buffer, err := NewFromBytes([]byte("secret"))
	if err != nil {
		t.Fatalf("NewFromBytes failed: %v", err)
	}
	buffer.Close()

	defer func() {
		if recover() == nil {
			t.Error("Bytes on closed buffer did not panic")
		}
	}()
	buffer.Bytes()
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("  the-token\n"), 0600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	buffer, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	defer buffer.Close()

	if buffer.String() != "the-token" {
		t.Errorf("unexpected token: %q", buffer.String())
	}
}

func TestReadFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("\n\n"), 0600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if _, err := ReadFile(path); err == nil {
		t.Error("ReadFile of whitespace-only file unexpectedly succeeded")
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("ReadFile of missing file unexpectedly succeeded")
	}
}
