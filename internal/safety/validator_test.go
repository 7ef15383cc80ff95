package safety

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestProtectedPathBlocking verifies protected paths are blocked
func TestProtectedPathBlocking(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{"root slash", "/", true},
		{"etc", "/etc", true},
		{"etc subdir", "/etc/ssh", true},
		{"bin", "/bin", true},
		{"bin file", "/bin/bash", true},
		{"usr", "/usr", true},
		{"usr local", "/usr/local", true},
		{"boot", "/boot", true},
		{"lib", "/lib", true},
		{"lib64", "/lib64", true},
		{"sbin", "/sbin", true},
		{"pathprune config", "/etc/pathprune", true},
		{"pathprune config file", "/etc/pathprune/config.yaml", true},
		{"pathprune db", "/var/lib/pathprune", true},
		{"pathprune db file", "/var/lib/pathprune/history.db", true},
		{"pathprune logs", "/var/log/pathprune", true},
		{"tmp allowed", "/tmp", false},
		{"tmp file", "/tmp/file.txt", false},
		{"var tmp", "/var/tmp", false},
		{"home", "/home", false},
		{"home user", "/home/user", false},
	}

	v := NewValidator(nil, nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.isProtected(tt.path)
			if result != tt.expected {
				t.Errorf("isProtected(%s) = %v, expected %v", tt.path, result, tt.expected)
			}
		})
	}
}

// TestAllowedRootEnforcement verifies paths are restricted to allowed roots
func TestAllowedRootEnforcement(t *testing.T) {
	v := NewValidator([]string{"/tmp/allowed", "/var/cleanup"}, nil)

	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{"inside allowed tmp", "/tmp/allowed/file.txt", true},
		{"inside allowed var", "/var/cleanup/old.log", true},
		{"allowed root exact", "/tmp/allowed", true},
		{"outside allowed", "/tmp/notallowed/file.txt", false},
		{"parent of allowed", "/tmp", false},
		{"completely different", "/home/user/file.txt", false},
		{"root", "/", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.withinAllowedRoots(tt.path)
			if result != tt.expected {
				t.Errorf("withinAllowedRoots(%s) = %v, expected %v", tt.path, result, tt.expected)
			}
		})
	}
}

// TestPathNormalization verifies paths are normalized correctly
func TestPathNormalization(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		expectError bool
	}{
		{"absolute path", "/tmp/file.txt", false},
		{"relative path", "file.txt", false}, // Gets normalized to absolute
		{"path with dots", "/tmp/./file.txt", false},
		{"empty path", "", true},
		{"whitespace only", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NormalizePath(tt.path)
			if tt.expectError {
				if err == nil {
					t.Errorf("NormalizePath(%s) expected error, got nil", tt.path)
				}
			} else {
				if err != nil {
					t.Errorf("NormalizePath(%s) unexpected error: %v", tt.path, err)
				}
				if !filepath.IsAbs(result) {
					t.Errorf("NormalizePath(%s) = %s, expected absolute path", tt.path, result)
				}
			}
		})
	}
}

// TestTraversalDetection verifies ".." segments are detected
func TestTraversalDetection(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{"normal path", "/tmp/file.txt", false},
		{"dotdot parent", "/tmp/../etc/passwd", true},
		{"dotdot at start", "../etc/passwd", true},
		{"dotdot at end", "/tmp/..", true},
		{"single dot ok", "/tmp/./file", false},
		{"no traversal", "/tmp/normal/path", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DetectTraversal(tt.path)
			if result != tt.expected {
				t.Errorf("DetectTraversal(%s) = %v, expected %v", tt.path, result, tt.expected)
			}
		})
	}
}

// TestSymlinkEscapeDetection verifies symlinks escaping allowed roots are detected
func TestSymlinkEscapeDetection(t *testing.T) {
	tmpDir := t.TempDir()
	allowedDir := filepath.Join(tmpDir, "allowed")
	outsideDir := filepath.Join(tmpDir, "outside")

	if err := os.MkdirAll(allowedDir, 0o755); err != nil {
		t.Fatalf("Failed to create allowed dir: %v", err)
	}
	if err := os.MkdirAll(outsideDir, 0o755); err != nil {
		t.Fatalf("Failed to create outside dir: %v", err)
	}

	outsideFile := filepath.Join(outsideDir, "target.txt")
	if err := os.WriteFile(outsideFile, []byte("outside"), 0o644); err != nil {
		t.Fatalf("Failed to create outside file: %v", err)
	}

	escapeLink := filepath.Join(allowedDir, "link_to_outside")
	if err := os.Symlink(outsideFile, escapeLink); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}

	insideFile := filepath.Join(allowedDir, "inside.txt")
	if err := os.WriteFile(insideFile, []byte("inside"), 0o644); err != nil {
		t.Fatalf("Failed to create inside file: %v", err)
	}
	safeLink := filepath.Join(allowedDir, "safe_link")
	if err := os.Symlink(insideFile, safeLink); err != nil {
		t.Fatalf("Failed to create safe symlink: %v", err)
	}

	v := NewValidator([]string{allowedDir}, nil)

	tests := []struct {
		name         string
		path         string
		expectEscape bool
		expectError  bool
	}{
		{"symlink escapes", escapeLink, true, false},
		{"symlink stays inside", safeLink, false, false},
		{"regular file inside", insideFile, false, false},
		{"nonexistent path", filepath.Join(allowedDir, "nonexistent"), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			escaped, err := v.detectSymlinkEscape(tt.path)
			if tt.expectError {
				if err == nil {
					t.Errorf("detectSymlinkEscape(%s) expected error, got nil", tt.path)
				}
			} else {
				if err != nil {
					t.Errorf("detectSymlinkEscape(%s) unexpected error: %v", tt.path, err)
				}
				if escaped != tt.expectEscape {
					t.Errorf("detectSymlinkEscape(%s) = %v, expected %v", tt.path, escaped, tt.expectEscape)
				}
			}
		})
	}
}

// TestValidateDeleteTarget is the integration test for the full safety contract
func TestValidateDeleteTarget(t *testing.T) {
	tmpDir := t.TempDir()
	allowedDir := filepath.Join(tmpDir, "allowed")
	outsideDir := filepath.Join(tmpDir, "outside")

	if err := os.MkdirAll(allowedDir, 0o755); err != nil {
		t.Fatalf("Failed to create allowed dir: %v", err)
	}
	if err := os.MkdirAll(outsideDir, 0o755); err != nil {
		t.Fatalf("Failed to create outside dir: %v", err)
	}

	insideFile := filepath.Join(allowedDir, "delete_me.txt")
	if err := os.WriteFile(insideFile, []byte("test"), 0o644); err != nil {
		t.Fatalf("Failed to create inside file: %v", err)
	}
	outsideFile := filepath.Join(outsideDir, "keep_me.txt")
	if err := os.WriteFile(outsideFile, []byte("test"), 0o644); err != nil {
		t.Fatalf("Failed to create outside file: %v", err)
	}

	v := NewValidator([]string{allowedDir}, nil)

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"valid target", insideFile, nil},
		{"outside allowed roots", outsideFile, ErrOutsideAllowed},
		{"protected path", "/etc/passwd", ErrProtectedPath},
		{"traversal", filepath.Join(allowedDir, "..", "outside", "keep_me.txt"), ErrOutsideAllowed},
		{"empty path", "", ErrInvalidPath},
		{"nonexistent inside root", filepath.Join(allowedDir, "ghost.txt"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateDeleteTarget(tt.path)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateDeleteTarget(%s) unexpected error: %v", tt.path, err)
				}
			} else if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateDeleteTarget(%s) = %v, expected %v", tt.path, err, tt.wantErr)
			}
		})
	}
}
