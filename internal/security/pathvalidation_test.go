package security

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestValidatePathWithinDirectory(t *testing.T) {
	safeDir := t.TempDir()

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"file inside", filepath.Join(safeDir, "backup.db"), false},
		{"nested file inside", filepath.Join(safeDir, "exports", "site.grd"), false},
		{"the directory itself", safeDir, false},
		{"dotdot escape", filepath.Join(safeDir, "..", "escape.db"), true},
		{"unrelated absolute path", filepath.Join(t.TempDir(), "other.db"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathWithinDirectory(tt.path, safeDir)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePathWithinDirectory(%q, %q) error = %v, wantErr %v",
					tt.path, safeDir, err, tt.wantErr)
			}
		})
	}
}

// A symlinked parent must not smuggle a new file out of the safe directory.
func TestValidatePathWithinDirectorySymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on windows")
	}

	safeDir := t.TempDir()
	outsideDir := t.TempDir()

	link := filepath.Join(safeDir, "sneaky")
	if err := os.Symlink(outsideDir, link); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	if err := ValidatePathWithinDirectory(filepath.Join(link, "escape.db"), safeDir); err == nil {
		t.Error("expected symlinked parent pointing outside to be rejected")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"site7.grd", "site7.grd"},
		{"weird name!.grd", "weird_name_.grd"},
		{"  spaces  ", "spaces"},
		{"../../etc/passwd", "etc_passwd"},
		{"héllo.grd", "h_llo.grd"},
		{"", "unknown"},
		{"!!!", "unknown"},
		{"...", "unknown"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeFilenameLength(t *testing.T) {
	long := strings.Repeat("a", 500) + ".grd"
	got := SanitizeFilename(long)
	if len(got) > 128 {
		t.Errorf("sanitized name is %d bytes, cap is 128", len(got))
	}
	if !strings.HasPrefix(got, "aaa") {
		t.Errorf("unexpected sanitized prefix: %q", got[:8])
	}
}
