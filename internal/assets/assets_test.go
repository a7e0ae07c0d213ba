package assets

// Notes:
// - Loaders are exercised against the real embedded files and against
//   temporary directories for the filesystem and resolver paths.
// - Symlink escape tests are skipped on Windows where symlinks require
//   privileges.

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// ValidateAssetName
// ---------------------------------------------------------------------------

func TestValidateAssetName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "default", false},
		{"with dash", "my-style", false},
		{"empty", "", true},
		{"slash", "../etc", true},
		{"backslash", `a\b`, true},
		{"dot", "style.css", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateAssetName(tt.input)
			if tt.wantErr && !errors.Is(err, ErrInvalidAssetName) {
				t.Errorf("ValidateAssetName(%q) = %v, want ErrInvalidAssetName", tt.input, err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateAssetName(%q) unexpected error: %v", tt.input, err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// EmbeddedLoader
// ---------------------------------------------------------------------------

func TestEmbeddedLoader_LoadStyle(t *testing.T) {
	t.Parallel()

	l := NewEmbeddedLoader()
	css, err := l.LoadStyle(DefaultStyleName)
	if err != nil {
		t.Fatalf("LoadStyle(default) error: %v", err)
	}
	if !strings.Contains(css, "body") {
		t.Errorf("default style missing body rule: %q", css)
	}

	if _, err := l.LoadStyle("missing"); !errors.Is(err, ErrStyleNotFound) {
		t.Errorf("LoadStyle(missing) = %v, want ErrStyleNotFound", err)
	}
	if _, err := l.LoadStyle("../x"); !errors.Is(err, ErrInvalidAssetName) {
		t.Errorf("LoadStyle(../x) = %v, want ErrInvalidAssetName", err)
	}
}

func TestEmbeddedLoader_LoadTemplate(t *testing.T) {
	t.Parallel()

	l := NewEmbeddedLoader()
	tmpl, err := l.LoadTemplate(DefaultTemplateName)
	if err != nil {
		t.Fatalf("LoadTemplate(proof) error: %v", err)
	}
	for _, want := range []string{"{{.Title}}", "{{.Content}}", "</head>"} {
		if !strings.Contains(tmpl, want) {
			t.Errorf("proof template missing %q", want)
		}
	}

	if _, err := l.LoadTemplate("missing"); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("LoadTemplate(missing) = %v, want ErrTemplateNotFound", err)
	}
}

func TestStyleNames(t *testing.T) {
	t.Parallel()

	names := StyleNames()
	for _, want := range []string{"compact", "default"} {
		if !slices.Contains(names, want) {
			t.Errorf("StyleNames() = %v, missing %q", names, want)
		}
	}
	if !slices.IsSorted(names) {
		t.Errorf("StyleNames() not sorted: %v", names)
	}
}

// ---------------------------------------------------------------------------
// FilesystemLoader
// ---------------------------------------------------------------------------

func writeAsset(t *testing.T, base, dir, name, content string) {
	t.Helper()
	full := filepath.Join(base, dir)
	if err := os.MkdirAll(full, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(full, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestNewFilesystemLoader_InvalidBase(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{"", filepath.Join(dir, "missing"), file} {
		if _, err := NewFilesystemLoader(path); !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewFilesystemLoader(%q) = %v, want ErrInvalidBasePath", path, err)
		}
	}
}

func TestFilesystemLoader_Load(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	writeAsset(t, base, "styles", "mine.css", "h1{color:red}")
	writeAsset(t, base, "templates", "mine.html", "<html>{{.Content}}</html>")

	l, err := NewFilesystemLoader(base)
	if err != nil {
		t.Fatalf("NewFilesystemLoader: %v", err)
	}

	css, err := l.LoadStyle("mine")
	if err != nil || css != "h1{color:red}" {
		t.Errorf("LoadStyle(mine) = %q, %v", css, err)
	}
	tmpl, err := l.LoadTemplate("mine")
	if err != nil || !strings.Contains(tmpl, "{{.Content}}") {
		t.Errorf("LoadTemplate(mine) = %q, %v", tmpl, err)
	}
	if _, err := l.LoadStyle("other"); !errors.Is(err, ErrStyleNotFound) {
		t.Errorf("LoadStyle(other) = %v, want ErrStyleNotFound", err)
	}
}

func TestFilesystemLoader_SymlinkEscape(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	outside := t.TempDir()
	secret := filepath.Join(outside, "secret.css")
	if err := os.WriteFile(secret, []byte("secret"), 0o644); err != nil {
		t.Fatal(err)
	}

	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, "styles"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(secret, filepath.Join(base, "styles", "evil.css")); err != nil {
		t.Fatal(err)
	}

	l, err := NewFilesystemLoader(base)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.LoadStyle("evil"); !errors.Is(err, ErrPathTraversal) {
		t.Errorf("LoadStyle(evil) = %v, want ErrPathTraversal", err)
	}
}

// ---------------------------------------------------------------------------
// Resolver
// ---------------------------------------------------------------------------

func TestResolver_Fallback(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	writeAsset(t, base, "styles", "default.css", "custom-default")

	r, err := NewResolver(base)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	if !r.HasCustomLoader() {
		t.Error("HasCustomLoader() = false, want true")
	}

	css, err := r.LoadStyle("default")
	if err != nil || css != "custom-default" {
		t.Errorf("LoadStyle(default) = %q, %v; want custom content", css, err)
	}

	css, err = r.LoadStyle("compact")
	if err != nil || !strings.Contains(css, "body") {
		t.Errorf("LoadStyle(compact) = %q, %v; want embedded fallback", css, err)
	}

	if _, err := r.LoadTemplate(DefaultTemplateName); err != nil {
		t.Errorf("LoadTemplate fallback error: %v", err)
	}
	if _, err := r.LoadStyle("a/b"); !errors.Is(err, ErrInvalidAssetName) {
		t.Errorf("LoadStyle(a/b) = %v, want ErrInvalidAssetName", err)
	}
}

func TestResolver_EmbeddedOnly(t *testing.T) {
	t.Parallel()

	r, err := NewResolver("")
	if err != nil {
		t.Fatal(err)
	}
	if r.HasCustomLoader() {
		t.Error("HasCustomLoader() = true, want false")
	}
	if _, err := NewResolver(filepath.Join(t.TempDir(), "nope")); !errors.Is(err, ErrInvalidBasePath) {
		t.Errorf("NewResolver(missing) = %v, want ErrInvalidBasePath", err)
	}
}
