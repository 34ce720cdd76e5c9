package cmd

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestGetOutputPath(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		outDir string
		ext    string
		want   string
	}{
		{"same directory", filepath.Join("prog", "Main.jack"), "", vmExt, filepath.Join("prog", "Main.vm")},
		{"out directory", filepath.Join("prog", "Main.jack"), "build", vmExt, filepath.Join("build", "Main.vm")},
		{"asm to hack", "Prog.asm", "", hackExt, "Prog.hack"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getOutputPath(tt.path, tt.outDir, tt.ext); got != tt.want {
				t.Errorf("getOutputPath(%q, %q, %q) = %q; want %q", tt.path, tt.outDir, tt.ext, got, tt.want)
			}
		})
	}
}

func TestGetClassName(t *testing.T) {
	if got := getClassName(filepath.Join("a", "b", "Square.jack")); got != "Square" {
		t.Errorf("getClassName = %q; want Square", got)
	}
}

func TestCollectFilesDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"Main.jack":  "",
		"Game.jack":  "",
		"Main.vm":    "",
		"README.txt": "",
	})
	if err := os.Mkdir(filepath.Join(dir, "Sub.jack"), 0o755); err != nil {
		t.Fatal(err)
	}

	files, isDir, err := collectFiles(dir, jackExt)
	if err != nil {
		t.Fatalf("collectFiles: %v", err)
	}
	if !isDir {
		t.Error("isDir = false; want true")
	}
	want := []string{filepath.Join(dir, "Game.jack"), filepath.Join(dir, "Main.jack")}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("files = %v; want %v", files, want)
	}
}

func TestCollectFilesSingleFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"Main.jack": ""})
	path := filepath.Join(dir, "Main.jack")

	files, isDir, err := collectFiles(path, jackExt)
	if err != nil {
		t.Fatalf("collectFiles: %v", err)
	}
	if isDir || len(files) != 1 || files[0] != path {
		t.Errorf("collectFiles = %v, %v; want [%s], false", files, isDir, path)
	}
}

func TestCollectFilesErrors(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"Main.vm": ""})

	tests := []struct {
		name string
		path string
	}{
		{"missing path", filepath.Join(dir, "Nope.jack")},
		{"wrong extension", filepath.Join(dir, "Main.vm")},
		{"no matching files", dir},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := collectFiles(tt.path, jackExt); err == nil {
				t.Errorf("collectFiles(%q) succeeded; want error", tt.path)
			}
		})
	}
}
