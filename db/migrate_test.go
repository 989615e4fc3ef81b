package db

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestListUpFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"0002_add_index.up.sql",
		"0001_create_translations.up.sql",
		"0001_create_translations.down.sql",
		"notes.txt",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("-- sql"), 0644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}
	got, err := listUpFiles(dir)
	if err != nil {
		t.Fatalf("listUpFiles failed: %v", err)
	}
	want := []string{"0001_create_translations.up.sql", "0002_add_index.up.sql"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestListUpFiles_MissingDir(t *testing.T) {
	got, err := listUpFiles(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("missing dir should not error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no files, got %v", got)
	}
}

func TestDownFileName(t *testing.T) {
	cases := map[string]string{
		"0001_x.up.sql": "0001_x.down.sql",
		"0002_y.sql":    "0002_y.down.sql",
		"weird":         "weird.down.sql",
	}
	for in, want := range cases {
		if got := downFileName(in); got != want {
			t.Fatalf("downFileName(%q) = %q, want %q", in, got, want)
		}
	}
}
