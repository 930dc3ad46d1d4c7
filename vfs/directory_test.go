package vfs

import (
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestFindFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"units/marine.m3":      "a",
		"units/Zealot.M3":      "b",
		"units/zealot.m3a":     "c",
		"doodads/rock/rock.m3": "d",
		"readme.txt":           "e",
	})

	got, err := FindFiles(NewDirectoryDriver(root), ".m3")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"doodads/rock/rock.m3", "units/Zealot.M3", "units/marine.m3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FindFiles = %v, want %v", got, want)
	}
}

func TestDirectoryGetFile(t *testing.T) {
	root := writeTree(t, map[string]string{
		"units/marine.m3": "MD34",
	})
	d := NewDirectoryDriver(root)

	f, err := DirectoryGetFile(d, "/units/marine.m3")
	if err != nil {
		t.Fatal(err)
	}
	if f.Name() != "marine.m3" {
		t.Errorf("Name = %q", f.Name())
	}

	r, err := OpenFileAndGetReader(f)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "MD34" || f.Size() != 4 {
		t.Errorf("content %q size %d", data, f.Size())
	}

	if err := f.Open(); err == nil {
		t.Error("second Open succeeded")
	}
}

func TestDirectoryGetFileErrors(t *testing.T) {
	root := writeTree(t, map[string]string{
		"units/marine.m3": "MD34",
	})
	d := NewDirectoryDriver(root)

	for _, name := range []string{"units", "units/missing.m3", "units/marine.m3/inner.m3", "missing/marine.m3"} {
		if _, err := DirectoryGetFile(d, name); err == nil {
			t.Errorf("DirectoryGetFile(%q) succeeded", name)
		}
	}
}

func TestReaderRequiresOpen(t *testing.T) {
	root := writeTree(t, map[string]string{"a.m3": "x"})
	f := NewDirectoryDriverFile(filepath.Join(root, "a.m3"))
	if _, err := f.Reader(); err == nil {
		t.Error("Reader on closed file succeeded")
	}
	if f.Size() != 1 {
		t.Errorf("Size = %d", f.Size())
	}
}
