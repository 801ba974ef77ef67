package annotations

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoad(t *testing.T) {
	s := New(t.TempDir())

	doc := []byte(`[{"x":1,"y":2,"producto":"Talla 38"}]`)
	if err := s.Save("-100200_55", doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load("-100200_55")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != string(doc) {
		t.Errorf("expected %s, got %s", doc, got)
	}
}

func TestLoadMissing(t *testing.T) {
	s := New(t.TempDir())
	if _, err := s.Load("-100200_99"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestOverwriteCreatesBackup(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	first := []byte(`[{"v":1}]`)
	second := []byte(`[{"v":2}]`)
	if err := s.Save("-100200_7", first); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if err := s.Save("-100200_7", second); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, err := s.Load("-100200_7")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != string(second) {
		t.Errorf("expected latest version, got %s", got)
	}

	backups, err := filepath.Glob(filepath.Join(dir, "backups", "*", "-100200_7_*.json"))
	if err != nil {
		t.Fatalf("globbing backups: %v", err)
	}
	if len(backups) != 1 {
		t.Fatalf("expected 1 backup, found %d", len(backups))
	}
	old, err := os.ReadFile(backups[0])
	if err != nil {
		t.Fatalf("reading backup: %v", err)
	}
	if string(old) != string(first) {
		t.Errorf("backup should hold the previous version, got %s", old)
	}
}

func TestFirstSaveCreatesNoBackup(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	if err := s.Save("-100200_8", []byte(`[]`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "backups")); !errors.Is(err, os.ErrNotExist) {
		t.Error("no backup directory expected on first save")
	}
}

func TestInvalidPhotoID(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Save("../escape", []byte(`[]`)); err == nil {
		t.Error("expected error for path-traversal photo ID")
	}
	if _, err := s.Load("a/b"); err == nil {
		t.Error("expected error for photo ID with separator")
	}
}
