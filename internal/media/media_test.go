package media

import (
	"os"
	"testing"
	"time"
)

func TestSaveAndPath(t *testing.T) {
	s := New(t.TempDir())
	at := time.Date(2026, 2, 3, 14, 30, 0, 0, time.UTC)

	name, err := s.Save("Entra/sale-bodega 55", at, []byte("fake jpeg data"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if name == "" {
		t.Fatal("empty filename")
	}

	path := s.Path("Entra/sale-bodega 55", "2026-02-03", name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading stored photo: %v", err)
	}
	if string(data) != "fake jpeg data" {
		t.Errorf("stored data = %q", string(data))
	}
}

func TestSafeName(t *testing.T) {
	if got := SafeName("Entra/sale-bodega 55"); got != "Entra_sale_bodega_55" {
		t.Errorf("SafeName = %q", got)
	}
}
