package extract

import (
	"reflect"
	"testing"
)

func TestExtractSizes(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"talla 38", []string{"38"}},
		{"t. 40", []string{"40"}},
		{"38 y 40", []string{"38", "40"}},
		{"40/42", []string{"40", "42"}},
		{"talla 38.5", []string{"38.5"}},
		{"va 40 y 42", []string{"40", "42"}},
		// Outside the size band.
		{"talla 12", nil},
		{"talla 55", nil},
		// Duplicates collapse, output is sorted numerically.
		{"42 y 38, talla 42", []string{"38", "42"}},
		{"", nil},
	}

	for _, tt := range tests {
		got := Extract(tt.text).Sizes
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Extract(%q).Sizes = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestExtractColor(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"color azul", "azul"},
		{"pantalón negro talla 32", "negro"},
		{"Color Verde oscuro", "verde oscuro"},
		{"sin nada", ""},
	}

	for _, tt := range tests {
		if got := Extract(tt.text).Color; got != tt.want {
			t.Errorf("Extract(%q).Color = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestExtractBrandAndType(t *testing.T) {
	info := Extract("va Nike talla 40 camiseta blanca")
	if info.Brand != "nike" {
		t.Errorf("Brand = %q, want nike", info.Brand)
	}
	if info.ProductType != "camiseta" {
		t.Errorf("ProductType = %q, want camiseta", info.ProductType)
	}

	// "new balance" matches as a two-word term.
	if got := Extract("tenis new balance 42").Brand; got != "new balance" {
		t.Errorf("Brand = %q, want new balance", got)
	}

	if got := Extract("zapato sin marca").Brand; got != "" {
		t.Errorf("Brand = %q, want empty", got)
	}
}

func TestExtractReturnIntent(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"devuelto a bodega", true},
		{"DEVOLUCIÓN parcial", true},
		{"devolucion", true},
		{"regresa mañana", true},
		{"venta normal", false},
	}

	for _, tt := range tests {
		if got := Extract(tt.text).IsReturn; got != tt.want {
			t.Errorf("Extract(%q).IsReturn = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	const text = "va nike talla 38 y 40 color azul precio 120"
	first := Extract(text)
	for i := 0; i < 5; i++ {
		if got := Extract(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("Extract not deterministic: %+v vs %+v", got, first)
		}
	}
}

func TestExtractCaptionScenario(t *testing.T) {
	info := Extract("talla 38 color azul")
	if !reflect.DeepEqual(info.Sizes, []string{"38"}) {
		t.Errorf("Sizes = %v, want [38]", info.Sizes)
	}
	if info.Color != "azul" {
		t.Errorf("Color = %q, want azul", info.Color)
	}
}
