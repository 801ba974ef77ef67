package extract

import "testing"

func TestPrice(t *testing.T) {
	tests := []struct {
		text  string
		want  string
		found bool
	}{
		{"120", "120", true},
		{"$ 130", "130", true},
		{"precio: 250", "250", true},
		{"valor 500", "500", true},
		{"cobró $ 300", "300", true},
		{"120 nequi", "120", true},
		// Below and above the price band.
		{"38", "", false},
		{"12000", "", false},
		// A phone number must not be read as a price.
		{"3151234567", "", false},
		{"sin números", "", false},
	}

	for _, tt := range tests {
		got, found := Price(tt.text)
		if got != tt.want || found != tt.found {
			t.Errorf("Price(%q) = (%q, %v), want (%q, %v)", tt.text, got, found, tt.want, tt.found)
		}
	}
}

func TestIsBarePrice(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"120", true},
		{"$120", true},
		{" 130 ", true},
		{"140$", true},
		{"vendí en 120", false},
		{"120 nequi", false},
		{"", false},
		{"1", false},
	}

	for _, tt := range tests {
		if got := IsBarePrice(tt.text); got != tt.want {
			t.Errorf("IsBarePrice(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
