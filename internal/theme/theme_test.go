package theme

import (
	"image/color"
	"testing"
)

func TestWithDefaults_FillsZeroFields(t *testing.T) {
	th := Theme{Background: "#000000"}.WithDefaults()

	if th.Background != "#000000" {
		t.Errorf("explicit background overwritten: %s", th.Background)
	}
	if th.TitleFontSize != 18 {
		t.Errorf("expected default title size 18, got %v", th.TitleFontSize)
	}
	if th.RowClass == "" || th.NumericClass == "" || th.CategoricalClass == "" {
		t.Error("expected default column classes to be set")
	}
	if len(th.Palette) == 0 {
		t.Error("expected default palette")
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#ffffff", color.RGBA{255, 255, 255, 255}, false},
		{"636efa", color.RGBA{0x63, 0x6e, 0xfa, 255}, false},
		{"#fff", color.RGBA{}, true},
		{"#gggggg", color.RGBA{}, true},
	}
	for _, tt := range tests {
		got, err := ParseHex(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseHex(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseHex(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidate_RejectsBadPalette(t *testing.T) {
	th := Default()
	th.Palette = []string{"#123456", "nope"}
	if err := th.Validate(); err == nil {
		t.Fatal("expected error for invalid palette entry")
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("default theme should validate: %v", err)
	}
}

func TestColor_WrapsPalette(t *testing.T) {
	th := Theme{Palette: []string{"#010203", "#040506"}}
	if got := th.Color(2); got != (color.RGBA{1, 2, 3, 255}) {
		t.Errorf("expected wrap to first color, got %v", got)
	}
}

func TestWithAlpha_Clamps(t *testing.T) {
	c := color.RGBA{200, 100, 50, 255}
	if got := WithAlpha(c, 2); got != c {
		t.Errorf("opacity > 1 should clamp to opaque, got %v", got)
	}
	if got := WithAlpha(c, 0.5); got.A != 127 {
		t.Errorf("expected alpha 127, got %d", got.A)
	}
}
