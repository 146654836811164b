package core

import "testing"

func TestBlendEndpoints(t *testing.T) {
	dst := RGB{R: 0, G: 0, B: 0}
	src := RGB{R: 200, G: 100, B: 50}
	if got := dst.Blend(src, 0); got != dst {
		t.Errorf("alpha 0 = %+v, want dst", got)
	}
	if got := dst.Blend(src, 1); got != src {
		t.Errorf("alpha 1 = %+v, want src", got)
	}
	mid := dst.Blend(src, 0.5)
	if mid.R != 100 || mid.G != 50 || mid.B != 25 {
		t.Errorf("alpha 0.5 = %+v", mid)
	}
}

func TestAddClamps(t *testing.T) {
	got := RGB{R: 200, G: 200, B: 200}.Add(RGB{R: 100, G: 100, B: 100})
	if got != RGBWhite {
		t.Errorf("Add = %+v, want clamped white", got)
	}
}

func TestMixEndpoints(t *testing.T) {
	a := RGB{R: 255}
	b := RGB{B: 255}
	if got := a.Mix(b, 0); got != a {
		t.Errorf("t=0 = %+v, want a", got)
	}
	if got := a.Mix(b, 1); got != b {
		t.Errorf("t=1 = %+v, want b", got)
	}
	// Midpoint lands somewhere between the endpoints in Lab space;
	// exact channel values depend on the color model, not asserted
	mid := a.Mix(b, 0.5)
	if mid == a || mid == b {
		t.Errorf("t=0.5 = %+v, want interior point", mid)
	}
}

func TestHexParsing(t *testing.T) {
	if got := Hex("#ff8000"); got != (RGB{R: 255, G: 128, B: 0}) {
		t.Errorf("Hex = %+v", got)
	}
	if got := Hex("not-a-color"); got != RGBBlack {
		t.Errorf("malformed hex = %+v, want black fallback", got)
	}
}
