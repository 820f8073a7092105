package gamma

import "testing"

func TestFindAnchorIndexMatchesAnchors(t *testing.T) {
	anchors := [8]uint8{0, 36, 72, 109, 145, 182, 218, 255}
	for lum := 0; lum <= 255; lum++ {
		got := findAnchorIndex(uint8(lum))

		want := 0
		for i, a := range anchors {
			if int(a) <= lum {
				want = i
			}
		}

		if got != want {
			t.Fatalf("findAnchorIndex(%d) = %d, want %d", lum, got, want)
		}
	}
}

func TestCorrectorEndpoints(t *testing.T) {
	for lum := 0; lum <= 255; lum += 17 {
		c := New(uint8(lum))
		if got := c.Correct(0); got != 0 {
			t.Errorf("luminance %d: Correct(0) = %d, want 0", lum, got)
		}
		if got := c.Correct(255); got != 255 {
			t.Errorf("luminance %d: Correct(255) = %d, want 255", lum, got)
		}
	}
}

func TestCorrectorMonotonic(t *testing.T) {
	c := New(128)
	prev := uint8(0)
	for alpha := 0; alpha <= 255; alpha++ {
		got := c.Correct(uint8(alpha))
		if got < prev {
			t.Fatalf("lut not monotonic at alpha=%d: %d < %d", alpha, got, prev)
		}
		prev = got
	}
}

func TestCorrectorMaxErrorWithinBound(t *testing.T) {
	const maxAllowedError = 2
	var worstLum, worstAlpha uint8
	var worstErr int

	for lum := 0; lum <= 255; lum++ {
		c := New(uint8(lum))
		for alpha := 0; alpha <= 255; alpha++ {
			actual := int(c.Correct(uint8(alpha)))
			expected := int(groundTruth(uint8(lum), uint8(alpha)))
			err := actual - expected
			if err < 0 {
				err = -err
			}
			if err > worstErr {
				worstErr = err
				worstLum = uint8(lum)
				worstAlpha = uint8(alpha)
			}
		}
	}

	if worstErr > maxAllowedError {
		t.Fatalf("max interpolation error %d exceeds %d at luminance=%d alpha=%d",
			worstErr, maxAllowedError, worstLum, worstAlpha)
	}
}

func TestUpdateIfNeededNoRebuildWhenUnchanged(t *testing.T) {
	c := New(100)
	before := c.lut
	c.UpdateIfNeeded(100)
	if c.lut != before {
		t.Fatal("UpdateIfNeeded rebuilt the LUT despite unchanged luminance")
	}
}

func TestUpdateIfNeededRebuildsOnChange(t *testing.T) {
	c := New(0)
	c.UpdateIfNeeded(255)
	want := New(255)
	if c.lut != want.lut {
		t.Fatal("UpdateIfNeeded did not produce the LUT for the new luminance")
	}
}

func BenchmarkCorrect(b *testing.B) {
	c := New(128)
	b.ReportAllocs()
	for b.Loop() {
		_ = c.Correct(200)
	}
}
