package byteseq

import "testing"

func TestHexRoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		{0x00},
		{0xff, 0x00, 0x41},
		[]byte("hello"),
	}
	for _, c := range cases {
		h := ToHex(c)
		back, err := FromHex(h)
		if err != nil {
			t.Fatalf("FromHex(%q): %v", h, err)
		}
		if string(back) != string(c) {
			t.Errorf("round trip mismatch: %v != %v", back, c)
		}
	}
}

func TestByteFallbackPiece(t *testing.T) {
	if got := ByteFallbackPiece(0x0a); got != "<0x0A>" {
		t.Errorf("got %q, want <0x0A>", got)
	}
	if got := ByteFallbackPiece(0xff); got != "<0xFF>" {
		t.Errorf("got %q, want <0xFF>", got)
	}
}

func TestFromHexMalformed(t *testing.T) {
	if _, err := FromHex("zz"); err == nil {
		t.Error("expected error for malformed hex")
	}
}
