package hexutil

import "testing"

func TestParseUint(t *testing.T) {
	cases := map[string]uint64{
		"26":   26,
		"0x1A": 26,
		"0X1a": 26,
		"1Ah":  26,
		"1AH":  26,
	}
	for in, want := range cases {
		got, err := ParseUint(in)
		if err != nil {
			t.Fatalf("ParseUint(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseUint(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestParseInt_Negative(t *testing.T) {
	got, err := ParseInt("-10")
	if err != nil {
		t.Fatal(err)
	}
	if got != -10 {
		t.Fatalf("got %d", got)
	}
}

func TestParseHexBytes_OddLengthLeftPadded(t *testing.T) {
	got, err := ParseHexBytes("0xABC")
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x0A, 0xBC}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %x, want %x", got, want)
	}
}

func TestParseBits(t *testing.T) {
	got, err := ParseBits("0b101")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0] != 1 || got[1] != 0 || got[2] != 1 {
		t.Fatalf("got %v", got)
	}
}

func TestHexStringEqual(t *testing.T) {
	if !HexStringEqual("0x1A", "26") {
		t.Fatal("expected equal")
	}
	if HexStringEqual("0x1A", "27") {
		t.Fatal("expected not equal")
	}
}
