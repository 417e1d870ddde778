package bfm

import "testing"

func TestVarintBoundaryLengths(t *testing.T) {
	cases := []struct {
		v    int32
		want int
	}{
		{0, 1},
		{1, 1},
		{-1, 1},
		{63, 1},
		{-63, 1},
		{64, 2},
		{-64, 2},
		{8191, 2},
		{-8191, 2},
		{8192, 3},
		{-8192, 3},
		{-2147483648, 5}, // math.MinInt32
		{2147483647, 5},  // math.MaxInt32
	}

	for _, c := range cases {
		if got := VarintLen(c.v); got != c.want {
			t.Errorf("VarintLen(%d) = %d, want %d", c.v, got, c.want)
		}
		encoded := EncodeVarint(nil, c.v)
		if len(encoded) != c.want {
			t.Errorf("len(EncodeVarint(%d)) = %d, want %d", c.v, len(encoded), c.want)
		}
	}
}

func TestVarintRoundTrip(t *testing.T) {
	values := []int32{0, 1, -1, 2, -2, 63, -63, 64, -64, 100, -100, 8191, -8191,
		8192, -8192, 1000000, -1000000, 2147483647, -2147483648}

	for _, v := range values {
		encoded := EncodeVarint(nil, v)
		got, consumed, ok := DecodeVarint(encoded)
		if !ok {
			t.Fatalf("DecodeVarint(EncodeVarint(%d)) not ok", v)
		}
		if consumed != len(encoded) {
			t.Errorf("DecodeVarint(EncodeVarint(%d)) consumed = %d, want %d", v, consumed, len(encoded))
		}
		if got != v {
			t.Errorf("DecodeVarint(EncodeVarint(%d)) = %d, want %d", v, got, v)
		}
	}
}

func TestVarintAppendsToExistingSlice(t *testing.T) {
	dst := []byte{0xff}
	out := EncodeVarint(dst, 5)
	if len(out) != 2 || out[0] != 0xff {
		t.Errorf("EncodeVarint did not append, got %v", out)
	}
}

func TestDecodeVarintTruncated(t *testing.T) {
	// A continuation byte with nothing after it can never terminate.
	_, _, ok := DecodeVarint([]byte{0x80})
	if ok {
		t.Errorf("DecodeVarint([0x80]) should not be ok")
	}
	_, _, ok = DecodeVarint(nil)
	if ok {
		t.Errorf("DecodeVarint(nil) should not be ok")
	}
}

func TestDecodeVarintTooLong(t *testing.T) {
	// Five continuation bytes push the terminating group to sixth place,
	// past the 5-group cap.
	src := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}
	_, _, ok := DecodeVarint(src)
	if ok {
		t.Errorf("DecodeVarint with 6 groups should not be ok")
	}
}
