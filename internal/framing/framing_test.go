package framing

import (
	"bytes"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		name     string
		payloads [][]byte
	}{
		{"empty sequence", nil},
		{"single payload", [][]byte{[]byte("hello")}},
		{"multiple payloads", [][]byte{[]byte("a"), []byte("bb"), []byte("ccc")}},
		{"empty payloads preserve multiplicity", [][]byte{{}, []byte("x"), {}}},
		{"all empty", [][]byte{{}, {}, {}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			encoded := Encode(tc.payloads)
			decoded, err := Decode(encoded)
			if err != nil {
				t.Fatalf("Decode returned error: %v", err)
			}
			if len(decoded) != len(tc.payloads) {
				t.Fatalf("expected %d payloads, got %d", len(tc.payloads), len(decoded))
			}
			for i := range tc.payloads {
				if !bytes.Equal(decoded[i], tc.payloads[i]) {
					t.Errorf("payload %d: expected %q, got %q", i, tc.payloads[i], decoded[i])
				}
			}
		})
	}
}

func TestDecodePartialTrailer(t *testing.T) {
	t.Run("truncated length prefix", func(t *testing.T) {
		if _, err := Decode([]byte{1, 0}); err == nil {
			t.Fatal("expected error for truncated length prefix")
		}
	})

	t.Run("declared length past end of buffer", func(t *testing.T) {
		buf := Encode([][]byte{[]byte("hello")})
		truncated := buf[:len(buf)-2]
		if _, err := Decode(truncated); err == nil {
			t.Fatal("expected error for truncated payload")
		}
	})
}

func TestDecodeEmptyBuffer(t *testing.T) {
	out, err := Decode(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected no payloads, got %d", len(out))
	}
}
