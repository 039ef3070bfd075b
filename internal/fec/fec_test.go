package fec

import (
	"testing"

	"github.com/seredenko/dpsk-modem/internal/numerics"
)

// symbolPayload packs a pseudo-random DPSK bit stream into bytes the same
// way the protocol layer fills a frame's payload before handing it to the
// modulator: bitsPerSymbol-wide symbols, 8 bits per byte.
func symbolPayload(bitCount, bitsPerSymbol int, seed uint32) []byte {
	bits := make([]bool, bitCount)
	state := seed
	for i := range bits {
		state = state*1664525 + 1013904223
		bits[i] = state&1 == 1
	}
	symbols := numerics.BitsToSymbols(bits, bitsPerSymbol)
	packed := numerics.SymbolsToBits(symbols, bitsPerSymbol)

	out := make([]byte, 0, len(packed)/8+1)
	for i := 0; i < len(packed); i += 8 {
		end := i + 8
		if end > len(packed) {
			end = len(packed)
		}
		var b byte
		for _, bit := range packed[i:end] {
			b <<= 1
			if bit {
				b |= 1
			}
		}
		out = append(out, b<<uint(8-(end-i)))
	}
	return out
}

func TestCRC32_Basic(t *testing.T) {
	data := symbolPayload(64, 4, 1)
	checksum := CRC32(data)

	if checksum == 0 {
		t.Error("CRC32 should not be 0 for non-empty data")
	}

	checksum2 := CRC32(data)
	if checksum != checksum2 {
		t.Errorf("CRC32 not deterministic: %x != %x", checksum, checksum2)
	}

	other := symbolPayload(64, 4, 2)
	checksum3 := CRC32(other)
	if checksum == checksum3 {
		t.Error("different symbol payloads produced same CRC32")
	}
}

func TestCRC32_AppendVerify(t *testing.T) {
	data := symbolPayload(128, 3, 7)

	withCRC := AppendCRC32(data)
	if len(withCRC) != len(data)+4 {
		t.Fatalf("Expected length %d, got %d", len(data)+4, len(withCRC))
	}

	recovered, valid := VerifyCRC32(withCRC)
	if !valid {
		t.Error("CRC verification failed for valid data")
	}

	if string(recovered) != string(data) {
		t.Error("Recovered data mismatch")
	}

	// A single flipped bit models a symbol the demodulator sliced into the
	// wrong sector.
	withCRC[5] ^= 0xFF
	_, valid = VerifyCRC32(withCRC)
	if valid {
		t.Error("CRC verification should fail for a corrupted symbol byte")
	}
}

func TestRSEncoder_EncodeBlock(t *testing.T) {
	rs, err := NewRSEncoder()
	if err != nil {
		t.Fatalf("Failed to create RS encoder: %v", err)
	}

	data := symbolPayload(DefaultDataShards*8, 4, 3)

	encoded, err := rs.EncodeBlock(data)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	expectedLen := DefaultDataShards + DefaultParityShards
	if len(encoded) != expectedLen {
		t.Errorf("Encoded length: %d, expected %d", len(encoded), expectedLen)
	}
}

func TestRSEncoder_EncodeDecode(t *testing.T) {
	rs, err := NewRSEncoder()
	if err != nil {
		t.Fatalf("Failed to create RS encoder: %v", err)
	}

	data := symbolPayload(900*8, 2, 99)

	encoded, err := rs.Encode(data)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	decoded, err := rs.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	for i := range data {
		if i < len(decoded) && data[i] != decoded[i] {
			t.Errorf("Byte %d mismatch: 0x%02x != 0x%02x", i, data[i], decoded[i])
		}
	}
}

// TestRSEncoder_RecoversFromLostSymbolWindows simulates a run of samples
// that the demodulator could not extract a reliable symbol from (dropped
// audio chunk, clipped input) by erasing whole bytes of an RS block and
// passing their positions to DecodeBlock as erasures.
func TestRSEncoder_RecoversFromLostSymbolWindows(t *testing.T) {
	rs, err := NewRSEncoderCustom(10, 4)
	if err != nil {
		t.Fatalf("Failed to create RS encoder: %v", err)
	}

	data := symbolPayload(10*8, 4, 11)

	encoded, err := rs.EncodeBlock(data)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	corrupted := make([]byte, len(encoded))
	copy(corrupted, encoded)

	// Up to parityShards (here 4) erasures can be reconstructed; erase two.
	erasures := []int{2, 5}
	for _, idx := range erasures {
		corrupted[idx] = 0
	}

	decoded, err := rs.DecodeBlock(corrupted, erasures)
	if err != nil {
		t.Fatalf("Decode error with erasures: %v", err)
	}

	for i := range data {
		if decoded[i] != data[i] {
			t.Errorf("Byte %d: 0x%02x != 0x%02x", i, decoded[i], data[i])
		}
	}
}
