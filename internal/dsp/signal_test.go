package dsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBytesToBits_RoundTrip(t *testing.T) {
	data := []byte{0xA5, 0x3C, 0x00, 0xFF}
	bits := BytesToBits(data)
	assert.Len(t, bits, len(data)*8)
	assert.Equal(t, data, BitsToBytes(bits))
}

func TestFloat32Conversion_RoundTrip(t *testing.T) {
	samples := []float64{0.1, -0.2, 0.75, -1.0}
	f32 := SamplesToFloat32(samples)
	back := Float32ToSamples(f32)
	for i := range samples {
		assert.InDelta(t, samples[i], back[i], 1e-6)
	}
}

func TestApplyAGC_ScalesToTargetRMS(t *testing.T) {
	samples := make([]float64, 1000)
	for i := range samples {
		samples[i] = 0.01
	}
	out := ApplyAGC(samples, 0.5)
	assert.InDelta(t, 0.5, out[0], 1e-9)
}

func TestApplyAGC_LeavesSilenceUnchanged(t *testing.T) {
	samples := make([]float64, 10)
	out := ApplyAGC(samples, 0.5)
	assert.Equal(t, samples, out)
}

func TestApplyDCRemoval_EmptyInput(t *testing.T) {
	assert.Empty(t, ApplyDCRemoval(nil))
}
