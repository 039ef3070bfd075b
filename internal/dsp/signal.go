// Package dsp holds small sample-domain utilities shared by the protocol
// layer that are not specific to any one modulation scheme: format
// conversion between the audio device's float32 buffers and the float64
// samples the DPSK core operates on, DC-offset removal, and automatic gain
// control.
package dsp

import "math"

// SamplesToFloat32 converts float64 samples to float32 for audio output.
func SamplesToFloat32(samples []float64) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s)
	}
	return out
}

// Float32ToSamples converts float32 audio input to float64 for processing.
func Float32ToSamples(samples []float32) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = float64(s)
	}
	return out
}

// ApplyDCRemoval removes DC offset from samples using a single-pole
// high-pass filter (subtracting a running average).
func ApplyDCRemoval(samples []float64) []float64 {
	if len(samples) == 0 {
		return samples
	}

	const alpha = 0.999
	out := make([]float64, len(samples))
	dc := samples[0]
	for i, s := range samples {
		dc = alpha*dc + (1-alpha)*s
		out[i] = s - dc
	}
	return out
}

// ApplyAGC rescales samples so their RMS level matches targetRMS. Leaves
// near-silent input (RMS below 1e-10) unchanged to avoid amplifying noise
// floor.
func ApplyAGC(samples []float64, targetRMS float64) []float64 {
	if len(samples) == 0 {
		return samples
	}

	var sumSq float64
	for _, s := range samples {
		sumSq += s * s
	}
	rms := math.Sqrt(sumSq / float64(len(samples)))
	if rms < 1e-10 {
		return samples
	}

	gain := targetRMS / rms
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s * gain
	}
	return out
}

// BytesToBits unpacks a byte slice into an ordered bit sequence,
// most-significant bit first.
func BytesToBits(data []byte) []bool {
	bits := make([]bool, len(data)*8)
	for i, b := range data {
		for j := 0; j < 8; j++ {
			bits[i*8+j] = (b>>uint(7-j))&1 == 1
		}
	}
	return bits
}

// BitsToBytes packs an ordered bit sequence (most-significant bit first,
// length a multiple of 8) back into bytes.
func BitsToBytes(bits []bool) []byte {
	numBytes := len(bits) / 8
	data := make([]byte, numBytes)
	for i := 0; i < numBytes; i++ {
		var b byte
		for j := 0; j < 8; j++ {
			b <<= 1
			if bits[i*8+j] {
				b |= 1
			}
		}
		data[i] = b
	}
	return data
}
