// ABOUTME: Phase-accumulating linear resampler for mono float streams
// ABOUTME: Carries a source tail and read phase so block boundaries are seamless
package resample

import "math"

// Resampler performs linear interpolation to convert between sample rates.
// It is not safe for concurrent use.
type Resampler struct {
	inputRate  int
	outputRate int
	ratio      float64

	// phase is the next read position relative to buf[0]; 0 <= phase < ratio
	phase float64
	// buf holds the source samples not yet consumed by interpolation
	buf []float32
}

// New creates a new resampler. Both rates must be positive.
func New(inputRate, outputRate int) *Resampler {
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		ratio:      float64(inputRate) / float64(outputRate),
	}
}

// Process appends the resampled form of block to dst and returns it.
// An empty block leaves all state unchanged.
func (r *Resampler) Process(block []float32, dst []float32) []float32 {
	if len(block) == 0 {
		return dst
	}

	r.buf = append(r.buf, block...)
	window := r.buf
	last := float64(len(window) - 1)

	read := r.phase
	for read < last {
		i0 := int(read)
		frac := read - float64(i0)

		// Linear interpolation
		s0 := float64(window[i0])
		s1 := float64(window[i0+1])
		dst = append(dst, float32(s0*(1.0-frac)+s1*frac))

		read += r.ratio
	}

	consumed := math.Min(last, math.Floor(read))
	r.phase = read - consumed

	// Keep the unconsumed tail at the front of the buffer
	n := copy(r.buf, r.buf[int(consumed):])
	r.buf = r.buf[:n]

	return dst
}

// Reset resets the resampler state
func (r *Resampler) Reset() {
	r.phase = 0
	r.buf = r.buf[:0]
}

// Ratio returns inputRate / outputRate
func (r *Resampler) Ratio() float64 {
	return r.ratio
}

// Phase returns the read position carried into the next call
func (r *Resampler) Phase() float64 {
	return r.phase
}

// Pending returns how many source samples are held for the next call
func (r *Resampler) Pending() int {
	return len(r.buf)
}

// InputRate returns the native sample rate
func (r *Resampler) InputRate() int {
	return r.inputRate
}

// OutputRate returns the target sample rate
func (r *Resampler) OutputRate() int {
	return r.outputRate
}

// OutputSamplesNeeded estimates how many output samples inputSamples produce
func (r *Resampler) OutputSamplesNeeded(inputSamples int) int {
	return int(float64(inputSamples) / r.ratio)
}

// InputSamplesNeeded estimates how many input samples are needed to produce outputSamples
func (r *Resampler) InputSamplesNeeded(outputSamples int) int {
	return int(math.Ceil(float64(outputSamples) * r.ratio))
}
