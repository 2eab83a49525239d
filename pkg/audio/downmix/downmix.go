// ABOUTME: Mono downmix of planar float channels
// ABOUTME: Averages stereo pairs and passes mono through without copying
package downmix

// Downmix returns the mono mix of channels.
//
// With no channels it returns nil. A single channel is returned as-is. With
// two or more channels, the mean of channels 0 and 1 is written into dst
// (grown if its capacity is too small) and truncated to the shorter channel;
// further channels are ignored.
func Downmix(dst []float32, channels [][]float32) []float32 {
	switch len(channels) {
	case 0:
		return nil
	case 1:
		return channels[0]
	}

	left, right := channels[0], channels[1]
	n := len(left)
	if len(right) < n {
		n = len(right)
	}

	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]

	for i := 0; i < n; i++ {
		dst[i] = (left[i] + right[i]) * 0.5
	}
	return dst
}
