// ABOUTME: Encoder interface definition
// ABOUTME: Common interface for all frame encoders
package encode

// Encoder encodes int16 PCM frames to various formats
type Encoder interface {
	// Encode converts one frame of samples to encoded audio data
	Encode(samples []int16) ([]byte, error)

	// Close releases encoder resources
	Close() error
}
