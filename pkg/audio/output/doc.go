// ABOUTME: Audio output package for local monitoring
// ABOUTME: Provides the Output interface and an oto implementation
// Package output plays 16-bit PCM frames on the local audio device.
//
// Used by the capture server's -monitor flag and by the listener client.
//
// Example:
//
//	out := output.NewOto()
//	err := out.Open(16000, 1)
//	err = out.Write(frame)
package output
