// ABOUTME: Chunk type for decoded in-memory audio samples
// ABOUTME: Chunks are loaded by the decode package and referenced by the mixer
package audio

import "time"

// Chunk is a fully decoded, in-memory audio sample. Chunks are produced by
// the decode package (or built directly from PCM data) and are only ever
// referenced by the mixer while playing; the caller keeps ownership and must
// keep the chunk alive for as long as it is playing.
type Chunk struct {
	// Samples holds interleaved PCM, int32 left-justified in 24-bit range
	Samples []int32
	Format  Format
}

// Frames returns the number of sample frames in the chunk
func (c *Chunk) Frames() int {
	if c.Format.Channels <= 0 {
		return 0
	}
	return len(c.Samples) / c.Format.Channels
}

// Duration returns the playback time of the chunk at its native rate
func (c *Chunk) Duration() time.Duration {
	if c.Format.SampleRate <= 0 {
		return 0
	}
	return time.Duration(c.Frames()) * time.Second / time.Duration(c.Format.SampleRate)
}
