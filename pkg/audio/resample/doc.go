// ABOUTME: Sample rate and channel layout conversion
// ABOUTME: Adapts decoded chunks to the opened device format
// Package resample converts decoded audio between sample rates and channel
// layouts.
//
// The mixer plays chunks that match the opened device format exactly.
// Convert adapts a chunk loaded at its native format:
//
//	chunk, err := decode.LoadFile("hit.ogg")
//	chunk, err = resample.Convert(chunk, m.Format())
//	ch, err := m.PlayChannel(-1, chunk, 0)
//
// Rate conversion uses linear interpolation, which is adequate for playback
// use. Stereo to mono downmix averages the two channels; mono to stereo
// duplicates.
package resample
