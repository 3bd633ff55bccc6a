// ABOUTME: Audio file decoders producing in-memory chunks
// ABOUTME: Supports WAV, MP3, FLAC and Ogg Vorbis
// Package decode loads audio files into fully decoded chunks.
//
// Supported formats: WAV (PCM), MP3, FLAC and Ogg Vorbis. LoadFile picks
// the decoder from the file extension; the per-format functions decode a
// reader directly.
//
// Chunks come back at the file's native format. Convert them with the
// resample package before playing if the mixer device was opened with a
// different format:
//
//	chunk, err := decode.LoadFile("jump.wav")
//	chunk, err = resample.Convert(chunk, m.Format())
//	m.PlayChannel(-1, chunk, 0)
package decode
