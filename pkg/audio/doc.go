// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, Chunk types and sample conversion functions
// Package audio provides fundamental audio types shared across the chanmix library.
//
// This package defines the core types used throughout chanmix:
//   - Format: Describes PCM audio (sample rate, channels, bit depth)
//   - Chunk: A fully decoded, in-memory audio sample
//   - Fading: The fade state of a mixing channel
//
// It also provides utilities for converting between sample widths:
//   - 16-bit ↔ 24-bit conversions
//   - int32 ↔ packed byte conversions
//
// Samples are carried as int32 values left-justified into the 24-bit range,
// so 16-bit and 24-bit sources share one pipeline without precision loss.
//
// Example:
//
//	format := audio.Format{
//	    SampleRate: 44100,
//	    Channels:   2,
//	    BitDepth:   16,
//	}
//
//	chunk := &audio.Chunk{Samples: samples, Format: format}
//	fmt.Println(chunk.Duration())
package audio
