// ABOUTME: High-level mixer API owning the audio device
// ABOUTME: Provides channel-based sample playback over a mixing engine
// Package mixer provides channel-based audio sample playback.
//
// A Mixer owns the single process-wide audio output device from New until
// Close. Decoded samples (audio.Chunk, typically loaded with the decode
// package) are played on integer-indexed mixing channels with per-channel
// volume, pause/resume, halt, timed expiration and fade in/out. Channel -1
// acts as a wildcard: "first free channel" when starting playback, "all
// channels" on control operations.
//
// Example:
//
//	m, err := mixer.New(44100, 16, 2, 1024)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer m.Close()
//
//	chunk, err := decode.LoadFile("hit.wav")
//	ch, err := m.PlayChannel(-1, chunk, 0)
//
// Only one Mixer should be open at a time: the underlying audio device is a
// process-global resource, and the default backend cannot open a second
// device context in the same process.
//
// The channel-finished handler registered with SetChannelFinishedHandler is
// invoked from the mixing goroutine; handlers that touch caller state need
// their own synchronization.
package mixer
