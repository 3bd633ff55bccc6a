// ABOUTME: Audio output backends for the mixer
// ABOUTME: Provides oto, portaudio, capture and discard implementations
// Package output provides audio output device backends.
//
// The mixer engine writes rendered sample blocks to an Output. Four
// implementations are provided:
//   - Oto: the default device backend, using ebitengine/oto
//   - PortAudio: an alternative device backend (build with -tags portaudio)
//   - Capture: an in-memory sink for tests and offline rendering
//   - Discard: a real-time paced null sink
//
// Note that oto only allows one audio context per process, which matches the
// single-device ownership model of the mixer.
package output
