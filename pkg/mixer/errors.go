// ABOUTME: Error values of the mixer package
// ABOUTME: Re-exports engine sentinel errors for errors.Is matching
package mixer

import (
	"errors"

	"github.com/chanmix/chanmix-go/internal/engine"
)

var (
	// ErrClosed is returned by playback operations on a closed Mixer.
	ErrClosed = errors.New("mixer is closed")

	// ErrNoFreeChannels is returned when channel -1 finds no free channel.
	ErrNoFreeChannels = engine.ErrNoFreeChannels

	// ErrInvalidChannel is returned for playback on an out-of-range channel.
	ErrInvalidChannel = engine.ErrInvalidChannel

	// ErrNilChunk is returned when playing a nil chunk.
	ErrNilChunk = engine.ErrNilChunk

	// ErrFormatMismatch is returned when a chunk does not match the device
	// format. Use resample.Convert to adapt a chunk before playing it.
	ErrFormatMismatch = engine.ErrFormatMismatch
)
